package ws

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeSocket struct {
	mu       sync.Mutex
	events   []Event
	writeErr error
	closed   bool
}

func (f *fakeSocket) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if event, ok := v.(Event); ok {
		f.events = append(f.events, event)
	}
	return nil
}

func (f *fakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeSocket) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestHubPublishesToOwningUserOnly(t *testing.T) {
	hub := NewHub(time.Second, zap.NewNop())

	mine := &fakeSocket{}
	other := &fakeSocket{}
	hub.Add(7, mine)
	hub.Add(8, other)

	hub.Publish(7, Event{Type: EventCoursePurchased})

	if mine.eventCount() != 1 {
		t.Errorf("owner received %d events, want 1", mine.eventCount())
	}
	if other.eventCount() != 0 {
		t.Errorf("other user received %d events, want 0", other.eventCount())
	}
}

func TestHubFansOutToAllUserSockets(t *testing.T) {
	hub := NewHub(time.Second, zap.NewNop())

	tab1 := &fakeSocket{}
	tab2 := &fakeSocket{}
	hub.Add(7, tab1)
	hub.Add(7, tab2)

	hub.Publish(7, Event{Type: EventLessonProgress})

	if tab1.eventCount() != 1 || tab2.eventCount() != 1 {
		t.Errorf("events = %d/%d, want 1/1", tab1.eventCount(), tab2.eventCount())
	}
}

func TestHubDropsFailedSocket(t *testing.T) {
	hub := NewHub(time.Second, zap.NewNop())

	broken := &fakeSocket{writeErr: errors.New("write: broken pipe")}
	hub.Add(7, broken)

	hub.Publish(7, Event{Type: EventLessonProgress})

	if !broken.closed {
		t.Error("failed socket must be closed")
	}
	if hub.ConnectionCount(7) != 0 {
		t.Errorf("connection count = %d, want 0 after drop", hub.ConnectionCount(7))
	}
}

func TestHubRemoveLastSocket(t *testing.T) {
	hub := NewHub(time.Second, zap.NewNop())

	s := &fakeSocket{}
	hub.Add(7, s)
	hub.Remove(7, s)

	if hub.ConnectionCount(7) != 0 {
		t.Errorf("connection count = %d, want 0", hub.ConnectionCount(7))
	}
	// Publishing to a user with no sockets is a no-op.
	hub.Publish(7, Event{Type: EventLessonProgress})
}

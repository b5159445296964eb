package ws

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Socket is the subset of *websocket.Conn the hub writes through.
// Narrowed to an interface so tests can observe pushed events.
type Socket interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Event is a dashboard push message.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Dashboard event types.
const (
	EventCoursePurchased = "course_purchased"
	EventLessonProgress  = "lesson_progress"
)

// Hub tracks dashboard sockets per user and fans events out to the owning
// user only. A user may hold several sockets (multiple tabs).
type Hub struct {
	mu           sync.RWMutex
	sockets      map[int64]map[Socket]struct{}
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewHub builds the hub.
func NewHub(writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	return &Hub{
		sockets:      make(map[int64]map[Socket]struct{}),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Add registers a socket for the user.
func (h *Hub) Add(userID int64, s Socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sockets[userID]
	if !ok {
		set = make(map[Socket]struct{})
		h.sockets[userID] = set
	}
	set[s] = struct{}{}
}

// Remove drops a socket; the last socket removes the user entry.
func (h *Hub) Remove(userID int64, s Socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sockets[userID]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.sockets, userID)
	}
}

// Publish pushes the event to every socket the user holds. Sockets that fail
// to take the write are closed and dropped; delivery is best effort.
func (h *Hub) Publish(userID int64, event Event) {
	h.mu.RLock()
	targets := make([]Socket, 0, len(h.sockets[userID]))
	for s := range h.sockets[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		_ = s.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := s.WriteJSON(event); err != nil {
			h.logger.Info("dashboard socket write failed, dropping",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			_ = s.Close()
			h.Remove(userID, s)
		}
	}
}

// ConnectionCount reports registered sockets for the user.
func (h *Hub) ConnectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sockets[userID])
}

package service

import (
	"context"
	"sync"
	"time"

	"learnhub/internal/models"
	"learnhub/internal/repository"
)

type pairKey struct {
	userID   int64
	lessonID int64
}

type memberKey struct {
	userID   int64
	courseID int64
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) add(user models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = &user
	return &user
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	stored := f.add(*user)
	user.ID = stored.ID
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[int64]*models.Course
	mentors map[memberKey]bool
	lessons map[int64]int64 // lesson id -> course id
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{
		courses: make(map[int64]*models.Course),
		mentors: make(map[memberKey]bool),
		lessons: make(map[int64]int64),
	}
}

func (f *fakeCourseRepo) addCourse(course models.Course) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.courses[course.ID] = &course
}

func (f *fakeCourseRepo) addLesson(lessonID, courseID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lessons[lessonID] = courseID
}

func (f *fakeCourseRepo) removeLesson(lessonID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lessons, lessonID)
}

func (f *fakeCourseRepo) addMentor(userID, courseID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mentors[memberKey{userID, courseID}] = true
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	course, ok := f.courses[id]
	if !ok {
		return nil, repository.ErrCourseNotFound
	}
	copied := *course
	return &copied, nil
}

func (f *fakeCourseRepo) IsMentor(_ context.Context, userID, courseID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mentors[memberKey{userID, courseID}], nil
}

func (f *fakeCourseRepo) LessonInCourse(_ context.Context, lessonID, courseID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lessons[lessonID] == courseID, nil
}

func (f *fakeCourseRepo) CountLessons(_ context.Context, courseID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, cid := range f.lessons {
		if cid == courseID {
			count++
		}
	}
	return count, nil
}

type fakeTxRepo struct {
	mu        sync.Mutex
	nextID    int64
	byBooking map[string]*models.Transaction
	forceLose bool // makes MarkPaid report a lost race
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{byBooking: make(map[string]*models.Transaction)}
}

func (f *fakeTxRepo) Create(_ context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tx.ID = f.nextID
	tx.CreatedAt = time.Now()
	stored := *tx
	f.byBooking[tx.BookingTrxID] = &stored
	return nil
}

func (f *fakeTxRepo) GetByBookingTrxID(_ context.Context, bookingTrxID string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.byBooking[bookingTrxID]
	if !ok {
		return nil, repository.ErrTransactionNotFound
	}
	copied := *tx
	return &copied, nil
}

func (f *fakeTxRepo) MarkPaid(_ context.Context, id int64, paidAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.forceLose {
		return false, nil
	}
	for _, tx := range f.byBooking {
		if tx.ID == id {
			if tx.IsPaid {
				return false, nil
			}
			tx.IsPaid = true
			if tx.StartedAt == nil {
				at := paidAt
				tx.StartedAt = &at
			}
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTxRepo) HasPaid(_ context.Context, userID, courseID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.byBooking {
		if tx.UserID == userID && tx.CourseID == courseID && tx.IsPaid {
			return true, nil
		}
	}
	return false, nil
}

type fakeDiscountRepo struct {
	mu    sync.Mutex
	codes map[string]*models.Discount
}

func newFakeDiscountRepo() *fakeDiscountRepo {
	return &fakeDiscountRepo{codes: make(map[string]*models.Discount)}
}

func (f *fakeDiscountRepo) add(d models.Discount) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[d.Code] = &d
}

func (f *fakeDiscountRepo) GetByCode(_ context.Context, code string) (*models.Discount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.codes[code]
	if !ok {
		return nil, repository.ErrDiscountNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDiscountRepo) IncrementUsage(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.codes {
		if d.ID == id {
			if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
				return repository.ErrDiscountExhausted
			}
			d.UsedCount++
			return nil
		}
	}
	return repository.ErrDiscountNotFound
}

type fakeGatewayResolver struct {
	setting *models.GatewaySetting
	err     error
}

func (f *fakeGatewayResolver) Active(context.Context) (*models.GatewaySetting, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.setting
	return &copied, nil
}

type fakeGrantCache struct {
	mu          sync.Mutex
	entries     map[memberKey]bool
	invalidated []memberKey
}

func newFakeGrantCache() *fakeGrantCache {
	return &fakeGrantCache{entries: make(map[memberKey]bool)}
}

func (f *fakeGrantCache) Get(_ context.Context, userID, courseID int64) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	allowed, hit := f.entries[memberKey{userID, courseID}]
	return allowed, hit, nil
}

func (f *fakeGrantCache) Save(_ context.Context, userID, courseID int64, allowed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[memberKey{userID, courseID}] = allowed
	return nil
}

func (f *fakeGrantCache) Invalidate(_ context.Context, userID, courseID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{userID, courseID}
	delete(f.entries, key)
	f.invalidated = append(f.invalidated, key)
	return nil
}

// fakeProgressStore mirrors the SQL upsert semantics: first completion
// timestamp wins, time spent only grows.
type fakeProgressStore struct {
	mu     sync.Mutex
	nextID int64
	recs   map[pairKey]*models.LessonProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{recs: make(map[pairKey]*models.LessonProgress)}
}

func (f *fakeProgressStore) UpsertCompletion(_ context.Context, userID, courseID, lessonID int64, timeSpent int, completedAt time.Time) (*models.LessonProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{userID, lessonID}
	rec, ok := f.recs[key]
	if !ok {
		f.nextID++
		rec = &models.LessonProgress{
			ID:               f.nextID,
			UserID:           userID,
			CourseID:         courseID,
			SectionContentID: lessonID,
		}
		f.recs[key] = rec
	}
	rec.IsCompleted = true
	if rec.CompletedAt == nil {
		at := completedAt
		rec.CompletedAt = &at
	}
	if timeSpent > rec.TimeSpentSeconds {
		rec.TimeSpentSeconds = timeSpent
	}
	rec.UpdatedAt = time.Now()
	copied := *rec
	return &copied, nil
}

func (f *fakeProgressStore) UpsertTimeSpent(_ context.Context, userID, courseID, lessonID int64, timeSpent int) (*models.LessonProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{userID, lessonID}
	rec, ok := f.recs[key]
	if !ok {
		f.nextID++
		rec = &models.LessonProgress{
			ID:               f.nextID,
			UserID:           userID,
			CourseID:         courseID,
			SectionContentID: lessonID,
		}
		f.recs[key] = rec
	}
	if timeSpent > rec.TimeSpentSeconds {
		rec.TimeSpentSeconds = timeSpent
	}
	rec.UpdatedAt = time.Now()
	copied := *rec
	return &copied, nil
}

func (f *fakeProgressStore) Get(_ context.Context, userID, lessonID int64) (*models.LessonProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[pairKey{userID, lessonID}]
	if !ok {
		return nil, repository.ErrProgressNotFound
	}
	copied := *rec
	return &copied, nil
}

func (f *fakeProgressStore) CountCompleted(_ context.Context, userID, courseID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, rec := range f.recs {
		if rec.UserID == userID && rec.CourseID == courseID && rec.IsCompleted {
			count++
		}
	}
	return count, nil
}

package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
)

// MemoryStore implements Store in process memory.
// mu guards the maps; each course additionally has its own admission lock
// held across the capacity check and the insert.
type MemoryStore struct {
	mu       sync.RWMutex
	courses  map[int64]models.Course
	bookings map[int64][]models.Booking
	nextID   int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses:  make(map[int64]models.Course),
		bookings: make(map[int64][]models.Booking),
		locks:    make(map[int64]*sync.Mutex),
		now:      time.Now,
	}
}

func (m *MemoryStore) courseLock(id int64) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// GetCourse returns a course by id
func (m *MemoryStore) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return &c, nil
}

// GetCourseSummary returns a course and its current booking count
func (m *MemoryStore) GetCourseSummary(ctx context.Context, id int64) (*models.CourseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return &models.CourseSummary{Course: c, BookedCount: len(m.bookings[id])}, nil
}

// ListCourseSummaries returns all courses ordered by id
func (m *MemoryStore) ListCourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.CourseSummary, 0, len(m.courses))
	for id, c := range m.courses {
		out = append(out, models.CourseSummary{Course: c, BookedCount: len(m.bookings[id])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListBookings returns a copy of the bookings for a course ordered by id
func (m *MemoryStore) ListBookings(ctx context.Context, courseID int64) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.courses[courseID]; !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	out := make([]models.Booking, len(m.bookings[courseID]))
	copy(out, m.bookings[courseID])
	return out, nil
}

// AdmitBooking performs the capacity check and insert under the course lock
func (m *MemoryStore) AdmitBooking(ctx context.Context, b *models.Booking) error {
	l := m.courseLock(b.CourseID)
	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	c, ok := m.courses[b.CourseID]
	booked := len(m.bookings[b.CourseID])
	m.mu.RUnlock()

	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if booked >= c.TotalSeats {
		return apperrors.ErrCourseFull
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A reset may have removed the course while the read lock was released.
	if _, ok := m.courses[b.CourseID]; !ok {
		return apperrors.ErrCourseNotFound
	}

	m.nextID++
	b.ID = m.nextID
	b.CreatedAt = m.now().UTC()
	m.bookings[b.CourseID] = append(m.bookings[b.CourseID], *b)
	return nil
}

// SeedCourses inserts missing courses, optionally clearing everything first
func (m *MemoryStore) SeedCourses(ctx context.Context, courses []models.Course, reset bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if reset {
		m.courses = make(map[int64]models.Course)
		m.bookings = make(map[int64][]models.Booking)
	}

	for _, c := range courses {
		if _, exists := m.courses[c.ID]; exists {
			continue
		}
		if m.nameTaken(c.Name) {
			continue
		}
		m.courses[c.ID] = c
	}
	return nil
}

func (m *MemoryStore) nameTaken(name string) bool {
	for _, c := range m.courses {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (m *MemoryStore) Close() {}

package repositories

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
)

func seededStore(t *testing.T, seats ...int) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	courses := make([]models.Course, 0, len(seats))
	for i, n := range seats {
		courses = append(courses, models.Course{
			ID:         int64(i + 1),
			Name:       []string{"Artificial Intelligence (AI)", "Quantum Computing", "Robotics"}[i],
			TotalSeats: n,
		})
	}
	require.NoError(t, store.SeedCourses(context.Background(), courses, false))
	return store
}

func booking(courseID int64, user string) *models.Booking {
	return &models.Booking{
		UserName: user,
		CourseID: courseID,
		Email:    user + "@example.com",
		Phone:    "555-0100",
	}
}

func TestMemoryStoreAdmitsUntilFull(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, 10, 10)

	for i := 0; i < 10; i++ {
		b := booking(1, "user")
		require.NoError(t, store.AdmitBooking(ctx, b))
		assert.Equal(t, int64(i+1), b.ID)
		assert.False(t, b.CreatedAt.IsZero())
	}

	err := store.AdmitBooking(ctx, booking(1, "eleventh"))
	assert.ErrorIs(t, err, apperrors.ErrCourseFull)

	err = store.AdmitBooking(ctx, booking(99, "ghost"))
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	summaries, err := store.ListCourseSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 10, summaries[0].BookedCount)
	assert.Equal(t, 0, summaries[0].AvailableSeats())
	assert.Equal(t, 10, summaries[1].AvailableSeats())
}

func TestMemoryStoreConcurrentAdmissionNeverOverbooks(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, 5, 3)

	var admitted, full atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.AdmitBooking(ctx, booking(int64(i%2+1), "racer"))
			switch {
			case err == nil:
				admitted.Add(1)
			case assert.ErrorIs(t, err, apperrors.ErrCourseFull):
				full.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(8), admitted.Load())
	assert.Equal(t, int64(56), full.Load())

	first, err := store.GetCourseSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, first.BookedCount)

	second, err := store.ListBookings(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second, 3)

	ids := map[int64]bool{}
	for _, id := range []int64{1, 2} {
		list, err := store.ListBookings(ctx, id)
		require.NoError(t, err)
		for _, b := range list {
			assert.False(t, ids[b.ID], "booking id %d reused", b.ID)
			ids[b.ID] = true
		}
	}
}

func TestMemoryStoreZeroSeatCourseIsAlwaysFull(t *testing.T) {
	store := seededStore(t, 0)
	err := store.AdmitBooking(context.Background(), booking(1, "late"))
	assert.ErrorIs(t, err, apperrors.ErrCourseFull)
}

func TestMemoryStoreSeedIsIdempotentAndResettable(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t, 10)
	require.NoError(t, store.AdmitBooking(ctx, booking(1, "keeper")))

	again := []models.Course{
		{ID: 1, Name: "Artificial Intelligence (AI)", TotalSeats: 50},
		{ID: 7, Name: "Artificial Intelligence (AI)", TotalSeats: 5},
	}
	require.NoError(t, store.SeedCourses(ctx, again, false))

	course, err := store.GetCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, course.TotalSeats, "existing course untouched")
	_, err = store.GetCourse(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound, "duplicate name skipped")

	bookings, err := store.ListBookings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	require.NoError(t, store.SeedCourses(ctx, again[:1], true))
	bookings, err = store.ListBookings(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, bookings)
	course, err = store.GetCourse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, course.TotalSeats)
}

func TestMemoryStoreUnknownCourseReads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetCourseSummary(ctx, 3)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	_, err = store.ListBookings(ctx, 3)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	list, err := store.ListCourseSummaries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	store := seededStore(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.AdmitBooking(ctx, booking(1, "late")), context.Canceled)
	assert.ErrorIs(t, store.Ping(ctx), context.Canceled)

	summary, err := store.GetCourseSummary(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, summary.BookedCount)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
)

func TestCourseServiceReflectsLiveCounts(t *testing.T) {
	ctx := context.Background()
	store := seededMemoryStore(t)
	svc := NewCourseService(store, time.Second)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AdmitBooking(ctx, &models.Booking{UserName: "u", CourseID: 2, Email: "e", Phone: "p"}))
	}

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, int64(1), courses[0].ID)
	assert.Equal(t, 0, courses[0].BookedCount)
	assert.Equal(t, 3, courses[1].BookedCount)
	assert.Equal(t, 7, courses[1].AvailableSeats())

	course, err := svc.GetCourse(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Quantum Computing", course.Name)

	bookings, err := svc.ListBookings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.Less(t, bookings[0].ID, bookings[2].ID)
}

func TestCourseServiceNotFound(t *testing.T) {
	svc := NewCourseService(seededMemoryStore(t), time.Second)

	_, err := svc.GetCourse(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
	_, err = svc.ListBookings(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestCourseServiceHidesDriverErrors(t *testing.T) {
	svc := NewCourseService(brokenStore{}, time.Second)

	_, err := svc.ListCourses(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
}

package repositories

import (
	"context"

	"github.com/yigit/coursebooking/internal/app/models"
)

// Store is the single source of truth for courses, bookings and seat counts.
// Implementations must make AdmitBooking atomic per course: no two callers
// may both observe a free seat when only one remains.
type Store interface {
	GetCourse(ctx context.Context, id int64) (*models.Course, error)
	GetCourseSummary(ctx context.Context, id int64) (*models.CourseSummary, error)
	ListCourseSummaries(ctx context.Context) ([]models.CourseSummary, error)
	ListBookings(ctx context.Context, courseID int64) ([]models.Booking, error)

	// AdmitBooking checks capacity and inserts b in one unit. On success b.ID
	// and b.CreatedAt are filled in. Returns apperrors.ErrCourseNotFound or
	// apperrors.ErrCourseFull for admission failures.
	AdmitBooking(ctx context.Context, b *models.Booking) error

	// SeedCourses inserts courses that do not exist yet. With reset, all
	// bookings and courses are removed first.
	SeedCourses(ctx context.Context, courses []models.Course, reset bool) error

	Ping(ctx context.Context) error
	Close()
}

package services

import (
	"context"
	"time"

	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/app/repositories"
)

// CourseService defines the read-only course and booking queries
type CourseService interface {
	ListCourses(ctx context.Context) ([]models.CourseSummary, error)
	GetCourse(ctx context.Context, courseID int64) (*models.CourseSummary, error)
	ListBookings(ctx context.Context, courseID int64) ([]models.Booking, error)
}

type courseServiceImpl struct {
	store   repositories.Store
	timeout time.Duration
}

// NewCourseService creates a new course service instance
func NewCourseService(store repositories.Store, timeout time.Duration) CourseService {
	return &courseServiceImpl{store: store, timeout: timeout}
}

func (s *courseServiceImpl) ListCourses(ctx context.Context) ([]models.CourseSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	courses, err := s.store.ListCourseSummaries(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return courses, nil
}

func (s *courseServiceImpl) GetCourse(ctx context.Context, courseID int64) (*models.CourseSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	course, err := s.store.GetCourseSummary(ctx, courseID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return course, nil
}

func (s *courseServiceImpl) ListBookings(ctx context.Context, courseID int64) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bookings, err := s.store.ListBookings(ctx, courseID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return bookings, nil
}

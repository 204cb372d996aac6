package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/app/models/dto"
	"github.com/yigit/coursebooking/internal/app/repositories"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/dberrors"
	"github.com/yigit/coursebooking/internal/pkg/mq"
)

// User-facing outcomes of a successful booking
const (
	MessageConfirmationSent    = "Booking successful! Confirmation email sent."
	MessageConfirmationFailed  = "Booking successful! But confirmation email could not be sent."
	MessageConfirmationPending = "Booking successful! Confirmation email will be sent shortly."
)

const publishTimeout = 2 * time.Second

// BookingRequest is an admission request. Text fields are trimmed before validation.
type BookingRequest struct {
	UserName      string  `json:"user_name" validate:"required"`
	CourseID      *int64  `json:"course_id" validate:"required"`
	Email         string  `json:"email" validate:"required"`
	Phone         string  `json:"phone" validate:"required"`
	PaymentMethod *string `json:"payment_method"`
	PaymentID     *string `json:"payment_id"`
}

// AdmissionResult describes a committed booking.
type AdmissionResult struct {
	Booking models.Booking
	Course  models.Course
	// ConfirmationSent is meaningful only when ConfirmationPending is false
	ConfirmationSent    bool
	ConfirmationPending bool
}

// Message returns the response text for the caller.
func (r *AdmissionResult) Message() string {
	switch {
	case r.ConfirmationPending:
		return MessageConfirmationPending
	case r.ConfirmationSent:
		return MessageConfirmationSent
	default:
		return MessageConfirmationFailed
	}
}

// BookingCreatedEvent is published after each admission
type BookingCreatedEvent struct {
	BookingID int64     `json:"booking_id"`
	CourseID  int64     `json:"course_id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SeatFeed receives the new seat state of a course after an admission.
type SeatFeed interface {
	BroadcastSeats(course any)
}

// BookingService admits bookings
type BookingService interface {
	Book(ctx context.Context, req BookingRequest) (*AdmissionResult, error)
}

// BookingServiceConfig holds the admission time bounds
type BookingServiceConfig struct {
	StoreTimeout     time.Duration
	ConfirmationWait time.Duration
}

type bookingServiceImpl struct {
	store     repositories.Store
	notifier  NotificationService
	publisher mq.Publisher
	feed      SeatFeed
	validate  *validator.Validate
	config    BookingServiceConfig
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewBookingService creates a new booking service instance
func NewBookingService(
	store repositories.Store,
	notifier NotificationService,
	publisher mq.Publisher,
	feed SeatFeed,
	cfg BookingServiceConfig,
	logger zerolog.Logger,
) BookingService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 5 * time.Second
	}
	if cfg.ConfirmationWait <= 0 {
		cfg.ConfirmationWait = 10 * time.Second
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &bookingServiceImpl{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		feed:      feed,
		validate:  v,
		config:    cfg,
		tracer:    otel.Tracer("github.com/yigit/coursebooking/internal/app/services"),
		logger:    logger,
	}
}

func (s *bookingServiceImpl) validateRequest(req *BookingRequest) error {
	req.UserName = strings.TrimSpace(req.UserName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.NewValidationError(fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", ")))
}

// Book validates req, admits it atomically and schedules notifications.
func (s *bookingServiceImpl) Book(ctx context.Context, req BookingRequest) (*AdmissionResult, error) {
	ctx, span := s.tracer.Start(ctx, "booking.admit")
	defer span.End()

	if err := s.validateRequest(&req); err != nil {
		span.SetAttributes(attribute.String("booking.outcome", "invalid"))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("course.id", *req.CourseID))

	booking, course, err := s.admit(ctx, req)
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, apperrors.ErrCourseNotFound):
			outcome = "not_found"
		case errors.Is(err, apperrors.ErrCourseFull):
			outcome = "full"
		case dberrors.IsTimeout(err):
			outcome = "timeout"
			span.RecordError(err)
			span.SetStatus(codes.Error, "store timed out")
			s.logger.Warn().Err(err).Int64("courseID", *req.CourseID).Dur("timeout", s.config.StoreTimeout).Msg("Booking admission timed out")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "admission failed")
			s.logger.Error().Err(err).Int64("courseID", *req.CourseID).Msg("Booking admission failed")
		}
		span.SetAttributes(attribute.String("booking.outcome", outcome))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("booking.outcome", "admitted"),
		attribute.Int64("booking.id", booking.ID),
	)

	s.logger.Info().
		Int64("bookingID", booking.ID).
		Int64("courseID", course.ID).
		Str("userName", booking.UserName).
		Msg("Booking admitted")

	// The booking is committed; nothing below may fail it.
	detached := context.WithoutCancel(ctx)

	confirmation := s.notifier.Dispatch(detached, Notification{
		BookingID:    booking.ID,
		StudentName:  booking.UserName,
		StudentEmail: booking.Email,
		StudentPhone: booking.Phone,
		CourseID:     course.ID,
		CourseName:   course.Name,
	})

	s.publishCreated(detached, booking)
	s.broadcastSeats(detached, course.ID)

	result := &AdmissionResult{Booking: *booking, Course: *course}
	s.awaitConfirmation(ctx, confirmation, result)
	return result, nil
}

func (s *bookingServiceImpl) admit(ctx context.Context, req BookingRequest) (*models.Booking, *models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	course, err := s.store.GetCourse(ctx, *req.CourseID)
	if err != nil {
		return nil, nil, mapStoreError(err)
	}

	booking := &models.Booking{
		UserName:      req.UserName,
		CourseID:      course.ID,
		Email:         req.Email,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		PaymentID:     req.PaymentID,
	}
	if err := s.store.AdmitBooking(ctx, booking); err != nil {
		return nil, nil, mapStoreError(err)
	}
	return booking, course, nil
}

func (s *bookingServiceImpl) publishCreated(ctx context.Context, b *models.Booking) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := s.publisher.PublishJSON(ctx, mq.KeyBookingCreated, BookingCreatedEvent{
		BookingID: b.ID,
		CourseID:  b.CourseID,
		UserName:  b.UserName,
		Email:     b.Email,
		CreatedAt: b.CreatedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("bookingID", b.ID).Msg("Failed to publish booking event")
	}
}

func (s *bookingServiceImpl) broadcastSeats(ctx context.Context, courseID int64) {
	if s.feed == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout)
	defer cancel()

	summary, err := s.store.GetCourseSummary(ctx, courseID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("courseID", courseID).Msg("Failed to load seats for live feed")
		return
	}
	s.feed.BroadcastSeats(dto.NewCourseResponse(*summary))
}

func (s *bookingServiceImpl) awaitConfirmation(ctx context.Context, confirmation <-chan bool, result *AdmissionResult) {
	timer := time.NewTimer(s.config.ConfirmationWait)
	defer timer.Stop()

	select {
	case sent := <-confirmation:
		result.ConfirmationSent = sent
	case <-timer.C:
		result.ConfirmationPending = true
	case <-ctx.Done():
		result.ConfirmationPending = true
	}
}

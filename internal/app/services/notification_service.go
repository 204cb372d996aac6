package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/config"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/email"
	"github.com/yigit/coursebooking/internal/pkg/filestorage"
)

// Outbox artifact kinds
const (
	KindConfirmation = "confirmation"
	KindOwnerAlert   = "owner"
)

// Notification is the post-commit work queued for one booking.
type Notification struct {
	BookingID    int64
	StudentName  string
	StudentEmail string
	StudentPhone string
	CourseID     int64
	CourseName   string
}

// RedeliveryResult summarises one outbox redelivery run.
type RedeliveryResult struct {
	Attempted int
	Delivered int
	Remaining int
}

// NotificationService sends booking emails. Send methods report whether the
// live transport accepted the message and never return an error: a failed or
// unconfigured transport leaves a copy in the outbox instead.
type NotificationService interface {
	SendConfirmation(ctx context.Context, recipient, studentName, courseName string, courseID int64) bool
	SendOwnerAlert(ctx context.Context, studentName, studentEmail, studentPhone, courseName string, courseID int64) bool

	// Dispatch sends the confirmation and then the owner alert in the
	// background. The channel yields the confirmation outcome once.
	Dispatch(ctx context.Context, n Notification) <-chan bool

	// Drain waits for in-flight dispatches or until ctx is done.
	Drain(ctx context.Context) error

	// Redeliver retries every outbox artifact once over the live transport.
	Redeliver(ctx context.Context) (RedeliveryResult, error)

	TransportConfigured() bool
}

type notificationServiceImpl struct {
	config     config.MailConfig
	sender     email.Sender
	outbox     filestorage.MessageStore
	schedule   models.ScheduleTable
	logger     zerolog.Logger
	retryDelay time.Duration

	// mu guards draining so no dispatch joins wg once Drain is waiting
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup

	// redeliverMu serialises outbox redelivery runs
	redeliverMu sync.Mutex
}

// NewNotificationService creates the dispatcher. sender is ignored when
// cfg has no mail host.
func NewNotificationService(
	cfg config.MailConfig,
	sender email.Sender,
	outbox filestorage.MessageStore,
	schedule models.ScheduleTable,
	logger zerolog.Logger,
) NotificationService {
	if !cfg.TransportConfigured() {
		sender = nil
	}
	return &notificationServiceImpl{
		config:     cfg,
		sender:     sender,
		outbox:     outbox,
		schedule:   schedule,
		logger:     logger,
		retryDelay: time.Second,
	}
}

func (s *notificationServiceImpl) TransportConfigured() bool {
	return s.sender != nil
}

func (s *notificationServiceImpl) details(studentName, studentEmail, studentPhone, courseName string, courseID int64) email.BookingDetails {
	slot := s.schedule.Lookup(courseID)
	return email.BookingDetails{
		StudentName:  studentName,
		StudentEmail: studentEmail,
		StudentPhone: studentPhone,
		CourseID:     courseID,
		CourseName:   courseName,
		Date:         slot.Date,
		StartTime:    slot.Start,
		EndTime:      slot.End,
		FromName:     s.config.FromName,
	}
}

// SendConfirmation emails the student that their seat is booked
func (s *notificationServiceImpl) SendConfirmation(ctx context.Context, recipient, studentName, courseName string, courseID int64) bool {
	msg, err := email.RenderConfirmation(recipient, s.details(studentName, recipient, "", courseName, courseID))
	if err != nil {
		s.logger.Error().Err(err).Int64("courseID", courseID).Msg("Failed to render confirmation email")
		return false
	}
	return s.deliver(ctx, KindConfirmation, courseID, msg)
}

// SendOwnerAlert emails the course owner about a new booking
func (s *notificationServiceImpl) SendOwnerAlert(ctx context.Context, studentName, studentEmail, studentPhone, courseName string, courseID int64) bool {
	if s.config.OwnerEmail == "" {
		s.logger.Debug().Int64("courseID", courseID).Msg("Owner email not configured, skipping owner notification")
		return false
	}

	msg, err := email.RenderOwnerAlert(s.config.OwnerEmail, s.details(studentName, studentEmail, studentPhone, courseName, courseID))
	if err != nil {
		s.logger.Error().Err(err).Int64("courseID", courseID).Msg("Failed to render owner alert")
		return false
	}
	return s.deliver(ctx, KindOwnerAlert, courseID, msg)
}

func (s *notificationServiceImpl) deliver(ctx context.Context, kind string, courseID int64, msg email.Message) bool {
	if s.sender == nil {
		s.saveFallback(kind, courseID, msg, "SMTP not configured")
		return false
	}

	attempts := 1 + s.config.Retries
	for i := 1; i <= attempts; i++ {
		err := s.sender.Send(ctx, msg)
		if err == nil {
			s.logger.Info().Str("kind", kind).Int64("courseID", courseID).Str("to", msg.To).Msg("Email sent")
			return true
		}

		s.logger.Warn().Err(err).
			Str("kind", kind).
			Int64("courseID", courseID).
			Int("attempt", i).
			Int("attempts", attempts).
			Msg("Failed to send email via SMTP")

		if i < attempts && !sleepCtx(ctx, s.retryDelay) {
			break
		}
	}

	s.saveFallback(kind, courseID, msg, "SMTP error")
	return false
}

func (s *notificationServiceImpl) saveFallback(kind string, courseID int64, msg email.Message, reason string) {
	path, err := s.outbox.SaveMessage(courseID, kind, msg.To, msg.Subject, msg.HTML)
	if err != nil {
		s.logger.Error().Err(err).Str("kind", kind).Int64("courseID", courseID).Msg("Failed to save email to outbox")
		return
	}
	s.logger.Info().Str("path", path).Str("reason", reason).Msg("Email saved to outbox")
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Dispatch sends both notifications for a committed booking. Cancellation of
// ctx does not stop the work. Once Drain has started the work runs inline
// before Dispatch returns.
func (s *notificationServiceImpl) Dispatch(ctx context.Context, n Notification) <-chan bool {
	ctx = context.WithoutCancel(ctx)
	result := make(chan bool, 1)

	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		s.logger.Warn().Int64("bookingID", n.BookingID).Msg("Dispatch after drain started, sending inline")
		s.notify(ctx, n, result)
		return result
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.notify(ctx, n, result)
	}()

	return result
}

func (s *notificationServiceImpl) notify(ctx context.Context, n Notification, result chan<- bool) {
	sent := s.SendConfirmation(ctx, n.StudentEmail, n.StudentName, n.CourseName, n.CourseID)
	result <- sent
	close(result)

	s.SendOwnerAlert(ctx, n.StudentName, n.StudentEmail, n.StudentPhone, n.CourseName, n.CourseID)

	s.logger.Debug().
		Int64("bookingID", n.BookingID).
		Bool("confirmationSent", sent).
		Msg("Booking notifications processed")
}

func (s *notificationServiceImpl) Drain(ctx context.Context) error {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn().Msg("Shutdown deadline reached with notifications still in flight")
		return ctx.Err()
	}
}

func (s *notificationServiceImpl) Redeliver(ctx context.Context) (RedeliveryResult, error) {
	var result RedeliveryResult
	if s.sender == nil {
		return result, apperrors.ErrMailNotConfigured
	}

	s.redeliverMu.Lock()
	defer s.redeliverMu.Unlock()

	artifacts, err := s.outbox.List()
	if err != nil {
		return result, err
	}

	for _, a := range artifacts {
		if ctx.Err() != nil {
			break
		}

		stored, err := s.outbox.Read(a.Name)
		if errors.Is(err, apperrors.ErrArtifactNotFound) {
			continue
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("name", a.Name).Msg("Skipping unreadable outbox artifact")
			continue
		}

		result.Attempted++
		msg := email.Message{
			To:      stored.Recipient,
			Subject: stored.Subject,
			HTML:    stored.Body,
			Text:    email.TextFromHTML(stored.Body),
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Warn().Err(err).Str("name", a.Name).Msg("Redelivery failed")
			continue
		}
		if err := s.outbox.Delete(a.Name); err != nil {
			s.logger.Error().Err(err).Str("name", a.Name).Msg("Delivered artifact could not be removed")
			continue
		}
		result.Delivered++
	}

	remaining, err := s.outbox.List()
	if err != nil {
		return result, err
	}
	result.Remaining = len(remaining)

	s.logger.Info().
		Int("attempted", result.Attempted).
		Int("delivered", result.Delivered).
		Int("remaining", result.Remaining).
		Msg("Outbox redelivery finished")
	return result, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/app/repositories"
	"github.com/yigit/coursebooking/internal/config"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/email"
	"github.com/yigit/coursebooking/internal/pkg/filestorage"
)

// fakeSender records messages. failures is the number of leading Send calls
// that fail; block holds every Send until it is closed.
type fakeSender struct {
	mu       sync.Mutex
	sent     []email.Message
	calls    int
	failures int
	failAll  bool
	block    chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, msg email.Message) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll || f.calls <= f.failures {
		return fmt.Errorf("%w: connection refused", apperrors.ErrMailTransport)
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Sent() []email.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]email.Message(nil), f.sent...)
}

func (f *fakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type spyPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
	err    error
}

func (p *spyPublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.events = append(p.events, v)
	return p.err
}

func (p *spyPublisher) Close() error { return nil }

type spyFeed struct {
	mu      sync.Mutex
	updates []any
}

func (f *spyFeed) BroadcastSeats(course any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, course)
}

func (f *spyFeed) Updates() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]any(nil), f.updates...)
}

// brokenStore fails every call with a driver-level error.
type brokenStore struct {
	repositories.Store
}

var errDriver = errors.New("dial tcp 10.0.0.5:5432: connection refused")

func (brokenStore) GetCourse(context.Context, int64) (*models.Course, error) { return nil, errDriver }
func (brokenStore) ListCourseSummaries(context.Context) ([]models.CourseSummary, error) {
	return nil, errDriver
}

func mailConfig(host string) config.MailConfig {
	return config.MailConfig{
		Host:      host,
		Port:      587,
		FromEmail: "bookings@example.com",
		FromName:  "Course Team",
		Timeout:   time.Second,
		OutboxDir: "outgoing_emails",
	}
}

func newOutbox(t *testing.T) *filestorage.LocalStorage {
	t.Helper()
	ls, err := filestorage.NewLocalStorage(filepath.Join(t.TempDir(), "outgoing_emails"))
	require.NoError(t, err)
	return ls
}

func newNotifier(cfg config.MailConfig, sender email.Sender, outbox filestorage.MessageStore) *notificationServiceImpl {
	s := NewNotificationService(cfg, sender, outbox, models.ScheduleTable{
		1: {Start: "5:00 PM", End: "5:30 PM", Date: "December 1, 2025"},
	}, zerolog.Nop()).(*notificationServiceImpl)
	s.retryDelay = 0
	return s
}

func seededMemoryStore(t *testing.T) *repositories.MemoryStore {
	t.Helper()
	store := repositories.NewMemoryStore()
	require.NoError(t, store.SeedCourses(context.Background(), []models.Course{
		{ID: 1, Name: "Artificial Intelligence (AI)", TotalSeats: 10},
		{ID: 2, Name: "Quantum Computing", TotalSeats: 10},
	}, false))
	return store
}

func int64Ptr(v int64) *int64 { return &v }

package repositories_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/app/migrations"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/app/repositories"
	"github.com/yigit/coursebooking/internal/db"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/seed"
)

// Set COURSEBOOKING_TEST_DATABASE_URL to a disposable database to run these.
// The tests reset all courses and bookings.
const testDatabaseURLEnv = "COURSEBOOKING_TEST_DATABASE_URL"

func postgresStore(t *testing.T) *repositories.PostgresStore {
	t.Helper()
	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(url)
	require.NoError(t, err)
	poolConfig.MaxConns = 40
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	require.NoError(t, migrations.NewMigrator(pool, zerolog.Nop()).MigrateFromDirectory(ctx, "../../../migrations"))

	store := repositories.NewPostgresStore(&db.PostgresDB{Pool: pool})
	t.Cleanup(store.Close)
	require.NoError(t, seed.CreateDefaultData(ctx, store, true, zerolog.Nop()))
	return store
}

func TestPostgresStoreConcurrentAdmissionFillsExactlyCapacity(t *testing.T) {
	store := postgresStore(t)
	ctx := context.Background()

	const callers = 30
	var admitted, full atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := store.AdmitBooking(ctx, &models.Booking{
				UserName: "racer",
				CourseID: 1,
				Email:    "racer@example.com",
				Phone:    "555-0100",
			})
			switch {
			case err == nil:
				admitted.Add(1)
			case assert.ErrorIs(t, err, apperrors.ErrCourseFull):
				full.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(10), admitted.Load())
	assert.Equal(t, int64(callers-10), full.Load())

	summary, err := store.GetCourseSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.BookedCount)
	other, err := store.GetCourseSummary(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, other.BookedCount)
}

func TestPostgresStoreUnknownCourse(t *testing.T) {
	store := postgresStore(t)

	err := store.AdmitBooking(context.Background(), &models.Booking{
		UserName: "ghost",
		CourseID: 99,
		Email:    "ghost@example.com",
		Phone:    "555-0100",
	})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestPostgresStoreAcceptsLongFields(t *testing.T) {
	store := postgresStore(t)
	ctx := context.Background()

	long := strings.Repeat("x", 300)
	method := strings.Repeat("m", 120)
	b := &models.Booking{
		UserName:      long,
		CourseID:      2,
		Email:         strings.Repeat("e", 200) + "@example.com",
		Phone:         strings.Repeat("5", 80),
		PaymentMethod: &method,
	}
	require.NoError(t, store.AdmitBooking(ctx, b))
	assert.NotZero(t, b.ID)

	bookings, err := store.ListBookings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, long, bookings[0].UserName)
	require.NotNil(t, bookings[0].PaymentMethod)
	assert.Equal(t, method, *bookings[0].PaymentMethod)
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursebooking/internal/app/models"
	"github.com/yigit/coursebooking/internal/db"
	"github.com/yigit/coursebooking/internal/pkg/apperrors"
	"github.com/yigit/coursebooking/internal/pkg/dberrors"
)

// PostgresStore implements Store on PostgreSQL. Admission serializes per
// course with a row lock on the course taken inside the booking transaction.
type PostgresStore struct {
	db *db.PostgresDB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(database *db.PostgresDB) *PostgresStore {
	return &PostgresStore{db: database}
}

func selectCourseSummaryQuery() squirrel.SelectBuilder {
	return squirrel.Select(
		"c.id", "c.name", "c.description", "c.total_seats",
		"COUNT(b.id) AS booked_count",
	).
		From("courses c").
		LeftJoin("bookings b ON b.course_id = c.id").
		GroupBy("c.id").
		PlaceholderFormat(squirrel.Dollar)
}

func lockCourseQuery(courseID int64) (string, []interface{}, error) {
	return squirrel.Select("total_seats").
		From("courses").
		Where(squirrel.Eq{"id": courseID}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func countBookingsQuery(courseID int64) (string, []interface{}, error) {
	return squirrel.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"course_id": courseID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func insertBookingQuery(b *models.Booking) (string, []interface{}, error) {
	return squirrel.Insert("bookings").
		Columns("user_name", "course_id", "email", "phone", "payment_method", "payment_id").
		Values(b.UserName, b.CourseID, b.Email, b.Phone, b.PaymentMethod, b.PaymentID).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func insertCoursesQuery(courses []models.Course) (string, []interface{}, error) {
	builder := squirrel.Insert("courses").
		Columns("id", "name", "description", "total_seats").
		Suffix("ON CONFLICT DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)
	for _, c := range courses {
		builder = builder.Values(c.ID, c.Name, c.Description, c.TotalSeats)
	}
	return builder.ToSql()
}

func scanCourseSummary(row pgx.Row, s *models.CourseSummary) error {
	return row.Scan(&s.ID, &s.Name, &s.Description, &s.TotalSeats, &s.BookedCount)
}

// GetCourse returns a course by id
func (s *PostgresStore) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := squirrel.Select("id", "name", "description", "total_seats").
		From("courses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course query: %w", err)
	}

	var c models.Course
	err = s.db.Pool.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.Name, &c.Description, &c.TotalSeats)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}
	return &c, nil
}

// GetCourseSummary returns a course with its booking count
func (s *PostgresStore) GetCourseSummary(ctx context.Context, id int64) (*models.CourseSummary, error) {
	sql, args, err := selectCourseSummaryQuery().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course summary query: %w", err)
	}

	var summary models.CourseSummary
	err = scanCourseSummary(s.db.Pool.QueryRow(ctx, sql, args...), &summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course summary %d: %w", id, err)
	}
	return &summary, nil
}

// ListCourseSummaries returns all courses ordered by id
func (s *PostgresStore) ListCourseSummaries(ctx context.Context) ([]models.CourseSummary, error) {
	sql, args, err := selectCourseSummaryQuery().OrderBy("c.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build course list query: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	summaries := []models.CourseSummary{}
	for rows.Next() {
		var summary models.CourseSummary
		if err := scanCourseSummary(rows, &summary); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return summaries, nil
}

// ListBookings returns the bookings of a course ordered by id
func (s *PostgresStore) ListBookings(ctx context.Context, courseID int64) ([]models.Booking, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	sql, args, err := squirrel.Select(
		"id", "user_name", "course_id", "email", "phone", "payment_method", "payment_id", "created_at",
	).
		From("bookings").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build booking list query: %w", err)
	}

	rows, err := s.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(&b.ID, &b.UserName, &b.CourseID, &b.Email, &b.Phone,
			&b.PaymentMethod, &b.PaymentID, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

// AdmitBooking locks the course row, counts its bookings and inserts b when
// a seat is free. Concurrent admissions for the same course queue on the lock.
func (s *PostgresStore) AdmitBooking(ctx context.Context, b *models.Booking) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := lockCourseQuery(b.CourseID)
		if err != nil {
			return fmt.Errorf("build lock query: %w", err)
		}

		var totalSeats int
		err = tx.QueryRow(ctx, sql, args...).Scan(&totalSeats)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCourseNotFound
		}
		if err != nil {
			return fmt.Errorf("lock course %d: %w", b.CourseID, err)
		}

		sql, args, err = countBookingsQuery(b.CourseID)
		if err != nil {
			return fmt.Errorf("build count query: %w", err)
		}

		var booked int
		if err := tx.QueryRow(ctx, sql, args...).Scan(&booked); err != nil {
			return fmt.Errorf("count bookings for course %d: %w", b.CourseID, err)
		}
		if booked >= totalSeats {
			return apperrors.ErrCourseFull
		}

		sql, args, err = insertBookingQuery(b)
		if err != nil {
			return fmt.Errorf("build insert query: %w", err)
		}

		err = tx.QueryRow(ctx, sql, args...).Scan(&b.ID, &b.CreatedAt)
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrCourseNotFound
		}
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
}

// SeedCourses inserts the given courses, skipping ids or names that already exist
func (s *PostgresStore) SeedCourses(ctx context.Context, courses []models.Course, reset bool) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if reset {
			if _, err := tx.Exec(ctx, "DELETE FROM bookings"); err != nil {
				return fmt.Errorf("clear bookings: %w", err)
			}
			if _, err := tx.Exec(ctx, "DELETE FROM courses"); err != nil {
				return fmt.Errorf("clear courses: %w", err)
			}
		}

		if len(courses) == 0 {
			return nil
		}

		sql, args, err := insertCoursesQuery(courses)
		if err != nil {
			return fmt.Errorf("build seed query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("seed courses: %w", err)
		}
		return nil
	})
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	s.db.Close()
}

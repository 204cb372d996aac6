package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursebooking/internal/app/models"
)

func TestLockCourseQueryTakesRowLock(t *testing.T) {
	sql, args, err := lockCourseQuery(2)
	require.NoError(t, err)
	assert.Equal(t, "SELECT total_seats FROM courses WHERE id = $1 FOR UPDATE", sql)
	assert.Equal(t, []interface{}{int64(2)}, args)
}

func TestCountBookingsQuery(t *testing.T) {
	sql, args, err := countBookingsQuery(1)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM bookings WHERE course_id = $1", sql)
	assert.Equal(t, []interface{}{int64(1)}, args)
}

func TestInsertBookingQueryReturnsGeneratedFields(t *testing.T) {
	method := "card"
	sql, args, err := insertBookingQuery(&models.Booking{
		UserName:      "Ada",
		CourseID:      1,
		Email:         "ada@example.com",
		Phone:         "555-0100",
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO bookings (user_name,course_id,email,phone,payment_method,payment_id) "+
			"VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at", sql)
	assert.Len(t, args, 6)
}

func TestInsertCoursesQuerySkipsConflicts(t *testing.T) {
	sql, args, err := insertCoursesQuery([]models.Course{
		{ID: 1, Name: "Artificial Intelligence (AI)", TotalSeats: 10},
		{ID: 2, Name: "Quantum Computing", TotalSeats: 10},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "VALUES ($1,$2,$3,$4),($5,$6,$7,$8) ON CONFLICT DO NOTHING")
	assert.Len(t, args, 8)
}

func TestCourseSummaryQueryJoinsBookings(t *testing.T) {
	sql, _, err := selectCourseSummaryQuery().OrderBy("c.id ASC").ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT c.id, c.name, c.description, c.total_seats, COUNT(b.id) AS booked_count "+
			"FROM courses c LEFT JOIN bookings b ON b.course_id = c.id GROUP BY c.id ORDER BY c.id ASC", sql)
}

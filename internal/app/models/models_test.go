package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCourseSummarySeats(t *testing.T) {
	s := CourseSummary{Course: Course{ID: 1, TotalSeats: 10}, BookedCount: 7}
	assert.Equal(t, 3, s.AvailableSeats())
	assert.False(t, s.IsFull())

	s.BookedCount = 10
	assert.Equal(t, 0, s.AvailableSeats())
	assert.True(t, s.IsFull())

	empty := CourseSummary{Course: Course{ID: 2, TotalSeats: 0}}
	assert.True(t, empty.IsFull())
	assert.Equal(t, 0, empty.AvailableSeats())
}

func TestScheduleLookup(t *testing.T) {
	table := ScheduleTable{
		1: {Start: "5:00 PM", End: "5:30 PM", Date: "December 1, 2025"},
		2: {Start: "5:45 PM"},
	}

	assert.Equal(t, CourseSchedule{Start: "5:00 PM", End: "5:30 PM", Date: "December 1, 2025"}, table.Lookup(1))
	assert.Equal(t, CourseSchedule{Start: "5:45 PM", End: ScheduleTBA, Date: ScheduleTBA}, table.Lookup(2))
	assert.Equal(t, CourseSchedule{Start: ScheduleTBA, End: ScheduleTBA, Date: ScheduleTBA}, table.Lookup(99))

	var none ScheduleTable
	assert.Equal(t, ScheduleTBA, none.Lookup(1).Date)
}

package models

// Course is a bookable course with a fixed seat capacity.
type Course struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"` // Nullable
	TotalSeats  int     `json:"total_seats" db:"total_seats"`
}

// CourseSummary is a course together with its live booking count.
type CourseSummary struct {
	Course
	BookedCount int `json:"booked_count"`
}

// AvailableSeats returns the number of seats that can still be booked.
func (s CourseSummary) AvailableSeats() int {
	if s.BookedCount >= s.TotalSeats {
		return 0
	}
	return s.TotalSeats - s.BookedCount
}

// IsFull returns true when no seats remain.
func (s CourseSummary) IsFull() bool {
	return s.BookedCount >= s.TotalSeats
}

// CourseSchedule is the session slot shown in notification emails.
type CourseSchedule struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
	Date  string `yaml:"date" json:"date"`
}

// ScheduleTBA is used for courses without a known slot.
const ScheduleTBA = "TBA"

// ScheduleTable maps course IDs to their session slot.
type ScheduleTable map[int64]CourseSchedule

// Lookup returns the slot for a course, with TBA for anything unknown.
func (t ScheduleTable) Lookup(courseID int64) CourseSchedule {
	s, ok := t[courseID]
	if !ok {
		return CourseSchedule{Start: ScheduleTBA, End: ScheduleTBA, Date: ScheduleTBA}
	}
	if s.Start == "" {
		s.Start = ScheduleTBA
	}
	if s.End == "" {
		s.End = ScheduleTBA
	}
	if s.Date == "" {
		s.Date = ScheduleTBA
	}
	return s
}

package dto

import "github.com/yigit/coursebooking/internal/app/models"

// CourseResponse is one entry of GET /courses.
type CourseResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	TotalSeats     int     `json:"total_seats"`
	BookedCount    int     `json:"booked_count"`
	AvailableSeats int     `json:"available_seats"`
}

// BookingResponse is one entry of GET /courses/{id}/bookings.
type BookingResponse struct {
	ID       int64  `json:"id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// NewCourseResponse maps a summary onto its wire form.
func NewCourseResponse(s models.CourseSummary) CourseResponse {
	return CourseResponse{
		ID:             s.ID,
		Name:           s.Name,
		Description:    s.Description,
		TotalSeats:     s.TotalSeats,
		BookedCount:    s.BookedCount,
		AvailableSeats: s.AvailableSeats(),
	}
}

// NewCourseListResponse never returns nil so the list encodes as [].
func NewCourseListResponse(summaries []models.CourseSummary) []CourseResponse {
	out := make([]CourseResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, NewCourseResponse(s))
	}
	return out
}

// NewBookingListResponse drops payment metadata and timestamps.
func NewBookingListResponse(bookings []models.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingResponse{
			ID:       b.ID,
			UserName: b.UserName,
			Email:    b.Email,
			Phone:    b.Phone,
		})
	}
	return out
}

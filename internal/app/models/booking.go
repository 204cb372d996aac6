package models

import "time"

// Booking is one committed seat reservation.
type Booking struct {
	ID       int64  `json:"id" db:"id"`
	UserName string `json:"user_name" db:"user_name"`
	CourseID int64  `json:"course_id" db:"course_id"`
	Email    string `json:"email" db:"email"`
	Phone    string `json:"phone" db:"phone"`
	// Payment fields are opaque metadata; nothing validates or settles them.
	PaymentMethod *string   `json:"payment_method,omitempty" db:"payment_method"`
	PaymentID     *string   `json:"payment_id,omitempty" db:"payment_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

package dto

// BookRequest is the body of POST /book. Email and phone are accepted as
// plain strings; only presence is checked.
type BookRequest struct {
	UserName      string  `json:"user_name" binding:"required"`
	CourseID      *int64  `json:"course_id" binding:"required"`
	Email         string  `json:"email" binding:"required"`
	Phone         string  `json:"phone" binding:"required"`
	PaymentMethod *string `json:"payment_method"`
	PaymentID     *string `json:"payment_id"`
}

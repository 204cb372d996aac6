package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/coursebooking/internal/app/models/dto"
	"github.com/yigit/coursebooking/internal/app/services"
	"github.com/yigit/coursebooking/internal/middleware"
)

// BookingController handles seat reservations
type BookingController struct {
	bookingService services.BookingService
	logger         zerolog.Logger
}

// NewBookingController creates a new BookingController
func NewBookingController(bookingService services.BookingService, logger zerolog.Logger) *BookingController {
	return &BookingController{
		bookingService: bookingService,
		logger:         logger,
	}
}

// Book reserves a seat in a course
// @Summary Book a seat
// @Description Admits the booking if the course has a free seat. A confirmation email is sent to the student and an alert to the owner; mail problems never fail the booking.
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body dto.BookRequest true "Booking details"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed or course is full"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /book [post]
func (c *BookingController) Book(ctx *gin.Context) {
	var req dto.BookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid booking request payload")
		errorDetail := dto.HandleValidationError(err)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.bookingService.Book(ctx.Request.Context(), services.BookingRequest{
		UserName:      req.UserName,
		CourseID:      req.CourseID,
		Email:         req.Email,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		PaymentID:     req.PaymentID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: result.Message()})
}

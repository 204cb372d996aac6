package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/coursebooking/internal/app/controllers"
	"github.com/yigit/coursebooking/internal/middleware"
	"github.com/yigit/coursebooking/internal/pkg/websocket"
)

// Controllers groups the handlers mounted by SetupRouter. Admin and
// AuthMiddleware are nil when the operator API is disabled; Live is nil
// when the seat feed is not wired.
type Controllers struct {
	Course         *controllers.CourseController
	Booking        *controllers.BookingController
	Health         *controllers.HealthController
	Admin          *controllers.AdminController
	AuthMiddleware *middleware.AuthMiddleware
	Live           *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers) {
	router.GET("/health", c.Health.Health)

	courses := router.Group("/courses")
	{
		courses.GET("", c.Course.GetAllCourses)
		// Registered before /:id so the upgrade path is not parsed as an id
		if c.Live != nil {
			courses.GET("/live", c.Live.HandleConnection)
		}
		courses.GET("/:id", c.Course.GetCourseByID)
		courses.GET("/:id/bookings", c.Course.GetCourseBookings)
	}

	router.POST("/book", c.Booking.Book)

	if c.Admin == nil || c.AuthMiddleware == nil {
		return
	}

	admin := router.Group("/admin")
	{
		admin.POST("/login", c.Admin.Login)

		protected := admin.Group("")
		protected.Use(c.AuthMiddleware.JWTAuth())
		{
			protected.GET("/outbox", c.Admin.ListOutbox)
			protected.POST("/outbox/redeliver", c.Admin.RedeliverOutbox)
		}
	}
}

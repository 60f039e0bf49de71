package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/config"
	"hospital-appointment-server/internal/handlers"
	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/notifier"
	"hospital-appointment-server/internal/services"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log zerolog.Logger) {
	// Wire services; the notifier hangs off the booking engine as a
	// post-commit hook.
	emailNotifier := notifier.New(db, cfg.Mailer.SMTPAddr, cfg.Mailer.DefaultFrom, log)
	directory := services.NewDirectoryService(db)
	booking := services.NewBookingService(db, emailNotifier)
	calendar := services.NewSlotCalendarService(db)
	payments := services.NewPaymentGateService(db, booking)
	records := services.NewMedicalRecordService(db, booking)

	authHandler := handlers.NewAuthHandler(db, cfg)
	directoryHandler := handlers.NewDirectoryHandler(directory)
	appointmentHandler := handlers.NewAppointmentHandler(booking, calendar)
	paymentHandler := handlers.NewPaymentHandler(payments)
	recordHandler := handlers.NewMedicalRecordHandler(records)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		// Directory browsing is open: patients pick a department and doctor
		// before logging in.
		public.GET("/departments", directoryHandler.ListDepartments)
		public.GET("/doctors", directoryHandler.ListDoctors)
		public.GET("/doctors/:id", directoryHandler.GetDoctor)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/auth/profile", authHandler.GetProfile)

		// Slot calendar
		private.GET("/doctors/:id/availability", appointmentHandler.GetAvailability)
		private.GET("/doctors/:id/booked-slots", appointmentHandler.GetBookedSlotMap)

		// Booking engine
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/confirm", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.ConfirmAppointment)
			appointmentRoutes.PATCH("/:id/complete", middleware.RoleAuthMiddleware(models.RoleDoctor), appointmentHandler.CompleteAppointment)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment) // participant or admin, checked in the engine
			appointmentRoutes.GET("/:id/video-room", appointmentHandler.GetVideoRoom)

			// Payment gate
			appointmentRoutes.POST("/:id/payment", middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin), paymentHandler.InitiatePayment)
			appointmentRoutes.GET("/:id/payment", paymentHandler.GetPayment)
			appointmentRoutes.POST("/:id/payment/refund", middleware.RoleAuthMiddleware(models.RoleAdmin), paymentHandler.RefundPayment)

			// Medical record ledger
			appointmentRoutes.POST("/:id/records", middleware.RoleAuthMiddleware(models.RoleDoctor), recordHandler.AddRecord)
			appointmentRoutes.GET("/:id/records", recordHandler.GetRecordsForAppointment)
		}

		private.GET("/medical-records/patient/:patientId", recordHandler.GetRecordsForPatient)

		// Admin aggregates
		private.GET("/admin/stats", middleware.RoleAuthMiddleware(models.RoleAdmin), directoryHandler.GetStats)
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}

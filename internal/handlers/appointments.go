package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
	"hospital-appointment-server/internal/utils"
)

// AppointmentHandler handles booking, availability and lifecycle requests.
type AppointmentHandler struct {
	Booking  *services.BookingService
	Calendar *services.SlotCalendarService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(booking *services.BookingService, calendar *services.SlotCalendarService) *AppointmentHandler {
	return &AppointmentHandler{Booking: booking, Calendar: calendar}
}

// CreateAppointmentRequest represents the request body for booking a slot.
type CreateAppointmentRequest struct {
	DoctorID    string `json:"doctorId" binding:"required,uuid"`
	PatientID   string `json:"patientId" binding:"required,uuid"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Description string `json:"description"`
	IsVideo     bool   `json:"isVideoConsultation"`
}

// CreateAppointment books an appointment slot for a patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Booking.Create(actor, services.CreateAppointmentInput{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		IsVideo:     req.IsVideo,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully. Please complete payment.", appointment)
}

// GetAppointmentsForUser lists the appointments visible to the acting user.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointments, err := h.Booking.ListForActor(actor)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID fetches one appointment for a participant or admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Booking.GetAuthorized(actor, c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// ConfirmAppointment moves a pending appointment to confirmed.
func (h *AppointmentHandler) ConfirmAppointment(c *gin.Context) {
	h.transition(c, h.Booking.Confirm, "Appointment confirmed")
}

// CompleteAppointment marks an appointment completed.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	h.transition(c, h.Booking.Complete, "Appointment marked as completed")
}

// CancelAppointment cancels an appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	h.transition(c, h.Booking.Cancel, "Appointment cancelled successfully")
}

func (h *AppointmentHandler) transition(c *gin.Context, op func(services.Actor, string) (*models.Appointment, error), message string) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := op(actor, c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, message, appointment)
}

// GetAvailability returns occupied and available slots for a doctor on one
// date, or over a date range when from/to are given.
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	if from := c.Query("from"); from != "" {
		days, err := h.Calendar.AvailabilityRange(doctorID, from, c.Query("to"))
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		utils.Success(c, "Availability fetched successfully", days)
		return
	}

	date := c.Query("date")
	if date == "" {
		utils.BadRequest(c, "Query parameter 'date' is required")
		return
	}
	day, err := h.Calendar.Availability(doctorID, date)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Availability fetched successfully", day)
}

// GetBookedSlotMap returns occupied slots per date over the next 30 days,
// the shape the booking form consumes.
func (h *AppointmentHandler) GetBookedSlotMap(c *gin.Context) {
	booked, err := h.Calendar.BookedSlotMap(c.Param("id"), time.Now())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Booked slots fetched successfully", booked)
}

// GetVideoRoom returns the video room id of a video consultation for its
// participants.
func (h *AppointmentHandler) GetVideoRoom(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Booking.GetAuthorized(actor, c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if !appointment.IsVideoConsultation {
		utils.BadRequest(c, "This is not a video consultation appointment")
		return
	}
	utils.Success(c, "Video room fetched successfully", gin.H{
		"roomId": appointment.VideoRoomID(),
	})
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
	"hospital-appointment-server/internal/utils"
)

// PaymentHandler handles payment capture and refunds.
type PaymentHandler struct {
	Payments *services.PaymentGateService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(payments *services.PaymentGateService) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

// InitiatePaymentRequest represents the payment attempt payload.
type InitiatePaymentRequest struct {
	Method     models.PaymentMethod `json:"method" binding:"required,oneof=card cash"`
	CardNumber string               `json:"cardNumber"`
}

// InitiatePayment records a payment attempt for an appointment.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	payment, err := h.Payments.InitiatePayment(actor, services.InitiatePaymentInput{
		AppointmentID: c.Param("id"),
		Method:        req.Method,
		CardNumber:    req.CardNumber,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	if payment.Status == models.PaymentCompleted {
		utils.Success(c, "Payment successful!", payment)
		return
	}
	utils.Success(c, "Appointment confirmed! Please pay at the hospital reception.", payment)
}

// RefundPayment refunds a completed payment. Admin only; the appointment
// itself is untouched.
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	payment, err := h.Payments.Refund(actor, c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Payment refunded successfully", payment)
}

// GetPayment returns the payment attached to an appointment.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	payment, err := h.Payments.GetPayment(actor, c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	utils.Success(c, "Payment fetched successfully", payment)
}

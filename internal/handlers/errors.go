package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/services"
	"hospital-appointment-server/internal/utils"
)

// RespondServiceError maps a domain error kind to its HTTP status. Anything
// outside the taxonomy is an infrastructure failure and surfaces as a 500.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrSlotConflict),
		errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrTerminalState),
		errors.Is(err, services.ErrAlreadyPaid):
		utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrPaymentRejected):
		utils.PaymentRequired(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.UnprocessableEntity(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

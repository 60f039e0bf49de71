package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// PaymentGateService issues and reconciles the single payment attempt per
// appointment. Amounts are read from the doctor's consultation fee at payment
// time, not snapshotted at booking time.
type PaymentGateService struct {
	DB      *gorm.DB
	Booking *BookingService

	locks *slotLocks
}

// NewPaymentGateService creates a new PaymentGateService.
func NewPaymentGateService(db *gorm.DB, booking *BookingService) *PaymentGateService {
	return &PaymentGateService{DB: db, Booking: booking, locks: newSlotLocks()}
}

// InitiatePaymentInput carries a payment attempt.
type InitiatePaymentInput struct {
	AppointmentID string
	Method        models.PaymentMethod
	CardNumber    string // card method only; separators allowed
}

// InitiatePayment records a payment attempt. Idempotent with respect to the
// Payment row: if one already exists for the appointment it is reused and
// updated, never duplicated.
//
//   - card: the stand-in acceptance rule is >= 13 digits after stripping
//     separators. Accepted -> Payment completed, appointment marked paid.
//     Rejected -> ErrPaymentRejected, appointment unchanged, retryable.
//   - cash: always accepted as deferred. Payment stays pending, to be settled
//     at the facility; a terminal success for the booking flow.
func (s *PaymentGateService) InitiatePayment(actor Actor, input InitiatePaymentInput) (*models.Payment, error) {
	if input.Method != models.MethodCard && input.Method != models.MethodCash {
		return nil, fmt.Errorf("unknown payment method %q: %w", input.Method, ErrValidation)
	}

	appointment, err := s.Booking.Get(input.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && appointment.Patient.UserID != actor.UserID {
		return nil, fmt.Errorf("payment for appointment %s: %w", appointment.ID, ErrForbidden)
	}
	if appointment.PaymentStatus == models.PaymentStatePaid {
		return nil, fmt.Errorf("appointment %s: %w", appointment.ID, ErrAlreadyPaid)
	}

	unlock := s.locks.acquire(appointment.ID)
	defer unlock()

	var payment models.Payment
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// One payment row per appointment, ever. The unique index on
		// appointment_id backs this up at the schema level.
		err := tx.First(&payment, "appointment_id = ?", appointment.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			payment = models.Payment{
				AppointmentID: appointment.ID,
				Amount:        appointment.Doctor.ConsultationFee,
				Method:        input.Method,
				Status:        models.PaymentPending,
				TransactionID: "PENDING-" + transactionRef(8),
				CardLastFour:  "0000",
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if payment.Status == models.PaymentCompleted {
			// Row already settled but the appointment flag lagged behind;
			// reconcile and report paid.
			if err := tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
				Update("payment_status", models.PaymentStatePaid).Error; err != nil {
				return err
			}
			return fmt.Errorf("appointment %s: %w", appointment.ID, ErrAlreadyPaid)
		}

		switch input.Method {
		case models.MethodCard:
			card := sanitizeCardNumber(input.CardNumber)
			if len(card) < 13 {
				return fmt.Errorf("card number must have at least 13 digits: %w", ErrPaymentRejected)
			}
			payment.Status = models.PaymentCompleted
			payment.Method = models.MethodCard
			payment.TransactionID = "TXN-" + transactionRef(12)
			payment.CardLastFour = card[len(card)-4:]
			if err := tx.Save(&payment).Error; err != nil {
				return err
			}
			return tx.Model(&models.Appointment{}).Where("id = ?", appointment.ID).
				Update("payment_status", models.PaymentStatePaid).Error

		default: // cash, deferred settlement at reception
			payment.Status = models.PaymentPending
			payment.Method = models.MethodCash
			payment.TransactionID = "CASH-" + transactionRef(8)
			payment.CardLastFour = "0000"
			return tx.Save(&payment).Error
		}
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Refund marks a completed payment refunded. It deliberately does not touch
// the appointment: a refund does not cancel, and a cancel does not refund.
func (s *PaymentGateService) Refund(actor Actor, appointmentID string) (*models.Payment, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("refund: %w", ErrForbidden)
	}

	unlock := s.locks.acquire(appointmentID)
	defer unlock()

	var payment models.Payment
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&payment, "appointment_id = ?", appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("payment for appointment %s: %w", appointmentID, ErrNotFound)
			}
			return err
		}
		if payment.Status != models.PaymentCompleted {
			return fmt.Errorf("refund from status %s: %w", payment.Status, ErrInvalidTransition)
		}
		payment.Status = models.PaymentRefunded
		return tx.Save(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment returns the payment for an appointment, visible to participants
// and admins.
func (s *PaymentGateService) GetPayment(actor Actor, appointmentID string) (*models.Payment, error) {
	appointment, err := s.Booking.GetAuthorized(actor, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment.Payment == nil {
		return nil, fmt.Errorf("payment for appointment %s: %w", appointmentID, ErrNotFound)
	}
	return appointment.Payment, nil
}

// sanitizeCardNumber strips spaces and dashes; anything else left over makes
// the number invalid.
func sanitizeCardNumber(number string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(number)
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return cleaned
}

// transactionRef generates an uppercase hex reference of n characters.
func transactionRef(n int) string {
	ref := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	if n > len(ref) {
		n = len(ref)
	}
	return ref[:n]
}

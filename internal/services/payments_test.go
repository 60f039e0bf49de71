package services_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
)

func bookForPayment(t *testing.T) (*services.PaymentGateService, *services.BookingService, models.Doctor, models.Patient, *models.Appointment) {
	t.Helper()
	db := newTestDB(t)
	doctor := seedDoctor(t, db, "doc@example.com", 75)
	patient := seedPatient(t, db, "pat@example.com")
	booking := services.NewBookingService(db, nil)
	payments := services.NewPaymentGateService(db, booking)

	appointment, err := booking.Create(asPatient(patient), services.CreateAppointmentInput{
		DoctorID: doctor.ID, PatientID: patient.ID, Date: "2025-07-01", Time: "09:00",
	})
	require.NoError(t, err)
	return payments, booking, doctor, patient, appointment
}

func TestInitiatePaymentCard(t *testing.T) {
	t.Run("valid card completes the payment and marks the appointment paid", func(t *testing.T) {
		payments, booking, _, patient, appointment := bookForPayment(t)

		payment, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111 1111 1111 1111",
		})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentCompleted, payment.Status)
		assert.Equal(t, "1111", payment.CardLastFour)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(75)))
		assert.Contains(t, payment.TransactionID, "TXN-")

		paid, err := booking.Get(appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatePaid, paid.PaymentStatus)
	})

	t.Run("short card number is rejected and retryable", func(t *testing.T) {
		payments, booking, _, patient, appointment := bookForPayment(t)

		_, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111",
		})
		assert.ErrorIs(t, err, services.ErrPaymentRejected)

		// The rejection rolls the whole attempt back: no Payment row survives
		// and the appointment is untouched.
		unpaid, err := booking.Get(appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatePending, unpaid.PaymentStatus)
		var rows int64
		require.NoError(t, payments.DB.Model(&models.Payment{}).
			Where("appointment_id = ?", appointment.ID).Count(&rows).Error)
		assert.Equal(t, int64(0), rows)

		// Retry with corrected input succeeds.
		payment, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111-1111-1111-1111",
		})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentCompleted, payment.Status)
	})

	t.Run("non-digit card numbers are rejected", func(t *testing.T) {
		payments, _, _, patient, appointment := bookForPayment(t)

		_, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111x1111y1111z11",
		})
		assert.ErrorIs(t, err, services.ErrPaymentRejected)
	})

	t.Run("paying twice fails with AlreadyPaid", func(t *testing.T) {
		payments, _, _, patient, appointment := bookForPayment(t)

		input := services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111111111111111",
		}
		_, err := payments.InitiatePayment(asPatient(patient), input)
		require.NoError(t, err)
		_, err = payments.InitiatePayment(asPatient(patient), input)
		assert.ErrorIs(t, err, services.ErrAlreadyPaid)
	})

	t.Run("only the owning patient may pay", func(t *testing.T) {
		payments, booking, _, _, appointment := bookForPayment(t)
		other := seedPatient(t, booking.DB, "other@example.com")

		_, err := payments.InitiatePayment(asPatient(other), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111111111111111",
		})
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("fee is read at payment time, not booking time", func(t *testing.T) {
		payments, booking, doctor, patient, appointment := bookForPayment(t)
		require.NoError(t, booking.DB.Model(&models.Doctor{}).Where("id = ?", doctor.ID).
			Update("consultation_fee", decimal.NewFromInt(120)).Error)

		payment, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111111111111111",
		})
		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(120)))
	})
}

func TestInitiatePaymentCash(t *testing.T) {
	payments, booking, _, patient, appointment := bookForPayment(t)

	payment, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
		AppointmentID: appointment.ID,
		Method:        models.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, models.MethodCash, payment.Method)
	assert.Contains(t, payment.TransactionID, "CASH-")

	// Cash defers settlement; the appointment stays pending on payment.
	current, err := booking.Get(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatePending, current.PaymentStatus)
}

func TestOnePaymentRowPerAppointment(t *testing.T) {
	payments, booking, _, patient, appointment := bookForPayment(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Errors are expected once the first attempt settles; only the
			// row count matters here.
			_, _ = payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
				AppointmentID: appointment.ID,
				Method:        models.MethodCard,
				CardNumber:    "4111111111111111",
			})
		}()
	}
	wg.Wait()

	var rows int64
	require.NoError(t, booking.DB.Model(&models.Payment{}).
		Where("appointment_id = ?", appointment.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestRefund(t *testing.T) {
	t.Run("refunds a completed payment", func(t *testing.T) {
		payments, booking, _, patient, appointment := bookForPayment(t)
		admin := asAdmin(t, booking.DB)

		_, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCard,
			CardNumber:    "4111111111111111",
		})
		require.NoError(t, err)

		payment, err := payments.Refund(admin, appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRefunded, payment.Status)

		// Refund never cancels the appointment.
		current, err := booking.Get(appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, current.Status)
	})

	t.Run("pending cash payments cannot be refunded", func(t *testing.T) {
		payments, booking, _, patient, appointment := bookForPayment(t)
		admin := asAdmin(t, booking.DB)

		_, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
			AppointmentID: appointment.ID,
			Method:        models.MethodCash,
		})
		require.NoError(t, err)

		_, err = payments.Refund(admin, appointment.ID)
		assert.ErrorIs(t, err, services.ErrInvalidTransition)

		payment, err := payments.GetPayment(admin, appointment.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, payment.Status)
	})

	t.Run("refund without a payment is NotFound", func(t *testing.T) {
		payments, booking, _, _, appointment := bookForPayment(t)
		admin := asAdmin(t, booking.DB)

		_, err := payments.Refund(admin, appointment.ID)
		assert.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("refund is admin only", func(t *testing.T) {
		payments, _, _, patient, appointment := bookForPayment(t)
		_, err := payments.Refund(asPatient(patient), appointment.ID)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})
}

func TestCancelDoesNotRefund(t *testing.T) {
	payments, booking, _, patient, appointment := bookForPayment(t)
	admin := asAdmin(t, booking.DB)

	_, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
		AppointmentID: appointment.ID,
		Method:        models.MethodCard,
		CardNumber:    "4111111111111111",
	})
	require.NoError(t, err)

	_, err = booking.Cancel(asPatient(patient), appointment.ID)
	require.NoError(t, err)

	payment, err := payments.GetPayment(admin, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.Status, "cancel must not touch the payment")
}

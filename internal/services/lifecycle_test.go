package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
)

// Full booking lifecycle: book, pay by card, confirm, prescribe, and verify
// the completed appointment is terminal.
func TestBookingLifecycle(t *testing.T) {
	db := newTestDB(t)
	doctor := seedDoctor(t, db, "d1@example.com", 50)
	patient := seedPatient(t, db, "p1@example.com")
	booking := services.NewBookingService(db, nil)
	payments := services.NewPaymentGateService(db, booking)
	records := services.NewMedicalRecordService(db, booking)

	appointment, err := booking.Create(asPatient(patient), services.CreateAppointmentInput{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		Date:      "2025-07-01",
		Time:      "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Equal(t, models.PaymentStatePending, appointment.PaymentStatus)

	payment, err := payments.InitiatePayment(asPatient(patient), services.InitiatePaymentInput{
		AppointmentID: appointment.ID,
		Method:        models.MethodCard,
		CardNumber:    "4111111111111111",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.Status)

	paid, err := booking.Get(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatePaid, paid.PaymentStatus)

	confirmed, err := booking.Confirm(asDoctor(doctor), appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	_, err = records.AddRecord(asDoctor(doctor), services.AddRecordInput{
		AppointmentID: appointment.ID,
		Diagnosis:     "Flu",
		Medicines:     "Paracetamol",
	})
	require.NoError(t, err)

	completed, err := booking.Get(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	history, err := records.ListForPatient(asPatient(patient), patient.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = booking.Cancel(asDoctor(doctor), appointment.ID)
	assert.ErrorIs(t, err, services.ErrTerminalState)

	final, err := booking.Get(appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, final.Status)
}

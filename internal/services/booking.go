package services

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// Notifier delivers appointment notifications. Best-effort: implementations
// must never let a delivery failure surface into the calling state change.
type Notifier interface {
	Notify(appointment models.Appointment, subject, intro string)
}

// slotLocks serializes check-then-insert per key so two racing requests for
// the same slot cannot both pass the conflict check. Locks are never removed;
// the key space is bounded by the slots actually contended in one process.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *slotLocks) acquire(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// BookingService is the appointment state machine:
//
//	pending -> confirmed | cancelled
//	confirmed -> completed | cancelled
//	completed, cancelled terminal
//
// plus the at-most-one-active-booking-per-(doctor,date,time) invariant on
// creation.
type BookingService struct {
	DB        *gorm.DB
	Directory *DirectoryService
	Notifier  Notifier

	slots *slotLocks
}

// NewBookingService creates a new BookingService. notifier may be nil.
func NewBookingService(db *gorm.DB, notifier Notifier) *BookingService {
	return &BookingService{
		DB:        db,
		Directory: NewDirectoryService(db),
		Notifier:  notifier,
		slots:     newSlotLocks(),
	}
}

// CreateAppointmentInput carries the booking request.
type CreateAppointmentInput struct {
	DoctorID    string
	PatientID   string
	Date        string // YYYY-MM-DD
	Time        string // catalog slot value
	Description string
	IsVideo     bool
}

// Create books a slot. The conflict check and the insert run inside one
// transaction under a per-(doctor,date,time) lock, so concurrent requests for
// the same triple yield exactly one success and one ErrSlotConflict.
func (s *BookingService) Create(actor Actor, input CreateAppointmentInput) (*models.Appointment, error) {
	if _, err := ParseDate(input.Date); err != nil {
		return nil, err
	}
	if !models.ValidTimeSlot(input.Time) {
		return nil, fmt.Errorf("unknown time slot %q: %w", input.Time, ErrValidation)
	}

	doctor, err := s.Directory.GetDoctor(input.DoctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.IsAvailable {
		return nil, fmt.Errorf("doctor %s is not accepting appointments: %w", doctor.ID, ErrNotFound)
	}

	patient, err := s.Directory.GetPatient(input.PatientID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && patient.UserID != actor.UserID {
		return nil, fmt.Errorf("patients can only book for themselves: %w", ErrForbidden)
	}

	appointment := models.Appointment{
		DoctorID:            doctor.ID,
		PatientID:           patient.ID,
		Date:                input.Date,
		Time:                input.Time,
		Status:              models.StatusPending,
		PaymentStatus:       models.PaymentStatePending,
		Description:         input.Description,
		IsVideoConsultation: input.IsVideo,
	}

	unlock := s.slots.acquire(doctor.ID + "|" + input.Date + "|" + input.Time)
	defer unlock()

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var held int64
		if err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND date = ? AND time = ? AND status <> ?",
				doctor.ID, input.Date, input.Time, models.StatusCancelled).
			Count(&held).Error; err != nil {
			return err
		}
		if held > 0 {
			return fmt.Errorf("%s %s for doctor %s: %w", input.Date, input.Time, doctor.ID, ErrSlotConflict)
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Get(appointment.ID)
	if err != nil {
		return nil, err
	}
	s.notify(*created,
		"Your appointment has been booked!",
		"Your appointment has been successfully booked. Please find the details below.")
	return created, nil
}

// Get fetches one appointment with its participants preloaded.
func (s *BookingService) Get(id string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.
		Preload("Doctor.User").Preload("Doctor.Department").
		Preload("Patient.User").Preload("Payment").
		First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &appointment, nil
}

// GetAuthorized fetches an appointment and checks the actor participates in
// it (or is an admin).
func (s *BookingService) GetAuthorized(actor Actor, id string) (*models.Appointment, error) {
	appointment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(actor, appointment) {
		return nil, fmt.Errorf("appointment %s: %w", id, ErrForbidden)
	}
	return appointment, nil
}

// ListForActor returns the appointments visible to the actor: their own as
// patient or doctor, everything for admins. Sorted by date and slot.
func (s *BookingService) ListForActor(actor Actor) ([]models.Appointment, error) {
	query := s.DB.
		Preload("Doctor.User").Preload("Doctor.Department").
		Preload("Patient.User").Preload("Payment").
		Order("date desc, time desc")

	switch {
	case actor.IsAdmin():
		// no filter
	case actor.IsDoctor():
		doctor, err := s.Directory.DoctorByUser(actor.UserID)
		if err != nil {
			return nil, err
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	case actor.IsPatient():
		patient, err := s.Directory.PatientByUser(actor.UserID)
		if err != nil {
			return nil, err
		}
		query = query.Where("patient_id = ?", patient.ID)
	default:
		return nil, fmt.Errorf("role %q may not list appointments: %w", actor.Role, ErrForbidden)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// Confirm moves a pending appointment to confirmed. Doctor-of-record only.
func (s *BookingService) Confirm(actor Actor, id string) (*models.Appointment, error) {
	appointment, err := s.ownedByDoctor(actor, id)
	if err != nil {
		return nil, err
	}

	// Read-modify-write against the persisted status; a racing transition
	// makes the conditional update match zero rows.
	res := s.DB.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", models.StatusConfirmed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("confirm from %s: %w", current.Status, ErrInvalidTransition)
	}

	appointment.Status = models.StatusConfirmed
	s.notify(*appointment,
		"Your appointment has been confirmed!",
		"A doctor has confirmed your appointment. Details are below.")
	return appointment, nil
}

// Complete marks an appointment completed. Doctor-of-record only; permitted
// from pending or confirmed, with no requirement of a prior Confirm.
func (s *BookingService) Complete(actor Actor, id string) (*models.Appointment, error) {
	appointment, err := s.ownedByDoctor(actor, id)
	if err != nil {
		return nil, err
	}

	res := s.DB.Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Update("status", models.StatusCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("complete from %s: %w", current.Status, ErrInvalidTransition)
	}

	appointment.Status = models.StatusCompleted
	return appointment, nil
}

// Cancel cancels an appointment. Permitted for the owning patient, the owning
// doctor, or an administrator. Cancelling an already cancelled appointment is
// an idempotent no-op surfaced as ErrAlreadyCancelled; a completed
// appointment is terminal and fails with ErrTerminalState. Cancelling never
// refunds; that is a separate payment-gate operation.
func (s *BookingService) Cancel(actor Actor, id string) (*models.Appointment, error) {
	appointment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.canAccess(actor, appointment) {
		return nil, fmt.Errorf("appointment %s: %w", id, ErrForbidden)
	}

	switch appointment.Status {
	case models.StatusCancelled:
		return nil, fmt.Errorf("appointment %s: %w", id, ErrAlreadyCancelled)
	case models.StatusCompleted:
		return nil, fmt.Errorf("appointment %s: %w", id, ErrTerminalState)
	}

	res := s.DB.Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Update("status", models.StatusCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost a race; classify against the committed row.
		current, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		if current.Status == models.StatusCancelled {
			return nil, fmt.Errorf("appointment %s: %w", id, ErrAlreadyCancelled)
		}
		return nil, fmt.Errorf("appointment %s: %w", id, ErrTerminalState)
	}

	appointment.Status = models.StatusCancelled
	s.notify(*appointment,
		"Your appointment has been cancelled",
		"This is a confirmation that your appointment has been cancelled. Details are below.")
	return appointment, nil
}

// markCompleted sets the status unconditionally inside tx. Used by the record
// ledger, where issuing a prescription completes the appointment as one
// combined operation.
func markCompleted(tx *gorm.DB, appointmentID string) error {
	return tx.Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Update("status", models.StatusCompleted).Error
}

// ownedByDoctor loads the appointment and verifies the actor is its
// doctor-of-record.
func (s *BookingService) ownedByDoctor(actor Actor, id string) (*models.Appointment, error) {
	appointment, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !actor.IsDoctor() || appointment.Doctor.UserID != actor.UserID {
		return nil, fmt.Errorf("appointment %s is not held by this doctor: %w", id, ErrForbidden)
	}
	return appointment, nil
}

func (s *BookingService) canAccess(actor Actor, appointment *models.Appointment) bool {
	if actor.IsAdmin() {
		return true
	}
	return appointment.Doctor.UserID == actor.UserID || appointment.Patient.UserID == actor.UserID
}

// notify dispatches asynchronously after the mutation has committed. Failures
// are the notifier's problem; they never reach the caller.
func (s *BookingService) notify(appointment models.Appointment, subject, intro string) {
	if s.Notifier == nil {
		return
	}
	go s.Notifier.Notify(appointment, subject, intro)
}

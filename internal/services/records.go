package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// MedicalRecordService attaches prescriptions to appointments and serves the
// patient history read path.
type MedicalRecordService struct {
	DB        *gorm.DB
	Directory *DirectoryService
	Booking   *BookingService
}

// NewMedicalRecordService creates a new MedicalRecordService.
func NewMedicalRecordService(db *gorm.DB, booking *BookingService) *MedicalRecordService {
	return &MedicalRecordService{DB: db, Directory: NewDirectoryService(db), Booking: booking}
}

// AddRecordInput carries a prescription.
type AddRecordInput struct {
	AppointmentID string
	Diagnosis     string
	Symptoms      string
	Medicines     string // one per line
	Instructions  string
	FollowUpDate  string // YYYY-MM-DD, optional
}

// AddRecord creates a medical record and, as one combined operation, marks
// the appointment completed. Doctor-of-record only. Multiple records per
// appointment are permitted.
func (s *MedicalRecordService) AddRecord(actor Actor, input AddRecordInput) (*models.MedicalRecord, error) {
	if strings.TrimSpace(input.Diagnosis) == "" {
		return nil, fmt.Errorf("diagnosis is required: %w", ErrValidation)
	}
	if strings.TrimSpace(input.Medicines) == "" {
		return nil, fmt.Errorf("medicines are required: %w", ErrValidation)
	}

	var followUp *time.Time
	if input.FollowUpDate != "" {
		day, err := ParseDate(input.FollowUpDate)
		if err != nil {
			return nil, err
		}
		followUp = &day
	}

	appointment, err := s.Booking.ownedByDoctor(actor, input.AppointmentID)
	if err != nil {
		return nil, err
	}

	record := models.MedicalRecord{
		AppointmentID: appointment.ID,
		Diagnosis:     input.Diagnosis,
		Symptoms:      input.Symptoms,
		Medicines:     input.Medicines,
		Instructions:  input.Instructions,
		FollowUpDate:  followUp,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return markCompleted(tx, appointment.ID)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListForPatient returns all records across the patient's appointments,
// newest first. Visible to the patient themselves, administrators, and
// doctors with at least one appointment linking them to the patient.
func (s *MedicalRecordService) ListForPatient(actor Actor, patientID string) ([]models.MedicalRecord, error) {
	patient, err := s.Directory.GetPatient(patientID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHistoryRead(actor, patient); err != nil {
		return nil, err
	}

	var records []models.MedicalRecord
	err = s.DB.
		Joins("JOIN appointments ON appointments.id = medical_records.appointment_id").
		Where("appointments.patient_id = ?", patient.ID).
		Preload("Appointment.Doctor.User").
		Preload("Appointment.Doctor.Department").
		Order("medical_records.created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// authorizeHistoryRead gates the patient-wide history. Doctors qualify only
// through a treating relationship, not through the role alone.
func (s *MedicalRecordService) authorizeHistoryRead(actor Actor, patient *models.Patient) error {
	if actor.IsAdmin() || patient.UserID == actor.UserID {
		return nil
	}
	if !actor.IsDoctor() {
		return fmt.Errorf("records of patient %s: %w", patient.ID, ErrForbidden)
	}

	doctor, err := s.Directory.DoctorByUser(actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("records of patient %s: %w", patient.ID, ErrForbidden)
		}
		return err
	}
	var treated int64
	if err := s.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND patient_id = ?", doctor.ID, patient.ID).
		Count(&treated).Error; err != nil {
		return err
	}
	if treated == 0 {
		return fmt.Errorf("records of patient %s: %w", patient.ID, ErrForbidden)
	}
	return nil
}

// ListForAppointment returns the records of one appointment, newest first,
// for its participants.
func (s *MedicalRecordService) ListForAppointment(actor Actor, appointmentID string) ([]models.MedicalRecord, error) {
	if _, err := s.Booking.GetAuthorized(actor, appointmentID); err != nil {
		return nil, err
	}

	var records []models.MedicalRecord
	err := s.DB.Where("appointment_id = ?", appointmentID).
		Order("created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

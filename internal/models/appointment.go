package models

import (
	"fmt"
	"strings"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsTerminal reports whether no further status transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentState tracks the appointment-side view of payment, independent of
// the Payment record's own status.
type PaymentState string

const (
	PaymentStatePending  PaymentState = "pending"
	PaymentStatePaid     PaymentState = "paid"
	PaymentStateRefunded PaymentState = "refunded"
)

// TimeSlot is a discrete time-of-day label from the fixed catalog, not a
// duration.
type TimeSlot struct {
	Value   string `json:"value"`
	Display string `json:"display"`
}

// TimeSlotCatalog is the fixed ordered slot list shared by the slot calendar
// and the booking engine: 30-minute steps, morning and afternoon blocks with
// a lunch gap.
var TimeSlotCatalog = []TimeSlot{
	{"09:00", "09:00 AM"},
	{"09:30", "09:30 AM"},
	{"10:00", "10:00 AM"},
	{"10:30", "10:30 AM"},
	{"11:00", "11:00 AM"},
	{"11:30", "11:30 AM"},
	{"12:00", "12:00 PM"},
	{"14:00", "02:00 PM"},
	{"14:30", "02:30 PM"},
	{"15:00", "03:00 PM"},
	{"15:30", "03:30 PM"},
	{"16:00", "04:00 PM"},
	{"16:30", "04:30 PM"},
	{"17:00", "05:00 PM"},
}

// ValidTimeSlot reports whether value names a catalog slot.
func ValidTimeSlot(value string) bool {
	for _, slot := range TimeSlotCatalog {
		if slot.Value == value {
			return true
		}
	}
	return false
}

// SlotDisplay returns the human-readable label for a slot value.
func SlotDisplay(value string) string {
	for _, slot := range TimeSlotCatalog {
		if slot.Value == value {
			return slot.Display
		}
	}
	return value
}

// Appointment is a booking between a doctor and a patient for one catalog
// slot on one calendar date. At most one non-cancelled appointment may exist
// per (doctor, date, time); the booking engine enforces this, cancelled rows
// free the slot for rebooking.
type Appointment struct {
	BaseModel
	DoctorID            string            `gorm:"size:36;index:idx_doctor_slot" json:"doctorId"`
	PatientID           string            `gorm:"size:36;index" json:"patientId"`
	Date                string            `gorm:"size:10;index:idx_doctor_slot" json:"date"` // YYYY-MM-DD
	Time                string            `gorm:"size:5;index:idx_doctor_slot" json:"time"`  // catalog slot value
	Status              AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	PaymentStatus       PaymentState      `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	Description         string            `gorm:"type:text" json:"description"`
	IsVideoConsultation bool              `gorm:"default:false" json:"isVideoConsultation"`

	// Relations
	Doctor         Doctor          `gorm:"foreignKey:DoctorID" json:"-"`
	Patient        Patient         `gorm:"foreignKey:PatientID" json:"-"`
	Payment        *Payment        `gorm:"foreignKey:AppointmentID" json:"payment,omitempty"`
	MedicalRecords []MedicalRecord `gorm:"foreignKey:AppointmentID" json:"-"`
}

// TimeDisplay returns the formatted slot label.
func (a *Appointment) TimeDisplay() string {
	return SlotDisplay(a.Time)
}

// VideoRoomID generates the room label for video consultations. Pure
// generator, no state of its own; empty for in-person appointments.
func (a *Appointment) VideoRoomID() string {
	if !a.IsVideoConsultation || a.ID == "" {
		return ""
	}
	return fmt.Sprintf("medicare-appointment-%s-%s", a.ID, strings.ReplaceAll(a.Date, "-", ""))
}

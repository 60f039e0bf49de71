package models

import (
	"strings"
	"time"
)

// MedicalRecord is a prescription/diagnosis issued by a doctor against an
// appointment. An appointment may carry any number of records; each record
// belongs to exactly one appointment.
type MedicalRecord struct {
	BaseModel
	AppointmentID string     `gorm:"size:36;index;not null" json:"appointmentId"`
	Diagnosis     string     `gorm:"type:text;not null" json:"diagnosis"`
	Symptoms      string     `gorm:"type:text" json:"symptoms,omitempty"`
	Medicines     string     `gorm:"type:text;not null" json:"medicines"` // one per line
	Instructions  string     `gorm:"type:text" json:"instructions,omitempty"`
	FollowUpDate  *time.Time `json:"followUpDate,omitempty"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment"`
}

// MedicineList splits the newline-delimited medicines field.
func (r *MedicalRecord) MedicineList() []string {
	var list []string
	for _, line := range strings.Split(r.Medicines, "\n") {
		if m := strings.TrimSpace(line); m != "" {
			list = append(list, m)
		}
	}
	return list
}

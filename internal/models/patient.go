package models

import (
	"time"
)

// BloodType is one of the 8 ABO/Rh groups, or empty when unknown.
type BloodType string

const (
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
)

// ValidBloodType reports whether bt is a known group or unset.
func ValidBloodType(bt BloodType) bool {
	switch bt {
	case "", BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}

// Patient is a patient profile linked to a User account.
type Patient struct {
	BaseModel
	UserID           string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	BloodType        BloodType  `gorm:"size:3" json:"bloodType,omitempty"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`
	EmergencyContact string     `gorm:"size:100" json:"emergencyContact,omitempty"`
	EmergencyPhone   string     `gorm:"size:15" json:"emergencyPhone,omitempty"`
	MedicalNotes     string     `gorm:"type:text" json:"medicalNotes,omitempty"`

	// Relations
	User         User          `gorm:"foreignKey:UserID" json:"user"`
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
}

// Age derives the patient's age from date of birth, nil when unknown.
func (p *Patient) Age() *int {
	if p.DateOfBirth == nil {
		return nil
	}
	now := time.Now()
	age := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		age--
	}
	return &age
}

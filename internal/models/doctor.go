package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Doctor is a medical-staff profile linked to a User account.
// DepartmentID is nullable: removing a department detaches its doctors.
type Doctor struct {
	BaseModel
	UserID          string          `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DepartmentID    *string         `gorm:"size:36;index" json:"departmentId,omitempty"`
	Specialization  string          `gorm:"size:200" json:"specialization"`
	ExperienceYears uint            `gorm:"default:0" json:"experienceYears"`
	Bio             string          `gorm:"type:text" json:"bio"`
	ProfilePic      string          `gorm:"size:255" json:"profilePic,omitempty"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);default:50.00" json:"consultationFee"`
	IsAvailable     bool            `gorm:"default:true" json:"isAvailable"`

	// Relations
	User         User        `gorm:"foreignKey:UserID" json:"user"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
}

// AfterCreate keeps the linked user's role in line with the profile,
// mirroring the profile-save behavior of the admin flows.
func (d *Doctor) AfterCreate(tx *gorm.DB) error {
	return tx.Model(&User{}).Where("id = ? AND role <> ?", d.UserID, RoleDoctor).
		Update("role", RoleDoctor).Error
}

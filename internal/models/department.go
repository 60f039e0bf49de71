package models

// Department groups doctors by medical discipline (e.g. Cardiology).
// Departments are reference data and are never cascaded onto doctors:
// deleting one detaches its doctors instead.
type Department struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:50;default:'fa-hospital'" json:"icon"`

	// Relations
	Doctors []Doctor `gorm:"foreignKey:DepartmentID" json:"-"`
}

// DepartmentWithCount is the list-view projection including doctor headcount.
type DepartmentWithCount struct {
	Department
	DoctorCount int64 `json:"doctorCount"`
}

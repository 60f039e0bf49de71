package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// DirectoryService is the lookup layer over the reference entities:
// departments, doctors and patients. Pure reads, no conflict logic.
type DirectoryService struct {
	DB *gorm.DB
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{DB: db}
}

// GetDepartment fetches one department by id.
func (s *DirectoryService) GetDepartment(id string) (*models.Department, error) {
	var department models.Department
	if err := s.DB.First(&department, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("department %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &department, nil
}

// ListDepartments returns all departments ordered by name, each with its
// doctor headcount.
func (s *DirectoryService) ListDepartments() ([]models.DepartmentWithCount, error) {
	var departments []models.Department
	if err := s.DB.Order("name asc").Find(&departments).Error; err != nil {
		return nil, err
	}

	result := make([]models.DepartmentWithCount, 0, len(departments))
	for _, dept := range departments {
		var count int64
		if err := s.DB.Model(&models.Doctor{}).Where("department_id = ?", dept.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, models.DepartmentWithCount{Department: dept, DoctorCount: count})
	}
	return result, nil
}

// DeleteDepartment removes a department and detaches its doctors. Doctors
// are never cascaded; their department reference is nulled.
func (s *DirectoryService) DeleteDepartment(actor Actor, id string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("delete department: %w", ErrForbidden)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var department models.Department
		if err := tx.First(&department, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("department %s: %w", id, ErrNotFound)
			}
			return err
		}
		if err := tx.Model(&models.Doctor{}).Where("department_id = ?", id).
			Update("department_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&department).Error
	})
}

// GetDoctor fetches one doctor with its user and department preloaded.
func (s *DirectoryService) GetDoctor(id string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.DB.Preload("User").Preload("Department").First(&doctor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("doctor %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &doctor, nil
}

// GetPatient fetches one patient with its user preloaded.
func (s *DirectoryService) GetPatient(id string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.DB.Preload("User").First(&patient, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &patient, nil
}

// PatientByUser resolves the patient profile belonging to a user id.
func (s *DirectoryService) PatientByUser(userID string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.DB.Preload("User").First(&patient, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("patient profile for user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &patient, nil
}

// DoctorByUser resolves the doctor profile belonging to a user id.
func (s *DirectoryService) DoctorByUser(userID string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.DB.Preload("User").Preload("Department").First(&doctor, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("doctor profile for user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &doctor, nil
}

// ListDoctors returns available doctors, optionally filtered by department
// and by a name/specialization search term.
func (s *DirectoryService) ListDoctors(departmentID, search string) ([]models.Doctor, error) {
	query := s.DB.Preload("User").Preload("Department").Where("is_available = ?", true)

	if departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Joins("JOIN users ON users.id = doctors.user_id").
			Where("LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(doctors.specialization) LIKE ?",
				like, like, like)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

// AdminStats is the aggregate snapshot shown on the admin dashboard.
type AdminStats struct {
	TotalDepartments    int64                `json:"totalDepartments"`
	TotalDoctors        int64                `json:"totalDoctors"`
	TotalPatients       int64                `json:"totalPatients"`
	TotalAppointments   int64                `json:"totalAppointments"`
	TodayAppointments   int64                `json:"todayAppointments"`
	PendingAppointments int64                `json:"pendingAppointments"`
	RecentAppointments  []models.Appointment `json:"recentAppointments"`
}

// Stats aggregates hospital-wide counts. Admin only.
func (s *DirectoryService) Stats(actor Actor, today string) (*AdminStats, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("admin stats: %w", ErrForbidden)
	}

	var stats AdminStats
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Department{}, &stats.TotalDepartments},
		{&models.Doctor{}, &stats.TotalDoctors},
		{&models.Patient{}, &stats.TotalPatients},
		{&models.Appointment{}, &stats.TotalAppointments},
	}
	for _, c := range counts {
		if err := s.DB.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := s.DB.Model(&models.Appointment{}).Where("date = ?", today).
		Count(&stats.TodayAppointments).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Appointment{}).Where("status = ?", models.StatusPending).
		Count(&stats.PendingAppointments).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("created_at desc").Limit(10).Find(&stats.RecentAppointments).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

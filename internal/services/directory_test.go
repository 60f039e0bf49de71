package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
)

func seedDepartment(t *testing.T, db *gorm.DB, name string) models.Department {
	t.Helper()
	department := models.Department{Name: name, Description: name + " department"}
	require.NoError(t, db.Create(&department).Error)
	return department
}

func TestListDepartments(t *testing.T) {
	db := newTestDB(t)
	directory := services.NewDirectoryService(db)

	cardiology := seedDepartment(t, db, "Cardiology")
	seedDepartment(t, db, "Aesthetics")

	doctor := seedDoctor(t, db, "d1@example.com", 50)
	require.NoError(t, db.Model(&models.Doctor{}).Where("id = ?", doctor.ID).
		Update("department_id", cardiology.ID).Error)

	departments, err := directory.ListDepartments()
	require.NoError(t, err)
	require.Len(t, departments, 2)

	// Name-ordered, each with its headcount.
	assert.Equal(t, "Aesthetics", departments[0].Name)
	assert.Equal(t, int64(0), departments[0].DoctorCount)
	assert.Equal(t, "Cardiology", departments[1].Name)
	assert.Equal(t, int64(1), departments[1].DoctorCount)
}

func TestDeleteDepartmentDetachesDoctors(t *testing.T) {
	db := newTestDB(t)
	directory := services.NewDirectoryService(db)

	department := seedDepartment(t, db, "Cardiology")
	doctor := seedDoctor(t, db, "d1@example.com", 50)
	require.NoError(t, db.Model(&models.Doctor{}).Where("id = ?", doctor.ID).
		Update("department_id", department.ID).Error)

	t.Run("only admins may delete", func(t *testing.T) {
		err := directory.DeleteDepartment(asDoctor(doctor), department.ID)
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("doctors are detached, not removed", func(t *testing.T) {
		require.NoError(t, directory.DeleteDepartment(asAdmin(t, db), department.ID))

		_, err := directory.GetDepartment(department.ID)
		assert.ErrorIs(t, err, services.ErrNotFound)

		kept, err := directory.GetDoctor(doctor.ID)
		require.NoError(t, err)
		assert.Nil(t, kept.DepartmentID)
	})

	t.Run("unknown department", func(t *testing.T) {
		err := directory.DeleteDepartment(asAdmin(t, db), "missing")
		assert.ErrorIs(t, err, services.ErrNotFound)
	})
}

func TestListDoctors(t *testing.T) {
	db := newTestDB(t)
	directory := services.NewDirectoryService(db)

	cardiology := seedDepartment(t, db, "Cardiology")
	inDept := seedDoctor(t, db, "d1@example.com", 50)
	require.NoError(t, db.Model(&models.Doctor{}).Where("id = ?", inDept.ID).
		Update("department_id", cardiology.ID).Error)
	other := seedDoctor(t, db, "d2@example.com", 80)
	require.NoError(t, db.Model(&models.Doctor{}).Where("id = ?", other.ID).
		Updates(map[string]interface{}{"specialization": "Dermatology"}).Error)

	hidden := seedDoctor(t, db, "d3@example.com", 60)
	require.NoError(t, db.Model(&models.Doctor{}).Where("id = ?", hidden.ID).
		Update("is_available", false).Error)

	t.Run("unfiltered returns available doctors only", func(t *testing.T) {
		doctors, err := directory.ListDoctors("", "")
		require.NoError(t, err)
		assert.Len(t, doctors, 2)
	})

	t.Run("department filter", func(t *testing.T) {
		doctors, err := directory.ListDoctors(cardiology.ID, "")
		require.NoError(t, err)
		require.Len(t, doctors, 1)
		assert.Equal(t, inDept.ID, doctors[0].ID)
	})

	t.Run("search matches specialization case-insensitively", func(t *testing.T) {
		doctors, err := directory.ListDoctors("", "derma")
		require.NoError(t, err)
		require.Len(t, doctors, 1)
		assert.Equal(t, other.ID, doctors[0].ID)
	})

	t.Run("search with no match", func(t *testing.T) {
		doctors, err := directory.ListDoctors("", "neurology")
		require.NoError(t, err)
		assert.Empty(t, doctors)
	})
}

func TestAdminStats(t *testing.T) {
	db := newTestDB(t)
	directory := services.NewDirectoryService(db)
	booking := services.NewBookingService(db, nil)

	seedDepartment(t, db, "Cardiology")
	doctor := seedDoctor(t, db, "d1@example.com", 50)
	patient := seedPatient(t, db, "p1@example.com")

	_, err := booking.Create(asPatient(patient), services.CreateAppointmentInput{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		Date:      "2025-07-01",
		Time:      "09:00",
	})
	require.NoError(t, err)
	confirmed, err := booking.Create(asPatient(patient), services.CreateAppointmentInput{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		Date:      "2025-07-02",
		Time:      "09:00",
	})
	require.NoError(t, err)
	_, err = booking.Confirm(asDoctor(doctor), confirmed.ID)
	require.NoError(t, err)

	t.Run("admin only", func(t *testing.T) {
		_, err := directory.Stats(asPatient(patient), "2025-07-01")
		assert.ErrorIs(t, err, services.ErrForbidden)
	})

	t.Run("aggregates", func(t *testing.T) {
		stats, err := directory.Stats(asAdmin(t, db), "2025-07-01")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalDepartments)
		assert.Equal(t, int64(1), stats.TotalDoctors)
		assert.Equal(t, int64(1), stats.TotalPatients)
		assert.Equal(t, int64(2), stats.TotalAppointments)
		assert.Equal(t, int64(1), stats.TodayAppointments)
		assert.Equal(t, int64(1), stats.PendingAppointments)
		assert.Len(t, stats.RecentAppointments, 2)
	})
}

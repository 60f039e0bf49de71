package services_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps SQLite out of lock trouble under the
	// concurrency tests; the serialization under test is the engine's own.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	}
	require.NoError(t, user.SetPassword("s3cret-pass"))
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, fee int64) models.Doctor {
	t.Helper()
	user := seedUser(t, db, email, models.RoleDoctor)
	doctor := models.Doctor{
		UserID:          user.ID,
		Specialization:  "Cardiology",
		ConsultationFee: decimal.NewFromInt(fee),
		IsAvailable:     true,
	}
	require.NoError(t, db.Create(&doctor).Error)
	doctor.User = user
	return doctor
}

func seedPatient(t *testing.T, db *gorm.DB, email string) models.Patient {
	t.Helper()
	user := seedUser(t, db, email, models.RolePatient)
	patient := models.Patient{
		UserID:    user.ID,
		BloodType: models.BloodOPos,
	}
	require.NoError(t, db.Create(&patient).Error)
	patient.User = user
	return patient
}

func asDoctor(d models.Doctor) services.Actor {
	return services.Actor{UserID: d.UserID, Role: models.RoleDoctor}
}

func asPatient(p models.Patient) services.Actor {
	return services.Actor{UserID: p.UserID, Role: models.RolePatient}
}

func asAdmin(t *testing.T, db *gorm.DB) services.Actor {
	t.Helper()
	user := seedUser(t, db, fmt.Sprintf("admin-%s@example.com", uuid.New().String()[:8]), models.RoleAdmin)
	return services.Actor{UserID: user.ID, Role: models.RoleAdmin}
}

// recordingNotifier captures notifications for assertions. Safe for use from
// the engine's dispatch goroutines.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Notify(appointment models.Appointment, subject, intro string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, subject)
}

func (n *recordingNotifier) subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

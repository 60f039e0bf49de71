package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// DateLayout is the calendar-date wire format, single facility local time.
const DateLayout = "2006-01-02"

// MaxRangeDays caps date-range queries to bound result size.
const MaxRangeDays = 30

// SlotCalendarService computes booked vs. available catalog slots for a
// doctor. Read-only; the booking engine re-checks authoritatively on insert.
type SlotCalendarService struct {
	DB        *gorm.DB
	Directory *DirectoryService
}

// NewSlotCalendarService creates a new SlotCalendarService.
func NewSlotCalendarService(db *gorm.DB) *SlotCalendarService {
	return &SlotCalendarService{DB: db, Directory: NewDirectoryService(db)}
}

// DayAvailability is the calendar answer for one (doctor, date).
type DayAvailability struct {
	Date      string            `json:"date"`
	Occupied  []string          `json:"occupied"`
	Available []models.TimeSlot `json:"available"`
}

// ParseDate validates a calendar date in DateLayout.
func ParseDate(value string) (time.Time, error) {
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, ErrValidation)
	}
	return day, nil
}

// Availability returns occupied and available slots for one doctor and date.
// Occupied is the set of slot labels held by non-cancelled appointments;
// available is the catalog complement in catalog order.
func (s *SlotCalendarService) Availability(doctorID, date string) (*DayAvailability, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}
	if _, err := s.Directory.GetDoctor(doctorID); err != nil {
		return nil, err
	}

	occupied, err := s.occupiedSlots(doctorID, date)
	if err != nil {
		return nil, err
	}
	return &DayAvailability{
		Date:      date,
		Occupied:  occupied,
		Available: complement(occupied),
	}, nil
}

// AvailabilityRange returns per-day availability over [from, to], capped at
// MaxRangeDays.
func (s *SlotCalendarService) AvailabilityRange(doctorID, from, to string) ([]DayAvailability, error) {
	start, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s before start %s: %w", to, from, ErrValidation)
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return nil, fmt.Errorf("range exceeds %d days: %w", MaxRangeDays, ErrValidation)
	}
	if _, err := s.Directory.GetDoctor(doctorID); err != nil {
		return nil, err
	}

	var days []DayAvailability
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(DateLayout)
		occupied, err := s.occupiedSlots(doctorID, date)
		if err != nil {
			return nil, err
		}
		days = append(days, DayAvailability{
			Date:      date,
			Occupied:  occupied,
			Available: complement(occupied),
		})
	}
	return days, nil
}

// BookedSlotMap returns the occupied slots per date for the next 30 days,
// the shape the booking form renders from.
func (s *SlotCalendarService) BookedSlotMap(doctorID string, today time.Time) (map[string][]string, error) {
	if _, err := s.Directory.GetDoctor(doctorID); err != nil {
		return nil, err
	}

	from := today.Format(DateLayout)
	to := today.AddDate(0, 0, MaxRangeDays).Format(DateLayout)

	var appointments []models.Appointment
	if err := s.DB.
		Where("doctor_id = ? AND date >= ? AND date <= ? AND status <> ?",
			doctorID, from, to, models.StatusCancelled).
		Order("date asc, time asc").
		Find(&appointments).Error; err != nil {
		return nil, err
	}

	booked := make(map[string][]string)
	for _, apt := range appointments {
		booked[apt.Date] = append(booked[apt.Date], apt.Time)
	}
	return booked, nil
}

func (s *SlotCalendarService) occupiedSlots(doctorID, date string) ([]string, error) {
	var times []string
	if err := s.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status <> ?", doctorID, date, models.StatusCancelled).
		Pluck("time", &times).Error; err != nil {
		return nil, err
	}
	return times, nil
}

// complement returns catalog minus occupied, preserving catalog order.
func complement(occupied []string) []models.TimeSlot {
	taken := make(map[string]bool, len(occupied))
	for _, t := range occupied {
		taken[t] = true
	}
	available := make([]models.TimeSlot, 0, len(models.TimeSlotCatalog))
	for _, slot := range models.TimeSlotCatalog {
		if !taken[slot.Value] {
			available = append(available, slot)
		}
	}
	return available
}

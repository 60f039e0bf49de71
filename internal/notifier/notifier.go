// Package notifier delivers best-effort appointment emails. Delivery runs
// outside the transaction that triggered it and a failure is logged and
// swallowed, never propagated to the state change.
package notifier

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
)

// EmailNotifier sends appointment notifications over SMTP and records every
// attempt as a Notification row. With no SMTP address configured it degrades
// to audit-and-log only.
type EmailNotifier struct {
	DB       *gorm.DB
	Addr     string // host:port; empty disables sending
	From     string
	Log      zerolog.Logger
	sendMail func(addr, from string, to []string, msg []byte) error
}

// New creates an EmailNotifier.
func New(db *gorm.DB, addr, from string, log zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		DB:   db,
		Addr: addr,
		From: from,
		Log:  log,
		sendMail: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Notify emails the appointment's patient. Safe to call from a goroutine;
// never returns an error to the caller.
func (n *EmailNotifier) Notify(appointment models.Appointment, subject, intro string) {
	recipient := appointment.Patient.User.Email
	if recipient == "" {
		// Cannot deliver without an address; still worth an audit row.
		n.record(appointment.ID, "", subject, intro, false)
		return
	}

	body := n.renderBody(appointment, intro)
	sent := false
	if n.Addr != "" {
		msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
			n.From, recipient, subject, body))
		if err := n.sendMail(n.Addr, n.From, []string{recipient}, msg); err != nil {
			n.Log.Warn().Err(err).
				Str("appointment", appointment.ID).
				Str("recipient", recipient).
				Msg("notification delivery failed")
		} else {
			sent = true
		}
	}
	n.record(appointment.ID, recipient, subject, body, sent)
}

func (n *EmailNotifier) renderBody(appointment models.Appointment, intro string) string {
	department := ""
	if appointment.Doctor.Department != nil {
		department = appointment.Doctor.Department.Name
	}
	return fmt.Sprintf(
		"Dear %s,\n\n%s\n\nDoctor: %s\nDepartment: %s\nDate: %s\nTime: %s\nStatus: %s\n",
		appointment.Patient.User.FullName(),
		intro,
		appointment.Doctor.User.FullName(),
		department,
		appointment.Date,
		appointment.TimeDisplay(),
		appointment.Status,
	)
}

func (n *EmailNotifier) record(appointmentID, recipient, subject, body string, sent bool) {
	row := models.Notification{
		AppointmentID: appointmentID,
		Recipient:     recipient,
		Subject:       subject,
		Body:          body,
		Sent:          sent,
	}
	if sent {
		now := time.Now()
		row.SentAt = &now
	}
	if err := n.DB.Create(&row).Error; err != nil {
		n.Log.Warn().Err(err).Str("appointment", appointmentID).Msg("failed to store notification")
	}
}

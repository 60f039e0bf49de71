package models

import (
	"time"
)

// Notification is an audit row for each notifier delivery attempt. Delivery
// is best-effort and never transactional with the state change that triggered
// it; Sent records whether the transport accepted the message.
type Notification struct {
	BaseModel
	AppointmentID string     `gorm:"size:36;index" json:"appointmentId"`
	Recipient     string     `gorm:"size:255" json:"recipient"`
	Subject       string     `gorm:"size:255" json:"subject"`
	Body          string     `gorm:"type:text" json:"body"`
	Sent          bool       `gorm:"default:false" json:"sent"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
}

package models

import (
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment attempt
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod represents how a payment is settled
type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodCash PaymentMethod = "cash"
)

// Payment is the single payment record for an appointment. The unique index
// on AppointmentID enforces the one-payment-per-appointment invariant; repeat
// attempts update this row instead of creating another.
type Payment struct {
	BaseModel
	AppointmentID string          `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Amount        decimal.Decimal `gorm:"type:decimal(10,2)" json:"amount"`
	Status        PaymentStatus   `gorm:"size:20;default:'pending'" json:"status"`
	Method        PaymentMethod   `gorm:"size:20;default:'card'" json:"method"`
	TransactionID string          `gorm:"size:100" json:"transactionId,omitempty"`
	CardLastFour  string          `gorm:"size:4" json:"cardLastFour,omitempty"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}

package services

import (
	"errors"
)

// Domain error kinds. All are recoverable by the caller; handlers map them to
// HTTP statuses with errors.Is. Anything not wrapping one of these is treated
// as an infrastructure failure.
var (
	// ErrNotFound indicates a referenced doctor/patient/appointment/payment
	// id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the acting identity lacks permission for the
	// requested operation on the target entity.
	ErrForbidden = errors.New("forbidden")

	// ErrSlotConflict indicates the requested (doctor, date, time) is already
	// held by a non-cancelled appointment.
	ErrSlotConflict = errors.New("time slot is already booked")

	// ErrInvalidTransition indicates the requested status change is not legal
	// from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyCancelled refines ErrInvalidTransition for the idempotent
	// cancel-again case so callers can render a notice instead of an error.
	ErrAlreadyCancelled = errors.New("appointment is already cancelled")

	// ErrTerminalState refines ErrInvalidTransition for mutations against a
	// completed appointment.
	ErrTerminalState = errors.New("appointment is completed and cannot change")

	// ErrAlreadyPaid indicates payment was requested on an appointment already
	// marked paid.
	ErrAlreadyPaid = errors.New("appointment is already paid")

	// ErrPaymentRejected indicates card validation failed; retryable with
	// corrected input.
	ErrPaymentRejected = errors.New("payment rejected")

	// ErrValidation indicates malformed input (bad date, unknown slot,
	// missing required fields).
	ErrValidation = errors.New("validation failed")
)

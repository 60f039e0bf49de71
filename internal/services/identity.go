package services

import (
	"hospital-appointment-server/internal/models"
)

// Actor is the acting identity for an operation: the authenticated user id
// with its role resolved once at authentication time. Every mutating service
// call takes one explicitly and re-validates permission against the target
// entity; there is no ambient request state below the handlers.
type Actor struct {
	UserID string
	Role   models.Role
}

// IsAdmin reports whether the actor carries the administrator role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsDoctor reports whether the actor carries the doctor role.
func (a Actor) IsDoctor() bool { return a.Role == models.RoleDoctor }

// IsPatient reports whether the actor carries the patient role.
func (a Actor) IsPatient() bool { return a.Role == models.RolePatient }

package identity

import (
	"courier-escrow/internal/pkg/errs"

	"github.com/google/uuid"
)

// Role is the role asserted by the identity provider's token.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

var ErrInvalidRole = errs.Validation("invalid role")

func NewRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleConsumer, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// System is used for transitions driven by the gateway or the scheduler.
var System = Actor{ID: uuid.Nil, Role: RoleAdmin}

func (a Actor) IsSystem() bool {
	return a.ID == uuid.Nil
}

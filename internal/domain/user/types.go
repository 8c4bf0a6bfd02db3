package user

import "bot-for-order/internal/pkg/errs"

var ErrInvalidRole = errs.Validation("INVALID_ROLE", "invalid role")

type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

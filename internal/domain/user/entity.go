package user

import "bot-for-order/internal/pkg/errs"

// Actor is the authenticated caller of a command. Admins act for one merchant.
type Actor struct {
	ID         int64
	Role       Role
	MerchantID string
}

func NewActor(id int64, role Role, merchantID string) (Actor, error) {
	if !role.IsValid() {
		return Actor{}, ErrInvalidRole
	}
	if role == RoleAdmin && merchantID == "" {
		return Actor{}, errs.Wrap(errs.ErrForbidden, "admin without merchant")
	}
	return Actor{ID: id, Role: role, MerchantID: merchantID}, nil
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor administers the given merchant.
func (a Actor) CanManage(merchantID string) bool {
	return a.IsAdmin() && a.MerchantID == merchantID
}

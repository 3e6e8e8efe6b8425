package user

import "slices"

const RoleAdmin = "admin"

// Principal is the authenticated caller.
type Principal struct {
	UserID int64
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0 || len(p.Roles) > 0
}

// System is the principal scheduled jobs act as, holding the given admin role.
func System(adminRole string) Principal {
	if adminRole == "" {
		adminRole = RoleAdmin
	}
	return Principal{Roles: []string{adminRole}}
}

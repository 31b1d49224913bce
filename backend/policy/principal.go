// Package policy holds the access decisions every route delegates to. All
// functions are pure: they look only at the snapshots passed in.
package policy

import "lessons/backend/models"

// Principal is the authenticated actor of a request. A nil *Principal is the
// anonymous visitor.
type Principal struct {
	ID        uint
	Email     string
	Name      string
	PhotoURL  string
	Role      string
	IsPremium bool
}

// FromUser snapshots a stored user record.
func FromUser(u *models.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		PhotoURL:  u.PhotoURL,
		Role:      u.Role,
		IsPremium: u.IsPremium,
	}
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// Privileged reports whether p may see private content.
func (p *Principal) Privileged() bool {
	return p != nil && (p.IsPremium || p.Role == models.RoleAdmin)
}

func (p *Principal) Owns(ownerEmail string) bool {
	return p != nil && p.Email != "" && p.Email == ownerEmail
}

package policy

import "lessons/backend/errs"

// Guard is a composable authorization check.
type Guard func(p *Principal) error

func RequireAuthenticated(p *Principal) error {
	if p == nil || p.Email == "" {
		return errs.Unauthorized("authentication required")
	}
	return nil
}

func RequireAdmin(p *Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return errs.Forbidden("admin access required")
	}
	return nil
}

func RequirePremiumOrAdmin(p *Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.Privileged() {
		return errs.Forbidden("premium access required")
	}
	return nil
}

func RequireOwnerOrAdmin(ownerEmail string) Guard {
	return func(p *Principal) error {
		if err := RequireAuthenticated(p); err != nil {
			return err
		}
		if !p.Owns(ownerEmail) && !p.IsAdmin() {
			return errs.Forbidden("only the owner or an admin may do this")
		}
		return nil
	}
}

func RequireOwner(ownerEmail string) Guard {
	return func(p *Principal) error {
		if err := RequireAuthenticated(p); err != nil {
			return err
		}
		if !p.Owns(ownerEmail) {
			return errs.Forbidden("only the owner may do this")
		}
		return nil
	}
}

// All runs guards in order and stops at the first failure.
func All(guards ...Guard) Guard {
	return func(p *Principal) error {
		for _, g := range guards {
			if err := g(p); err != nil {
				return err
			}
		}
		return nil
	}
}

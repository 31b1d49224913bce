package policy

import "lessons/backend/models"

// IsVisible decides whether p may see item in listings and detail views.
// Anonymous and free principals see Public items only.
func IsVisible(item *models.Lesson, p *Principal) bool {
	if item == nil {
		return false
	}
	if p.Privileged() {
		return true
	}
	return item.Privacy == models.PrivacyPublic
}

// CanView extends IsVisible with ownership.
func CanView(item *models.Lesson, p *Principal) bool {
	if item == nil {
		return false
	}
	return p.Owns(item.OwnerEmail) || IsVisible(item, p)
}

// CanReadContent gates the body of premium lessons.
func CanReadContent(item *models.Lesson, p *Principal) bool {
	if item == nil {
		return false
	}
	if item.AccessLevel != models.AccessPremium {
		return true
	}
	return p.Privileged() || p.Owns(item.OwnerEmail)
}

// CanCreateWithAccess reports whether p may author a lesson at level.
func CanCreateWithAccess(level string, p *Principal) bool {
	if p == nil {
		return false
	}
	if level == models.AccessPremium {
		return p.Privileged()
	}
	return true
}

// VisibilityFloor returns true when listings for p must be restricted to
// Public items.
func VisibilityFloor(p *Principal) bool {
	return !p.Privileged()
}

package policy

import (
	"testing"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	freeUser  = &Principal{Email: "a@x.com", Role: models.RoleUser}
	premium   = &Principal{Email: "p@x.com", Role: models.RoleUser, IsPremium: true}
	adminUser = &Principal{Email: "admin@x.com", Role: models.RoleAdmin}
)

func lesson(privacy string) *models.Lesson {
	return &models.Lesson{OwnerEmail: "owner@x.com", Privacy: privacy, AccessLevel: models.AccessFree}
}

func TestIsVisiblePrivateHiddenFromAnonymous(t *testing.T) {
	assert.False(t, IsVisible(lesson(models.PrivacyPrivate), nil))
	assert.False(t, IsVisible(lesson(models.PrivacyPrivate), freeUser))
	assert.True(t, IsVisible(lesson(models.PrivacyPrivate), premium))
	assert.True(t, IsVisible(lesson(models.PrivacyPrivate), adminUser))
}

func TestIsVisiblePublicForEveryone(t *testing.T) {
	for _, p := range []*Principal{nil, freeUser, premium, adminUser} {
		assert.True(t, IsVisible(lesson(models.PrivacyPublic), p))
	}
	assert.False(t, IsVisible(nil, adminUser))
}

func TestCanViewOwnerSeesPrivate(t *testing.T) {
	owner := &Principal{Email: "owner@x.com", Role: models.RoleUser}
	assert.True(t, CanView(lesson(models.PrivacyPrivate), owner))
	assert.False(t, CanView(lesson(models.PrivacyPrivate), freeUser))
	assert.False(t, CanView(lesson(models.PrivacyPrivate), &Principal{}))
}

func TestCanReadContent(t *testing.T) {
	item := lesson(models.PrivacyPublic)
	assert.True(t, CanReadContent(item, nil))

	item.AccessLevel = models.AccessPremium
	assert.False(t, CanReadContent(item, nil))
	assert.False(t, CanReadContent(item, freeUser))
	assert.True(t, CanReadContent(item, premium))
	assert.True(t, CanReadContent(item, adminUser))
	assert.True(t, CanReadContent(item, &Principal{Email: "owner@x.com"}))
}

func TestCanCreateWithAccess(t *testing.T) {
	assert.True(t, CanCreateWithAccess(models.AccessFree, freeUser))
	assert.False(t, CanCreateWithAccess(models.AccessPremium, freeUser))
	assert.True(t, CanCreateWithAccess(models.AccessPremium, premium))
	assert.False(t, CanCreateWithAccess(models.AccessFree, nil))
}

func TestGuards(t *testing.T) {
	assert.True(t, errs.IsKind(RequireAuthenticated(nil), errs.KindUnauthorized))
	assert.True(t, errs.IsKind(RequireAdmin(nil), errs.KindUnauthorized))
	assert.True(t, errs.IsKind(RequireAdmin(freeUser), errs.KindForbidden))
	assert.NoError(t, RequireAdmin(adminUser))

	assert.True(t, errs.IsKind(RequirePremiumOrAdmin(freeUser), errs.KindForbidden))
	assert.NoError(t, RequirePremiumOrAdmin(premium))
	assert.NoError(t, RequirePremiumOrAdmin(adminUser))

	ownerOrAdmin := RequireOwnerOrAdmin("a@x.com")
	assert.NoError(t, ownerOrAdmin(freeUser))
	assert.NoError(t, ownerOrAdmin(adminUser))
	assert.True(t, errs.IsKind(ownerOrAdmin(premium), errs.KindForbidden))

	assert.True(t, errs.IsKind(RequireOwner("a@x.com")(adminUser), errs.KindForbidden))
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(p *Principal) error {
		calls++
		return nil
	}
	g := All(RequireAuthenticated, counting, RequireAdmin, counting)

	err := g(freeUser)
	assert.True(t, errs.IsKind(err, errs.KindForbidden))
	assert.Equal(t, 1, calls)

	assert.NoError(t, g(adminUser))
	assert.Equal(t, 3, calls)
}

func TestParseListQueryDefaults(t *testing.T) {
	q, err := ParseListQuery(RawListQuery{})
	require.NoError(t, err)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, 0, q.Offset())

	q, err = ParseListQuery(RawListQuery{Sort: "Oldest", Page: "3", Limit: "10", Search: "  grief "})
	require.NoError(t, err)
	assert.Equal(t, SortOldest, q.Sort)
	assert.Equal(t, 20, q.Offset())
	assert.Equal(t, "grief", q.Search)
}

func TestParseListQueryRejectsBadInput(t *testing.T) {
	_, err := ParseListQuery(RawListQuery{Sort: "popular", Page: "0", Limit: "500"})
	require.Error(t, err)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindValidation, e.Kind)
	assert.Contains(t, e.Fields, "sort")
	assert.Contains(t, e.Fields, "page")
	assert.Contains(t, e.Fields, "limit")
}

func TestFilterFreeUserSeesPublicNewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []models.Lesson{
		{ID: 1, Title: "Old public", Privacy: models.PrivacyPublic, CreatedAt: base},
		{ID: 2, Title: "Private", Privacy: models.PrivacyPrivate, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Title: "New public", Privacy: models.PrivacyPublic, CreatedAt: base.Add(2 * time.Hour)},
	}
	q, err := ParseListQuery(RawListQuery{})
	require.NoError(t, err)

	got := Filter(items, freeUser, q)
	require.Len(t, got, 2)
	assert.Equal(t, uint(3), got[0].ID)
	assert.Equal(t, uint(1), got[1].ID)

	assert.Len(t, Filter(items, premium, q), 3)
}

func TestFilterAppliesSearchCategoryTone(t *testing.T) {
	items := []models.Lesson{
		{ID: 1, Title: "Letting Go", Category: "Personal Growth", EmotionalTone: "Reflective", Privacy: models.PrivacyPublic},
		{ID: 2, Title: "letting the team lead", Category: "Leadership", EmotionalTone: "Motivational", Privacy: models.PrivacyPublic},
		{ID: 3, Title: "Patience", Category: "Personal Growth", EmotionalTone: "Reflective", Privacy: models.PrivacyPublic},
	}

	q := ListQuery{Search: "LETTING", Sort: SortNewest}
	assert.Len(t, Filter(items, nil, q), 2)

	q = ListQuery{Search: "letting", Category: "Personal Growth", Tone: "Reflective", Sort: SortNewest}
	got := Filter(items, nil, q)
	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)
}

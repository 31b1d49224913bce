package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"
	"lessons/backend/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "testsecret"

type usersByEmail map[string]*models.User

func (u usersByEmail) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if email == "down@x.com" {
		return nil, errors.New("connection refused")
	}
	user, ok := u[email]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	return user, nil
}

func token(t *testing.T, email string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken(email, secret, ttl)
	require.NoError(t, err)
	return tok
}

func TestResolveReadsCurrentUser(t *testing.T) {
	users := usersByEmail{"a@x.com": {Email: "a@x.com", Role: models.RoleUser}}
	r := NewResolver(NewJWTVerifier(secret), users)
	ctx := context.Background()

	p, claims, err := r.Resolve(ctx, "Bearer "+token(t, "A@x.com", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", p.Email)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.False(t, p.IsPremium)

	users["a@x.com"].IsPremium = true
	p, _, err = r.Resolve(ctx, "Bearer "+token(t, "a@x.com", time.Hour))
	require.NoError(t, err)
	assert.True(t, p.IsPremium)
}

func TestResolveUnregisteredUser(t *testing.T) {
	r := NewResolver(NewJWTVerifier(secret), usersByEmail{})
	p, _, err := r.Resolve(context.Background(), "Bearer "+token(t, "new@x.com", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", p.Email)
	assert.Equal(t, models.RoleUser, p.Role)
	assert.Zero(t, p.ID)
}

func TestResolveRejectsBadCredentials(t *testing.T) {
	r := NewResolver(NewJWTVerifier(secret), usersByEmail{})
	ctx := context.Background()

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc def",
		"garbage":      "Bearer not-a-token",
		"expired":      "Bearer " + token(t, "a@x.com", -time.Minute),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := r.Resolve(ctx, header)
			assert.True(t, errs.IsKind(err, errs.KindUnauthorized), err)
		})
	}

	other, err := utils.GenerateJWTToken("a@x.com", "other-secret", time.Hour)
	require.NoError(t, err)
	_, _, err = r.Resolve(ctx, "Bearer "+other)
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	r := NewResolver(NewJWTVerifier(secret), usersByEmail{})
	_, _, err := r.Resolve(context.Background(), "Bearer "+token(t, "down@x.com", time.Hour))
	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}

func TestResolveOptional(t *testing.T) {
	r := NewResolver(NewJWTVerifier(secret), usersByEmail{})
	ctx := context.Background()

	p, _, err := r.ResolveOptional(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, _, err = r.ResolveOptional(ctx, "Bearer nope")
	assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
}

func TestBearerTokenAcceptsBareToken(t *testing.T) {
	assert.Equal(t, "abc", utils.BearerToken("abc"))
	assert.Equal(t, "abc", utils.BearerToken("bearer abc"))
	assert.Equal(t, "", utils.BearerToken("Basic abc"))
}

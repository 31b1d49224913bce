// Package identity turns inbound credentials into verified principals.
package identity

import (
	"context"
	"strings"

	"lessons/backend/errs"
	"lessons/backend/models"
	"lessons/backend/policy"
	"lessons/backend/utils"
)

// Claims is what a verifier vouches for.
type Claims struct {
	Email string
	Name  string
	Photo string
	Raw   map[string]interface{}
}

// Verifier checks a raw bearer token. Any failure is reported as
// errs.KindUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// UserLookup reads the current user record. Absent users yield
// errs.KindNotFound.
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Resolver struct {
	verifier Verifier
	users    UserLookup
}

func NewResolver(verifier Verifier, users UserLookup) *Resolver {
	return &Resolver{verifier: verifier, users: users}
}

// Resolve requires a credential. The user record is re-read on every call so
// role and premium changes apply to the next request.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (*policy.Principal, *Claims, error) {
	token := utils.BearerToken(authorization)
	if token == "" {
		return nil, nil, errs.Unauthorized("missing bearer token")
	}
	claims, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, nil, errs.Unauthorized("token carries no email")
	}
	claims.Email = email

	user, err := r.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return policy.FromUser(user), claims, nil
	case errs.IsKind(err, errs.KindNotFound):
		// Verified but not registered yet.
		return &policy.Principal{Email: email, Name: claims.Name, PhotoURL: claims.Photo, Role: models.RoleUser}, claims, nil
	default:
		return nil, nil, err
	}
}

// ResolveOptional treats a missing header as the anonymous principal but
// still rejects a malformed or invalid one.
func (r *Resolver) ResolveOptional(ctx context.Context, authorization string) (*policy.Principal, *Claims, error) {
	if strings.TrimSpace(authorization) == "" {
		return nil, nil, nil
	}
	return r.Resolve(ctx, authorization)
}

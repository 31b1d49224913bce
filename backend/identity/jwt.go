package identity

import (
	"context"

	"lessons/backend/errs"
	"lessons/backend/utils"
)

// JWTVerifier checks HS256 tokens issued by the local login flow.
type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (*Claims, error) {
	claims, err := utils.ParseJWTToken(rawToken, v.secret)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnauthorized, err, "unauthorized access")
	}
	email, _ := claims["email"].(string)
	return &Claims{Email: email, Raw: claims}, nil
}

package identity

import (
	"context"
	"encoding/base64"
	"fmt"

	"lessons/backend/errs"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase ID tokens minted by the web client.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier expects the service account JSON base64 encoded.
func NewFirebaseVerifier(ctx context.Context, serviceKeyB64 string) (*FirebaseVerifier, error) {
	raw, err := base64.StdEncoding.DecodeString(serviceKeyB64)
	if err != nil {
		return nil, fmt.Errorf("decode FB_SERVICE_KEY: %w", err)
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.client.VerifyIDToken(ctx, rawToken)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnauthorized, err, "unauthorized access")
	}
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	picture, _ := token.Claims["picture"].(string)
	return &Claims{Email: email, Name: name, Photo: picture, Raw: token.Claims}, nil
}

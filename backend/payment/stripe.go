package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lessons/backend/errs"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

// StripeGateway adapts Stripe Checkout to the Gateway port.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil), webhookSecret: webhookSecret}
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, translateStripeError(err, id)
	}
	return fromStripe(s), nil
}

func (g *StripeGateway) CreateSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, translateStripeError(err, "")
	}
	return fromStripe(s), nil
}

// SessionFromWebhook verifies the Stripe-Signature header and returns the
// session id of a completed checkout. Other event types are acknowledged
// and ignored.
func (g *StripeGateway) SessionFromWebhook(payload []byte, signature string) (string, bool, error) {
	if g.webhookSecret == "" {
		return "", false, errs.Forbidden("webhooks are not configured")
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return "", false, errs.Wrap(errs.KindUnauthorized, err, "invalid webhook signature")
	}
	if event.Type != eventCheckoutCompleted {
		return "", false, nil
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return "", false, errs.Wrap(errs.KindInvalidSession, err, "decode checkout session")
	}
	return s.ID, true, nil
}

func fromStripe(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if s.PaymentIntent != nil {
		out.TransactionID = s.PaymentIntent.ID
	}
	return out
}

func translateStripeError(err error, sessionID string) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == http.StatusNotFound || se.Code == stripe.ErrorCodeResourceMissing {
			return errs.Wrap(errs.KindSessionNotFound, err, "checkout session %q not found", sessionID)
		}
		if se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.Type == stripe.ErrorTypeInvalidRequest {
			return errs.Wrap(errs.KindInvalidSession, err, "stripe rejected request")
		}
	}
	return errs.Wrap(errs.KindGateway, err, "stripe request failed")
}

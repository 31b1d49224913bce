// Package payment applies external payment confirmations to premium
// entitlements.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lessons/backend/errs"
	"lessons/backend/models"
	"lessons/backend/policy"
)

const StatusPaid = "paid"

// Metadata keys written on checkout and read back on confirmation.
const (
	MetaEmail = "email"
	MetaPlan  = "plan"
)

// Session is the gateway-neutral view of a checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	TransactionID string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

type CheckoutRequest struct {
	Email       string
	ProductName string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Gateway is the payment provider port. RetrieveSession reports unknown ids
// as errs.KindSessionNotFound and transport failures as errs.KindGateway.
type Gateway interface {
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	CreateSession(ctx context.Context, req CheckoutRequest) (*Session, error)
}

type Repository interface {
	// InsertIfAbsent stores rec unless its TransactionID already exists and
	// reports whether a row was written.
	InsertIfAbsent(ctx context.Context, rec *models.Payment) (bool, error)
	// ActivatePremium sets isPremium for email, creating the user if needed.
	ActivatePremium(ctx context.Context, email, plan string, at time.Time) error
	ListByEmail(ctx context.Context, email string) ([]models.Payment, error)
	ListAll(ctx context.Context) ([]models.Payment, error)
}

type Plan struct {
	Name        string
	Title       string
	AmountCents int64
	Currency    string
}

// WebhookSource authenticates a provider callback and extracts the session
// id of a completed checkout. ok is false for events that need no action.
type WebhookSource interface {
	SessionFromWebhook(payload []byte, signature string) (sessionID string, ok bool, err error)
}

type Options struct {
	Plans     map[string]Plan
	ClientURL string
	Webhooks  WebhookSource
}

type Gate struct {
	gateway Gateway
	repo    Repository
	opts    Options
	now     func() time.Time
}

func NewGate(gateway Gateway, repo Repository, opts Options) *Gate {
	return &Gate{gateway: gateway, repo: repo, opts: opts, now: time.Now}
}

type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Checkout opens a gateway session for plan on behalf of p.
func (g *Gate) Checkout(ctx context.Context, p *policy.Principal, planName string) (*CheckoutResult, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	if planName == "" {
		planName = models.PlanPremium
	}
	plan, ok := g.opts.Plans[planName]
	if !ok {
		return nil, errs.Validation("unknown plan", map[string]string{"plan": planName})
	}
	if p.IsPremium {
		return nil, errs.Conflict("account is already premium")
	}

	sess, err := g.gateway.CreateSession(ctx, CheckoutRequest{
		Email:       p.Email,
		ProductName: plan.Title,
		AmountCents: plan.AmountCents,
		Currency:    plan.Currency,
		SuccessURL:  g.opts.ClientURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   g.opts.ClientURL + "/payment/cancel",
		Metadata:    map[string]string{MetaEmail: p.Email, MetaPlan: plan.Name},
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

type Result struct {
	Email         string `json:"email"`
	Plan          string `json:"plan"`
	TransactionID string `json:"transactionId"`
	// Recorded is false when the transaction had already been applied.
	Recorded bool `json:"recorded"`
}

// ConfirmPayment applies a paid session. Replays of the same session are
// absorbed by the transaction id key and are safe to retry after a timeout.
func (g *Gate) ConfirmPayment(ctx context.Context, sessionID string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errs.Validation("sessionId is required", map[string]string{"sessionId": "required"})
	}

	sess, err := g.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != StatusPaid {
		return nil, errs.New(errs.KindPaymentIncomplete, fmt.Sprintf("payment status is %q", sess.PaymentStatus))
	}

	email := strings.TrimSpace(sess.Metadata[MetaEmail])
	plan := strings.TrimSpace(sess.Metadata[MetaPlan])
	if sess.TransactionID == "" || email == "" || plan == "" {
		return nil, errs.New(errs.KindInvalidSession, "session is missing transaction id, email or plan")
	}

	now := g.now().UTC()
	recorded, err := g.repo.InsertIfAbsent(ctx, &models.Payment{
		TransactionID: sess.TransactionID,
		SessionID:     sess.ID,
		Email:         email,
		Plan:          plan,
		Amount:        sess.AmountTotal,
		Currency:      sess.Currency,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("record payment %s: %w", sess.TransactionID, err)
	}

	if err := g.repo.ActivatePremium(ctx, email, plan, now); err != nil {
		return nil, fmt.Errorf("activate premium for paid session %s: %w", sess.ID, err)
	}

	return &Result{Email: email, Plan: plan, TransactionID: sess.TransactionID, Recorded: recorded}, nil
}

// ConfirmFromWebhook runs ConfirmPayment for a verified completion event.
// A nil result with a nil error means the event was ignored.
func (g *Gate) ConfirmFromWebhook(ctx context.Context, payload []byte, signature string) (*Result, error) {
	if g.opts.Webhooks == nil {
		return nil, errs.Forbidden("webhooks are not configured")
	}
	sessionID, ok, err := g.opts.Webhooks.SessionFromWebhook(payload, signature)
	if err != nil || !ok {
		return nil, err
	}
	return g.ConfirmPayment(ctx, sessionID)
}

func (g *Gate) History(ctx context.Context, p *policy.Principal) ([]models.Payment, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	return g.repo.ListByEmail(ctx, p.Email)
}

func (g *Gate) All(ctx context.Context, p *policy.Principal) ([]models.Payment, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	return g.repo.ListAll(ctx)
}

package payment

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"lessons/backend/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

func TestTranslateStripeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.Kind
	}{
		{
			name: "missing session",
			err:  &stripe.Error{HTTPStatusCode: 404, Code: stripe.ErrorCodeResourceMissing, Type: stripe.ErrorTypeInvalidRequest},
			want: errs.KindSessionNotFound,
		},
		{
			name: "wrapped missing session",
			err:  fmt.Errorf("get session: %w", &stripe.Error{HTTPStatusCode: 404}),
			want: errs.KindSessionNotFound,
		},
		{
			name: "rejected parameters",
			err:  &stripe.Error{HTTPStatusCode: 400, Type: stripe.ErrorTypeInvalidRequest, Msg: "No such price"},
			want: errs.KindInvalidSession,
		},
		{
			name: "stripe outage",
			err:  &stripe.Error{HTTPStatusCode: 500, Type: stripe.ErrorTypeAPI},
			want: errs.KindGateway,
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection reset"),
			want: errs.KindGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateStripeError(tt.err, "cs_1")
			assert.Equal(t, tt.want, errs.KindOf(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

const testWebhookSecret = "whsec_test"

func signed(t *testing.T, payload string, at time.Time) string {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: at,
	})
	require.NotEmpty(t, sp.Header)
	return sp.Header
}

func TestSessionFromWebhook(t *testing.T) {
	completed := `{"id":"evt_1","object":"event","type":"checkout.session.completed",` +
		`"data":{"object":{"id":"cs_1","object":"checkout.session","payment_status":"paid"}}}`
	refunded := `{"id":"evt_2","object":"event","type":"charge.refunded",` +
		`"data":{"object":{"id":"ch_1","object":"charge"}}}`
	now := time.Now()

	gw := NewStripeGateway("sk_test", testWebhookSecret)

	tests := []struct {
		name      string
		gateway   *StripeGateway
		payload   string
		signature string
		wantID    string
		wantOK    bool
		wantKind  errs.Kind
	}{
		{"completed checkout", gw, completed, signed(t, completed, now), "cs_1", true, ""},
		{"other event ignored", gw, refunded, signed(t, refunded, now), "", false, ""},
		{"forged signature", gw, completed, "t=1,v1=deadbeef", "", false, errs.KindUnauthorized},
		{"tampered payload", gw, completed + " ", signed(t, completed, now), "", false, errs.KindUnauthorized},
		{"stale timestamp", gw, completed, signed(t, completed, now.Add(-time.Hour)), "", false, errs.KindUnauthorized},
		{"not configured", NewStripeGateway("sk_test", ""), completed, signed(t, completed, now), "", false, errs.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok, err := tt.gateway.SessionFromWebhook([]byte(tt.payload), tt.signature)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

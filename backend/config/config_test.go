package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:         "s",
		JWTTTL:            time.Hour,
		AuthProvider:      AuthProviderJWT,
		PremiumPriceCents: 1500,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"jwt ok", func(c *Config) {}, ""},
		{"jwt without secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"firebase without key", func(c *Config) { c.AuthProvider = AuthProviderFirebase }, "FB_SERVICE_KEY"},
		{"firebase ok", func(c *Config) {
			c.AuthProvider = AuthProviderFirebase
			c.FirebaseServiceKey = "e30="
		}, ""},
		{"unknown provider", func(c *Config) { c.AuthProvider = "ldap" }, "unknown AUTH_PROVIDER"},
		{"free premium", func(c *Config) { c.PremiumPriceCents = 0 }, "PREMIUM_PRICE_CENTS"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL_HOURS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "JWT")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("CLIENT_URL", "https://lessons.example/")
	t.Setenv("PAYMENT_CURRENCY", "EUR")
	t.Setenv("PREMIUM_PRICE_CENTS", "not a number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "https://lessons.example", cfg.ClientURL)
	assert.Equal(t, "eur", cfg.PaymentCurrency)
	assert.EqualValues(t, 1500, cfg.PremiumPriceCents)
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "saml")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable", c.DSN())
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	ServerPort string

	JWTSecret    string
	JWTTTL       time.Duration
	AuthProvider string
	// Base64 encoded service account JSON, as the hosting platform stores it.
	FirebaseServiceKey string

	StripeSecretKey     string
	StripeWebhookSecret string
	ClientURL           string
	PremiumPriceCents   int64
	PaymentCurrency     string

	CORSOrigins  string
	LogMode      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() (*Config, error) {
	loadErr := godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "lessons"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		ServerPort: getEnv("SERVER_PORT", "3000"),

		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		JWTTTL:             time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
		AuthProvider:       strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderJWT)),
		FirebaseServiceKey: getEnv("FB_SERVICE_KEY", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		ClientURL:           strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
		PremiumPriceCents:   int64(getEnvInt("PREMIUM_PRICE_CENTS", 1500)),
		PaymentCurrency:     strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),

		CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:5174"),
		LogMode:      getEnv("LOG_MODE", "dev"),
		ReadTimeout:  time.Duration(getEnvInt("READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("WRITE_TIMEOUT", 15)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		if loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (loading .env: %v)", err, loadErr)
		}
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.AuthProvider {
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET must be set when AUTH_PROVIDER=jwt")
		}
	case AuthProviderFirebase:
		if c.FirebaseServiceKey == "" {
			return errors.New("FB_SERVICE_KEY must be set when AUTH_PROVIDER=firebase")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}
	if c.PremiumPriceCents <= 0 {
		return errors.New("PREMIUM_PRICE_CENTS must be positive")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultValue
	}
	return v
}

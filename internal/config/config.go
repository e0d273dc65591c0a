package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/logger"
)

// Config holds every externally supplied setting. It is built once at start-up
// and handed to the components that need it.
type Config struct {
	Env         string
	Port        string
	ServiceName string

	MongoURI string
	MongoDB  string

	JWTSecret string
	TokenTTL  time.Duration

	StripeSecretKey      string
	StripePublishableKey string
	Currency             string

	RedisURL string

	OrderEventsTopicARN string
	ReconcileQueueURL   string
	ReconcileInterval   time.Duration
	ReconcileGrace      time.Duration

	AllowedOrigins []string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
	UseSecretsManager   bool
}

// SecretSource resolves a named secret.
type SecretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Secret names read when AWS_USE_SECRETS=true.
const (
	SecretJWT       = "shop/JWT_SECRET"
	SecretMongoURI  = "shop/MONGO_URI"
	SecretStripeKey = "shop/STRIPE_SECRET_KEY"
)

// Load reads the environment into a Config. When UseSecretsManager is set and
// secrets is non-nil, secrets override the matching env values; a failed
// lookup keeps the env value.
func Load(ctx context.Context, secrets SecretSource) (*Config, error) {
	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8000"),
		ServiceName:          getEnv("SERVICE_NAME", "online-shop"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDB:              getEnv("MONGO_DB", "shop"),
		JWTSecret:            strings.TrimSpace(os.Getenv("JWT_SECRET")),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		Currency:             strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		RedisURL:             os.Getenv("REDIS_URL"),
		OrderEventsTopicARN:  os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		ReconcileQueueURL:    os.Getenv("RECONCILE_QUEUE_URL"),
		AllowedOrigins:       splitList(os.Getenv("ALLOWED_ORIGINS")),
		CloudWatchEnabled:    os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace:  getEnv("CLOUDWATCH_NAMESPACE", "OnlineShop"),
		CloudWatchLogGroup:   getEnv("CLOUDWATCH_LOG_GROUP", "/online-shop/services"),
		UseSecretsManager:    os.Getenv("AWS_USE_SECRETS") == "true",
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = getDuration("RECONCILE_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ReconcileGrace, err = getDuration("RECONCILE_GRACE", 2*time.Minute); err != nil {
		return nil, err
	}

	if cfg.UseSecretsManager && secrets != nil {
		override(ctx, secrets, SecretJWT, &cfg.JWTSecret)
		override(ctx, secrets, SecretMongoURI, &cfg.MongoURI)
		override(ctx, secrets, SecretStripeKey, &cfg.StripeSecretKey)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func override(ctx context.Context, secrets SecretSource, name string, dst *string) {
	v, err := secrets.GetSecret(ctx, name)
	if err != nil || v == "" {
		logger.Log.Warn("secret unavailable, using environment value", zap.String("secret", name), zap.Error(err))
		return
	}
	*dst = v
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSuffix(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}

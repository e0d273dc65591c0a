package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_env")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "shop", cfg.MongoDB)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Minute, cfg.ReconcileInterval)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := Load(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestLoadInvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "a week")

	_, err := Load(context.Background(), nil)
	assert.ErrorContains(t, err, "TOKEN_TTL")
}

func TestLoadSecretsOverride(t *testing.T) {
	setRequired(t)
	t.Setenv("AWS_USE_SECRETS", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000/, https://shop.example.com")

	cfg, err := Load(context.Background(), fakeSecrets{SecretJWT: "sm-secret"})
	require.NoError(t, err)

	assert.Equal(t, "sm-secret", cfg.JWTSecret)
	assert.Equal(t, "sk_test_env", cfg.StripeSecretKey, "failed lookup keeps env value")
	assert.Equal(t, []string{"http://localhost:3000", "https://shop.example.com"}, cfg.AllowedOrigins)
}

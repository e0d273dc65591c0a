package awspkg

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

var (
	// ErrSecretNotFound is returned when no secret carries the requested name.
	ErrSecretNotFound = errors.New("secret not found")
	// ErrSecretNotString is returned for secrets stored as binary or left empty.
	// The shop's JWT key, Mongo URI and Stripe key are all plain strings.
	ErrSecretNotString = errors.New("secret has no string value")
)

type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient resolves the shop's startup credentials from Secrets Manager.
// A value is fetched once per name and reused for the life of the process;
// failed lookups are not remembered, so config.Load can fall back to the
// environment and a later call may still succeed.
type SecretsClient struct {
	client secretsAPI

	mu     sync.RWMutex
	values map[string]string
}

func NewSecretsClient(cfg sdkaws.Config) *SecretsClient {
	return newSecretsClient(secretsmanager.NewFromConfig(cfg))
}

func newSecretsClient(api secretsAPI) *SecretsClient {
	return &SecretsClient{client: api, values: make(map[string]string)}
}

// GetSecret returns the string value stored under name. Errors wrap
// ErrSecretNotFound or ErrSecretNotString when the secret is missing or
// unusable, and the SDK error otherwise.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := s.lookup(name); ok {
		return v, nil
	}

	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("secret %q: %w", name, ErrSecretNotFound)
		}
		return "", fmt.Errorf("read secret %q: %w", name, err)
	}

	value := sdkaws.ToString(out.SecretString)
	if value == "" {
		return "", fmt.Errorf("secret %q: %w", name, ErrSecretNotString)
	}

	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()
	return value, nil
}

func (s *SecretsClient) lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

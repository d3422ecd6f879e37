package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
)

// SecretsAPI is the subset of the Secrets Manager client used for direct
// lookups when the in-process cache is unavailable.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SigningKeyRepository resolves the JWT signing secret from Secrets Manager.
// Lookups go through the secretcache client so warm Lambda invocations avoid
// repeated API calls. An optional fallback secret covers local development
// where Secrets Manager is not reachable.
type SigningKeyRepository struct {
	secretsClient SecretsAPI
	secretCache   *secretcache.Cache
	secretID      string
	fallback      string
	logger        *slog.Logger

	mu     sync.RWMutex
	cached []byte
}

// NewSigningKeyRepository creates a new SigningKeyRepository
func NewSigningKeyRepository(secretsClient *secretsmanager.Client, secretID, fallback string, logger *slog.Logger) *SigningKeyRepository {
	cache, err := secretcache.New(
		func(c *secretcache.Cache) {
			c.Client = secretsClient
		},
	)
	if err != nil {
		// Fall back to direct API calls when the cache cannot be built
		logger.Warn("failed to initialize secret cache", "error", err)
		cache = nil
	}

	return &SigningKeyRepository{
		secretsClient: secretsClient,
		secretCache:   cache,
		secretID:      secretID,
		fallback:      fallback,
		logger:        logger,
	}
}

// SigningSecret returns the HMAC secret used to sign and verify tokens
func (r *SigningKeyRepository) SigningSecret(ctx context.Context) ([]byte, error) {
	r.mu.RLock()
	if r.cached != nil {
		defer r.mu.RUnlock()
		return r.cached, nil
	}
	r.mu.RUnlock()

	var secretString string
	var err error

	if r.secretCache != nil {
		secretString, err = r.secretCache.GetSecretString(r.secretID)
	} else {
		var result *secretsmanager.GetSecretValueOutput
		result, err = r.secretsClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(r.secretID),
		})
		if err == nil {
			secretString = aws.ToString(result.SecretString)
		}
	}

	if err != nil {
		if r.fallback != "" {
			r.logger.Warn("signing secret lookup failed, using fallback secret", "secretId", r.secretID, "error", err)
			return []byte(r.fallback), nil
		}
		return nil, fmt.Errorf("failed to get signing secret: %w", err)
	}

	secretString = strings.TrimSpace(secretString)
	if secretString == "" {
		return nil, fmt.Errorf("signing secret %q is empty", r.secretID)
	}

	secret := []byte(secretString)
	r.mu.Lock()
	r.cached = secret
	r.mu.Unlock()

	return secret, nil
}

// StaticSigningKey is a fixed in-memory secret for tests and local tooling
type StaticSigningKey []byte

// SigningSecret returns the static secret
func (s StaticSigningKey) SigningSecret(ctx context.Context) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("static signing secret is empty")
	}
	return []byte(s), nil
}

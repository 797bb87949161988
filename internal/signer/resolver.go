package signer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quotedesk/rfq-client/pkg/secrets"
)

// KeyResolver resolves the signing key from a secrets backend, caching the
// constructed signer so the secret is fetched at most once per TTL.
type KeyResolver struct {
	logger      *zap.Logger
	provider    secrets.Provider
	cache       *secrets.Cache[*LocalSigner]
	secretName  string
	secretField string
}

// NewKeyResolver creates a resolver for the named secret. secretField is
// the JSON field inside the secret holding the hex key (e.g. "signing_key").
func NewKeyResolver(
	logger *zap.Logger,
	provider secrets.Provider,
	cache *secrets.Cache[*LocalSigner],
	secretName, secretField string,
) *KeyResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyResolver{
		logger:      logger,
		provider:    provider,
		cache:       cache,
		secretName:  secretName,
		secretField: secretField,
	}
}

// Resolve returns a signer for the configured secret.
func (r *KeyResolver) Resolve(ctx context.Context) (*LocalSigner, error) {
	if s, ok := r.cache.Get(r.secretName); ok {
		return s, nil
	}

	values, err := r.provider.GetSecret(ctx, r.secretName)
	if err != nil {
		r.logger.Error("signer.secret_fetch_failed",
			zap.String("secret", r.secretName),
			zap.Error(err))
		return nil, fmt.Errorf("resolve signing key: %w", err)
	}

	hexKey, ok := values[r.secretField]
	if !ok || hexKey == "" {
		return nil, fmt.Errorf("secret [%s] missing field %q", r.secretName, r.secretField)
	}

	s, err := NewLocalSigner(hexKey)
	if err != nil {
		return nil, err
	}

	r.cache.Put(r.secretName, s)
	r.logger.Info("signer.key_resolved", zap.String("secret", r.secretName))
	return s, nil
}

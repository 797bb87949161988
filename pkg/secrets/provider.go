package secrets

import "context"

// Provider defines a generic secrets backend.
// Concrete implementations (AWS, GCP, etc.) can satisfy this.
type Provider interface {
	// GetSecret retrieves a secret by name and returns a key-value map.
	GetSecret(ctx context.Context, name string) (map[string]string, error)
}

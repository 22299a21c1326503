package storefront

import (
	"context"
	"errors"
	"sync"
)

// ErrCredentialsNotFound indicates no credentials exist for a reference
var ErrCredentialsNotFound = errors.New("storefront: credentials not found")

// Credentials are resolved platform API credentials. Shopify uses
// AccessToken; WooCommerce uses the consumer key/secret pair.
type Credentials struct {
	AccessToken    string
	ConsumerKey    string
	ConsumerSecret string
}

// CredentialResolver resolves an integration's credentials reference to the
// actual secrets. Integrations store only a reference, never the secret.
type CredentialResolver interface {
	Resolve(ctx context.Context, ref string) (*Credentials, error)
}

// StaticCredentialResolver is an in-memory CredentialResolver. Suitable for
// single-instance deployments and testing; production deployments back this
// with a secret manager.
type StaticCredentialResolver struct {
	mu    sync.RWMutex
	creds map[string]*Credentials
}

// NewStaticCredentialResolver creates an empty static resolver
func NewStaticCredentialResolver() *StaticCredentialResolver {
	return &StaticCredentialResolver{
		creds: make(map[string]*Credentials),
	}
}

// Set stores credentials under a reference
func (r *StaticCredentialResolver) Set(ref string, creds *Credentials) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[ref] = creds
}

// Resolve returns the credentials for a reference
func (r *StaticCredentialResolver) Resolve(ctx context.Context, ref string) (*Credentials, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	creds, ok := r.creds[ref]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return creds, nil
}

package source

import (
	"fmt"
	"net/http"

	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const defaultUserAgent = "b4s/1.0"

// RepositoryOption configures a remote repository.
type RepositoryOption func(*repositoryConfig)

type repositoryConfig struct {
	plainHTTP  bool
	userAgent  string
	credential auth.CredentialFunc
}

// WithPlainHTTP enables plain HTTP (no TLS) for registries.
// This is useful for local development registries.
func WithPlainHTTP(enabled bool) RepositoryOption {
	return func(c *repositoryConfig) {
		c.plainHTTP = enabled
	}
}

// WithDockerConfig reads credentials from ~/.docker/config.json and the
// credential helpers it names. If the config cannot be loaded the
// repository is accessed anonymously.
func WithDockerConfig() RepositoryOption {
	return func(c *repositoryConfig) {
		store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
		if err != nil {
			return
		}
		c.credential = credentials.Credential(store)
	}
}

// WithStaticCredentials sets username/password credentials for a registry host.
func WithStaticCredentials(registry, username, password string) RepositoryOption {
	return func(c *repositoryConfig) {
		c.credential = auth.StaticCredential(registry, auth.Credential{
			Username: username,
			Password: password,
		})
	}
}

// WithStaticToken sets a bearer token for a registry host.
func WithStaticToken(registry, token string) RepositoryOption {
	return func(c *repositoryConfig) {
		c.credential = auth.StaticCredential(registry, auth.Credential{
			AccessToken: token,
		})
	}
}

// WithUserAgent sets the User-Agent header for registry requests.
func WithUserAgent(ua string) RepositoryOption {
	return func(c *repositoryConfig) {
		c.userAgent = ua
	}
}

// Repository returns a client for the remote repository named by ref,
// e.g. "ghcr.io/acme/words:en". Requests retry on transient failures.
func Repository(ref string, opts ...RepositoryOption) (*remote.Repository, error) {
	cfg := repositoryConfig{userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo, err := remote.NewRepository(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidReference, ref, err)
	}
	repo.PlainHTTP = cfg.plainHTTP
	repo.Client = &auth.Client{
		Client:     retry.DefaultClient,
		Cache:      auth.NewCache(),
		Credential: cfg.credential,
		Header: http.Header{
			"User-Agent": []string{cfg.userAgent},
		},
	}
	return repo, nil
}

//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"oras.land/oras-go/v2/registry/remote"

	"github.com/meigma/b4s/internal/testutil"
	"github.com/meigma/b4s/source"
)

// registry is the registry:2 container shared by every test in the package.
// It is started on first use and reaped by testcontainers.
var registry struct {
	once sync.Once
	addr string
	err  error
}

// registryAddr returns host:port of the shared registry. Set
// SKIP_DOCKER_TESTS=1 to skip tests that need it.
func registryAddr(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}
	registry.once.Do(func() {
		registry.addr, registry.err = runRegistry(context.Background())
	})
	if registry.err != nil {
		tb.Fatalf("registry: %v", registry.err)
	}
	return registry.addr
}

func runRegistry(ctx context.Context) (string, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "registry:2",
			ExposedPorts: []string{"5000/tcp"},
			WaitingFor: wait.ForHTTP("/v2/").
				WithPort("5000/tcp").
				WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }),
		},
		Started: true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry:2: %w", err)
	}
	addr, err := c.Endpoint(ctx, "")
	if err != nil {
		return "", fmt.Errorf("registry endpoint: %w", err)
	}
	return addr, nil
}

// testRef returns a per-test reference so tests never share a repository.
func testRef(tb testing.TB, name string) string {
	tb.Helper()
	return fmt.Sprintf("%s/b4s/%s:latest", registryAddr(tb), name)
}

// newRepository opens a plain-HTTP repository for ref.
func newRepository(tb testing.TB, ref string) *remote.Repository {
	tb.Helper()
	repo, err := source.Repository(ref, source.WithPlainHTTP(true))
	require.NoError(tb, err, "open repository %s", ref)
	return repo
}

// newTestLoader creates a loader configured for the local test registry.
func newTestLoader(opts ...source.LoaderOption) *source.Loader {
	allOpts := append([]source.LoaderOption{
		source.LoaderWithRepositoryOptions(source.WithPlainHTTP(true)),
	}, opts...)
	return source.NewLoader(allOpts...)
}

// wordList returns a deterministic sorted newline-separated word list.
func wordList(n int) (string, []string) {
	words := testutil.Words(n, int64(n))
	return testutil.Haystack(words, '\n'), words
}

package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/meigma/b4s/internal/sizing"
)

// Fetch loads a word list from url with a single GET request.
func Fetch(ctx context.Context, url string, opts ...Option) (string, error) {
	return fetch(ctx, url, newOptions(opts))
}

func fetch(ctx context.Context, url string, o *options) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	for key, values := range o.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain for connection reuse
		_ = resp.Body.Close()
	}()

	if err := statusError(resp); err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if sizing.Exceeds(resp.ContentLength, o.maxSize) {
		return "", fmt.Errorf("fetch %s: %w: %d bytes", url, ErrTooLarge, resp.ContentLength)
	}

	o.logger.Debug("fetching word list",
		slog.String("url", url),
		slog.Int64("content_length", resp.ContentLength))

	text, err := read(resp.Body, o)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return text, nil
}

// statusError maps a non-2xx response to a sentinel error.
func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, resp.Status)
	default:
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
}

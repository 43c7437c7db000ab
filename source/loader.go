package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/meigma/b4s"
	"github.com/meigma/b4s/cache"
)

// Location schemes understood by Loader.
const (
	SchemeHTTP  = "http://"
	SchemeHTTPS = "https://"
	SchemeOCI   = "oci://"
	SchemeFile  = "file://"
)

// Loader resolves location strings to word lists.
//
// A location is an http:// or https:// URL, an oci:// registry reference
// such as oci://ghcr.io/acme/words:en, or a file path (optionally prefixed
// with file://). Concurrent loads of the same location are coalesced.
// A Loader is safe for concurrent use.
type Loader struct {
	cache    cache.Cache
	logger   *slog.Logger
	client   *http.Client
	maxSize  uint64
	repoOpts []RepositoryOption
	group    singleflight.Group
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// LoaderWithCache stores loaded word lists in c.
//
// Registry pulls always use the cache. File and HTTP loads use it only when
// pinned with WithDigest, since the digest is the cache key.
func LoaderWithCache(c cache.Cache) LoaderOption {
	return func(l *Loader) {
		l.cache = c
	}
}

// LoaderWithLogger sets the logger for load diagnostics.
func LoaderWithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// LoaderWithHTTPClient sets the client used for http:// and https:// locations.
func LoaderWithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// LoaderWithMaxSize sets the default size limit for every load.
func LoaderWithMaxSize(n uint64) LoaderOption {
	return func(l *Loader) {
		l.maxSize = n
	}
}

// LoaderWithRepositoryOptions configures the repositories used for oci:// locations.
func LoaderWithRepositoryOptions(opts ...RepositoryOption) LoaderOption {
	return func(l *Loader) {
		l.repoOpts = append(l.repoOpts, opts...)
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		logger:  slog.New(slog.DiscardHandler),
		client:  http.DefaultClient,
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.maxSize == 0 {
		l.maxSize = DefaultMaxSize
	}
	return l
}

// Load returns the word list at location.
//
// Callers that load the same location with the same digest and size limit
// concurrently share one fetch. Other per-call options, such as headers and
// the HTTP client, are taken from whichever caller started the fetch. A
// caller whose ctx ends stops waiting, while the shared fetch continues for
// the others.
func (l *Loader) Load(ctx context.Context, location string, opts ...Option) (string, error) {
	o := l.options(opts)
	key := location + "\x00" + strconv.FormatUint(o.maxSize, 10)
	if o.digest != "" {
		key += "@" + o.digest.String()
	}

	ch := l.group.DoChan(key, func() (any, error) {
		return l.load(context.WithoutCancel(ctx), location, o)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			l.logger.Debug("shared concurrent load", slog.String("location", location))
		}
		return res.Val.(string), nil //nolint:forcetypeassert // load always returns a string
	}
}

// Open loads the word list at location and wraps it in a SortedString.
//
// The list is validated with b4s.NewChecked unless WithUnchecked is given.
func (l *Loader) Open(ctx context.Context, location string, sep b4s.Separator, opts ...Option) (b4s.SortedString, error) {
	text, err := l.Load(ctx, location, opts...)
	if err != nil {
		return b4s.SortedString{}, err
	}
	if l.options(opts).unchecked {
		return b4s.NewUnchecked(text, sep), nil
	}
	ss, err := b4s.NewChecked(text, sep)
	if err != nil {
		return b4s.SortedString{}, fmt.Errorf("open %s: %w", location, err)
	}
	return ss, nil
}

func (l *Loader) options(opts []Option) *options {
	o := &options{
		maxSize: l.maxSize,
		client:  l.client,
		cache:   l.cache,
		logger:  l.logger,
	}
	o.apply(opts)
	return o
}

func (l *Loader) load(ctx context.Context, location string, o *options) (string, error) {
	l.logger.Debug("loading word list", slog.String("location", location))

	if ref, ok := strings.CutPrefix(location, SchemeOCI); ok {
		return l.pull(ctx, ref, o)
	}

	pinned := o.digest != "" && o.cache != nil
	if pinned {
		if data, ok := o.cache.Get(o.digest); ok {
			l.logger.Debug("word list cache hit",
				slog.String("location", location),
				slog.String("digest", o.digest.String()))
			return string(data), nil
		}
	}

	var (
		text string
		err  error
	)
	switch {
	case strings.HasPrefix(location, SchemeHTTP), strings.HasPrefix(location, SchemeHTTPS):
		text, err = fetch(ctx, location, o)
	case location == "":
		return "", fmt.Errorf("%w: empty location", ErrInvalidReference)
	default:
		text, err = readFile(strings.TrimPrefix(location, SchemeFile), o)
	}
	if err != nil {
		return "", err
	}

	if pinned {
		if err := o.cache.Put(o.digest, []byte(text)); err != nil {
			l.logger.Warn("failed to cache word list",
				slog.String("location", location),
				slog.Any("error", err))
		}
	}
	return text, nil
}

func (l *Loader) pull(ctx context.Context, ref string, o *options) (string, error) {
	repo, err := Repository(ref, l.repoOpts...)
	if err != nil {
		return "", err
	}
	tag := repo.Reference.Reference
	if tag == "" {
		return "", fmt.Errorf("%w: %q has no tag or digest", ErrInvalidReference, ref)
	}
	return pull(ctx, repo, tag, o)
}

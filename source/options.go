package source

import (
	"log/slog"
	"net/http"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/b4s/cache"
)

// DefaultMaxSize is the default limit on the size of a word list, both as
// transferred and after decompression.
const DefaultMaxSize = 1 << 30

// Option configures a single load or push.
type Option func(*options)

type options struct {
	maxSize   uint64
	digest    digest.Digest
	client    *http.Client
	headers   http.Header
	compress  bool
	unchecked bool
	cache     cache.Cache
	logger    *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{
		maxSize: DefaultMaxSize,
		client:  http.DefaultClient,
		logger:  slog.New(slog.DiscardHandler),
	}
	o.apply(opts)
	return o
}

func (o *options) apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
	if o.client == nil {
		o.client = http.DefaultClient
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
}

// WithMaxSize limits the number of bytes read and decompressed.
// Zero means the default of 1 GiB.
func WithMaxSize(n uint64) Option {
	return func(o *options) {
		if n == 0 {
			n = DefaultMaxSize
		}
		o.maxSize = n
	}
}

// WithDigest pins the expected digest of the uncompressed word list.
// Loads fail with ErrDigestMismatch when the content differs.
func WithDigest(d digest.Digest) Option {
	return func(o *options) {
		o.digest = d
	}
}

// WithHTTPClient sets the client used by Fetch.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHeader sets a request header used by Fetch.
func WithHeader(key, value string) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Set(key, value)
	}
}

// WithCompression makes Push store the word list zstd-compressed.
func WithCompression() Option {
	return func(o *options) {
		o.compress = true
	}
}

// WithUnchecked makes Loader.Open skip the sortedness check.
func WithUnchecked() Option {
	return func(o *options) {
		o.unchecked = true
	}
}

// WithCache serves pulled word lists from c and stores fetched ones in it.
func WithCache(c cache.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithLogger sets the logger for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Command b4s searches a sorted word list for one or more needles.
//
// Usage:
//
//	b4s [flags] <location> [needle...]
//
// The location is a file path, an http(s):// URL, or an oci:// registry
// reference. Needles are read from standard input, one per line, when none
// are given as arguments. Each needle produces one line of output:
//
//	found	<needle>	[start, end)
//	missing	<needle>	[start, end)
//
// where the span is the match or the last entry compared. The exit status is
// 0 when every needle is found, 1 when any is missing, and 2 on error.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/b4s"
	"github.com/meigma/b4s/cache/disk"
	"github.com/meigma/b4s/source"
)

const (
	exitOK      = 0
	exitMissing = 1
	exitError   = 2
)

type config struct {
	sep        b4s.Separator
	unchecked  bool
	sort       bool
	print      bool
	workers    int
	iterations int
	cacheDir   string
	plainHTTP  bool
	digest     digest.Digest
	maxSize    uint64
	verbose    bool
	cpuProfile string
	fgProfile  string
	location   string
	needles    []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "b4s:", err)
		return exitError
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	code, err := execute(ctx, cfg, stdin, stdout, logger)
	if err != nil {
		logger.Error("b4s failed", slog.Any("error", err))
		return exitError
	}
	return code
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func execute(ctx context.Context, cfg config, stdin io.Reader, stdout io.Writer, logger *slog.Logger) (int, error) {
	loader, err := newLoader(cfg, logger)
	if err != nil {
		return exitError, err
	}

	var loadOpts []source.Option
	if cfg.digest != "" {
		loadOpts = append(loadOpts, source.WithDigest(cfg.digest))
	}
	start := time.Now()
	text, err := loader.Load(ctx, cfg.location, loadOpts...)
	if err != nil {
		return exitError, err
	}
	logger.Debug("loaded word list",
		slog.String("location", cfg.location),
		slog.Int("bytes", len(text)),
		slog.Duration("elapsed", time.Since(start)))

	if cfg.sort {
		text = b4s.Sort(text, cfg.sep)
	}
	if cfg.print {
		_, err := io.WriteString(stdout, text)
		return exitOK, err
	}

	ss, err := index(text, cfg)
	if err != nil {
		return exitError, err
	}

	needles := cfg.needles
	if len(needles) == 0 {
		if needles, err = readNeedles(stdin); err != nil {
			return exitError, err
		}
	}

	stopProfiling, err := startProfiling(cfg, logger)
	if err != nil {
		return exitError, err
	}
	start = time.Now()
	results, err := searchAll(ctx, ss, needles, cfg.workers, cfg.iterations)
	elapsed := time.Since(start)
	stopProfiling()
	if err != nil {
		return exitError, err
	}
	logger.Debug("searched",
		slog.Int("needles", len(needles)),
		slog.Int("iterations", cfg.iterations),
		slog.Int("workers", cfg.workers),
		slog.Duration("elapsed", elapsed))

	return writeResults(stdout, results)
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func newLoader(cfg config, logger *slog.Logger) (*source.Loader, error) {
	opts := []source.LoaderOption{
		source.LoaderWithLogger(logger),
		source.LoaderWithMaxSize(cfg.maxSize),
		source.LoaderWithRepositoryOptions(
			source.WithDockerConfig(),
			source.WithPlainHTTP(cfg.plainHTTP),
		),
	}
	if cfg.cacheDir != "" {
		c, err := disk.New(cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		opts = append(opts, source.LoaderWithCache(c))
	}
	return source.NewLoader(opts...), nil
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func index(text string, cfg config) (b4s.SortedString, error) {
	if cfg.unchecked {
		return b4s.NewUnchecked(text, cfg.sep), nil
	}
	ss, err := b4s.NewChecked(text, cfg.sep)
	if err != nil {
		if errors.Is(err, b4s.ErrUnsortedSource) {
			return b4s.SortedString{}, fmt.Errorf("%w (use -sort to sort on load)", err)
		}
		return b4s.SortedString{}, err
	}
	return ss, nil
}

func readNeedles(r io.Reader) ([]string, error) {
	var needles []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		needles = append(needles, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read needles: %w", err)
	}
	return needles, nil
}

func writeResults(w io.Writer, results []result) (int, error) {
	bw := bufio.NewWriter(w)
	code := exitOK
	for _, r := range results {
		status := "found"
		if !r.found {
			status = "missing"
			code = exitMissing
		}
		fmt.Fprintf(bw, "%s\t%s\t%s\n", status, r.needle, r.span)
	}
	if err := bw.Flush(); err != nil {
		return exitError, err
	}
	return code, nil
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("b4s", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: b4s [flags] <location> [needle...]")
		fs.PrintDefaults()
	}

	var (
		cfg       config
		sep       string
		digestStr string
	)
	fs.StringVar(&sep, "sep", `\n`, `entry separator: one ASCII character or \n, \t, \0`)
	fs.BoolVar(&cfg.unchecked, "unchecked", false, "skip the sortedness and encoding checks")
	fs.BoolVar(&cfg.sort, "sort", false, "sort the word list after loading")
	fs.BoolVar(&cfg.print, "print", false, "print the (sorted) word list instead of searching")
	fs.IntVar(&cfg.workers, "workers", runtime.GOMAXPROCS(0), "concurrent search workers")
	fs.IntVar(&cfg.iterations, "iterations", 1, "repeat each search this many times")
	fs.StringVar(&cfg.cacheDir, "cache-dir", "", "directory for the word list cache")
	fs.BoolVar(&cfg.plainHTTP, "plain-http", false, "use plain HTTP for oci:// registries")
	fs.StringVar(&digestStr, "digest", "", "expected digest of the uncompressed word list")
	fs.Uint64Var(&cfg.maxSize, "max-size", source.DefaultMaxSize, "maximum word list size in bytes")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	fs.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile of the search phase to file")
	fs.StringVar(&cfg.fgProfile, "fgprofile", "", "write fgprof (wall clock) profile of the search phase to file")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	var err error
	if cfg.sep, err = parseSeparator(sep); err != nil {
		return config{}, err
	}
	if digestStr != "" {
		d, err := digest.Parse(digestStr)
		if err != nil {
			return config{}, fmt.Errorf("-digest: %w", err)
		}
		cfg.digest = d
	}
	if cfg.workers < 1 {
		return config{}, fmt.Errorf("-workers must be >= 1, got %d", cfg.workers)
	}
	if cfg.iterations < 1 {
		return config{}, fmt.Errorf("-iterations must be >= 1, got %d", cfg.iterations)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return config{}, errors.New("missing location")
	}
	cfg.location = fs.Arg(0)
	cfg.needles = fs.Args()[1:]
	return cfg, nil
}

// parseSeparator accepts a single ASCII character or one of the escapes
// \n, \t, \0 and \\.
func parseSeparator(s string) (b4s.Separator, error) {
	switch s {
	case `\n`:
		return b4s.Newline, nil
	case `\t`:
		return b4s.Tab, nil
	case `\0`:
		return b4s.Null, nil
	case `\\`:
		return b4s.MustSeparator('\\'), nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return b4s.Separator{}, fmt.Errorf("-sep: want a single character, got %q", s)
	}
	sep, err := b4s.NewSeparator(r[0])
	if err != nil {
		return b4s.Separator{}, fmt.Errorf("-sep: %w", err)
	}
	return sep, nil
}

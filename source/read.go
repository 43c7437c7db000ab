package source

import (
	"bytes"
	_ "crypto/sha256" // register sha256 for go-digest
	_ "crypto/sha512" // register sha384 and sha512 for go-digest
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"

	"github.com/meigma/b4s/internal/sizing"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ReadFile loads a word list from the file at path.
func ReadFile(path string, opts ...Option) (string, error) {
	return readFile(path, newOptions(opts))
}

// Read loads a word list from r.
func Read(r io.Reader, opts ...Option) (string, error) {
	return read(r, newOptions(opts))
}

func readFile(path string, o *options) (string, error) {
	f, err := os.Open(path) //nolint:gosec // caller-provided path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}
	defer f.Close()

	if info, statErr := f.Stat(); statErr == nil && info.Mode().IsRegular() && sizing.Exceeds(info.Size(), o.maxSize) {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}
	text, err := read(f, o)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return text, nil
}

func read(r io.Reader, o *options) (string, error) {
	data, err := sizing.ReadAllWithLimit(r, o.maxSize, ErrTooLarge)
	if err != nil {
		return "", err
	}
	data, err = decode(data, o)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decode decompresses zstd content and checks the result against the
// configured digest and for UTF-8 validity.
func decode(data []byte, o *options) ([]byte, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		var err error
		if data, err = decompress(data, o.maxSize); err != nil {
			return nil, err
		}
	}
	if o.digest != "" {
		if err := verifyDigest(data, o.digest); err != nil {
			return nil, err
		}
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidText
	}
	return data, nil
}

func decompress(data []byte, maxSize uint64) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data),
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(min(maxSize, math.MaxInt64)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer dec.Close()

	out, err := sizing.ReadAllWithLimit(dec, maxSize, ErrTooLarge)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			return nil, err
		case errors.Is(err, zstd.ErrDecoderSizeExceeded), errors.Is(err, zstd.ErrWindowSizeExceeded):
			return nil, fmt.Errorf("%w: %v", ErrTooLarge, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	return out, nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote/errcode"

	"github.com/meigma/b4s/internal/sizing"
)

// Word list artifact layout.
const (
	// ArtifactType identifies a word list manifest.
	ArtifactType = "application/vnd.b4s.wordlist.v1"

	// MediaTypeText is the layer media type of an uncompressed word list.
	MediaTypeText = "application/vnd.b4s.wordlist.v1.text"

	// MediaTypeTextZstd is the layer media type of a zstd-compressed word list.
	MediaTypeTextZstd = "application/vnd.b4s.wordlist.v1.text+zstd"

	// AnnotationTextDigest records the digest of the uncompressed word list
	// on its layer descriptor.
	AnnotationTextDigest = "dev.meigma.b4s.text.digest"

	maxManifestSize = 4 << 20
)

// Push stores text as a word list artifact in target and tags it as ref.
//
// With WithCompression the layer is zstd-compressed. The returned descriptor
// describes the manifest.
func Push(ctx context.Context, target oras.Target, ref, text string, opts ...Option) (ocispec.Descriptor, error) {
	o := newOptions(opts)
	if ref == "" {
		return ocispec.Descriptor{}, fmt.Errorf("%w: empty tag", ErrInvalidReference)
	}
	if !utf8.ValidString(text) {
		return ocispec.Descriptor{}, ErrInvalidText
	}

	data := []byte(text)
	textDigest := digest.FromBytes(data)
	mediaType := MediaTypeText
	if o.compress {
		compressed, err := compress(data)
		if err != nil {
			return ocispec.Descriptor{}, fmt.Errorf("compress word list: %w", err)
		}
		data = compressed
		mediaType = MediaTypeTextZstd
	}

	layer := content.NewDescriptorFromBytes(mediaType, data)
	layer.Annotations = map[string]string{
		AnnotationTextDigest: textDigest.String(),
	}
	if err := pushBlob(ctx, target, layer, data); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push layer: %w", mapError(err))
	}

	manifest, err := oras.PackManifest(ctx, target, oras.PackManifestVersion1_1, ArtifactType, oras.PackManifestOptions{
		Layers: []ocispec.Descriptor{layer},
	})
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("pack manifest: %w", mapError(err))
	}
	if err := target.Tag(ctx, manifest, ref); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("tag %s: %w", ref, mapError(err))
	}

	o.logger.Debug("pushed word list",
		slog.String("ref", ref),
		slog.String("manifest", manifest.Digest.String()),
		slog.String("media_type", mediaType),
		slog.Int64("size", layer.Size))
	return manifest, nil
}

// Pull loads the word list artifact tagged ref from target.
//
// ref is passed to target.Resolve, so it may be a manifest digest when the
// target resolves digests, as remote repositories do. In-memory stores only
// resolve tags.
//
// With WithCache, the uncompressed text is looked up by its digest before the
// layer is fetched and stored after a successful fetch.
func Pull(ctx context.Context, target oras.ReadOnlyTarget, ref string, opts ...Option) (string, error) {
	return pull(ctx, target, ref, newOptions(opts))
}

func pull(ctx context.Context, target oras.ReadOnlyTarget, ref string, o *options) (string, error) {
	manifestDesc, err := target.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, mapError(err))
	}
	layer, err := fetchLayerDescriptor(ctx, target, manifestDesc)
	if err != nil {
		return "", fmt.Errorf("pull %s: %w", ref, err)
	}

	textDigest, err := layerTextDigest(layer)
	if err != nil {
		return "", fmt.Errorf("pull %s: %w", ref, err)
	}
	if o.digest != "" && o.digest.Algorithm() == textDigest.Algorithm() && o.digest != textDigest {
		return "", fmt.Errorf("pull %s: %w: artifact holds %s, want %s", ref, ErrDigestMismatch, textDigest, o.digest)
	}

	if o.cache != nil {
		if data, ok := o.cache.Get(textDigest); ok && utf8.Valid(data) && (o.digest == "" || verifyDigest(data, o.digest) == nil) {
			o.logger.Debug("word list cache hit",
				slog.String("ref", ref),
				slog.String("digest", textDigest.String()))
			return string(data), nil
		}
	}

	if layer.Size < 0 || sizing.Exceeds(layer.Size, o.maxSize) {
		return "", fmt.Errorf("pull %s: %w: layer is %d bytes", ref, ErrTooLarge, layer.Size)
	}
	raw, err := content.FetchAll(ctx, target, layer)
	if err != nil {
		return "", fmt.Errorf("fetch layer %s: %w", layer.Digest, mapError(err))
	}

	// The layer digest was verified by FetchAll; check the text against the
	// annotation as well so compressed layers are pinned to their content.
	layerOpts := *o
	layerOpts.digest = textDigest
	data, err := decode(raw, &layerOpts)
	if err == nil && o.digest != "" && o.digest.Algorithm() != textDigest.Algorithm() {
		err = verifyDigest(data, o.digest)
	}
	if err != nil {
		return "", fmt.Errorf("pull %s: %w", ref, err)
	}

	if o.cache != nil {
		if err := o.cache.Put(textDigest, data); err != nil {
			o.logger.Warn("failed to cache word list",
				slog.String("digest", textDigest.String()),
				slog.Any("error", err))
		}
	}
	o.logger.Debug("pulled word list",
		slog.String("ref", ref),
		slog.String("layer", layer.Digest.String()),
		slog.Int("bytes", len(data)))
	return string(data), nil
}

// fetchLayerDescriptor reads the manifest behind desc and returns its word
// list layer.
func fetchLayerDescriptor(ctx context.Context, target oras.ReadOnlyTarget, desc ocispec.Descriptor) (ocispec.Descriptor, error) {
	if desc.MediaType != "" && desc.MediaType != ocispec.MediaTypeImageManifest {
		return ocispec.Descriptor{}, fmt.Errorf("%w: unsupported manifest media type %s", ErrInvalidArtifact, desc.MediaType)
	}
	if desc.Size > maxManifestSize {
		return ocispec.Descriptor{}, fmt.Errorf("%w: manifest is %d bytes", ErrInvalidArtifact, desc.Size)
	}
	raw, err := content.FetchAll(ctx, target, desc)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("fetch manifest: %w", mapError(err))
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if manifest.ArtifactType != ArtifactType && manifest.Config.MediaType != ArtifactType {
		return ocispec.Descriptor{}, fmt.Errorf("%w: artifact type %q", ErrInvalidArtifact, manifest.ArtifactType)
	}
	if len(manifest.Layers) != 1 {
		return ocispec.Descriptor{}, fmt.Errorf("%w: expected 1 layer, got %d", ErrInvalidArtifact, len(manifest.Layers))
	}
	layer := manifest.Layers[0]
	switch layer.MediaType {
	case MediaTypeText, MediaTypeTextZstd:
	default:
		return ocispec.Descriptor{}, fmt.Errorf("%w: layer media type %q", ErrInvalidArtifact, layer.MediaType)
	}
	return layer, nil
}

// layerTextDigest returns the digest of the uncompressed word list held by
// layer. Plain layers without the annotation are their own text.
func layerTextDigest(layer ocispec.Descriptor) (digest.Digest, error) {
	annotated, ok := layer.Annotations[AnnotationTextDigest]
	if !ok {
		if layer.MediaType == MediaTypeText {
			return layer.Digest, nil
		}
		return "", fmt.Errorf("%w: compressed layer lacks %s", ErrInvalidArtifact, AnnotationTextDigest)
	}
	d, err := digest.Parse(annotated)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, AnnotationTextDigest, err)
	}
	return d, nil
}

func pushBlob(ctx context.Context, target oras.Target, desc ocispec.Descriptor, data []byte) error {
	exists, err := target.Exists(ctx, desc)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := target.Push(ctx, desc, bytes.NewReader(data)); err != nil && !errors.Is(err, errdef.ErrAlreadyExists) {
		return err
	}
	return nil
}

// mapError converts oras errors to source sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errdef.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, content.ErrMismatchedDigest) {
		return fmt.Errorf("%w: %v", ErrDigestMismatch, err)
	}
	var errResp *errcode.ErrorResponse
	if errors.As(err, &errResp) {
		switch errResp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrForbidden, err)
		}
	}
	return err
}

// Package source loads word lists for b4s from files, HTTP servers, and OCI
// registries.
//
// Every loader returns the haystack as a string after the same checks: the
// content must fit the configured size limit, zstd-compressed content is
// decompressed transparently, an optional digest pins the uncompressed bytes,
// and the result must be valid UTF-8.
//
// Word lists are stored in registries as single-layer OCI artifacts of type
// [ArtifactType]. [Push] publishes one; [Pull] reads it back.
//
// [Loader] ties the sources together behind one location string:
//
//	l := source.NewLoader(source.LoaderWithCache(c))
//	ss, err := l.Open(ctx, "oci://ghcr.io/acme/words:en", b4s.Newline)
//
// Concurrent loads of the same location share a single fetch.
package source

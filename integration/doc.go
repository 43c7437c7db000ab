//go:build integration

// Package integration provides integration tests for b4s word list loading.
//
// These tests require Docker and spin up a real OCI registry using testcontainers.
// Run with: go test -tags=integration ./integration/...
package integration

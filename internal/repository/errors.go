// Package repository contains the Redis-backed stores for reservations,
// ticket bundles and refund records, plus the MySQL refund audit log.
// Sentinel errors defined here let handlers and services distinguish
// failure scenarios without inspecting driver errors directly.
package repository

import "errors"

// ErrNotFound is returned when a key has no value in the store, either
// because it was never written or because its TTL expired. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// Package security provides validation, sanitization, and limits for the zap package.
//
// This package includes:
//   - Validation of notification registry names
//   - Error message sanitization before messages reach notification payloads
//   - Clamping functions for retries, concurrency and offsets
//
// Most users should import the root package github.com/cpiprint/zap-notify
// which re-exports these functions.
package security

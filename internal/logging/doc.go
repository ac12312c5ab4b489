// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the server, a small
// Logger interface for packages that should not depend on slog directly,
// and sanitization helpers (AnonymizeEmail, SanitizeToken) so credentials
// and PII never reach log output in the clear.
package logging

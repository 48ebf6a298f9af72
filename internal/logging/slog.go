package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyConfigID  = "config_id"
	KeyProvider  = "provider"
	KeyDirection = "direction"
	KeyUserHash  = "user_hash"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyURL       = "url"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithConfig returns a logger carrying the config id and provider of one
// linked calendar, for use throughout a sync pass.
func WithConfig(logger *slog.Logger, configID, provider string) *slog.Logger {
	return logger.With(
		slog.String(KeyConfigID, configID),
		slog.String(KeyProvider, provider),
	)
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// ConfigID returns a slog attribute for a linked-calendar config id.
func ConfigID(id string) slog.Attr {
	return slog.String(KeyConfigID, id)
}

// Provider returns a slog attribute for the calendar provider.
func Provider(p string) slog.Attr {
	return slog.String(KeyProvider, p)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from
// output, so Err(maybeNilErr) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeUser returns a hashed representation of a user identifier for
// logging. This allows correlation of log entries without exposing PII.
func AnonymizeUser(id string) string {
	if id == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(id))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns a slog attribute with the anonymized user id.
func UserHash(id string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeUser(id))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content,
// as even partial token prefixes can aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// RedactURL strips the path, query and userinfo from a feed URL before it
// is logged. Private iCal URLs embed capability tokens in the path.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}

// URL returns a slog attribute with the redacted form of a feed URL.
func URL(raw string) slog.Attr {
	return slog.String(KeyURL, RedactURL(raw))
}

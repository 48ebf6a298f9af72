// Package logging provides slog attribute helpers and stable attribute key
// names used across the synchronization engine, plus sanitizers for values
// that must not reach the logs verbatim (emails, tokens, feed URLs).
package logging

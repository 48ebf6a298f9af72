package model

import "fmt"

// ConfigurationError reports missing provider credentials or an otherwise
// unusable configuration. It is fatal to the operation that needed the
// credentials and is never retried automatically.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// TransportError reports a network failure, timeout or non-2xx response on
// an outbound call. During token check it aborts the pass; everywhere else
// it degrades a single per-item operation.
type TransportError struct {
	Op         string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports malformed iCal or JSON input. The offending item is
// skipped; the batch continues.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PersistenceError reports a local write failure for a single item.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Package chronoerr defines the error taxonomy shared by every layer of
// Chronicle. Each kind wraps a cause and carries just enough context for
// errors.As-based classification in the supervisor (pkg/supervisor) and
// the HTTP layer (pkg/httpapi) — callers select behavior on kind, never on
// a formatted message string.
package chronoerr

import "fmt"

// DecodeError marks packed bytes that failed to parse into a typed block,
// output or milestone. Fatal for that single record only: the supervisor
// logs and discards it rather than crashing the ingestion worker.
type DecodeError struct {
	Record string // e.g. "block", "output", "milestone"
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chronoerr: decode %s: %v", e.Record, e.Cause)
}
func (e *DecodeError) Unwrap() error { return e.Cause }

// ProtocolViolation marks a ledger-update stream that arrived out of
// sequence: a count mismatch, or Consumed/Created without an active Begin,
// or two unterminated Begins. The ingestion worker restarts the stream
// from the last completed milestone.
type ProtocolViolation struct {
	Reason string
	Cause  error
}

func (e *ProtocolViolation) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chronoerr: protocol violation: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("chronoerr: protocol violation: %s", e.Reason)
}
func (e *ProtocolViolation) Unwrap() error { return e.Cause }

// TransportTransient marks a node-feed failure expected to clear on retry:
// deadline exceeded, unavailable, aborted, resource exhausted.
type TransportTransient struct {
	Cause error
}

func (e *TransportTransient) Error() string { return fmt.Sprintf("chronoerr: transport transient: %v", e.Cause) }
func (e *TransportTransient) Unwrap() error { return e.Cause }

// StorageTransient marks a store failure expected to clear on
// reconnect-and-retry: I/O errors, server selection timeouts.
type StorageTransient struct {
	Cause error
}

func (e *StorageTransient) Error() string { return fmt.Sprintf("chronoerr: storage transient: %v", e.Cause) }
func (e *StorageTransient) Unwrap() error { return e.Cause }

// StorageFatal marks a store failure that is not safe to retry: a schema
// or constraint violation other than a duplicate-key on an idempotent
// insert. The supervisor shuts the process down.
type StorageFatal struct {
	Cause error
}

func (e *StorageFatal) Error() string { return fmt.Sprintf("chronoerr: storage fatal: %v", e.Cause) }
func (e *StorageFatal) Unwrap() error { return e.Cause }

// CorruptState marks a query that found the store in an impossible shape:
// a milestone referenced by a block that isn't itself in the store, or a
// proof whose hash doesn't match the committed inclusion root. Surfaced as
// HTTP 500; the query engine never attempts to repair it.
type CorruptState struct {
	Reason string
}

func (e *CorruptState) Error() string { return fmt.Sprintf("chronoerr: corrupt state: %s", e.Reason) }

// RequestError marks a malformed client request: a bad paging cursor, a
// bad time range, invalid hex, a bad sort value, a malformed auth header.
// HTTP 400.
type RequestError struct {
	Reason string
	Cause  error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chronoerr: request error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("chronoerr: request error: %s", e.Reason)
}
func (e *RequestError) Unwrap() error { return e.Cause }

// AuthError marks a failed authentication attempt: wrong password, or an
// invalid/expired JWT. HTTP 401.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return fmt.Sprintf("chronoerr: auth error: %s", e.Reason) }

// MissingError marks "no results" or "no such endpoint". HTTP 404.
type MissingError struct {
	Subject string
}

func (e *MissingError) Error() string { return fmt.Sprintf("chronoerr: missing: %s", e.Subject) }

// DuplicateKeyCode is MongoDB's duplicate-key error code. Duplicate keys on parent-edge and
// sync-marker inserts are swallowed, not surfaced as StorageFatal — the
// idempotence of insert_blocks_with_metadata/insert_sync_marker depends
// on it (spec §4.2, §7).
const DuplicateKeyCode = 11000

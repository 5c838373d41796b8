// Package audit implements async event dispatching for session lifecycle and
// account operations.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, zap logger, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured audit record with timestamp, type, username, storage backend, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Client maps session events and API outcomes onto audit events.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goSocial or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit

// Package goSocial is the client side of the goSocial network: it keeps the
// signed-in session in durable storage and talks to the GraphQL API.
//
// The package is designed for long-lived processes and one-shot CLIs alike: Client
// methods are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSocial is the public surface. It exposes [Client], [Builder], [Config], and value
// types (MetricsSnapshot, AuditEvent, etc.). Session state lives in session/, the
// wire layer in api/, and storage backends in storage/. Audit dispatch and metric
// storage live under internal/ and are never exported directly.
//
// # What this package must NOT do
//
//   - Verify credential signatures. The API is the authority; the client only
//     decodes claims to learn who is signed in and when that ends.
//   - Persist anything but the raw credential.
//   - Import any sub-package that re-imports goSocial (no import cycles).
package goSocial

// Package internal holds packages private to goSocial.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - metrics: lock-free counters and the request latency histogram
//   - fakeapi: in-memory GraphQL API used by tests and the mock server example
package internal

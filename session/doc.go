// Package session holds the client's single source of truth for who is logged in.
//
// A [Store] is opened against a [storage.Storage]. On open it reads the persisted
// credential, decodes it, and discards it when it is malformed or expired. After
// that the state only changes through [Store.Login], [Store.Logout], and
// [Store.Reload], each of which is folded through the pure [Reduce] function.
// Observers registered with [Store.Subscribe] are notified synchronously with the
// new [State].
//
// # Architecture boundaries
//
// This package owns the [State] model and the credential lifecycle. It does NOT talk
// to the API, render anything, or verify credential signatures; the client holds no
// signing key.
//
// # What this package must NOT do
//
//   - Import goSocial, api, or view (no upward imports).
//   - Run background expiry timers. Expiry is checked when the state is loaded.
package session

// Package storage provides the durable key-value string store that holds the
// persisted credential between runs.
//
// Three backends implement [Storage]: [Memory] for tests and ephemeral runs, [File]
// for a per-user JSON file, and [Redis] for clients that share a session across
// machines. [File] and [Redis] also implement [Watcher], reporting changes made by
// other processes.
//
// # What this package must NOT do
//
//   - Interpret stored values. Decoding credentials belongs to the session store.
//   - Import goSocial, session, or api (no upward imports).
package storage

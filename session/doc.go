// Package session provides the in-memory authoritative session state and its
// durable-storage mirror.
//
// # Ownership
//
// The [Store] exclusively owns the live [Session]. Durable storage holds a
// single serialized record used only to survive process restarts; it is never
// consulted after [Store.Rehydrate] while the process is live.
//
// # Consistency
//
// Every mutation commits the in-memory session atomically under the store's
// lock before the durable mirror is written. Readers never observe a partial
// update. A failed mirror write is reported but does not roll the in-memory
// state back.
//
// # What this package must NOT do
//
//   - Import goClient or jwt (no upward imports).
//   - Interpret token contents or decide authentication policy.
//   - Issue network requests other than the storage mirror's own I/O.
package session

// Package store provides SQLite-backed durable storage for the feed index.
//
// The store materializes the append-only offset log into a normalized
// relational index:
//   - Keys/Authors: surrogate-key registries with find-or-create semantics
//   - Messages: one immutable row per log record, keyed by log sequence
//   - Derived views: root_posts, reply_posts, mentions, contacts, texts
//
// # Critical Patterns
//
// Per-Record Atomicity
//   - A message row, any forward-reference keys it mints, and its derived
//     rows commit in ONE transaction
//   - A reader never observes a message whose root/fork key is missing
//
// Forward References
//   - root/fork may reference a key with no message yet
//   - "key exists, message absent" is a valid, permanent state
//
// Single Writer / Multi Reader
//   - Ingestion holds the sole writable handle (pool capped at one conn)
//   - Query paths use OpenReadOnly and rely on WAL snapshots
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

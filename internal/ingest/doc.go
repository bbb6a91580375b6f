// Package ingest materializes the append-only offset log into the index.
//
// ARCHITECTURE:
//
// Single-Writer Sequential Loop:
// Ingestion is one sequential consumer over the log - one writer, no
// concurrent ingestion processes. Each record becomes exactly one immutable
// index row; the row, any forward-reference keys it mints, and its derived
// rows commit atomically, so concurrent readers never see a half-applied
// record.
//
// Record Processing Flow:
//  1. Read the next framed entry from the offset log
//  2. Parse the envelope; ask the unboxing collaborator for readable
//     content and the decrypted flag
//  3. Validate typed content shapes against the embedded CUE schema before
//     extracting derived-view inputs (text, mentions, contact state)
//  4. Hand one IndexRecord to the store for the atomic write
//
// Malformed records are recoverable, per-record errors: they are counted,
// logged and skipped, and ingestion continues. Only storage failures stop
// the run. Sequence numbers come from the log and are never reassigned, so
// they stay strictly increasing across skipped records.
package ingest

// Package ssb provides the core value types for the feed index.
//
// This package contains type definitions and content parsing only. All other
// internal packages import ssb; ssb imports nothing internal. This ensures it
// remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Log sequence numbers are int64 and assigned by the offset log, never here
//   - Content is treated as an opaque blob except for the few fields the index
//     materializes (type, root, fork, text, mentions, contact state)
//   - Boxed (undecrypted) content is never interpreted
package ssb

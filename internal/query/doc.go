// Package query implements the keyset-paginated query engine over the feed
// index.
//
// Two search shapes with deliberately divergent filter semantics:
//
//   - Threads: independent selectors are OR-combined. A thread is included
//     if it matches ANY supplied selector; privacy and ordering apply as a
//     trailing AND over the union.
//   - Posts: filters are AND-combined. A post must meet ALL supplied
//     filters, including an optional full-text match delegated to the
//     text-search collaborator.
//
// Both shapes share one keyset pagination algorithm: exactly one of
// before/after may be set, paired with last/first respectively; the filter
// expression and the order expression always use the identical column for a
// given ordering selector, which is what keeps cursor semantics well-defined.
//
// All reads are bounded by an explicit or default page size; the engine
// holds a read handle only and never writes.
package query

// Package scopager provides scoped, cursor-based (keyset) pagination for GORM,
// with an embedded filter-expression compiler.
//
// # Overview
//
// scopager consumes a parsed filter expression, an optional ordering, a page
// size and an optional continuation cursor, and turns them into one safe
// fetch against a single entity:
//   - FieldMap: registers the filterable/orderable fields of an entity once
//     at startup and maps API names to columns, kinds and cursor extractors.
//   - Compile: translates the client's boolean filter tree into a SQL
//     predicate, rejecting type confusion, field-to-field comparisons and
//     bare values before any query runs.
//   - Cursor: an opaque token carrying key values, sort signature, filter
//     fingerprint and scan direction; decoding validates internal
//     consistency, and the keyset predicate is always rebuilt from the
//     token's own signature.
//   - Secure / ScopeWith: a two-type discipline that keeps the terminal
//     operations (All, One, Count, Paginate) unreachable until an
//     AccessScope is applied. An empty scope denies everything.
//   - Paginate: composes scope, filter, cursor, order and limit into one
//     fetch, detects further pages with a limit+1 overfetch and issues
//     next/prev cursors in forward-visual order.
//
// The engine holds no mutable shared state: field maps are built once and
// read concurrently, every fetch is independent, and store failures are
// surfaced verbatim to the caller.
package scopager

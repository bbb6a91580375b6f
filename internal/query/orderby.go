package query

// OrderBy selects the ordering key for a search.
type OrderBy int

const (
	// OrderReceived orders by the global log sequence. Always present.
	OrderReceived OrderBy = iota
	// OrderAsserted orders by the author-claimed timestamp. Optionally
	// absent and not guaranteed monotonic; rows with no asserted time
	// drop out of a cursor-filtered window (NULL compares to nothing),
	// matching the upstream behavior.
	OrderAsserted
)

// ordering is the resolved column policy for one search shape: a single
// column expression used for both the keyset filter and the ORDER BY.
// Resolved once, up front - never re-derived per pagination branch.
type ordering struct {
	expr     string
	asserted bool
}

// threadOrdering resolves the policy against the root_posts columns.
func threadOrdering(o OrderBy) ordering {
	if o == OrderAsserted {
		return ordering{expr: "root_posts.asserted_timestamp", asserted: true}
	}
	return ordering{expr: "root_posts.flume_seq"}
}

// postOrdering resolves the policy against the messages columns. The
// asserted timestamp is stored as a float; the cast keeps the cursor an
// integer on both the filter and the order side.
func postOrdering(o OrderBy) ordering {
	if o == OrderAsserted {
		return ordering{expr: "CAST(messages.asserted_time AS INTEGER)", asserted: true}
	}
	return ordering{expr: "messages.flume_seq"}
}

// Privacy restricts results by decryption state.
type Privacy int

const (
	// PrivacyPublic matches only undecrypted (public) rows.
	PrivacyPublic Privacy = iota
	// PrivacyPrivate matches only decrypted rows.
	PrivacyPrivate
	// PrivacyAll matches both.
	PrivacyAll
)

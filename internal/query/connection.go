package query

import "github.com/roach88/feedql/internal/cursor"

// Edge is one row of a paginated result: the message's surrogate key id, its
// key string, and the opaque cursor for resuming at this row.
type Edge struct {
	KeyID  int64  `json:"key_id"`
	Key    string `json:"key"`
	Cursor string `json:"cursor"`
}

// PageInfo summarizes the returned window. Start and end cursors are absent
// when the window is empty.
type PageInfo struct {
	StartCursor *string `json:"start_cursor"`
	EndCursor   *string `json:"end_cursor"`
	HasNextPage bool    `json:"has_next_page"`
	HasPrevPage bool    `json:"has_previous_page"`
}

// ThreadConnection is the paginated result of a thread search. Each edge's
// key identifies the thread's root message.
type ThreadConnection struct {
	Edges    []Edge   `json:"edges"`
	PageInfo PageInfo `json:"page_info"`
}

// PostConnection is the paginated result of a post search.
type PostConnection struct {
	Edges    []Edge   `json:"edges"`
	PageInfo PageInfo `json:"page_info"`
}

// edgeRow is one scanned result row before cursor assignment.
type edgeRow struct {
	keyID    int64
	key      string
	seq      int64
	asserted int64
}

// buildEdges assigns cursors from the active ordering selector, preserving
// row order.
func buildEdges(rows []edgeRow, ord ordering) []Edge {
	edges := make([]Edge, len(rows))
	for i, r := range rows {
		v := r.seq
		if ord.asserted {
			v = r.asserted
		}
		edges[i] = Edge{KeyID: r.keyID, Key: r.key, Cursor: cursor.Encode(v)}
	}
	return edges
}

// buildPageInfo derives the window summary from the ordered edges.
//
// TODO: has_next_page/has_previous_page are pinned true regardless of the
// boundary, preserving the upstream behavior. Computing them from whether
// the unbounded filtered set extends past the window needs a decision from
// the protocol maintainers on which side each flag refers to under
// backwards pagination.
func buildPageInfo(edges []Edge) PageInfo {
	info := PageInfo{HasNextPage: true, HasPrevPage: true}
	if len(edges) == 0 {
		return info
	}
	start := edges[0].Cursor
	end := edges[len(edges)-1].Cursor
	info.StartCursor = &start
	info.EndCursor = &end
	return info
}

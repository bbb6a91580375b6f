package query

import "github.com/roach88/feedql/internal/querysql"

// defaultPageSize bounds a search when no pagination arguments are given:
// the most recent rows, newest first.
const defaultPageSize = 10

// PageArgs are the raw pagination arguments shared by both searches.
// before pairs with last (backwards, newest first); after pairs with first
// (forwards, oldest first).
type PageArgs struct {
	Before *string
	After  *string
	Last   *int
	First  *int
}

// window is a resolved keyset window: an optional comparison against the
// ordering column, a scan direction, and a bound.
type window struct {
	op    string // "<", ">" or "" for no cursor filter
	value int64
	desc  bool
	limit int
}

// resolveWindow maps the argument tuple onto the valid pagination shapes.
// Any other combination is an input error; both cursors at once is its own
// input error. Mirrors the upstream shape table exactly, including last
// shadowing first when no cursor is given.
func resolveWindow(args PageArgs) (window, error) {
	switch {
	case args.Before != nil && args.After != nil:
		return window{}, &InputError{Message: "before and after can't be set at the same time"}

	case args.Before != nil && args.Last != nil && args.First == nil:
		v, err := decodeCursor(*args.Before)
		if err != nil {
			return window{}, err
		}
		return checkLimit(window{op: "<", value: v, desc: true, limit: *args.Last})

	case args.After != nil && args.First != nil && args.Last == nil:
		v, err := decodeCursor(*args.After)
		if err != nil {
			return window{}, err
		}
		return checkLimit(window{op: ">", value: v, desc: false, limit: *args.First})

	case args.Before == nil && args.After == nil && args.Last != nil:
		return checkLimit(window{desc: true, limit: *args.Last})

	case args.Before == nil && args.After == nil && args.First != nil:
		return checkLimit(window{op: ">", value: 0, desc: false, limit: *args.First})

	case args.Before == nil && args.After == nil:
		return window{desc: true, limit: defaultPageSize}, nil

	default:
		return window{}, &InputError{Message: "incorrect combination of before, after, first and last"}
	}
}

func checkLimit(w window) (window, error) {
	if w.limit <= 0 {
		return window{}, &InputError{Message: "page size must be positive"}
	}
	return w, nil
}

// apply attaches the window to a predicate group and returns the matching
// order clause. The filter and the order use the identical column
// expression.
func (w window) apply(where *querysql.Group, ord ordering) (querysql.Order, int) {
	if w.op != "" {
		where.Add(querysql.Cmp(ord.expr, w.op, w.value))
	}
	return querysql.Order{Expr: ord.expr, Desc: w.desc}, w.limit
}

package scopager

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Query is the request side of one pagination fetch, produced by the
// transport collaborator. Filter, Order and Cursor are optional; Order must
// be empty once a Cursor is supplied.
type Query struct {
	Filter Expr
	Order  Orderings
	Limit  int
	Cursor *Cursor
}

// Page is one page of projected rows plus the continuation tokens. Either
// token is empty when there is nothing in that direction.
type Page[D any] struct {
	Items      []D
	NextCursor string
	PrevCursor string
	// Limit is the effective (clamped) page size the page was fetched with.
	Limit int
}

// Paginate runs one scoped keyset-pagination fetch: fingerprint drift check,
// effective-order derivation, filter and cursor predicate compilation, the
// limit+1 overfetch that detects further pages without a COUNT query, and
// next/prev cursor issuance. The scope on q stays in force throughout.
//
// Ordering comes from the cursor's signature once paging has started;
// supplying both a cursor and an explicit order is rejected with
// ErrOrderWithCursor. A cursor issued under a different filter is rejected
// with ErrFilterMismatch before the store is touched (the check applies when
// both the cursor and the request carry a fingerprint).
//
// Backward cursors scan the store in flipped order; the page is reversed in
// memory afterwards, so items always arrive in forward-visual order.
func Paginate[M, D any](
	ctx context.Context,
	q *ScopedQuery,
	req Query,
	fmap *FieldMap[M],
	tiebreaker OrderBy,
	cfg LimitConfig,
	project func(M) D,
) (*Page[D], error) {
	if req.Cursor != nil && len(req.Order) > 0 {
		return nil, ErrOrderWithCursor
	}

	fingerprint := Fingerprint(req.Filter)
	if req.Cursor != nil && req.Cursor.Fingerprint != "" && fingerprint != "" &&
		req.Cursor.Fingerprint != fingerprint {
		return nil, ErrFilterMismatch
	}

	var (
		effectiveOrder Orderings
		err            error
	)
	if req.Cursor != nil {
		effectiveOrder, err = req.Cursor.Order()
	} else {
		effectiveOrder = req.Order.EnsureTiebreaker(tiebreaker.Field, tiebreaker.Direction)
		err = effectiveOrder.validate()
	}
	if err != nil {
		return nil, err
	}

	if req.Filter != nil {
		cond, err := Compile(req.Filter, fmap)
		if err != nil {
			return nil, err
		}
		q = q.Filter(cond)
	}

	if req.Cursor != nil {
		pred, err := cursorPredicate(req.Cursor, fmap)
		if err != nil {
			return nil, err
		}
		q = q.Filter(pred)
	}

	isBackward := req.Cursor.IsBackward()

	queryOrder := effectiveOrder
	if isBackward {
		queryOrder = queryOrder.Reversed()
	}
	orderSQL, err := resolveOrder(queryOrder, fmap)
	if err != nil {
		return nil, err
	}

	limit := cfg.Normalize(req.Limit)

	// Fetch one extra row: its presence is what distinguishes "more data
	// exists past this page" from "this is exactly all remaining data".
	var rows []M
	if err := q.orderBy(orderSQL).Limit(limit + 1).All(ctx, &rows); err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if isBackward {
		// The store returned flipped order: the overfetch row sits at the
		// end (furthest backward), the boundary rows are reversed.
		if hasMore {
			rows = rows[:limit]
		}
		rows = lo.Reverse(rows)
	} else if hasMore {
		rows = rows[:limit]
	}

	nextCursor, err := boundaryCursor(rows, effectiveOrder, fmap, fingerprint,
		len(rows) > 0 && (isBackward || hasMore), true, ScanForward)
	if err != nil {
		return nil, err
	}

	prevCursor, err := boundaryCursor(rows, effectiveOrder, fmap, fingerprint,
		len(rows) > 0 && ((isBackward && hasMore) || (!isBackward && req.Cursor != nil)),
		false, ScanBackward)
	if err != nil {
		return nil, err
	}

	return &Page[D]{
		Items:      lo.Map(rows, func(m M, _ int) D { return project(m) }),
		NextCursor: nextCursor,
		PrevCursor: prevCursor,
		Limit:      limit,
	}, nil
}

// boundaryCursor issues a continuation token anchored at the page's first or
// last row, when the issuance matrix says one should exist:
//
//	forward fetch:  next iff more rows exist, prev iff a cursor was supplied;
//	backward fetch: next always, prev iff more rows exist backward.
func boundaryCursor[M any](
	rows []M,
	order Orderings,
	fmap *FieldMap[M],
	fingerprint string,
	present bool,
	last bool,
	scan string,
) (string, error) {
	if !present {
		return "", nil
	}

	boundary := rows[0]
	if last {
		boundary = rows[len(rows)-1]
	}

	cursor, err := BuildCursor(boundary, order, fmap, scan, fingerprint)
	if err != nil {
		return "", err
	}

	return cursor.Encode(), nil
}

func resolveOrder[M any](o Orderings, fmap *FieldMap[M]) (string, error) {
	parts := make([]string, 0, len(o))
	for _, key := range o {
		f, ok := fmap.lookup(key.Field)
		if !ok {
			return "", errInvalidOrderField(key.Field)
		}

		parts = append(parts, fmt.Sprintf("%s %s", f.column, key.Direction))
	}

	return strings.Join(parts, ", "), nil
}

func (q *ScopedQuery) orderBy(sql string) *ScopedQuery {
	return &ScopedQuery{db: q.db.Order(sql), model: q.model}
}

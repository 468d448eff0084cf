package scopager

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

var _encoder = base64.RawURLEncoding

// Scan direction tags carried in a cursor. A backward tag means the store is
// scanned in flipped order and the page is reversed in memory afterwards, so
// the caller always sees forward-visual order.
const (
	ScanForward  = "fwd"
	ScanBackward = "bwd"
)

// Cursor is an opaque continuation token. It captures the boundary row's key
// values, the sort signature they were extracted under, the anchor field's
// direction, an optional filter fingerprint and the scan direction — enough
// state to resume a scan safely after a round-trip through any transport.
//
// A cursor is immutable once built and is consumed exactly once per fetch.
type Cursor struct {
	// Keys holds the encoded key values of the boundary row, one per
	// signature field, in signature order.
	Keys []string
	// Anchor is the sort direction of the first signature field.
	Anchor Direction
	// Signature is the signed-token rendering of the effective ordering,
	// e.g. "+score,-id".
	Signature string
	// Fingerprint is the short hash of the filter the cursor was issued
	// under. Empty when the scan had no filter.
	Fingerprint string
	// Scan is ScanForward or ScanBackward.
	Scan string
}

type cursorWire struct {
	V int      `json:"v"`
	K []string `json:"k"`
	O string   `json:"o"`
	S string   `json:"s"`
	F string   `json:"f,omitempty"`
	D string   `json:"d"`
}

// Encode renders the cursor as an opaque base64url token that round-trips
// byte-for-byte through headers and query parameters.
func (c *Cursor) Encode() string {
	if c.IsEmpty() {
		return ""
	}

	wire := cursorWire{
		V: 1,
		K: c.Keys,
		O: strings.ToLower(string(c.Anchor)),
		S: c.Signature,
		F: c.Fingerprint,
		D: c.Scan,
	}

	data, err := json.Marshal(wire)
	if err != nil {
		panic(fmt.Errorf("cannot marshal cursor value: %w", err))
	}

	return _encoder.EncodeToString(data)
}

// String - implements fmt.Stringer.
func (c *Cursor) String() string {
	return c.Encode()
}

// IsEmpty - reports whether the cursor carries no resume position.
func (c *Cursor) IsEmpty() bool {
	return c == nil || len(c.Keys) == 0
}

// IsBackward reports whether the cursor requests a backward scan.
func (c *Cursor) IsBackward() bool {
	return c != nil && c.Scan == ScanBackward
}

// Order re-derives the effective ordering from the cursor's signature. Once
// paging has started, order comes from the cursor - never from the caller -
// to prevent drift between pages.
func (c *Cursor) Order() (Orderings, error) {
	order, err := ParseSignedTokens(c.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursorSignature, err)
	}

	return order, nil
}

// DecodeCursor parses an opaque token back into a *Cursor, validating the
// wire format and internal consistency. An empty token decodes to nil (start
// of the dataset).
func DecodeCursor(token string) (*Cursor, error) {
	if len(token) == 0 {
		return nil, nil
	}

	data, err := _encoder.DecodeString(token)
	if err != nil {
		return nil, ErrCursorBase64
	}

	var wire cursorWire
	if err = json.Unmarshal(data, &wire); err != nil {
		return nil, ErrCursorJSON
	}

	if wire.V != 1 {
		return nil, ErrCursorVersion
	}
	if len(wire.K) == 0 {
		return nil, ErrCursorKeys
	}
	if strings.TrimSpace(wire.S) == "" {
		return nil, ErrCursorSignature
	}

	var anchor Direction
	switch wire.O {
	case "asc":
		anchor = DirectionASC
	case "desc":
		anchor = DirectionDESC
	default:
		return nil, ErrCursorDirection
	}

	scan := wire.D
	if scan == "" {
		scan = ScanForward
	}
	if scan != ScanForward && scan != ScanBackward {
		return nil, ErrCursorDirection
	}

	order, err := ParseSignedTokens(wire.S)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCursorSignature, err)
	}
	if len(order) != len(wire.K) {
		return nil, fmt.Errorf("%w: key count mismatch with sort signature", ErrCursorKeys)
	}

	return &Cursor{
		Keys:        wire.K,
		Anchor:      anchor,
		Signature:   wire.S,
		Fingerprint: wire.F,
		Scan:        scan,
	}, nil
}

// BuildCursor builds a continuation token anchored at a boundary row. Every
// ordered field must have a cursor extractor registered - a cursor cannot be
// anchored on a field whose value cannot be re-extracted from a row.
func BuildCursor[M any](
	model M,
	order Orderings,
	fmap *FieldMap[M],
	scan string,
	fingerprint string,
) (*Cursor, error) {
	if len(order) == 0 {
		return nil, errInvalidOrderField("empty order")
	}

	keys := make([]string, 0, len(order))
	for _, key := range order {
		s, ok := fmap.EncodeModelKey(model, key.Field)
		if !ok {
			return nil, errInvalidOrderField(key.Field)
		}
		keys = append(keys, s)
	}

	return &Cursor{
		Keys:        keys,
		Anchor:      order[0].Direction,
		Signature:   order.SignedTokens(),
		Fingerprint: fingerprint,
		Scan:        scan,
	}, nil
}

// cursorPredicate expands a cursor into the lexicographic keyset predicate:
//
//	(k1 > v1) OR (k1 = v1 AND k2 > v2) OR ... OR (k1 = v1 AND ... AND kN > vN)
//
// with ">" / "<" chosen per key direction, all comparisons flipped for a
// backward scan. The order is always re-derived from the cursor's own
// signature.
func cursorPredicate[M any](c *Cursor, fmap *FieldMap[M]) (clause.Expression, error) {
	order, err := c.Order()
	if err != nil {
		return nil, err
	}
	if len(c.Keys) != len(order) {
		return nil, fmt.Errorf("%w: key count mismatch with sort signature", ErrCursorKeys)
	}

	conjuncts := make([]tConjunct, 0, len(order))
	for i, key := range order {
		f, ok := fmap.lookup(key.Field)
		if !ok {
			return nil, errInvalidOrderField(key.Field)
		}

		val, err := parseCursorKey(f.kind, c.Keys[i])
		if err != nil {
			return nil, err
		}

		dir := key.Direction
		if c.IsBackward() {
			dir = dir.Reversed()
		}

		conjuncts = append(conjuncts, tConjunct{
			Column:   f.column,
			Value:    val,
			Operator: dir.ForOperator(),
		})
	}

	return keysetDNF(conjuncts).toGORMExpression(), nil
}

// keysetDNF expands strict per-key comparisons into the full DNF: disjunct i
// repeats the first i-1 keys as equalities and keeps the strict comparison
// on key i.
func keysetDNF(conjuncts []tConjunct) tDNF {
	dnf := make(tDNF, 0, len(conjuncts))
	for i := range conjuncts {
		disjunct := make(tDisjunct, 0, i+1)
		for _, prev := range conjuncts[:i] {
			disjunct = append(disjunct, tConjunct{
				Column:   prev.Column,
				Value:    prev.Value,
				Operator: operatorEq,
			})
		}
		disjunct = append(disjunct, conjuncts[i])

		dnf = append(dnf, disjunct)
	}

	return dnf
}

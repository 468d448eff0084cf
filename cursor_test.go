package scopager

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
)

type cursorPlayer struct {
	ID    int64
	Name  string
	Score int64
}

func newCursorPlayerFieldMap() *FieldMap[cursorPlayer] {
	return NewFieldMap[cursorPlayer]().
		InsertWithExtractor("score", "score", KindInt64, func(p cursorPlayer) string {
			return strconv.FormatInt(p.Score, 10)
		}).
		InsertWithExtractor("id", "id", KindInt64, func(p cursorPlayer) string {
			return strconv.FormatInt(p.ID, 10)
		}).
		Insert("name", "name", KindString)
}

func encodeWire(t *testing.T, wire cursorWire) string {
	t.Helper()

	data, err := json.Marshal(wire)
	if err != nil {
		t.Fatal(err)
	}

	return base64.RawURLEncoding.EncodeToString(data)
}

func Test_Cursor_EncodeDecode_RoundTrip(t *testing.T) {
	in := &Cursor{
		Keys:        []string{"20", "2"},
		Anchor:      DirectionASC,
		Signature:   "+score,-id",
		Fingerprint: "deadbeefdeadbeef",
		Scan:        ScanForward,
	}

	got, err := DecodeCursor(in.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Keys) != 2 || got.Keys[0] != "20" || got.Keys[1] != "2" {
		t.Errorf("keys=%v", got.Keys)
	}
	if got.Anchor != DirectionASC {
		t.Errorf("anchor=%v", got.Anchor)
	}
	if got.Signature != in.Signature {
		t.Errorf("signature=%q", got.Signature)
	}
	if got.Fingerprint != in.Fingerprint {
		t.Errorf("fingerprint=%q", got.Fingerprint)
	}
	if got.Scan != ScanForward {
		t.Errorf("scan=%q", got.Scan)
	}
}

func Test_Cursor_Encode_Empty(t *testing.T) {
	var c *Cursor
	if c.Encode() != "" {
		t.Error("nil cursor must encode to empty token")
	}
	if (&Cursor{}).Encode() != "" {
		t.Error("keyless cursor must encode to empty token")
	}
}

func Test_DecodeCursor_EmptyToken(t *testing.T) {
	got, err := DecodeCursor("")
	if err != nil || got != nil {
		t.Errorf("empty token must decode to (nil, nil), got (%v, %v)", got, err)
	}
}

func Test_DecodeCursor_Validation(t *testing.T) {
	valid := cursorWire{V: 1, K: []string{"20", "2"}, O: "asc", S: "+score,-id", D: "fwd"}

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage base64", "not+valid+base64!!", ErrCursorBase64},
		{"garbage json", base64.RawURLEncoding.EncodeToString([]byte("{oops")), ErrCursorJSON},
		{
			"unsupported version",
			encodeWire(t, cursorWire{V: 2, K: valid.K, O: valid.O, S: valid.S, D: valid.D}),
			ErrCursorVersion,
		},
		{
			"empty keys",
			encodeWire(t, cursorWire{V: 1, O: valid.O, S: valid.S, D: valid.D}),
			ErrCursorKeys,
		},
		{
			"empty signature",
			encodeWire(t, cursorWire{V: 1, K: valid.K, O: valid.O, D: valid.D}),
			ErrCursorSignature,
		},
		{
			"bad anchor direction",
			encodeWire(t, cursorWire{V: 1, K: valid.K, O: "sideways", S: valid.S, D: valid.D}),
			ErrCursorDirection,
		},
		{
			"bad scan direction",
			encodeWire(t, cursorWire{V: 1, K: valid.K, O: valid.O, S: valid.S, D: "up"}),
			ErrCursorDirection,
		},
		{
			"signature with lonely sign",
			encodeWire(t, cursorWire{V: 1, K: []string{"20"}, O: valid.O, S: "+", D: valid.D}),
			ErrCursorSignature,
		},
		{
			"key count mismatch",
			encodeWire(t, cursorWire{V: 1, K: []string{"20"}, O: valid.O, S: valid.S, D: valid.D}),
			ErrCursorKeys,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCursor(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("%s: got %v want %v", tt.name, err, tt.want)
			}
			if !errors.Is(err, ErrInvalidCursor) {
				t.Errorf("%s: every decode error must wrap ErrInvalidCursor", tt.name)
			}
		})
	}
}

func Test_DecodeCursor_ScanDefaultsForward(t *testing.T) {
	token := encodeWire(t, cursorWire{V: 1, K: []string{"20", "2"}, O: "asc", S: "+score,-id"})

	got, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Scan != ScanForward {
		t.Errorf("scan=%q want fwd", got.Scan)
	}
	if got.IsBackward() {
		t.Error("IsBackward must be false")
	}
}

func Test_BuildCursor(t *testing.T) {
	fmap := newCursorPlayerFieldMap()
	row := cursorPlayer{ID: 2, Name: "bob", Score: 20}
	order := Orderings{
		{Field: "score", Direction: DirectionASC},
		{Field: "id", Direction: DirectionDESC},
	}

	t.Run("anchored at boundary row", func(t *testing.T) {
		c, err := BuildCursor(row, order, fmap, ScanForward, "cafe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Keys[0] != "20" || c.Keys[1] != "2" {
			t.Errorf("keys=%v", c.Keys)
		}
		if c.Anchor != DirectionASC || c.Signature != "+score,-id" {
			t.Errorf("anchor=%v signature=%q", c.Anchor, c.Signature)
		}
		if c.Fingerprint != "cafe" || c.Scan != ScanForward {
			t.Errorf("fingerprint=%q scan=%q", c.Fingerprint, c.Scan)
		}
	})

	t.Run("empty order rejected", func(t *testing.T) {
		_, err := BuildCursor(row, nil, fmap, ScanForward, "")
		if !errors.Is(err, ErrInvalidOrderField) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("field without extractor rejected", func(t *testing.T) {
		_, err := BuildCursor(row, Orderings{{Field: "name", Direction: DirectionASC}}, fmap, ScanForward, "")
		if !errors.Is(err, ErrInvalidOrderField) {
			t.Errorf("got %v", err)
		}
	})
}

func Test_cursorPredicate(t *testing.T) {
	fmap := newCursorPlayerFieldMap()

	t.Run("forward two-key DNF", func(t *testing.T) {
		c := &Cursor{
			Keys:      []string{"20", "2"},
			Anchor:    DirectionASC,
			Signature: "+score,-id",
			Scan:      ScanForward,
		}

		expr, err := cursorPredicate(c, fmap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if expr == nil {
			t.Fatal("nil predicate")
		}

		// Same conjuncts rendered textually for shape inspection.
		sql, vals := keysetDNF([]tConjunct{
			{Column: "score", Value: int64(20), Operator: OperatorGT},
			{Column: "id", Value: int64(2), Operator: OperatorLT},
		}).toSQLClause()
		if sql != "((score > ?) OR (score = ? AND id < ?))" {
			t.Errorf("sql=%q", sql)
		}
		if len(vals) != 3 || vals[0] != int64(20) || vals[1] != int64(20) || vals[2] != int64(2) {
			t.Errorf("vals=%v", vals)
		}
	})

	t.Run("backward scan flips every comparison", func(t *testing.T) {
		c := &Cursor{
			Keys:      []string{"30", "3"},
			Anchor:    DirectionASC,
			Signature: "+score,-id",
			Scan:      ScanBackward,
		}

		if _, err := cursorPredicate(c, fmap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sql, _ := keysetDNF([]tConjunct{
			{Column: "score", Value: int64(30), Operator: OperatorLT},
			{Column: "id", Value: int64(3), Operator: OperatorGT},
		}).toSQLClause()
		if sql != "((score < ?) OR (score = ? AND id > ?))" {
			t.Errorf("sql=%q", sql)
		}
	})

	t.Run("unknown signature field", func(t *testing.T) {
		c := &Cursor{Keys: []string{"x"}, Anchor: DirectionASC, Signature: "+ghost", Scan: ScanForward}
		_, err := cursorPredicate(c, fmap)
		if !errors.Is(err, ErrInvalidOrderField) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("unparseable key", func(t *testing.T) {
		c := &Cursor{Keys: []string{"NaN", "2"}, Anchor: DirectionASC, Signature: "+score,-id", Scan: ScanForward}
		_, err := cursorPredicate(c, fmap)
		if !errors.Is(err, ErrCursorKeys) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("key count mismatch", func(t *testing.T) {
		c := &Cursor{Keys: []string{"20"}, Anchor: DirectionASC, Signature: "+score,-id", Scan: ScanForward}
		_, err := cursorPredicate(c, fmap)
		if !errors.Is(err, ErrCursorKeys) {
			t.Errorf("got %v", err)
		}
	})
}

func Test_keysetDNF_SingleKey(t *testing.T) {
	sql, vals := keysetDNF([]tConjunct{
		{Column: "id", Value: int64(7), Operator: OperatorGT},
	}).toSQLClause()
	if sql != "((id > ?))" {
		t.Errorf("sql=%q", sql)
	}
	if len(vals) != 1 || vals[0] != int64(7) {
		t.Errorf("vals=%v", vals)
	}
}

func Test_Cursor_Order(t *testing.T) {
	c := &Cursor{Signature: "+score,-id"}
	order, err := c.Order()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Orderings{
		{Field: "score", Direction: DirectionASC},
		{Field: "id", Direction: DirectionDESC},
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d]=%v want %v", i, order[i], want[i])
		}
	}

	c = &Cursor{Signature: ""}
	if _, err = c.Order(); !errors.Is(err, ErrCursorSignature) {
		t.Errorf("got %v", err)
	}
}

package scopager

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldKind is the declared storage kind of a filterable/orderable field.
// Literals in a filter expression are checked against it before any SQL is
// built.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt64
	KindFloat64
	KindDecimal
	KindBool
	KindUUID
	KindDateTime
	KindDate
	KindTime
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindUUID:
		return "uuid"
	case KindDateTime:
		return "datetime"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// ValueKind is the runtime type tag of a literal Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueNumber
	ValueString
	ValueUUID
	ValueDateTime
	ValueDate
	ValueTime
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueUUID:
		return "uuid"
	case ValueDateTime:
		return "datetime"
	case ValueDate:
		return "date"
	case ValueTime:
		return "time"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is an immutable literal taken from a client filter expression. It is
// only ever compared against a FieldKind-typed column, never against another
// Value.
type Value struct {
	kind ValueKind
	b    bool
	n    decimal.Decimal
	s    string
	u    uuid.UUID
	t    time.Time
}

func NullValue() Value                    { return Value{kind: ValueNull} }
func BoolValue(b bool) Value              { return Value{kind: ValueBool, b: b} }
func NumberValue(d decimal.Decimal) Value { return Value{kind: ValueNumber, n: d} }
func IntValue(i int64) Value              { return Value{kind: ValueNumber, n: decimal.NewFromInt(i)} }
func FloatValue(f float64) Value          { return Value{kind: ValueNumber, n: decimal.NewFromFloat(f)} }
func StringValue(s string) Value          { return Value{kind: ValueString, s: s} }
func UUIDValue(u uuid.UUID) Value         { return Value{kind: ValueUUID, u: u} }
func DateTimeValue(t time.Time) Value     { return Value{kind: ValueDateTime, t: t.UTC()} }
func DateValue(t time.Time) Value         { return Value{kind: ValueDate, t: t} }
func TimeValue(t time.Time) Value         { return Value{kind: ValueTime, t: t} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == ValueNull }

const (
	_dateLayout = "2006-01-02"
	_timeLayout = "15:04:05.999999999"
)

// coerce converts a literal into a driver-level value bindable for a column
// of the given kind. A kind/value disagreement is a client error, reported
// with both sides attached.
func coerce(kind FieldKind, v Value) (any, error) {
	switch {
	case kind == KindString && v.kind == ValueString:
		return v.s, nil
	case kind == KindInt64 && v.kind == ValueNumber:
		if !v.n.IsInteger() {
			return nil, errTypeMismatch(kind, v.kind.String())
		}
		return v.n.IntPart(), nil
	case kind == KindFloat64 && v.kind == ValueNumber:
		f, _ := v.n.Float64()
		return f, nil
	case kind == KindDecimal && v.kind == ValueNumber:
		return v.n, nil
	case kind == KindBool && v.kind == ValueBool:
		return v.b, nil
	case kind == KindUUID && v.kind == ValueUUID:
		return v.u, nil
	case kind == KindDateTime && v.kind == ValueDateTime:
		return v.t, nil
	case kind == KindDate && v.kind == ValueDate:
		return v.t.Format(_dateLayout), nil
	case kind == KindTime && v.kind == ValueTime:
		return v.t.Format(_timeLayout), nil
	default:
		return nil, errTypeMismatch(kind, v.kind.String())
	}
}

// parseCursorKey parses a cursor key slot back into a driver-level value
// bindable for a column of the given kind. Key slots are produced by the
// per-field cursor extractors, so the accepted formats are the canonical
// string renderings of each kind.
func parseCursorKey(kind FieldKind, s string) (any, error) {
	switch kind {
	case KindString:
		return s, nil
	case KindInt64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid int64 key %q", ErrCursorKeys, s)
		}
		return i, nil
	case KindFloat64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid float64 key %q", ErrCursorKeys, s)
		}
		return f, nil
	case KindDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid decimal key %q", ErrCursorKeys, s)
		}
		return d, nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid bool key %q", ErrCursorKeys, s)
		}
		return b, nil
	case KindUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid uuid key %q", ErrCursorKeys, s)
		}
		return u, nil
	case KindDateTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid datetime key %q", ErrCursorKeys, s)
		}
		return t.UTC(), nil
	case KindDate:
		if _, err := time.Parse(_dateLayout, s); err != nil {
			return nil, fmt.Errorf("%w: invalid date key %q", ErrCursorKeys, s)
		}
		return s, nil
	case KindTime:
		if _, err := time.Parse(_timeLayout, s); err != nil {
			return nil, fmt.Errorf("%w: invalid time key %q", ErrCursorKeys, s)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: unsupported field kind %s", ErrCursorKeys, kind)
	}
}

package scopager

import (
	"errors"
	"fmt"
)

// CompileErrorKind discriminates filter-compile rejections. All of them are
// client-input errors and must never be retried.
type CompileErrorKind int

const (
	ErrKindUnknownField CompileErrorKind = iota
	ErrKindBareIdentifier
	ErrKindBareLiteral
	ErrKindTypeMismatch
	ErrKindUnsupportedOp
	ErrKindUnsupportedFunction
	ErrKindNonLiteralInList
	ErrKindFieldToFieldComparison
)

// CompileError is a filter-compile rejection with enough context for a
// precise client-facing message.
type CompileError struct {
	Kind     CompileErrorKind
	Field    string
	Op       CompareOperator
	Fn       string
	Expected FieldKind
	Got      string
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case ErrKindUnknownField:
		return fmt.Sprintf("unknown field: %s", e.Field)
	case ErrKindBareIdentifier:
		return fmt.Sprintf("bare identifier not allowed: %s", e.Field)
	case ErrKindBareLiteral:
		return "bare literal not allowed"
	case ErrKindTypeMismatch:
		return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
	case ErrKindUnsupportedOp:
		return fmt.Sprintf("unsupported operator: %s", e.Op)
	case ErrKindUnsupportedFunction:
		return fmt.Sprintf("unsupported function or args: %s()", e.Fn)
	case ErrKindNonLiteralInList:
		return "IN() list supports only literals"
	case ErrKindFieldToFieldComparison:
		return "field-to-field comparison is not supported"
	default:
		return "invalid filter expression"
	}
}

func errUnknownField(name string) error {
	return &CompileError{Kind: ErrKindUnknownField, Field: name}
}

func errTypeMismatch(expected FieldKind, got string) error {
	return &CompileError{Kind: ErrKindTypeMismatch, Expected: expected, Got: got}
}

// Cursor errors. All wrap ErrInvalidCursor so callers can match the whole
// category with errors.Is and prompt the client to restart pagination.
var (
	ErrInvalidCursor = errors.New("invalid cursor")

	ErrCursorBase64    = fmt.Errorf("%w: invalid base64url encoding", ErrInvalidCursor)
	ErrCursorJSON      = fmt.Errorf("%w: malformed json", ErrInvalidCursor)
	ErrCursorVersion   = fmt.Errorf("%w: unsupported version", ErrInvalidCursor)
	ErrCursorKeys      = fmt.Errorf("%w: empty or invalid keys", ErrInvalidCursor)
	ErrCursorSignature = fmt.Errorf("%w: empty or invalid sort signature", ErrInvalidCursor)
	ErrCursorDirection = fmt.Errorf("%w: invalid scan direction", ErrInvalidCursor)

	// ErrFilterMismatch - the cursor was issued under a different filter than
	// the one supplied with this request.
	ErrFilterMismatch = fmt.Errorf("%w: filter changed since cursor was issued", ErrInvalidCursor)
	// ErrOrderWithCursor - once paging has started the ordering comes from the
	// cursor signature; supplying both is rejected.
	ErrOrderWithCursor = fmt.Errorf("%w: explicit ordering cannot be combined with a cursor", ErrInvalidCursor)
)

// ErrInvalidOrderField - a requested or cursor-embedded sort field is not
// registered in the field map, or cannot anchor a cursor.
var ErrInvalidOrderField = errors.New("unsupported order field")

func errInvalidOrderField(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOrderField, name)
}

// ErrScopePolicy - a scope narrowing was requested that the entity cannot
// express (e.g. AndID on an entity without a resource column). This is an
// integration error, not expected at runtime with correct wiring.
var ErrScopePolicy = errors.New("scope policy violation")

package scopager

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

// _alwaysFalse matches zero rows. Used for the deny-all scope policy and the
// empty IN() list.
var _alwaysFalse = clause.Expr{SQL: "1=0"}

// Compile translates a filter expression into a gorm predicate against the
// given field map. Pure translation, no side effects: every rejection happens
// before any SQL is executed.
//
// Hard constraints:
//   - a bare identifier or literal is not a filter;
//   - a comparison needs a registered field on one side and a literal on the
//     other — field-to-field comparison is rejected;
//   - the literal's runtime type must match the field's declared kind;
//   - only Eq/Ne may compare against null (IS NULL / IS NOT NULL);
//   - IN() lists hold literals only, and an empty list means "no rows".
func Compile[M any](expr Expr, fmap *FieldMap[M]) (clause.Expression, error) {
	switch n := expr.(type) {
	case AndExpr:
		left, err := Compile(n.Left, fmap)
		if err != nil {
			return nil, err
		}
		right, err := Compile(n.Right, fmap)
		if err != nil {
			return nil, err
		}

		return clause.And(left, right), nil

	case OrExpr:
		left, err := Compile(n.Left, fmap)
		if err != nil {
			return nil, err
		}
		right, err := Compile(n.Right, fmap)
		if err != nil {
			return nil, err
		}

		return clause.Or(left, right), nil

	case NotExpr:
		inner, err := Compile(n.Inner, fmap)
		if err != nil {
			return nil, err
		}

		return clause.Not(inner), nil

	case CompareExpr:
		return compileCompare(n, fmap)

	case InExpr:
		return compileIn(n, fmap)

	case FuncExpr:
		return compileFunc(n, fmap)

	case Ident:
		return nil, &CompileError{Kind: ErrKindBareIdentifier, Field: n.Name}

	case Literal:
		return nil, &CompileError{Kind: ErrKindBareLiteral}

	default:
		return nil, fmt.Errorf("unsupported filter expression %T", expr)
	}
}

func compileCompare[M any](n CompareExpr, fmap *FieldMap[M]) (clause.Expression, error) {
	_, lIdent := n.Left.(Ident)
	_, rIdent := n.Right.(Ident)
	if lIdent && rIdent {
		return nil, &CompileError{Kind: ErrKindFieldToFieldComparison}
	}

	ident, ok := n.Left.(Ident)
	if !ok {
		return nil, &CompileError{Kind: ErrKindBareLiteral}
	}
	lit, ok := n.Right.(Literal)
	if !ok {
		return nil, &CompileError{Kind: ErrKindUnsupportedOp, Op: n.Op, Field: ident.Name}
	}

	f, ok := fmap.lookup(ident.Name)
	if !ok {
		return nil, errUnknownField(ident.Name)
	}

	if lit.Value.IsNull() {
		switch n.Op {
		case OpEq:
			return clause.Expr{SQL: fmt.Sprintf("%s IS NULL", f.column)}, nil
		case OpNe:
			return clause.Expr{SQL: fmt.Sprintf("%s IS NOT NULL", f.column)}, nil
		default:
			return nil, &CompileError{Kind: ErrKindUnsupportedOp, Op: n.Op, Field: ident.Name}
		}
	}

	val, err := coerce(f.kind, lit.Value)
	if err != nil {
		return nil, withField(err, ident.Name)
	}

	return clause.Expr{
		SQL:  fmt.Sprintf("%s %s ?", f.column, n.Op.sql()),
		Vars: []any{val},
	}, nil
}

func compileIn[M any](n InExpr, fmap *FieldMap[M]) (clause.Expression, error) {
	ident, ok := n.Left.(Ident)
	if !ok {
		return nil, &CompileError{Kind: ErrKindBareLiteral}
	}

	f, ok := fmap.lookup(ident.Name)
	if !ok {
		return nil, errUnknownField(ident.Name)
	}

	vals := make([]any, 0, len(n.List))
	for _, item := range n.List {
		lit, ok := item.(Literal)
		if !ok {
			return nil, &CompileError{Kind: ErrKindNonLiteralInList, Field: ident.Name}
		}

		val, err := coerce(f.kind, lit.Value)
		if err != nil {
			return nil, withField(err, ident.Name)
		}
		vals = append(vals, val)
	}

	// IN () means "no values selected" which means "no rows", not "all rows".
	if len(vals) == 0 {
		return _alwaysFalse, nil
	}

	return clause.Expr{
		SQL:  fmt.Sprintf("%s IN ?", f.column),
		Vars: []any{vals},
	}, nil
}

func compileFunc[M any](n FuncExpr, fmap *FieldMap[M]) (clause.Expression, error) {
	name := strings.ToLower(n.Name)
	switch name {
	case "contains", "startswith", "endswith":
	default:
		return nil, &CompileError{Kind: ErrKindUnsupportedFunction, Fn: n.Name}
	}

	if len(n.Args) != 2 {
		return nil, &CompileError{Kind: ErrKindUnsupportedFunction, Fn: n.Name}
	}
	ident, ok := n.Args[0].(Ident)
	if !ok {
		return nil, &CompileError{Kind: ErrKindUnsupportedFunction, Fn: n.Name}
	}
	lit, ok := n.Args[1].(Literal)
	if !ok || lit.Value.Kind() != ValueString {
		return nil, &CompileError{Kind: ErrKindUnsupportedFunction, Fn: n.Name}
	}

	f, ok := fmap.lookup(ident.Name)
	if !ok {
		return nil, errUnknownField(ident.Name)
	}
	if f.kind != KindString {
		return nil, &CompileError{
			Kind:     ErrKindTypeMismatch,
			Field:    ident.Name,
			Expected: KindString,
			Got:      f.kind.String(),
		}
	}

	var pattern string
	switch name {
	case "contains":
		pattern = "%" + likeEscape(lit.Value.s) + "%"
	case "startswith":
		pattern = likeEscape(lit.Value.s) + "%"
	case "endswith":
		pattern = "%" + likeEscape(lit.Value.s)
	}

	return clause.Expr{
		SQL:  fmt.Sprintf("%s LIKE ?", f.column),
		Vars: []any{pattern},
	}, nil
}

// likeEscape neutralizes LIKE metacharacters in a user-supplied fragment.
func likeEscape(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		switch ch {
		case '%', '_', '\\':
			out.WriteByte('\\')
		}
		out.WriteRune(ch)
	}

	return out.String()
}

func withField(err error, name string) error {
	var ce *CompileError
	if errors.As(err, &ce) && ce.Field == "" {
		ce.Field = name
	}

	return err
}

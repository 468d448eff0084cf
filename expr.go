package scopager

// Expr is a client-supplied boolean filter expression. The engine only reads
// it; building the tree from request text is the transport layer's job.
//
// The tree is a closed union: And, Or, Not, Compare, In, Func, Ident and
// Literal are the only node types.
type Expr interface {
	isExpr()
}

type (
	// AndExpr is the conjunction of two sub-expressions.
	AndExpr struct {
		Left, Right Expr
	}

	// OrExpr is the disjunction of two sub-expressions.
	OrExpr struct {
		Left, Right Expr
	}

	// NotExpr negates its inner expression.
	NotExpr struct {
		Inner Expr
	}

	// CompareExpr compares two sub-expressions with a CompareOperator.
	// The compiler only accepts the Ident-vs-Literal form.
	CompareExpr struct {
		Left  Expr
		Op    CompareOperator
		Right Expr
	}

	// InExpr tests membership of a field in a literal list.
	InExpr struct {
		Left Expr
		List []Expr
	}

	// FuncExpr is a named function application, e.g. contains(name, 'jo').
	FuncExpr struct {
		Name string
		Args []Expr
	}

	// Ident references a registered field by its API name.
	Ident struct {
		Name string
	}

	// Literal wraps a constant Value.
	Literal struct {
		Value Value
	}
)

func (AndExpr) isExpr()     {}
func (OrExpr) isExpr()      {}
func (NotExpr) isExpr()     {}
func (CompareExpr) isExpr() {}
func (InExpr) isExpr()      {}
func (FuncExpr) isExpr()    {}
func (Ident) isExpr()       {}
func (Literal) isExpr()     {}

// CompareOperator enumerates the comparison operators a filter may use.
type CompareOperator int

const (
	OpEq CompareOperator = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
)

func (o CompareOperator) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	case OpLt:
		return "lt"
	case OpLe:
		return "le"
	default:
		return "?"
	}
}

// sql returns the SQL spelling of the operator.
func (o CompareOperator) sql() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpLt:
		return "<"
	default:
		return "<="
	}
}

// And combines two expressions with a logical AND.
func And(a, b Expr) Expr { return AndExpr{Left: a, Right: b} }

// Or combines two expressions with a logical OR.
func Or(a, b Expr) Expr { return OrExpr{Left: a, Right: b} }

// Not negates an expression.
func Not(x Expr) Expr { return NotExpr{Inner: x} }

// F references a field by API name for fluent filter construction:
//
//	scopager.F("score").Gt(scopager.IntValue(30))
func F(name string) Ident { return Ident{Name: name} }

func (i Ident) compare(op CompareOperator, v Value) Expr {
	return CompareExpr{Left: i, Op: op, Right: Literal{Value: v}}
}

func (i Ident) Eq(v Value) Expr { return i.compare(OpEq, v) }
func (i Ident) Ne(v Value) Expr { return i.compare(OpNe, v) }
func (i Ident) Gt(v Value) Expr { return i.compare(OpGt, v) }
func (i Ident) Ge(v Value) Expr { return i.compare(OpGe, v) }
func (i Ident) Lt(v Value) Expr { return i.compare(OpLt, v) }
func (i Ident) Le(v Value) Expr { return i.compare(OpLe, v) }

// IsNull compiles to "field IS NULL".
func (i Ident) IsNull() Expr { return i.compare(OpEq, NullValue()) }

// IsNotNull compiles to "field IS NOT NULL".
func (i Ident) IsNotNull() Expr { return i.compare(OpNe, NullValue()) }

// In tests membership in a literal list. An empty list compiles to an
// always-false predicate.
func (i Ident) In(vals ...Value) Expr {
	list := make([]Expr, 0, len(vals))
	for _, v := range vals {
		list = append(list, Literal{Value: v})
	}

	return InExpr{Left: i, List: list}
}

func (i Ident) Contains(s string) Expr {
	return FuncExpr{Name: "contains", Args: []Expr{i, Literal{Value: StringValue(s)}}}
}

func (i Ident) StartsWith(s string) Expr {
	return FuncExpr{Name: "startswith", Args: []Expr{i, Literal{Value: StringValue(s)}}}
}

func (i Ident) EndsWith(s string) Expr {
	return FuncExpr{Name: "endswith", Args: []Expr{i, Literal{Value: StringValue(s)}}}
}

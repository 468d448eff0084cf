package scopager

import "fmt"

// Operator is the strict comparison applied to a cursor key column. It is the
// operator form of a sort direction: ASC resumes with ">", DESC with "<".
type Operator string

const (
	OperatorGT Operator = ">"
	OperatorLT Operator = "<"

	// operatorEq is the equality operator. It is private because we use it
	// ONLY while building the equality prefix of a keyset predicate.
	operatorEq Operator = "="
)

func (o Operator) Valid() bool {
	return o == OperatorLT || o == OperatorGT
}

func (o Operator) ForOrdering() Direction {
	switch o {
	case OperatorGT:
		return DirectionASC
	case OperatorLT:
		return DirectionDESC
	default:
		panic(fmt.Errorf("cannot map operator '%s' to ordering", o))
	}
}

package scopager

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

// Direction defines the sort direction for the requested dataset.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

func (o Direction) Valid() bool {
	return o == DirectionASC || o == DirectionDESC
}

// Reversed flips the direction (ASC <-> DESC).
func (o Direction) Reversed() Direction {
	if o == DirectionASC {
		return DirectionDESC
	}

	return DirectionASC
}

func (o Direction) ForOperator() Operator {
	switch o {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", o))
	}
}

type (
	// OrderBy is one sort key: a registered field name plus a direction.
	OrderBy struct {
		Field     string
		Direction Direction
	}

	// Orderings is an ordered list of sort keys. Insertion order defines
	// lexicographic priority.
	Orderings []OrderBy

	FieldAlias = string

	// FieldMapping maps external field aliases to registered field names.
	// Key is an external alias, value is an internal field name.
	FieldMapping = map[FieldAlias]string
)

var _availableFieldNameSymbols = append([]rune("_."), lo.AlphanumericCharset...)

func (o OrderBy) validate() error {
	if !o.Direction.Valid() {
		return fmt.Errorf("invalid ordering direction '%s'", o.Direction)
	}

	// Guard against SQL injection by restricting allowed characters in field names.
	if !lo.Every(_availableFieldNameSymbols, []rune(o.Field)) {
		return fmt.Errorf("ordering field name contains forbidden symbols '%s'", o.Field)
	}

	return nil
}

func (o Orderings) validate() error {
	if len(o) == 0 {
		return fmt.Errorf("empty ordering list")
	}

	var err error
	for _, ordering := range o {
		err = ordering.validate()
		if err != nil {
			return err
		}
	}

	return nil
}

// EnsureTiebreaker guarantees a final, unique-valued sort key. If field is
// already present anywhere in the list, the list is returned unchanged;
// otherwise OrderBy{field, dir} is appended last. Idempotent.
func (o Orderings) EnsureTiebreaker(field string, dir Direction) Orderings {
	field = strings.ToLower(field)

	if lo.SomeBy(o, func(k OrderBy) bool { return strings.EqualFold(k.Field, field) }) {
		return o
	}

	ret := make(Orderings, 0, len(o)+1)
	ret = append(ret, o...)

	return append(ret, OrderBy{Field: field, Direction: dir})
}

// Reversed flips every direction. Used to scan backward while keeping the
// cursor signature untouched.
func (o Orderings) Reversed() Orderings {
	return lo.Map(o, func(k OrderBy, _ int) OrderBy {
		return OrderBy{Field: k.Field, Direction: k.Direction.Reversed()}
	})
}

// SignedTokens renders the ordering as a cursor sort signature, e.g.
// "+score,-id".
func (o Orderings) SignedTokens() string {
	tokens := lo.Map(o, func(k OrderBy, _ int) string {
		if k.Direction == DirectionDESC {
			return "-" + k.Field
		}

		return "+" + k.Field
	})

	return strings.Join(tokens, ",")
}

// ParseSignedTokens parses a cursor sort signature back into Orderings.
// A missing sign defaults to ascending.
func ParseSignedTokens(signed string) (Orderings, error) {
	var ret Orderings
	for _, seg := range strings.Split(signed, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		dir := DirectionASC
		name := seg
		switch seg[0] {
		case '+':
			name = seg[1:]
		case '-':
			dir = DirectionDESC
			name = seg[1:]
		}

		if name == "" {
			return nil, errInvalidOrderField(seg)
		}

		ret = append(ret, OrderBy{Field: name, Direction: dir})
	}

	if len(ret) == 0 {
		return nil, errInvalidOrderField("empty order")
	}

	return ret, nil
}

// ParseSort builds Orderings from a list of strings in the format
// "alias asc|desc". Field aliases are resolved via FieldMapping.
// Returns an error if an alias is not found in the mapping.
func ParseSort(stringsOrderings []string, fieldMapping FieldMapping) (Orderings, error) {
	ret := make(Orderings, 0, len(stringsOrderings))
	aliases := lo.Keys(fieldMapping)

	for _, stringOrdering := range stringsOrderings {
		cutStringOrdering := strings.Split(strings.TrimSpace(stringOrdering), " ")
		if len(cutStringOrdering) != 2 {
			return nil, fmt.Errorf("invalid ordering string format '%s'", stringOrdering)
		}

		alias := cutStringOrdering[0]
		direction := Direction(strings.ToUpper(cutStringOrdering[1]))
		if !direction.Valid() {
			return nil, fmt.Errorf("invalid ordering direction '%s'", cutStringOrdering[1])
		}

		fieldName := fieldMapping[alias]
		if fieldName == "" {
			return nil, fmt.Errorf("invalid field alias. closest: '%s'", closestAlias(alias, aliases))
		}

		ret = append(ret, OrderBy{
			Field:     fieldName,
			Direction: direction,
		})
	}

	return ret, nil
}

func closestAlias(input FieldAlias, dataSet []FieldAlias) FieldAlias {
	minDist := math.MaxInt
	closest := ""

	for _, dataSetAlias := range dataSet {
		dist := levenshtein([]rune(dataSetAlias), []rune(input))
		if dist < minDist {
			minDist = dist
			closest = dataSetAlias
		}
	}

	return closest
}

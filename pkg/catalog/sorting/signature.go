package sorting

import (
	"fmt"

	"github.com/cosmetia/cosmetia/pkg/catalog"
)

// Direction is the sort direction of one spec.
type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

const (
	ascendingPrefix  = 'a'
	descendingPrefix = 'd'
	separator        = '-'
)

// Spec is one (direction, field) pair. A list of specs is ordered by
// precedence: the first spec is the primary sort key.
type Spec struct {
	Direction Direction
	Field     Field
}

// Signature encodes s back into its token form.
func (s Spec) Signature() string {
	prefix := byte(ascendingPrefix)
	if s.Direction == Descending {
		prefix = descendingPrefix
	}
	return fmt.Sprintf("%c%c%s", prefix, separator, s.Field.Token())
}

// ParseSignature decodes a sort token into a Spec.
//
// A legal token is at least three characters: a direction prefix ('a' or
// 'd'), the '-' separator, and the kebab-case spelling of a registered
// field. Anything else fails with catalog.ErrInvalidSortingOption.
func ParseSignature(token string) (Spec, error) {
	if len(token) < 3 {
		return Spec{}, fmt.Errorf("%w: token %q too short", catalog.ErrInvalidSortingOption, token)
	}
	if token[1] != separator {
		return Spec{}, fmt.Errorf("%w: token %q missing separator", catalog.ErrInvalidSortingOption, token)
	}

	var direction Direction
	switch token[0] {
	case ascendingPrefix:
		direction = Ascending
	case descendingPrefix:
		direction = Descending
	default:
		return Spec{}, fmt.Errorf("%w: token %q has unknown direction %q", catalog.ErrInvalidSortingOption, token, token[0])
	}

	field, ok := FieldFromToken(token[2:])
	if !ok {
		return Spec{}, fmt.Errorf("%w: token %q references unknown field %q", catalog.ErrInvalidSortingOption, token, token[2:])
	}

	return Spec{Direction: direction, Field: field}, nil
}

// ParseSignatures parses tokens independently, preserving input order in
// the result. The first failing token aborts with its error.
func ParseSignatures(tokens []string) ([]Spec, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	specs := make([]Spec, 0, len(tokens))
	for _, token := range tokens {
		spec, err := ParseSignature(token)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

package criteria

import (
	"errors"
	"fmt"
)

// ErrArgumentCount is returned by Translate when the supplied argument list
// does not match the predicate's total arity.
var ErrArgumentCount = errors.New("argument count does not match predicate")

// Subject describes what a structured finder selects.
type Subject struct {
	// Count selects a row count instead of entities.
	Count bool
	// Exists selects a presence check instead of entities.
	Exists bool
	// Distinct deduplicates the selected rows.
	Distinct bool
	// Limit caps the result to the first N rows; zero means no cap.
	Limit int64
}

// Part is one predicate of a structured finder: a property path and the
// comparator applied to it. Arguments are supplied separately to Translate.
type Part struct {
	Path       string
	Comparator Comparator
	IgnoreCase bool
}

// Arity returns how many arguments the part consumes during translation.
func (p Part) Arity() int {
	switch p.Comparator {
	case IsNull, IsNotNull, IsTrue, IsFalse:
		return 0
	case Between, NotBetween:
		return 2
	default:
		return 1
	}
}

// Derived is a structured finder predicate: OR-connected groups of
// AND-connected parts, plus a subject describing the selection shape. It is
// the programmatic equivalent of a findAllByLastNameAndFirstName-style
// finder.
type Derived struct {
	Subject Subject
	Or      [][]Part
}

// FindBy starts a finder whose parts form a single AND-group.
func FindBy(parts ...Part) Derived {
	return Derived{Or: [][]Part{parts}}
}

// OrBy attaches another AND-group, OR-combined with the existing groups.
func (d Derived) OrBy(parts ...Part) Derived {
	groups := make([][]Part, len(d.Or), len(d.Or)+1)
	copy(groups, d.Or)
	return Derived{Subject: d.Subject, Or: append(groups, parts)}
}

// Property builds a part comparing the given property path.
func Property(path string, comp Comparator) Part {
	return Part{Path: path, Comparator: comp}
}

// Translate binds the argument list to the finder's parts in declaration
// order and returns the resulting criteria chain. Each AND-connected part
// after a group's first is attached as its own parenthesized group; OR
// groups are attached the same way.
func (d Derived) Translate(args ...any) (Criteria, error) {
	want := 0
	for _, group := range d.Or {
		for _, part := range group {
			want += part.Arity()
		}
	}
	if len(args) != want {
		return Criteria{}, fmt.Errorf("%w: have %d, want %d", ErrArgumentCount, len(args), want)
	}

	next := 0
	take := func(n int) []any {
		out := args[next : next+n]
		next += n
		return out
	}

	var out Criteria
	for _, group := range d.Or {
		var groupCriteria Criteria
		for _, part := range group {
			partCriteria, err := translatePart(part, take(part.Arity()))
			if err != nil {
				return Criteria{}, err
			}
			if groupCriteria.Empty() {
				groupCriteria = partCriteria
			} else {
				groupCriteria = groupCriteria.AndGroup(partCriteria)
			}
		}
		if groupCriteria.Empty() {
			continue
		}
		if out.Empty() {
			out = groupCriteria
		} else {
			out = out.OrGroup(groupCriteria)
		}
	}
	return out, nil
}

func translatePart(part Part, args []any) (Criteria, error) {
	step := Where(part.Path)

	var c Criteria
	switch part.Comparator {
	case Eq:
		c = step.Is(args[0])
	case Neq:
		c = step.Not(args[0])
	case Lt:
		c = step.LessThan(args[0])
	case Lte:
		c = step.LessThanOrEqual(args[0])
	case Gt:
		c = step.GreaterThan(args[0])
	case Gte:
		c = step.GreaterThanOrEqual(args[0])
	case Like:
		c = step.Like(args[0])
	case NotLike:
		c = step.NotLike(args[0])
	case In:
		c = step.In(args[0])
	case NotIn:
		c = step.NotIn(args[0])
	case Between:
		c = step.Between(args[0], args[1])
	case NotBetween:
		c = step.NotBetween(args[0], args[1])
	case IsNull:
		c = step.IsNull()
	case IsNotNull:
		c = step.IsNotNull()
	case IsTrue:
		c = step.IsTrue()
	case IsFalse:
		c = step.IsFalse()
	default:
		return Criteria{}, fmt.Errorf("unsupported comparator %s", part.Comparator)
	}

	if part.IgnoreCase {
		c = c.IgnoreCase()
	}
	return c, nil
}

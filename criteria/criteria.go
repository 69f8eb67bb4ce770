// Package criteria provides a type-safe, database-agnostic representation
// of WHERE predicates: column comparisons chained with AND/OR combinators,
// parenthesized groups, and sort orders. Criteria values are immutable;
// every builder method returns a new value, so chains can be shared and
// extended concurrently without copying.
package criteria

// Comparator identifies the comparison operator of a single predicate.
type Comparator int

// Supported comparison operators.
const (
	Eq Comparator = iota
	Neq
	Lt
	Lte
	Gt
	Gte
	Like
	NotLike
	In
	NotIn
	Between
	NotBetween
	IsNull
	IsNotNull
	IsTrue
	IsFalse
)

var comparatorNames = [...]string{
	Eq:         "EQ",
	Neq:        "NEQ",
	Lt:         "LT",
	Lte:        "LTE",
	Gt:         "GT",
	Gte:        "GTE",
	Like:       "LIKE",
	NotLike:    "NOT_LIKE",
	In:         "IN",
	NotIn:      "NOT_IN",
	Between:    "BETWEEN",
	NotBetween: "NOT_BETWEEN",
	IsNull:     "IS_NULL",
	IsNotNull:  "IS_NOT_NULL",
	IsTrue:     "IS_TRUE",
	IsFalse:    "IS_FALSE",
}

// String returns the comparator's symbolic name.
func (c Comparator) String() string {
	if int(c) < len(comparatorNames) {
		return comparatorNames[c]
	}
	return "UNKNOWN"
}

// Combinator describes how a clause joins with the condition built from the
// clauses before it.
type Combinator int

// Supported combinators. Initial marks a chain head; when it appears
// mid-chain (criteria concatenated with From) the clause is AND-combined
// inside its own parenthesized group.
const (
	Initial Combinator = iota
	And
	Or
)

var combinatorNames = [...]string{
	Initial: "INITIAL",
	And:     "AND",
	Or:      "OR",
}

// String returns the combinator's symbolic name.
func (c Combinator) String() string {
	if int(c) < len(combinatorNames) {
		return combinatorNames[c]
	}
	return "UNKNOWN"
}

// Clause is one node of a criteria chain: either a single column predicate
// or a nested group of clauses (Group non-empty). Group clauses render
// parenthesized.
type Clause struct {
	Combinator Combinator
	Column     string
	Comparator Comparator
	Value      any
	IgnoreCase bool
	Group      Criteria
}

// IsGroup reports whether the clause nests a criteria group instead of a
// column predicate.
func (cl Clause) IsGroup() bool {
	return !cl.Group.Empty()
}

// Criteria is an ordered chain of clauses evaluated left to right. The zero
// value is an empty chain.
type Criteria struct {
	clauses []Clause
}

// Where starts a new criteria chain on the given column or property path.
func Where(column string) Step {
	return Step{column: column, combinator: Initial}
}

// From concatenates criteria chains. Each subsequent non-empty chain is
// attached as its own parenthesized AND-group, preserving the precedence of
// the individual chains.
func From(criterias ...Criteria) Criteria {
	var out Criteria
	for _, c := range criterias {
		if c.Empty() {
			continue
		}
		if out.Empty() {
			out = c
			continue
		}
		out = out.push(Clause{Combinator: Initial, Group: c})
	}
	return out
}

// Empty reports whether the chain has no clauses.
func (c Criteria) Empty() bool {
	return len(c.clauses) == 0
}

// Clauses returns the chain's clauses in construction order.
func (c Criteria) Clauses() []Clause {
	return c.clauses
}

// And continues the chain with an AND-combined predicate on the given
// column.
func (c Criteria) And(column string) Step {
	return Step{criteria: c, column: column, combinator: And}
}

// Or continues the chain with an OR-combined predicate on the given column.
func (c Criteria) Or(column string) Step {
	return Step{criteria: c, column: column, combinator: Or}
}

// AndGroup attaches the given criteria as a parenthesized AND-group.
func (c Criteria) AndGroup(group Criteria) Criteria {
	if group.Empty() {
		return c
	}
	return c.push(Clause{Combinator: And, Group: group})
}

// OrGroup attaches the given criteria as a parenthesized OR-group.
func (c Criteria) OrGroup(group Criteria) Criteria {
	if group.Empty() {
		return c
	}
	return c.push(Clause{Combinator: Or, Group: group})
}

// IgnoreCase marks the chain's most recent clause as case-insensitive.
// Only string-typed properties support case-insensitive comparison.
func (c Criteria) IgnoreCase() Criteria {
	if c.Empty() {
		return c
	}
	clauses := make([]Clause, len(c.clauses))
	copy(clauses, c.clauses)
	clauses[len(clauses)-1].IgnoreCase = true
	return Criteria{clauses: clauses}
}

// push appends a clause, copying the backing slice so earlier values stay
// unchanged.
func (c Criteria) push(cl Clause) Criteria {
	clauses := make([]Clause, len(c.clauses), len(c.clauses)+1)
	copy(clauses, c.clauses)
	return Criteria{clauses: append(clauses, cl)}
}

// Step is a partially built predicate: a column waiting for its comparator.
type Step struct {
	criteria   Criteria
	column     string
	combinator Combinator
}

func (s Step) finish(comp Comparator, value any) Criteria {
	return s.criteria.push(Clause{
		Combinator: s.combinator,
		Column:     s.column,
		Comparator: comp,
		Value:      value,
	})
}

// Is completes the predicate as an equality comparison.
func (s Step) Is(value any) Criteria {
	return s.finish(Eq, value)
}

// Not completes the predicate as an inequality comparison.
func (s Step) Not(value any) Criteria {
	return s.finish(Neq, value)
}

// LessThan completes the predicate as a < comparison.
func (s Step) LessThan(value any) Criteria {
	return s.finish(Lt, value)
}

// LessThanOrEqual completes the predicate as a <= comparison.
func (s Step) LessThanOrEqual(value any) Criteria {
	return s.finish(Lte, value)
}

// GreaterThan completes the predicate as a > comparison.
func (s Step) GreaterThan(value any) Criteria {
	return s.finish(Gt, value)
}

// GreaterThanOrEqual completes the predicate as a >= comparison.
func (s Step) GreaterThanOrEqual(value any) Criteria {
	return s.finish(Gte, value)
}

// Like completes the predicate as a LIKE comparison. The value is bound
// as-is; callers supply their own wildcards.
func (s Step) Like(value any) Criteria {
	return s.finish(Like, value)
}

// NotLike completes the predicate as a NOT LIKE comparison.
func (s Step) NotLike(value any) Criteria {
	return s.finish(NotLike, value)
}

// In completes the predicate as an IN comparison. A single slice or array
// argument is expanded element-wise.
func (s Step) In(values ...any) Criteria {
	return s.finish(In, values)
}

// NotIn completes the predicate as a NOT IN comparison.
func (s Step) NotIn(values ...any) Criteria {
	return s.finish(NotIn, values)
}

// Between completes the predicate as a BETWEEN comparison over the
// inclusive [lo, hi] range.
func (s Step) Between(lo, hi any) Criteria {
	return s.finish(Between, []any{lo, hi})
}

// NotBetween completes the predicate as a NOT BETWEEN comparison.
func (s Step) NotBetween(lo, hi any) Criteria {
	return s.finish(NotBetween, []any{lo, hi})
}

// IsNull completes the predicate as an IS NULL check.
func (s Step) IsNull() Criteria {
	return s.finish(IsNull, nil)
}

// IsNotNull completes the predicate as an IS NOT NULL check.
func (s Step) IsNotNull() Criteria {
	return s.finish(IsNotNull, nil)
}

// IsTrue completes the predicate as a boolean TRUE check.
func (s Step) IsTrue() Criteria {
	return s.finish(IsTrue, nil)
}

// IsFalse completes the predicate as a boolean FALSE check.
func (s Step) IsFalse() Criteria {
	return s.finish(IsFalse, nil)
}

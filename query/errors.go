package query

import "errors"

var (
	// ErrEmptyCriteria is returned when a criteria chain with no effective
	// clauses reaches the mapper.
	ErrEmptyCriteria = errors.New("cannot map empty criteria")

	// ErrEmptyAssignments is returned when an UPDATE has nothing to set.
	ErrEmptyAssignments = errors.New("cannot map empty assignments")

	// ErrUnknownComparator is returned for a comparator the mapper does not
	// recognize.
	ErrUnknownComparator = errors.New("unknown comparator")

	// ErrUnknownCombinator is returned for a combinator the mapper does not
	// recognize.
	ErrUnknownCombinator = errors.New("unknown combinator")

	// ErrNotAPair is returned when a BETWEEN value is not a two-element
	// pair.
	ErrNotAPair = errors.New("between requires a two-element pair")

	// ErrIgnoreCase is returned when a case-insensitive comparison is
	// requested on a non-string property.
	ErrIgnoreCase = errors.New("ignore case requires a string property")

	// ErrNoIdentifier is returned when an identifier-keyed statement is
	// requested for an entity without an id property.
	ErrNoIdentifier = errors.New("entity has no identifier property")

	// ErrNoVersion is returned when an optimistic-lock statement is
	// requested for an entity without a version property.
	ErrNoVersion = errors.New("entity has no version property")

	// ErrNothingToWrite is returned when a write statement resolves to an
	// empty column set.
	ErrNothingToWrite = errors.New("no writable columns resolved")
)

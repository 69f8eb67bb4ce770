package criteria

// NullHandling controls where NULL values sort relative to non-null values.
type NullHandling int

// Null ordering options. NullsNative leaves the placement to the database.
const (
	NullsNative NullHandling = iota
	NullsFirst
	NullsLast
)

// Order is a single ORDER BY term on a column or property path.
type Order struct {
	Column     string
	Descending bool
	Nulls      NullHandling
}

// Asc returns an ascending order on the given column or property path.
func Asc(column string) Order {
	return Order{Column: column}
}

// Desc returns a descending order on the given column or property path.
func Desc(column string) Order {
	return Order{Column: column, Descending: true}
}

// NullsFirst returns a copy of the order sorting NULLs first.
func (o Order) NullsFirst() Order {
	o.Nulls = NullsFirst
	return o
}

// NullsLast returns a copy of the order sorting NULLs last.
func (o Order) NullsLast() Order {
	o.Nulls = NullsLast
	return o
}

// Sort is an ordered list of ORDER BY terms.
type Sort []Order

// SortBy builds an ascending sort over the given columns or property paths.
func SortBy(columns ...string) Sort {
	out := make(Sort, len(columns))
	for i, c := range columns {
		out[i] = Asc(c)
	}
	return out
}

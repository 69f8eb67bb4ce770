package query

import "strings"

// Condition is one node of a rendered WHERE tree. Nodes carry pre-rendered
// column and placeholder text; bound values live in the Bindings that was
// threaded through the mapping.
type Condition interface {
	// AppendSQL writes the node's SQL text to b.
	AppendSQL(b *strings.Builder)
}

// Render returns the SQL text of a condition tree.
func Render(c Condition) string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	c.AppendSQL(&b)
	return b.String()
}

// Comparison is a binary predicate: column, operator, right-hand argument.
// The argument is a rendered placeholder, possibly wrapped in a function
// call such as UPPER($1).
type Comparison struct {
	Column   string
	Operator string
	Argument string
}

// AppendSQL writes "column op argument".
func (c Comparison) AppendSQL(b *strings.Builder) {
	b.WriteString(c.Column)
	b.WriteByte(' ')
	b.WriteString(c.Operator)
	b.WriteByte(' ')
	b.WriteString(c.Argument)
}

// InList is an IN predicate over one placeholder per element. The negated
// form wraps the whole predicate in NOT (...).
type InList struct {
	Column  string
	Markers []string
	Negated bool
}

// AppendSQL writes "column IN ($1,$2)" or "NOT (column IN ($1,$2))".
func (c InList) AppendSQL(b *strings.Builder) {
	if c.Negated {
		b.WriteString("NOT (")
	}
	b.WriteString(c.Column)
	b.WriteString(" IN (")
	for i, m := range c.Markers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(m)
	}
	b.WriteByte(')')
	if c.Negated {
		b.WriteByte(')')
	}
}

// Range is a BETWEEN predicate over two placeholders.
type Range struct {
	Column  string
	Lo, Hi  string
	Negated bool
}

// AppendSQL writes "column [NOT] BETWEEN $1 AND $2".
func (c Range) AppendSQL(b *strings.Builder) {
	b.WriteString(c.Column)
	if c.Negated {
		b.WriteString(" NOT BETWEEN ")
	} else {
		b.WriteString(" BETWEEN ")
	}
	b.WriteString(c.Lo)
	b.WriteString(" AND ")
	b.WriteString(c.Hi)
}

// NullCheck is an IS NULL / IS NOT NULL predicate. It binds no parameter.
type NullCheck struct {
	Column  string
	Negated bool
}

// AppendSQL writes "column IS [NOT] NULL".
func (c NullCheck) AppendSQL(b *strings.Builder) {
	b.WriteString(c.Column)
	if c.Negated {
		b.WriteString(" IS NOT NULL")
	} else {
		b.WriteString(" IS NULL")
	}
}

// Literal is a constant SQL fragment, used for statically-true or
// statically-false predicates such as an IN over an empty collection.
type Literal struct {
	Text string
}

// AppendSQL writes the fragment verbatim.
func (c Literal) AppendSQL(b *strings.Builder) {
	b.WriteString(c.Text)
}

// AndCondition combines two conditions with AND. OR children are
// parenthesized so SQL operator precedence matches the fold's structure.
type AndCondition struct {
	Left, Right Condition
}

// AppendSQL writes "left AND right".
func (c AndCondition) AppendSQL(b *strings.Builder) {
	appendOperand(b, c.Left)
	b.WriteString(" AND ")
	appendOperand(b, c.Right)
}

// OrCondition combines two conditions with OR. Operands render bare; OR is
// the lowest-precedence combinator.
type OrCondition struct {
	Left, Right Condition
}

// AppendSQL writes "left OR right".
func (c OrCondition) AppendSQL(b *strings.Builder) {
	c.Left.AppendSQL(b)
	b.WriteString(" OR ")
	c.Right.AppendSQL(b)
}

// Nested parenthesizes an inner condition, preserving the precedence of an
// explicitly grouped criteria chain.
type Nested struct {
	Inner Condition
}

// AppendSQL writes "(inner)".
func (c Nested) AppendSQL(b *strings.Builder) {
	b.WriteByte('(')
	c.Inner.AppendSQL(b)
	b.WriteByte(')')
}

// appendOperand writes an AND operand, parenthesizing OR children.
func appendOperand(b *strings.Builder, c Condition) {
	if _, ok := c.(OrCondition); ok {
		b.WriteByte('(')
		c.AppendSQL(b)
		b.WriteByte(')')
		return
	}
	c.AppendSQL(b)
}

// nest wraps a condition in parentheses unless it is already nested.
func nest(c Condition) Condition {
	if _, ok := c.(Nested); ok {
		return c
	}
	return Nested{Inner: c}
}

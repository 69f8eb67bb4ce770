package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartArity(t *testing.T) {
	assert.Equal(t, 1, Property("name", Eq).Arity())
	assert.Equal(t, 2, Property("age", Between).Arity())
	assert.Equal(t, 0, Property("deleted", IsNull).Arity())
	assert.Equal(t, 0, Property("active", IsTrue).Arity())
	assert.Equal(t, 1, Property("status", In).Arity())
}

func TestTranslateAndParts(t *testing.T) {
	finder := FindBy(
		Property("LastName", Eq),
		Property("FirstName", Eq),
	)

	c, err := finder.Translate("Doe", "John")
	require.NoError(t, err)

	clauses := c.Clauses()
	require.Len(t, clauses, 2)

	assert.Equal(t, "LastName", clauses[0].Column)
	assert.Equal(t, "Doe", clauses[0].Value)
	assert.Equal(t, Initial, clauses[0].Combinator)

	// Each part after the first becomes its own parenthesized AND-group.
	require.True(t, clauses[1].IsGroup())
	assert.Equal(t, And, clauses[1].Combinator)
	inner := clauses[1].Group.Clauses()
	require.Len(t, inner, 1)
	assert.Equal(t, "FirstName", inner[0].Column)
	assert.Equal(t, "John", inner[0].Value)
}

func TestTranslateOrGroups(t *testing.T) {
	finder := FindBy(Property("LastName", Eq)).
		OrBy(Property("Age", Gt))

	c, err := finder.Translate("Doe", 21)
	require.NoError(t, err)

	clauses := c.Clauses()
	require.Len(t, clauses, 2)
	require.True(t, clauses[1].IsGroup())
	assert.Equal(t, Or, clauses[1].Combinator)
	assert.Equal(t, 21, clauses[1].Group.Clauses()[0].Value)
}

func TestTranslateConsumesArgumentsInOrder(t *testing.T) {
	finder := FindBy(
		Property("Age", Between),
		Property("Deleted", IsNull),
		Property("Name", Like),
	)

	c, err := finder.Translate(18, 65, "W%")
	require.NoError(t, err)

	clauses := c.Clauses()
	require.Len(t, clauses, 3)
	assert.Equal(t, []any{18, 65}, clauses[0].Value)
	assert.Nil(t, clauses[1].Group.Clauses()[0].Value)
	assert.Equal(t, "W%", clauses[2].Group.Clauses()[0].Value)
}

func TestTranslateArgumentCountMismatch(t *testing.T) {
	finder := FindBy(Property("LastName", Eq), Property("Age", Between))

	_, err := finder.Translate("Doe")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArgumentCount)

	_, err = finder.Translate("Doe", 1, 2, 3)
	assert.ErrorIs(t, err, ErrArgumentCount)
}

func TestTranslateIgnoreCase(t *testing.T) {
	part := Property("Name", Eq)
	part.IgnoreCase = true

	c, err := FindBy(part).Translate("walter")
	require.NoError(t, err)
	assert.True(t, c.Clauses()[0].IgnoreCase)
}

func TestTranslateInTakesOneArgument(t *testing.T) {
	c, err := FindBy(Property("Status", In)).Translate([]string{"new", "open"})
	require.NoError(t, err)

	value, ok := c.Clauses()[0].Value.([]any)
	require.True(t, ok)
	require.Len(t, value, 1)
	assert.Equal(t, []string{"new", "open"}, value[0])
}

func TestSubjectDefaults(t *testing.T) {
	d := FindBy(Property("Name", Eq))
	assert.False(t, d.Subject.Count)
	assert.False(t, d.Subject.Exists)
	assert.False(t, d.Subject.Distinct)
	assert.Zero(t, d.Subject.Limit)

	d.Subject.Exists = true
	d2 := d.OrBy(Property("Age", Gt))
	assert.True(t, d2.Subject.Exists)
}

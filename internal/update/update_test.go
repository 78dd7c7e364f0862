package update

import (
	"errors"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		stmt   string
		belief domain.BeliefState
		key    string
		want   any
	}{
		{"Arithmetic Literals", "x = 3 + 4", domain.BeliefState{}, "x", 7.0},
		{"Logical Variables", "y := a AND b", domain.BeliefState{"a": true, "b": false}, "y", false},
		{"Or", "y = a OR b", domain.BeliefState{"a": false, "b": "TRUE"}, "y", true},
		{"Type Tag Stripped", "count(NUMBER) = 1", domain.BeliefState{}, "count", 1.0},
		{"Increment", "count = count + 1", domain.BeliefState{"count": 2.0}, "count", 3.0},
		{"Variable Operand", "total = price * qty", domain.BeliefState{"price": 2.5, "qty": 4.0}, "total", 10.0},
		{"Division By Zero", "r = 5 / 0", domain.BeliefState{}, "r", 0.0},
		{"Subtract", "r = 5 - 7", domain.BeliefState{}, "r", -2.0},
		{"Bool Literal", "flag = TRUE", domain.BeliefState{}, "flag", true},
		{"Negate", "flag = done NEGATE", domain.BeliefState{"done": true}, "flag", false},
		{"Negate Ignores Fourth Token", "flag = false NEGATE whatever", domain.BeliefState{}, "flag", true},
		{"Copy Variable", "b = a", domain.BeliefState{"a": "12"}, "b", 12.0},
		{"Extra Whitespace", "  x   =  2   *  3 ", domain.BeliefState{}, "x", 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, v, err := Run(tt.stmt, tt.belief)
			require.NoError(t, err)
			assert.Equal(t, tt.key, name)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.want, tt.belief[tt.key])
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		stmt   string
		belief domain.BeliefState
		msg    string
	}{
		{
			"Unparseable Literal", "z = bogus", domain.BeliefState{},
			"The variable 'z' could not be updated, as the variable/value 'bogus' was invalid or not in the chat history",
		},
		{
			"Missing Right Hand Side", "x =", domain.BeliefState{},
			"The variable 'x' could not be updated, as there was no right hand side specified",
		},
		{
			"Invalid Second Operand", "x = 1 + y", domain.BeliefState{"y": "abc"},
			"The variable 'x' could not be updated, as the variable/value 'y' was invalid or not in the chat history",
		},
		{
			"Non Bool Second Operand", "x = a AND 1", domain.BeliefState{"a": true},
			"The variable 'x' could not be updated, as the variable/value '1' was invalid or not in the chat history",
		},
		{
			"Unsupported Operator", "x = 1 % 2", domain.BeliefState{},
			"The variable 'x' could not be updated, as the operator '%' is not supported",
		},
		{
			"Missing Operand", "x = 1 +", domain.BeliefState{},
			"The variable 'x' could not be updated, as the operator '+' requires a second value",
		},
		{
			"Arithmetic On Bool", "x = true + 1", domain.BeliefState{},
			"The variable 'x' could not be updated, as the variable/value 'true' was invalid or not in the chat history",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.belief.Clone()
			_, _, err := Run(tt.stmt, tt.belief)
			require.Error(t, err)

			var updErr *Error
			require.True(t, errors.As(err, &updErr))
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, before, tt.belief, "belief state must be unchanged")
		})
	}
}

func TestParse(t *testing.T) {
	st, err := Parse("days(NUMBER) := nights + 1")
	require.NoError(t, err)
	assert.Equal(t, "days", st.Var)
	assert.Equal(t, "NUMBER", st.Type)
	assert.Equal(t, "nights", st.RHS1)
	assert.Equal(t, OpAdd, st.Op)
	assert.Equal(t, "1", st.RHS2)

	_, err = Parse("")
	assert.Error(t, err)
}

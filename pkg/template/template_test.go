package template

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratesLookup() LookupFunc {
	tbl := &domain.DataTable{
		Name:    "Rates",
		Columns: []string{"country", "city", "amount"},
		Rows: []map[string]any{
			{"country": "Germany", "city": "Berlin", "amount": 28.0},
			{"country": "Germany", "city": "Munich", "amount": 32.0},
			{"country": "France", "city": "Paris", "amount": 40.0},
		},
	}
	return func(_ context.Context, table string, constraints map[string]any, columns []string) ([]map[string]any, error) {
		if table != tbl.Name {
			return nil, nil
		}
		return tbl.Lookup(constraints, columns), nil
	}
}

func TestRender(t *testing.T) {
	vars := map[string]any{"NAME": "Bo", "DAYS": 3.0, "COUNTRY": "france", "FLAG": true, "N": 4}
	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{"Arithmetic", "{{2+3}}", "5"},
		{"Variable", "hello {{NAME}}", "hello Bo"},
		{"Division By Zero", "{{ 5/0 }}", "0"},
		{"Fraction", "{{ 7 / 2 }}", "3.5"},
		{"Precedence", "{{ 1 + 2 * 3 }}", "7"},
		{"Parentheses", "{{ (1 + 2) * 3 }}", "9"},
		{"Unary Minus", "{{ -3 + 1 }}", "-2"},
		{"Double Negation", "{{ --2 }}", "2"},
		{"Literal Braces", "a { b } c }} d", "a { b } c }} d"},
		{"No Templates", "plain text", "plain text"},
		{"Empty", "", ""},
		{"Nbsp Around Atom", "{{&nbsp;NAME&nbsp;}}!", "Bo!"},
		{"String Constant", `{{ "x" }}y`, "xy"},
		{"String Concat", `{{ NAME + "!" }}`, "Bo!"},
		{"Bool Variable", "{{ FLAG }}", "true"},
		{"Int Variable", "{{ N * 2 }}", "8"},
		{"Several Segments", "{{ DAYS }} days at {{ Rates.amount(country=COUNTRY) * DAYS }}", "3 days at 120"},
		{"Lookup Several Args", `{{ Rates.amount(country="Germany", city="munich") }}`, "32"},
		{"Multiline Literal", "line1\n{{ NAME }}\nline3", "line1\nBo\nline3"},
	}
	scope := Scope{Vars: vars, Lookup: ratesLookup()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(context.Background(), tt.tpl, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	ctx := context.Background()
	scope := Scope{Vars: map[string]any{"S": "a", "B": true}, Lookup: ratesLookup()}

	t.Run("Unbound Variable", func(t *testing.T) {
		_, err := Render(ctx, "hi {{ MISSING }}", scope)
		var unbound *UnboundVariableError
		require.True(t, errors.As(err, &unbound), "got %v", err)
		assert.Equal(t, "MISSING", unbound.Name)
	})

	t.Run("No Table Row", func(t *testing.T) {
		_, err := Render(ctx, `{{ Rates.amount(country="Spain") }}`, scope)
		assert.ErrorIs(t, err, ErrNoTableRow)
	})

	t.Run("Type Mismatch", func(t *testing.T) {
		_, err := Render(ctx, "{{ S * 2 }}", scope)
		var typeErr *TypeError
		assert.True(t, errors.As(err, &typeErr), "got %v", err)

		_, err = Render(ctx, "{{ -B }}", scope)
		assert.True(t, errors.As(err, &typeErr), "got %v", err)
	})

	syntax := []string{
		"{{ 2 + }}",
		"{{ 2",
		"{{}}",
		`{{ "abc }}`,
		"{{ Rates.amount(country) }}",
		"{{ Rates.amount(country=1 }}",
		"{{ 1 == 1 }}",
		"{{ 2 # 3 }}",
		"{{ (1 + 2 }}",
	}
	for _, tpl := range syntax {
		t.Run("Syntax "+tpl, func(t *testing.T) {
			_, err := ParseDisplay(tpl)
			var syn *SyntaxError
			require.True(t, errors.As(err, &syn), "template %q: got %v", tpl, err)
		})
	}
}

func TestEvalLogic(t *testing.T) {
	ctx := context.Background()
	scope := Scope{
		Vars: map[string]any{
			"city":    "  berlin ",
			"AGE":     20.0,
			"LOW":     5.0,
			"ok":      true,
			"COUNTRY": "Germany",
		},
		Lookup: ratesLookup(),
	}
	tests := []struct {
		name string
		tpl  string
		want bool
	}{
		{"String Equality Ignores Case", `{{ "Berlin" == city }}`, true},
		{"String Inequality", `{{ city != "BERLIN" }}`, false},
		{"Greater", "{{ AGE > 10 }}", true},
		{"Greater False", "{{ LOW > 10 }}", false},
		{"Greater Equal", "{{ AGE >= 20 }}", true},
		{"Less Equal", "{{ LOW <= 4 }}", false},
		{"Arithmetic Operands", "{{ AGE - 10 * 2 == 0 }}", true},
		{"Node Plus Answer", "{{ AGE" + " " + "> 10 }}", true},
		{"Default Suffix", "{{ LOW DEFAULT }}", true},
		{"Default Alone", "{{ DEFAULT }}", true},
		{"True Literal", "{{ TRUE }}", true},
		{"Bool Equality", "{{ ok == TRUE }}", true},
		{"Left To Right", "{{ TRUE OR FALSE AND FALSE }}", false},
		{"Grouped", "{{ TRUE OR (FALSE AND FALSE) }}", true},
		{"And", "{{ AGE > 18 AND city == \"berlin\" }}", true},
		{"Or", "{{ AGE < 18 OR LOW < 18 }}", true},
		{"Single Row Lookup", `{{ Rates.amount(country="France") > 30 }}`, true},
		{"Multi Row Lookup Is List", `{{ Rates.amount(country=COUNTRY) == 28 }}`, false},
		{"Division By Zero", "{{ 5/0 == 0 }}", true},
		{"Number vs Bool", "{{ 1 == TRUE }}", false},
		{"Number vs String", `{{ 5 == "5" }}`, false},
		{"String vs Number", `{{ "5" == 5 }}`, false},
		{"Number Not String", `{{ 5 != "5" }}`, true},
		{"Number Var vs String", `{{ AGE == "20" }}`, false},
		{"Surrounding Space", "  {{ TRUE }}  ", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvalLogic(ctx, tt.tpl, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalLogicFailuresAreNotFalse(t *testing.T) {
	ctx := context.Background()
	scope := Scope{Vars: map[string]any{"S": "x"}}

	_, err := EvalLogic(ctx, "{{ MISSING > 3 }}", scope)
	var unbound *UnboundVariableError
	assert.True(t, errors.As(err, &unbound), "got %v", err)

	_, err = EvalLogic(ctx, "{{ 5 }}", scope)
	var typeErr *TypeError
	assert.True(t, errors.As(err, &typeErr), "got %v", err)

	_, err = EvalLogic(ctx, "{{ S > 3 }}", scope)
	assert.True(t, errors.As(err, &typeErr), "got %v", err)

	_, err = EvalLogic(ctx, "{{ 1 AND TRUE }}", scope)
	assert.True(t, errors.As(err, &typeErr), "got %v", err)

	var syn *SyntaxError
	for _, tpl := range []string{"AGE > 3", "{{ AGE > }}", "{{ AGE > 3 }} tail", "{{ AGE > 3", "{{ > 3 }}"} {
		_, err = ParseLogic(tpl)
		assert.True(t, errors.As(err, &syn), "template %q: got %v", tpl, err)
	}
}

func TestParseLogicRejectsTrailingText(t *testing.T) {
	tests := []string{
		"{{ 10 > 9 }} trailing",
		"{{ A > 3 }}x",
		"{{ AGE > 3 }} tail",
		"{{ AGE > 3 }} }}",
	}
	for _, tpl := range tests {
		t.Run(tpl, func(t *testing.T) {
			_, err := ParseLogic(tpl)
			var syn *SyntaxError
			require.True(t, errors.As(err, &syn), "got %v", err)
			assert.Contains(t, syn.Msg, "after }}")

			_, err = EvalLogic(context.Background(), tpl, Scope{Vars: map[string]any{"A": 5.0, "AGE": 5.0}})
			assert.Error(t, err)
		})
	}

	_, err := ParseLogic("  {{ AGE > 3 }}  ")
	assert.NoError(t, err, "surrounding whitespace is allowed")
}

func TestParseLogicFlags(t *testing.T) {
	l, err := ParseLogic("{{ A > 1 AND B > 1 OR C > 1 }}")
	require.NoError(t, err)
	assert.True(t, l.Mixed)
	assert.Equal(t, []string{"A", "B", "C"}, l.Variables())

	l, err = ParseLogic("{{ A > 1 AND (B > 1 OR C > 1) }}")
	require.NoError(t, err)
	assert.False(t, l.Mixed)

	l, err = ParseLogic("{{ DEFAULT }}")
	require.NoError(t, err)
	assert.True(t, l.IsDefault())
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		in   string
		want Binding
	}{
		{"{{ AGE = NUMBER }}", Binding{Name: "AGE", Type: TypeNumber}},
		{"{{LAND=text}}", Binding{Name: "LAND", Type: TypeText}},
		{"  {{ HAS_CAR = BOOLEAN }} ", Binding{Name: "HAS_CAR", Type: TypeBoolean}},
		{"{{ START = TIMEPOINT }}", Binding{Name: "START", Type: TypeTimepoint}},
		{"{{ STAY = TIMESPAN }}", Binding{Name: "STAY", Type: TypeTimespan}},
	}
	for _, tt := range tests {
		got, err := ParseBinding(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"{{ AGE = COLOR }}", "{{ AGE }}", "AGE = NUMBER", "{{ AGE = NUMBER", "{{ = NUMBER }}"} {
		_, err := ParseBinding(bad)
		var syn *SyntaxError
		assert.True(t, errors.As(err, &syn), "binding %q: got %v", bad, err)
	}
}

func TestVariables(t *testing.T) {
	vars, err := Variables("{{ B + A }} and {{ A }} with {{ T.col(k=C) }}")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, vars)

	d, err := ParseDisplay("{{ T.col(k=1) }} {{ U.x() }}")
	require.NoError(t, err)
	assert.Equal(t, []string{"T", "U"}, d.Tables())

	_, err = Variables("{{ oops")
	assert.Error(t, err)
}

func TestCache(t *testing.T) {
	c, err := NewCache(2)
	require.NoError(t, err)
	ctx := context.Background()
	scope := Scope{Vars: map[string]any{"X": 2.0}}

	for i := 0; i < 3; i++ {
		out, err := c.Render(ctx, "{{ X * 2 }}", scope)
		require.NoError(t, err)
		assert.Equal(t, "4", out)
	}
	assert.Equal(t, 1, c.Len())

	ok, err := c.EvalLogic(ctx, "{{ X == 2 }}", scope)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	_, err = c.Render(ctx, "{{ X *", scope)
	assert.Error(t, err)
	assert.Equal(t, 2, c.Len())

	d1, _ := c.Display("{{ X * 2 }}")
	d2, _ := c.Display("{{ X * 2 }}")
	assert.Same(t, d1, d2)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "5", Format(5.0))
	assert.Equal(t, "2.5", Format(2.5))
	assert.Equal(t, "0", Format(-0.0))
	assert.Equal(t, "-3", Format(-3.0))
	assert.Equal(t, "false", Format(false))
	assert.Equal(t, "a, 2", Format([]any{"a", 2.0}))
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "7", Format(7))
}

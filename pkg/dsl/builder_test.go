package dsl_test

import (
	"context"
	"testing"

	"github.com/aretw0/diagraph"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/dsl"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ageBuilder() *dsl.Builder {
	b := dsl.New("age", "Age check")
	b.Add("start").Start().Go("ask")
	b.Add("ask").Variable("How old are you?", "AGE", template.TypeNumber, "check")
	b.Add("check").
		Logic("{{ AGE").
		Branch(">= 18 }}", "adult").
		Default("minor")
	b.Add("adult").Info("Welcome, you are {{ AGE }}.").Tags("happy")
	b.Add("minor").Info("Come back later.").At(10, 20)
	return b
}

func TestBuilder_Graph(t *testing.T) {
	g, err := ageBuilder().Graph()
	require.NoError(t, err)

	assert.Equal(t, "age", g.ID)
	assert.Equal(t, "Age check", g.Name)
	assert.Equal(t, "start", g.FirstNodeID)
	assert.Len(t, g.Nodes, 5)

	ask := g.Nodes["ask"]
	assert.Equal(t, domain.NodeTypeVariable, ask.Type)
	require.Len(t, ask.Answers, 1)
	assert.Equal(t, "{{ AGE = NUMBER }}", ask.Answers[0].Text)
	assert.Equal(t, "ask", ask.Answers[0].NodeID)

	check := g.Nodes["check"]
	assert.Equal(t, "{{ AGE", check.Text)
	require.Len(t, check.Answers, 2)
	assert.Equal(t, 0, check.Answers[0].Index)
	assert.Equal(t, "adult", check.Answers[0].Successor)
	assert.True(t, check.Answers[1].IsDefault())
	assert.NotEqual(t, check.Answers[0].ID, check.Answers[1].ID)

	assert.Equal(t, []string{"happy"}, g.Nodes["adult"].Tags)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, g.Nodes["minor"].Position)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := dsl.New("g", "")
	b.Add("start").Start()
	b.Add("start").Go("end")
	b.Add("end").Info("Bye")

	g, err := b.Graph()
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeStart, g.Nodes["start"].Type)
	assert.Equal(t, "end", g.Nodes["start"].Successor)
}

func TestBuilder_UnknownTarget(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *dsl.Builder)
	}{
		{"successor", func(b *dsl.Builder) { b.Add("start").Start().Go("ghost") }},
		{"answer", func(b *dsl.Builder) {
			b.Add("start").Start().Go("q")
			b.Add("q").Question("Sure?").Answer("yes", "ghost")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := dsl.New("g", "")
			tt.build(b)
			_, err := b.Build()
			assert.ErrorContains(t, err, "ghost")
		})
	}
}

func TestBuilder_RunsInEngine(t *testing.T) {
	loader, err := ageBuilder().Build()
	require.NoError(t, err)

	eng, err := diagraph.New("", diagraph.WithGraphStore(loader))
	require.NoError(t, err)
	defer eng.Close()

	ctx := context.Background()
	report, err := eng.Validate(ctx, "age")
	require.NoError(t, err)
	assert.True(t, report.Valid(), "issues: %v", report.Issues)

	tests := []struct {
		user string
		age  int
		want string
	}{
		{"adult", 30, "Welcome, you are 30."},
		{"child", 12, "Come back later."},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			res, err := eng.HandleTurn(ctx, ports.TurnRequest{
				UserID:  tt.user,
				GraphID: "age",
				Belief:  domain.BeliefState{"AGE": tt.age},
			})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, res.Texts())
			assert.True(t, res.Terminal)
		})
	}
}

func TestBuilder_Table(t *testing.T) {
	b := dsl.New("shop", "Shop").Table("Prices", []string{"item", "price"},
		map[string]any{"item": "tea", "price": 2.5},
		map[string]any{"item": "coffee", "price": 3.0},
	)
	b.Add("start").Start().Go("ask")
	b.Add("ask").Question("Price: {{ Prices.price(item=ITEM) }}")

	loader, err := b.Build()
	require.NoError(t, err)

	rows, err := loader.LookupTable(context.Background(), "shop", "Prices", map[string]any{"item": "coffee"}, []string{"price"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3.0, rows[0]["price"])
}

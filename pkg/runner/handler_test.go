package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out,
		WithTextHandlerRenderer(func(s string) (string, error) { return "Rendered: " + s, nil }),
		WithTextHandlerErrorStyle(func(s string) string { return "!! " + s }),
	)

	err := handler.Output(context.Background(), &domain.TurnResult{
		Utterances: []domain.Utterance{
			{Text: "Hello World", Kind: "infoNode"},
			{Text: "broken", Kind: domain.KindError},
		},
		Candidates: []string{"yes", "no"},
	})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Rendered: Hello World\n")
	assert.Contains(t, got, "!! Rendered: broken\n")
	assert.Contains(t, got, "  2) no\n")
}

func TestTextHandler_OutputTerminalHidesCandidates(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out)
	require.NoError(t, handler.Output(context.Background(), &domain.TurnResult{
		Utterances: []domain.Utterance{{Text: "Bye"}},
		Candidates: []string{"again"},
		Terminal:   true,
	}))
	assert.Equal(t, "Bye\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(strings.Repeat("x", 20)+"\n  my\x07 input \n"), out,
		WithTextHandlerMaxInputSize(10),
	)

	val, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my input", val)
	assert.Contains(t, out.String(), "input exceeds maximum allowed size")
	assert.True(t, strings.HasPrefix(out.String(), "> "))

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONHandler(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewJSONHandler(strings.NewReader("\"quoted\"\nplain\n"), out)
	ctx := context.Background()

	val, err := handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "quoted", val)
	val, err = handler.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plain", val)
	_, err = handler.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)

	require.NoError(t, handler.Output(ctx, &domain.TurnResult{NodeID: "q", Candidates: []string{"a"}}))
	require.NoError(t, handler.SystemOutput(ctx, "hint"))
	assert.Contains(t, out.String(), `"node_id":"q"`)
	assert.Contains(t, out.String(), `{"system":"hint"}`)
}

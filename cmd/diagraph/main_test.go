package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopYAML = `name: Shop
nodes:
  - id: start
    type: START
    data:
      markup: ""
  - id: ask
    type: QUESTION
    data:
      markup: Tea or coffee?
      answers:
        - id: tea
          text: tea
        - id: coffee
          text: coffee
  - id: done
    type: INFO
    data:
      markup: Enjoy!
connections:
  - source: start
    target: ask
  - source: ask
    sourceHandle: tea
    target: done
  - source: ask
    sourceHandle: coffee
    target: done
`

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(shopYAML), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGraphCommand(t *testing.T) {
	src := writeSource(t)

	out, err := execute(t, "graph", "--source", src, "--log-level", "error", "--format", "mermaid", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, `ask -- "coffee" --> done`)

	out, err = execute(t, "graph", "--source", src, "--log-level", "error", "--format", "dot", "shop")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph dialog")

	_, err = execute(t, "graph", "--source", src, "--log-level", "error", "--format", "png", "shop")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--source", writeSource(t), "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "shop: valid")
}

func TestConvertCommand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "shop.db")
	out, err := execute(t, "convert", "--log-level", "error", writeSource(t), dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote graph shop (3 nodes, 0 tables)")
	assert.FileExists(t, dest)
}

func TestPrintReport(t *testing.T) {
	report := &domain.ValidationReport{GraphID: "g"}
	report.Add(domain.SeverityWarning, "unreachable", "island", "", "node cannot be reached from START")
	report.Add(domain.SeverityError, "dangling_edge", "q", "a1", "answer leads to missing node \"x\"")

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(t, out.String(), "g: 1 errors, 1 warnings")
	assert.Contains(t, out.String(), "[warning] island unreachable")
	assert.Contains(t, out.String(), "q/a1 dangling_edge")
}

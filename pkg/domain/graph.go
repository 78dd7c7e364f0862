package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DataTable is a named lookup table referenced from templates as Table.Column(...).
type DataTable struct {
	Name    string           `json:"name" yaml:"name"`
	Columns []string         `json:"columns" yaml:"columns"`
	Rows    []map[string]any `json:"rows" yaml:"rows"`
}

// Lookup returns the rows whose columns equal every constraint, projected onto
// columns (all columns when columns is empty).
func (t *DataTable) Lookup(constraints map[string]any, columns []string) []map[string]any {
	if len(columns) == 0 {
		columns = t.Columns
	}
	var out []map[string]any
	for _, row := range t.Rows {
		if !rowMatches(row, constraints) {
			continue
		}
		projected := make(map[string]any, len(columns))
		for _, col := range columns {
			projected[col] = row[col]
		}
		out = append(out, projected)
	}
	return out
}

func rowMatches(row map[string]any, constraints map[string]any) bool {
	for col, want := range constraints {
		got, ok := row[col]
		if !ok || !CellEqual(got, want) {
			return false
		}
	}
	return true
}

// CellEqual compares a table cell with a constraint value. Numbers compare by
// value, everything else by its trimmed, case-insensitive string form.
func CellEqual(cell, want any) bool {
	if a, ok := ToFloat(cell); ok {
		if b, ok := ToFloat(want); ok {
			return a == b
		}
	}
	return strings.EqualFold(strings.TrimSpace(fmt.Sprint(cell)), strings.TrimSpace(fmt.Sprint(want)))
}

// ToFloat converts numeric values (and numeric strings) to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}

// Graph is the authored dialog graph.
type Graph struct {
	ID          string                `json:"id" yaml:"id"`
	Name        string                `json:"name" yaml:"name"`
	FirstNodeID string                `json:"first_node" yaml:"first_node"`
	Nodes       map[string]*Node      `json:"nodes" yaml:"nodes"`
	Tables      map[string]*DataTable `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// NewGraph creates an empty graph.
func NewGraph(id, name string) *Graph {
	return &Graph{
		ID:     id,
		Name:   name,
		Nodes:  make(map[string]*Node),
		Tables: make(map[string]*DataTable),
	}
}

// AddNode registers a node, sorting its answers and stamping their owner.
// The first START node becomes the entry node.
func (g *Graph) AddNode(n *Node) {
	for i := range n.Answers {
		n.Answers[i].NodeID = n.ID
	}
	SortAnswers(n.Answers)
	g.Nodes[n.ID] = n
	if n.Type == NodeTypeStart && g.FirstNodeID == "" {
		g.FirstNodeID = n.ID
	}
}

// AddTable registers a data table.
func (g *Graph) AddTable(t *DataTable) {
	if g.Tables == nil {
		g.Tables = make(map[string]*DataTable)
	}
	g.Tables[t.Name] = t
}

// NodeIDs returns the node ids in lexical order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedNodes returns copies of the nodes in lexical id order.
func (g *Graph) SortedNodes() []Node {
	out := make([]Node, 0, len(g.Nodes))
	for _, id := range g.NodeIDs() {
		out = append(out, *g.Nodes[id].Clone())
	}
	return out
}

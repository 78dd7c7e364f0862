// Package validator checks authored dialog graphs for mistakes the engine would
// only discover mid-conversation.
package validator

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/diagraph/internal/update"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/template"
)

// Issue codes.
const (
	CodeNoStart          = "no_start"
	CodeMultipleStarts   = "multiple_starts"
	CodeDanglingEdge     = "dangling_edge"
	CodeMultipleDefaults = "multiple_defaults"
	CodeNoDefault        = "no_default"
	CodeMixedLogic       = "mixed_logic"
	CodeLogicSyntax      = "logic_syntax"
	CodeDisplaySyntax    = "display_syntax"
	CodeBindingSyntax    = "binding_syntax"
	CodeUpdateSyntax     = "update_syntax"
	CodeNoAnswers        = "no_answers"
	CodeUnreachable      = "unreachable"
)

// ValidateGraph inspects every node of graphID. Authoring problems are
// collected in the report; the error is reserved for store failures.
func ValidateGraph(ctx context.Context, graphs ports.GraphStore, graphID string) (*domain.ValidationReport, error) {
	nodes, err := graphs.ListNodes(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("list nodes of %s: %w", graphID, err)
	}

	report := &domain.ValidationReport{GraphID: graphID}
	index := make(map[string]*domain.Node, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = &nodes[i]
	}

	var starts []string
	for i := range nodes {
		n := &nodes[i]
		if n.Type == domain.NodeTypeStart {
			starts = append(starts, n.ID)
		}
		checkEdges(report, n, index)
		checkNode(report, n)
	}

	switch {
	case len(starts) == 0:
		report.Add(domain.SeverityError, CodeNoStart, "", "", "graph has no START node")
		return report, nil
	case len(starts) > 1:
		report.Add(domain.SeverityError, CodeMultipleStarts, "", "", fmt.Sprintf("graph has %d START nodes: %v", len(starts), starts))
	}

	first, err := graphs.FirstNode(ctx, graphID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			report.Add(domain.SeverityError, CodeNoStart, "", "", "store reports no entry node")
			return report, nil
		}
		return nil, fmt.Errorf("first node of %s: %w", graphID, err)
	}
	checkReachability(report, first.ID, nodes, index)
	return report, nil
}

func checkEdges(report *domain.ValidationReport, n *domain.Node, index map[string]*domain.Node) {
	if n.HasSuccessor() {
		if _, ok := index[n.Successor]; !ok {
			report.Add(domain.SeverityError, CodeDanglingEdge, n.ID, "", fmt.Sprintf("successor %q does not exist", n.Successor))
		}
	}
	for _, a := range n.Answers {
		if !a.HasSuccessor() {
			continue
		}
		if _, ok := index[a.Successor]; !ok {
			report.Add(domain.SeverityError, CodeDanglingEdge, n.ID, a.ID, fmt.Sprintf("answer leads to missing node %q", a.Successor))
		}
	}
}

func checkNode(report *domain.ValidationReport, n *domain.Node) {
	switch n.Type {
	case domain.NodeTypeStart:
		if !n.HasSuccessor() {
			report.Add(domain.SeverityWarning, CodeDanglingEdge, n.ID, "", "START node leads nowhere; the dialog ends immediately")
		}
	case domain.NodeTypeInfo, domain.NodeTypeQuestion:
		checkDisplay(report, n)
	case domain.NodeTypeVariable:
		checkDisplay(report, n)
		checkVariable(report, n)
	case domain.NodeTypeUpdate:
		if _, err := update.Parse(n.Text); err != nil {
			report.Add(domain.SeverityError, CodeUpdateSyntax, n.ID, "", err.Error())
		}
	case domain.NodeTypeLogic:
		checkLogic(report, n)
	}
}

func checkDisplay(report *domain.ValidationReport, n *domain.Node) {
	src := n.Markup
	if src == "" {
		src = n.Text
	}
	if _, err := template.ParseDisplay(src); err != nil {
		report.Add(domain.SeverityError, CodeDisplaySyntax, n.ID, "", err.Error())
	}
}

func checkVariable(report *domain.ValidationReport, n *domain.Node) {
	if len(n.Answers) == 0 {
		report.Add(domain.SeverityWarning, CodeNoAnswers, n.ID, "", "VARIABLE node has no answer template")
		return
	}
	for _, a := range n.Answers {
		if !a.IsTemplate() {
			continue
		}
		if _, err := template.ParseBinding(a.Text); err != nil {
			report.Add(domain.SeverityError, CodeBindingSyntax, n.ID, a.ID, err.Error())
		}
	}
}

func checkLogic(report *domain.ValidationReport, n *domain.Node) {
	defaults := 0
	for _, a := range n.Answers {
		if a.IsDefault() {
			defaults++
			continue
		}
		cond := n.Text + " " + a.Text
		l, err := template.ParseLogic(cond)
		if err != nil {
			report.Add(domain.SeverityError, CodeLogicSyntax, n.ID, a.ID, err.Error())
			continue
		}
		if l.Mixed {
			report.Add(domain.SeverityWarning, CodeMixedLogic, n.ID, a.ID,
				fmt.Sprintf("%q mixes AND and OR without parentheses and is evaluated left to right", cond))
		}
	}
	switch {
	case defaults > 1:
		report.Add(domain.SeverityError, CodeMultipleDefaults, n.ID, "", fmt.Sprintf("LOGIC node has %d DEFAULT branches", defaults))
	case defaults == 0:
		report.Add(domain.SeverityError, CodeNoDefault, n.ID, "", "LOGIC node has no DEFAULT branch")
	}
}

// checkReachability crawls breadth first from the entry node and reports
// every node it never visits.
func checkReachability(report *domain.ValidationReport, startID string, nodes []domain.Node, index map[string]*domain.Node) {
	visited := map[string]bool{startID: true}
	queue := []string{startID}
	for len(queue) > 0 {
		current := index[queue[0]]
		queue = queue[1:]
		if current == nil {
			continue
		}
		targets := []string{current.Successor}
		for _, a := range current.Answers {
			targets = append(targets, a.Successor)
		}
		for _, target := range targets {
			if target == "" || visited[target] {
				continue
			}
			visited[target] = true
			queue = append(queue, target)
		}
	}
	for _, n := range nodes {
		if !visited[n.ID] {
			report.Add(domain.SeverityWarning, CodeUnreachable, n.ID, "", "node cannot be reached from START")
		}
	}
}

package domain

import "fmt"

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of the graph validator.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	NodeID   string   `json:"node_id,omitempty"`
	AnswerID string   `json:"answer_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.NodeID
	if i.AnswerID != "" {
		loc += "/" + i.AnswerID
	}
	return fmt.Sprintf("[%s] %s %s: %s", i.Severity, i.Code, loc, i.Message)
}

// ValidationReport collects the issues found in a graph.
type ValidationReport struct {
	GraphID string  `json:"graph_id"`
	Issues  []Issue `json:"issues"`
}

// Add appends an issue.
func (r *ValidationReport) Add(sev Severity, code, nodeID, answerID, msg string) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Code: code, NodeID: nodeID, AnswerID: answerID, Message: msg})
}

// Errors returns the issues of severity error.
func (r *ValidationReport) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the issues of severity warning.
func (r *ValidationReport) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Valid reports whether the graph has no errors. Warnings are allowed.
func (r *ValidationReport) Valid() bool {
	return len(r.Errors()) == 0
}

func (r *ValidationReport) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

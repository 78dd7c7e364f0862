package domain

import "errors"

var (
	// ErrNotFound is returned by graph stores when a graph, node or table is unknown.
	ErrNotFound = errors.New("not found")

	// ErrBrokenReference marks an authoring error: an edge points nowhere or a
	// LOGIC node has no usable branch.
	ErrBrokenReference = errors.New("broken graph reference")

	// ErrRecursionLimit is returned when a turn traverses too many nodes without user input.
	ErrRecursionLimit = errors.New("recursion limit exceeded")

	// ErrAnswerNotFound is returned when a user act matches no answer of the current node.
	ErrAnswerNotFound = errors.New("answer not found")

	// ErrSessionNotFound is returned when a user has no stored cursor.
	ErrSessionNotFound = errors.New("session not found")
)

// Package domain holds the pure types of the dialog engine: the authored graph
// (nodes, answers, data tables), the per-user belief state and cursor, and the
// shapes exchanged on every turn. It has no dependencies outside the standard library.
package domain

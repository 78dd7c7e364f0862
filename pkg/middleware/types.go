// Package middleware wraps publishers with payload transformations applied
// before turn results leave the process.
package middleware

import "github.com/aretw0/diagraph/pkg/ports"

// Middleware wraps a Publisher to add behavior.
type Middleware func(ports.Publisher) ports.Publisher

// Chain applies mws so that the first one sees the payload first.
func Chain(next ports.Publisher, mws ...Middleware) ports.Publisher {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}

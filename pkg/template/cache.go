package template

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed templates kept per grammar.
const DefaultCacheSize = 1024

// Cache keeps parsed templates keyed by their source text. It is safe for
// concurrent use. Syntax errors are not cached.
type Cache struct {
	display *lru.Cache[string, *Display]
	logic   *lru.Cache[string, *Logic]
}

// NewCache creates a cache holding up to size templates per grammar.
// A non-positive size selects DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	display, err := lru.New[string, *Display](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create display cache: %w", err)
	}
	logic, err := lru.New[string, *Logic](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create logic cache: %w", err)
	}
	return &Cache{display: display, logic: logic}, nil
}

// Display returns the parsed display template for src.
func (c *Cache) Display(src string) (*Display, error) {
	if d, ok := c.display.Get(src); ok {
		return d, nil
	}
	d, err := ParseDisplay(src)
	if err != nil {
		return nil, err
	}
	c.display.Add(src, d)
	return d, nil
}

// Logic returns the parsed logic template for src.
func (c *Cache) Logic(src string) (*Logic, error) {
	if l, ok := c.logic.Get(src); ok {
		return l, nil
	}
	l, err := ParseLogic(src)
	if err != nil {
		return nil, err
	}
	c.logic.Add(src, l)
	return l, nil
}

// Render parses (or reuses) and renders a display template.
func (c *Cache) Render(ctx context.Context, src string, scope Scope) (string, error) {
	d, err := c.Display(src)
	if err != nil {
		return "", err
	}
	return d.Render(ctx, scope)
}

// EvalLogic parses (or reuses) and evaluates a logic template.
func (c *Cache) EvalLogic(ctx context.Context, src string, scope Scope) (bool, error) {
	l, err := c.Logic(src)
	if err != nil {
		return false, err
	}
	return l.Eval(ctx, scope)
}

// Len returns the number of cached templates across both grammars.
func (c *Cache) Len() int {
	return c.display.Len() + c.logic.Len()
}

// Render parses and renders a display template without caching.
func Render(ctx context.Context, src string, scope Scope) (string, error) {
	d, err := ParseDisplay(src)
	if err != nil {
		return "", err
	}
	return d.Render(ctx, scope)
}

// EvalLogic parses and evaluates a logic template without caching.
func EvalLogic(ctx context.Context, src string, scope Scope) (bool, error) {
	l, err := ParseLogic(src)
	if err != nil {
		return false, err
	}
	return l.Eval(ctx, scope)
}

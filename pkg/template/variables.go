package template

import "sort"

// Variables lists the distinct variable names referenced by a display
// template, sorted.
func Variables(src string) ([]string, error) {
	d, err := ParseDisplay(src)
	if err != nil {
		return nil, err
	}
	return d.Variables(), nil
}

// Variables lists the distinct variable names referenced by the template, sorted.
func (d *Display) Variables() []string {
	seen := make(map[string]struct{})
	for _, seg := range d.Segments {
		collectVars(seg.Expr, seen)
	}
	return sortedKeys(seen)
}

// Variables lists the distinct variable names referenced by the template, sorted.
func (l *Logic) Variables() []string {
	seen := make(map[string]struct{})
	collectVars(l.Root, seen)
	return sortedKeys(seen)
}

// Tables lists the distinct data tables referenced by the template, sorted.
func (d *Display) Tables() []string {
	seen := make(map[string]struct{})
	for _, seg := range d.Segments {
		Walk(seg.Expr, func(e Expr) {
			if l, ok := e.(*LookupExpr); ok {
				seen[l.Table] = struct{}{}
			}
		})
	}
	return sortedKeys(seen)
}

func collectVars(e Expr, seen map[string]struct{}) {
	Walk(e, func(e Expr) {
		if v, ok := e.(*VarExpr); ok {
			seen[v.Name] = struct{}{}
		}
	})
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

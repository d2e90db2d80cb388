package lstree

import "strings"

// Filter is one positional package filter: a bare name or name@range.
type Filter struct {
	Name  string
	Range string
}

// ParseFilters turns positional arguments into filters. The range is split
// at the last "@" past the first character, so scoped names like
// "@babel/core@^7.0.0" keep their leading "@".
func ParseFilters(args []string) []Filter {
	filters := make([]Filter, 0, len(args))
	for _, arg := range args {
		if arg == "" {
			continue
		}
		if idx := strings.LastIndex(arg[1:], "@"); idx != -1 {
			filters = append(filters, Filter{Name: arg[:idx+1], Range: arg[idx+2:]})
			continue
		}
		filters = append(filters, Filter{Name: arg})
	}
	return filters
}

// matches reports whether the traversal node satisfies this filter: the
// name matches and, when the filter carries a range, the node's version
// falls within it. Missing placeholders have no version and only match
// name-only filters.
func (f Filter) matches(t *TraversalNode) bool {
	if t.Node != nil {
		return t.Node.Name == f.Name && (f.Range == "" || t.Node.Satisfies(f.Range))
	}
	return t.Missing && f.Range == "" && t.Name == f.Name
}

// matchesAny is a logical OR across the filter list.
func matchesAny(filters []Filter, t *TraversalNode) bool {
	for _, f := range filters {
		if f.matches(t) {
			return true
		}
	}
	return false
}

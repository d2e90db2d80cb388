package lstree

import (
	"fmt"
	"sort"
)

// collectProblem derives zero or one problem string from a visited
// position. Identical messages collapse in the set, so a shared extraneous
// node referenced from several positions is reported once.
func (w *walker) collectProblem(t *TraversalNode) {
	switch {
	case t.Missing && !t.MissingOptional:
		w.problems[fmt.Sprintf("missing: %s@%s, required by %s", t.Name, t.Spec, t.Parent.PkgID())] = struct{}{}
	case t.Invalid && t.Node != nil:
		w.problems[fmt.Sprintf("invalid: %s %s", t.Node.ID, t.Node.Path)] = struct{}{}
	case t.Node != nil && t.Node.Extraneous:
		w.problems[fmt.Sprintf("extraneous: %s %s", t.Node.ID, t.Node.Path)] = struct{}{}
	}
}

// problemList returns the collected set sorted, for reproducible output.
func (w *walker) problemList() []string {
	problems := make([]string, 0, len(w.problems))
	for p := range w.problems {
		problems = append(problems, p)
	}
	sort.Strings(problems)
	return problems
}

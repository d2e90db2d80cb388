package lstree

import "github.com/acheong08/lsdeps/pkg/models"

// TraversalNode wraps one position of a Node in the walked tree. The same
// underlying Node may appear at several positions (shared dependency);
// every per-position attribute lives here so the shared Node is never
// mutated during a report pass.
type TraversalNode struct {
	Node     *models.Node // nil for missing placeholders
	Parent   *TraversalNode
	Children []*TraversalNode

	Depth int
	Kind  models.DepKind
	Name  string // declared name
	Spec  string // declared range

	Include         bool
	Missing         bool
	MissingOptional bool
	Deduped         bool
	Invalid         bool
}

// PkgID returns the display identity of this position: name@version for a
// concrete node, name@spec for a missing placeholder, the bare path for a
// nameless root.
func (t *TraversalNode) PkgID() string {
	if t.Node != nil {
		if t.Node.Name == "" {
			return t.Node.Path
		}
		return t.Node.ID
	}
	return t.Name + "@" + t.Spec
}

// classifyEdge converts a dependency edge into the traversal node for its
// target: a wrapper around the resolved Node, or a synthesized missing
// placeholder when nothing resolves the declaration. Pure transformation,
// no side effects.
func classifyEdge(e *models.Edge, parent *TraversalNode) *TraversalNode {
	t := &TraversalNode{
		Parent:  parent,
		Depth:   parent.Depth + 1,
		Kind:    e.Kind,
		Name:    e.Name,
		Spec:    e.Spec,
		Invalid: e.Invalid,
	}
	if e.Missing() {
		t.Missing = true
		t.MissingOptional = e.Optional()
		return t
	}
	t.Node = e.To
	return t
}

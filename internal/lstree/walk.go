package lstree

import (
	"sort"
	"strings"

	"github.com/acheong08/lsdeps/pkg/models"
)

// walker encapsulates the mutable state of one breadth-first report pass.
// All of it is invocation-local; the underlying graph is read-only.
type walker struct {
	opts    Options
	filters []Filter

	seen     map[*models.Node]bool // global, first visit wins
	visits   []*TraversalNode      // first-visit positions in breadth order
	problems map[string]struct{}
	matched  bool // any positional filter matched anything
}

func newWalker(opts Options) *walker {
	return &walker{
		opts:     opts,
		filters:  ParseFilters(opts.Args),
		seen:     make(map[*models.Node]bool),
		problems: make(map[string]struct{}),
	}
}

// walk runs the single breadth-first pass over the graph, returning the
// root traversal node with its filtered, classified subtree attached.
func (w *walker) walk(root *models.Node) *TraversalNode {
	top := &TraversalNode{Node: root, Include: len(w.filters) == 0}
	w.seen[root] = true
	w.visits = append(w.visits, top)

	queue := []*TraversalNode{top}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		w.visit(t)
		queue = append(queue, t.Children...)
	}
	return top
}

// visit classifies one position: problems and inclusion first (both apply
// to every visited position), then child expansion unless the position is
// a leaf by construction (missing, deduped) or cut by the depth limit.
func (w *walker) visit(t *TraversalNode) {
	w.collectProblem(t)
	w.applyFilters(t)

	if t.Missing || t.Deduped || t.Node == nil {
		return
	}
	if !w.opts.All && t.Depth >= w.opts.MaxDepth {
		return
	}
	t.Children = w.childNodes(t)
}

func (w *walker) applyFilters(t *TraversalNode) {
	if len(w.filters) == 0 {
		t.Include = true
		return
	}
	if !matchesAny(w.filters, t) {
		return
	}
	w.matched = true
	t.Include = true
	// Ancestor fix-up: the rendered tree must show the path from root to
	// every match. The flat listing wants exact matches only, so the
	// backward pass is skipped in parseable mode.
	if w.opts.Parseable {
		return
	}
	for p := t.Parent; p != nil && !p.Include; p = p.Parent {
		p.Include = true
	}
}

// childNodes produces the expansion of one position: declared edges (after
// the root-only kind filters), then installed children no edge accounts
// for, combined and sorted bytewise-ascending by pkgid. Nodes already seen
// earlier in breadth order become lightweight deduped references.
func (w *walker) childNodes(t *TraversalNode) []*TraversalNode {
	out := make([]*TraversalNode, 0, len(t.Node.EdgesOut))
	edged := make(map[*models.Node]bool)

	for _, e := range sortedEdges(t.Node) {
		if e.To != nil {
			edged[e.To] = true
		}
		if t.Depth == 0 && w.skipEdge(e) {
			continue
		}
		out = append(out, classifyEdge(e, t))
	}

	for _, c := range sortedChildren(t.Node) {
		if edged[c] {
			continue
		}
		if t.Depth == 0 && w.opts.Link && !c.Link {
			continue
		}
		out = append(out, &TraversalNode{
			Node:   c,
			Parent: t,
			Depth:  t.Depth + 1,
			Name:   c.Name,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if a, b := out[i].PkgID(), out[j].PkgID(); a != b {
			return a < b
		}
		// Distinct installs of the same name@version tie-break on path.
		return nodePath(out[i]) < nodePath(out[j])
	})

	for _, c := range out {
		if c.Node == nil {
			continue
		}
		if w.seen[c.Node] {
			c.Deduped = true
			continue
		}
		w.seen[c.Node] = true
		w.visits = append(w.visits, c)
	}
	return out
}

// skipEdge applies the kind-based filters. They are evaluated only for the
// root's immediate children, before positional filtering.
func (w *walker) skipEdge(e *models.Edge) bool {
	if w.opts.Link && (e.To == nil || !e.To.Link) {
		return true
	}
	if w.devOnly() && e.Kind != models.KindDev {
		return true
	}
	if w.prodOnly() {
		switch e.Kind {
		case models.KindDev, models.KindPeer, models.KindPeerOptional:
			return true
		}
	}
	return false
}

func (w *walker) devOnly() bool {
	return w.opts.Dev || strings.HasPrefix(w.opts.Only, "dev")
}

func (w *walker) prodOnly() bool {
	return w.opts.Prod || strings.HasPrefix(w.opts.Only, "prod")
}

func nodePath(t *TraversalNode) string {
	if t.Node == nil {
		return ""
	}
	return t.Node.Path
}

func sortedEdges(n *models.Node) []*models.Edge {
	edges := make([]*models.Edge, 0, len(n.EdgesOut))
	for _, e := range n.EdgesOut {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Name < edges[j].Name })
	return edges
}

func sortedChildren(n *models.Node) []*models.Node {
	children := make([]*models.Node, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children
}

// Package actualtree materializes the already-installed dependency graph
// of a project directory: every package physically present under
// node_modules becomes a Node, every manifest declaration becomes an Edge,
// and per-node flags (link, extraneous, invalid edges, manifest errors)
// are filled in. The result is a frozen snapshot; nothing here mutates
// the tree on disk.
package actualtree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acheong08/lsdeps/internal/parser"
	"github.com/acheong08/lsdeps/pkg/models"
)

// loader carries the scan-time bookkeeping that does not belong on the
// shared Node objects: declared dependencies per node and parent links
// used for nested resolution.
type loader struct {
	decls  map[*models.Node][]parser.Declaration
	parent map[*models.Node]*models.Node
	nodes  []*models.Node // materialization order, root first
}

// Load materializes the actual dependency graph rooted at dir. A missing
// root manifest yields a nameless root (rendered as its bare path); a
// malformed one records an EJSONPARSE node error instead of failing, so
// the report can still run over whatever is installed.
func Load(dir string) (*models.Node, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("failed to read project directory: %w", err)
	}

	l := &loader{
		decls:  make(map[*models.Node][]parser.Declaration),
		parent: make(map[*models.Node]*models.Node),
	}

	root := l.buildRoot(abs)
	l.scan(root)
	l.overlayLockfile(root)
	l.buildEdges()
	l.markExtraneous(root)

	return root, nil
}

func (l *loader) buildRoot(dir string) *models.Node {
	root := models.NewNode("", "", dir)
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		root.RealPath = real
	}
	l.nodes = append(l.nodes, root)

	manifestPath, err := parser.FindManifest(dir)
	if err != nil {
		// No manifest at all: report the bare path, nothing declared.
		return root
	}

	m, err := parser.ParseManifest(manifestPath)
	if err != nil {
		root.Errors = append(root.Errors, models.NodeError{
			Code: models.ErrCodeJSONParse,
			Path: manifestPath,
		})
		return root
	}

	root.Package = models.NewPackage(m.Name, m.Version)
	root.Description = m.Description
	l.decls[root] = m.Declarations()
	return root
}

// scan walks the node_modules directory of node, materializing one child
// per installed package (including @scope/name layouts), then recurses
// into each child's own node_modules.
func (l *loader) scan(node *models.Node) {
	nm := filepath.Join(node.Path, "node_modules")
	entries, err := os.ReadDir(nm)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasPrefix(name, "@") {
			scoped, err := os.ReadDir(filepath.Join(nm, name))
			if err != nil {
				continue
			}
			for _, sub := range scoped {
				if strings.HasPrefix(sub.Name(), ".") {
					continue
				}
				l.addChild(node, name+"/"+sub.Name(), filepath.Join(nm, name, sub.Name()))
			}
			continue
		}
		l.addChild(node, name, filepath.Join(nm, name))
	}
}

func (l *loader) addChild(parent *models.Node, name, path string) {
	fi, err := os.Lstat(path)
	if err != nil || (!fi.IsDir() && fi.Mode()&os.ModeSymlink == 0) {
		return
	}

	child := models.NewNode(name, "", path)
	if fi.Mode()&os.ModeSymlink != 0 {
		child.Link = true
		if real, err := filepath.EvalSymlinks(path); err == nil {
			child.RealPath = real
		}
	}

	manifestPath := filepath.Join(path, "package.json")
	if m, err := parser.ParseManifest(manifestPath); err == nil {
		// The directory name, not the manifest, is authoritative for
		// resolution; the manifest supplies everything else.
		child.Package = models.NewPackage(name, m.Version)
		child.Description = m.Description
		l.decls[child] = m.Declarations()
	} else if _, statErr := os.Stat(manifestPath); statErr == nil {
		child.Errors = append(child.Errors, models.NodeError{
			Code: models.ErrCodeJSONParse,
			Path: manifestPath,
		})
	}

	parent.AddChild(child)
	l.parent[child] = parent
	l.nodes = append(l.nodes, child)
	l.scan(child)
}

// overlayLockfile fills in resolved origins from the hidden lockfile npm
// leaves in node_modules. Absence or unreadability is not an error; the
// report just loses the source-control annotations.
func (l *loader) overlayLockfile(root *models.Node) {
	lock, err := parser.ParseLockfile(filepath.Join(root.Path, "node_modules", parser.HiddenLockfileName))
	if err != nil {
		return
	}

	for key, pkg := range lock.Packages {
		// The "" key is the project itself; workspace keys live outside
		// node_modules and have no materialized node.
		if pkg.Resolved == "" || parser.PackageNameFromPath(key) == "" {
			continue
		}
		if node := descend(root, key); node != nil {
			node.Resolved = pkg.Resolved
		}
	}
}

// descend navigates a lockfile path key like
// "node_modules/a/node_modules/@s/b" down the materialized child maps.
func descend(root *models.Node, key string) *models.Node {
	node := root
	for _, seg := range strings.Split(key, "node_modules/") {
		seg = strings.Trim(seg, "/")
		if seg == "" {
			continue
		}
		node = node.Children[seg]
		if node == nil {
			return nil
		}
	}
	return node
}

// buildEdges turns every manifest declaration into an Edge, resolving the
// target the way the installer does: the dependent's own node_modules
// first, then each ancestor's, up to the root.
func (l *loader) buildEdges() {
	for _, node := range l.nodes {
		for _, d := range l.decls[node] {
			edge := &models.Edge{
				Name: d.Name,
				Spec: d.Spec,
				Kind: d.Kind,
				To:   l.resolve(node, d.Name),
			}
			if edge.To != nil && !edge.To.Satisfies(d.Spec) {
				edge.Invalid = true
			}
			node.AddEdge(edge)
		}
	}
}

func (l *loader) resolve(from *models.Node, name string) *models.Node {
	for cur := from; cur != nil; cur = l.parent[cur] {
		if c, ok := cur.Children[name]; ok {
			return c
		}
	}
	return nil
}

// markExtraneous flags every installed node no edge points at.
func (l *loader) markExtraneous(root *models.Node) {
	inbound := make(map[*models.Node]bool)
	for _, node := range l.nodes {
		for _, edge := range node.EdgesOut {
			if edge.To != nil {
				inbound[edge.To] = true
			}
		}
	}
	for _, node := range l.nodes {
		if node != root && !inbound[node] {
			node.Extraneous = true
		}
	}
}

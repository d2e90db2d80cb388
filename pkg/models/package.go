package models

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DepKind classifies the manifest block a dependency edge was declared in.
type DepKind string

const (
	KindProd         DepKind = "prod"
	KindDev          DepKind = "dev"
	KindOptional     DepKind = "optional"
	KindPeer         DepKind = "peer"
	KindPeerOptional DepKind = "peerOptional"
)

// Package represents a single npm package with version
type Package struct {
	ID      string `json:"id"`      // "lodash@4.17.21"
	Name    string `json:"name"`    // "lodash"
	Version string `json:"version"` // "4.17.21"
}

// NewPackage builds a Package with its ID derived from name and version.
func NewPackage(name, version string) Package {
	return Package{
		ID:      name + "@" + version,
		Name:    name,
		Version: version,
	}
}

// NodeError records a problem encountered while materializing a node,
// e.g. an unreadable manifest.
type NodeError struct {
	Code string `json:"code"` // "EJSONPARSE"
	Path string `json:"path"` // file that caused the error
}

// ErrCodeJSONParse marks an unreadable or malformed package.json.
const ErrCodeJSONParse = "EJSONPARSE"

// Edge is a directed dependency relation from a parent node to a target
// identity. To is nil when no installed package resolves the declaration.
type Edge struct {
	From    *Node   `json:"-"`
	Name    string  `json:"name"`
	Spec    string  `json:"spec"` // declared range, e.g. "^1.0.0"
	Kind    DepKind `json:"kind"`
	To      *Node   `json:"-"`
	Invalid bool    `json:"invalid"` // resolved target does not satisfy Spec
}

// Missing reports whether the edge has no resolvable target.
func (e *Edge) Missing() bool {
	return e.To == nil
}

// Optional reports whether an unresolved edge is tolerated.
func (e *Edge) Optional() bool {
	return e.Kind == KindOptional || e.Kind == KindPeerOptional
}

// Node represents a materialized package instance in the installed tree.
// A node may be referenced from multiple logical positions (shared
// dependency) but is a single entity in the graph.
type Node struct {
	Package
	Path        string           `json:"path"`
	RealPath    string           `json:"realpath"` // differs from Path for links
	Description string           `json:"description,omitempty"`
	Resolved    string           `json:"resolved,omitempty"` // tarball URL or source-control locator
	Link        bool             `json:"link"`
	Extraneous  bool             `json:"extraneous"` // installed but not declared by any edge
	Errors      []NodeError      `json:"errors,omitempty"`
	EdgesOut    map[string]*Edge `json:"-"` // keyed by declared name
	Children    map[string]*Node `json:"-"` // physically nested installs, keyed by name
}

// NewNode creates a node with initialized edge and child maps.
func NewNode(name, version, path string) *Node {
	return &Node{
		Package:  NewPackage(name, version),
		Path:     path,
		RealPath: path,
		EdgesOut: make(map[string]*Edge),
		Children: make(map[string]*Node),
	}
}

// AddEdge records an outbound dependency declaration.
func (n *Node) AddEdge(e *Edge) {
	e.From = n
	n.EdgesOut[e.Name] = e
}

// AddChild records a physically nested install under this node.
func (n *Node) AddChild(c *Node) {
	n.Children[c.Name] = c
}

// Satisfies reports whether the node's version falls within the given
// range spec. Range evaluation is delegated to semver; a spec that does
// not parse as a range (git URLs, tags, file specs) is satisfied only by
// exact version equality, since the reporter must not re-resolve it.
func (n *Node) Satisfies(spec string) bool {
	if spec == "" || spec == "*" || spec == "latest" {
		return true
	}
	c, err := semver.NewConstraint(spec)
	if err != nil {
		return spec == n.Version
	}
	v, err := semver.NewVersion(n.Version)
	if err != nil {
		return false
	}
	return c.Check(v)
}

// sourceControlPrefixes are the resolved-field prefixes treated as
// source-control locators for the tree annotation.
var sourceControlPrefixes = []string{
	"git://",
	"git+ssh://",
	"git+http://",
	"git+https://",
	"git+file://",
	"github:",
}

// SourceControlResolved reports whether the node was resolved from a
// version-control origin rather than a registry tarball.
func (n *Node) SourceControlResolved() bool {
	for _, p := range sourceControlPrefixes {
		if strings.HasPrefix(n.Resolved, p) {
			return true
		}
	}
	return false
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPackage(t *testing.T) {
	pkg := NewPackage("lodash", "4.17.21")
	assert.Equal(t, "lodash@4.17.21", pkg.ID)
	assert.Equal(t, "lodash", pkg.Name)
	assert.Equal(t, "4.17.21", pkg.Version)
}

func TestSatisfies(t *testing.T) {
	node := NewNode("foo", "1.2.3", "/project/node_modules/foo")

	tests := []struct {
		spec     string
		expected bool
	}{
		// Wildcards always match
		{"", true},
		{"*", true},
		{"latest", true},

		// Ranges
		{"^1.0.0", true},
		{"~1.2.0", true},
		{">=1.2.3", true},
		{"^2.0.0", false},
		{"<1.0.0", false},
		{"1.2.3", true},
		{"1.2.4", false},

		// Non-range specs fall back to exact version equality
		{"git+https://github.com/user/foo.git", false},
		{"file:../foo", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, node.Satisfies(tt.spec), "spec %q", tt.spec)
	}
}

func TestSatisfiesUnparseableVersion(t *testing.T) {
	node := NewNode("foo", "not-a-version", "/p")
	assert.False(t, node.Satisfies("^1.0.0"))
	assert.True(t, node.Satisfies("*"))
}

func TestEdgeFlags(t *testing.T) {
	missing := &Edge{Name: "bar", Spec: "^2.0.0", Kind: KindProd}
	assert.True(t, missing.Missing())
	assert.False(t, missing.Optional())

	optional := &Edge{Name: "baz", Spec: "^1.0.0", Kind: KindOptional}
	assert.True(t, optional.Optional())

	peerOptional := &Edge{Name: "qux", Spec: "^1.0.0", Kind: KindPeerOptional}
	assert.True(t, peerOptional.Optional())

	resolved := &Edge{Name: "foo", Spec: "^1.0.0", Kind: KindProd, To: NewNode("foo", "1.0.0", "/p")}
	assert.False(t, resolved.Missing())
}

func TestSourceControlResolved(t *testing.T) {
	node := NewNode("foo", "1.0.0", "/p")

	node.Resolved = "https://registry.npmjs.org/foo/-/foo-1.0.0.tgz"
	assert.False(t, node.SourceControlResolved())

	node.Resolved = "git+https://github.com/user/foo.git#abc123"
	assert.True(t, node.SourceControlResolved())

	node.Resolved = "github:user/foo"
	assert.True(t, node.SourceControlResolved())

	node.Resolved = ""
	assert.False(t, node.SourceControlResolved())
}

func TestAddEdgeAndChild(t *testing.T) {
	parent := NewNode("root", "1.0.0", "/project")
	child := NewNode("foo", "1.0.0", "/project/node_modules/foo")

	parent.AddEdge(&Edge{Name: "foo", Spec: "^1.0.0", Kind: KindProd, To: child})
	parent.AddChild(child)

	assert.Same(t, parent, parent.EdgesOut["foo"].From)
	assert.Same(t, child, parent.EdgesOut["foo"].To)
	assert.Same(t, child, parent.Children["foo"])
}

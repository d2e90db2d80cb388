// Package lstree reports on an already-resolved dependency graph: one
// breadth-first pass walks the tree, classifies every position (missing,
// invalid, extraneous, deduplicated, linked), applies the configured
// filters, and produces a rendering plus a collected problem set. The
// graph is treated as a frozen snapshot; nothing here mutates it.
package lstree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acheong08/lsdeps/pkg/models"
)

// Options configures one report pass.
type Options struct {
	// Args are positional package filters: "name" or "name@range".
	Args []string

	// MaxDepth bounds the rendered tree: a node at this depth produces no
	// children. The root is depth 0. Ignored when All is set.
	MaxDepth int
	All      bool

	Long      bool // extended information (descriptions, parseable metadata)
	Parseable bool // flat path listing instead of a tree
	Unicode   bool // unicode branch glyphs for the tree
	Color     bool

	// Kind-based filters, applied to the root's immediate children only.
	Dev  bool
	Prod bool
	Link bool
	Only string // category string matched against "dev…" or "prod…"

	// GlobalRoot suppresses the parseable :ERROR marker for the synthetic
	// global root parent path.
	GlobalRoot string
}

// Result is the outcome of one report pass. Output is always populated,
// even when Report also returns an error: rendering and failure status are
// independent outcomes of the same pass.
type Result struct {
	Output      string
	Problems    []string // deduplicated, sorted
	MatchedNone bool     // positional filters were supplied and none matched
}

// RootParseError reports that the root package definition was unreadable.
type RootParseError struct {
	Path string
}

func (e *RootParseError) Error() string {
	return fmt.Sprintf("failed to parse %s", e.Path)
}

// ProblemsError aggregates the missing/invalid/extraneous findings
// collected during traversal.
type ProblemsError struct {
	Problems []string
}

func (e *ProblemsError) Error() string {
	return strings.Join(e.Problems, "\n")
}

// Report runs the single traversal pass over the graph rooted at root and
// renders the selected encoding. Classification failures never interrupt
// the walk: both failure kinds are returned alongside the completed
// Result, after rendering.
func Report(root *models.Node, opts Options) (*Result, error) {
	if root == nil {
		return nil, errors.New("lstree: nil root node")
	}
	if opts.MaxDepth < 0 {
		opts.All = true
	}

	w := newWalker(opts)
	top := w.walk(root)

	var output string
	if opts.Parseable {
		output = renderParseable(w.visits, opts)
	} else {
		var err error
		if output, err = renderTree(top, opts); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Output:      output,
		Problems:    w.problemList(),
		MatchedNone: len(w.filters) > 0 && !w.matched,
	}

	for _, ne := range root.Errors {
		if ne.Code == models.ErrCodeJSONParse {
			return res, &RootParseError{Path: ne.Path}
		}
	}
	if len(res.Problems) > 0 {
		return res, &ProblemsError{Problems: res.Problems}
	}
	return res, nil
}

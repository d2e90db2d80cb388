package lstree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ddddddO/gtree"
)

// emptyLabel is the placeholder entry shown when nothing is visible under
// the root.
const emptyLabel = "(empty)"

// styles holds the label colors. With color disabled every style is a
// no-op passthrough.
type styles struct {
	unmet      lipgloss.Style
	invalid    lipgloss.Style
	extraneous lipgloss.Style
	deduped    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{unmet: plain, invalid: plain, extraneous: plain, deduped: plain}
	}
	return styles{
		unmet:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		invalid:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		extraneous: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		deduped:    lipgloss.NewStyle().Faint(true),
	}
}

// renderTree encodes the filtered traversal as a nested human-readable
// tree. A node contributes an entry iff it is included and has a parent;
// the root always contributes the top-level entry.
func renderTree(top *TraversalNode, opts Options) (string, error) {
	st := newStyles(opts.Color)

	root := gtree.NewRoot(label(top, opts, st))
	if addIncluded(root, top, opts, st) == 0 {
		root.Add(emptyLabel)
	}

	gopts := []gtree.Option{}
	if !opts.Unicode {
		gopts = append(gopts,
			gtree.WithBranchFormatIntermedialNode("+--", "| "),
			gtree.WithBranchFormatLastNode("`--", "  "),
		)
	}

	var sb strings.Builder
	if err := gtree.OutputProgrammably(&sb, root, gopts...); err != nil {
		return "", fmt.Errorf("failed to render tree: %w", err)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func addIncluded(parent *gtree.Node, t *TraversalNode, opts Options, st styles) int {
	count := 0
	for _, c := range t.Children {
		if !c.Include {
			continue
		}
		count++
		count += addIncluded(parent.Add(label(c, opts, st)), c, opts, st)
	}
	return count
}

// label composes one tree entry. Composition order: missing marker, base
// identity (root shows its path), deduped/invalid/extraneous suffixes,
// source-control origin, symlink target, and in verbose mode the package
// description on a following line.
func label(t *TraversalNode, opts Options, st styles) string {
	var b strings.Builder

	if t.Missing {
		if t.MissingOptional {
			b.WriteString(st.unmet.Render("UNMET OPTIONAL DEPENDENCY") + " ")
		} else {
			b.WriteString(st.unmet.Render("UNMET DEPENDENCY") + " ")
		}
	}

	if t.Parent == nil {
		if t.Node.Name == "" {
			b.WriteString(t.Node.Path)
		} else {
			b.WriteString(t.Node.ID + " " + t.Node.Path)
		}
	} else {
		b.WriteString(t.PkgID())
	}

	if t.Deduped {
		b.WriteString(" " + st.deduped.Render("deduped"))
	}
	if t.Invalid {
		b.WriteString(" " + st.invalid.Render("invalid"))
	}
	if t.Node != nil && t.Node.Extraneous {
		b.WriteString(" " + st.extraneous.Render("extraneous"))
	}
	if t.Node != nil && t.Node.SourceControlResolved() {
		b.WriteString(" (" + t.Node.Resolved + ")")
	}
	if t.Node != nil && t.Node.Link {
		b.WriteString(" -> " + t.Node.RealPath)
	}
	if opts.Long && t.Node != nil && t.Node.Description != "" {
		b.WriteString("\n  " + t.Node.Description)
	}

	return b.String()
}

package lstree

import "strings"

// renderParseable encodes the report as one line per visited Node that is
// included and has a concrete installation path, in visitation order.
// Deduped references never produce a duplicate line. Verbose mode appends
// colon-separated metadata fields.
func renderParseable(visits []*TraversalNode, opts Options) string {
	var b strings.Builder
	for _, t := range visits {
		if t.Node == nil || !t.Include || t.Node.Path == "" {
			continue
		}
		b.WriteString(t.Node.Path)
		if opts.Long {
			b.WriteString(":" + t.Node.ID)
			if t.Node.RealPath != t.Node.Path {
				b.WriteString(":" + t.Node.RealPath)
			}
			if t.Node.Extraneous {
				b.WriteString(":EXTRANEOUS")
			}
			if len(t.Node.Errors) > 0 && t.Node.Path != opts.GlobalRoot {
				b.WriteString(":ERROR")
			}
			if t.Invalid {
				b.WriteString(":INVALID")
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

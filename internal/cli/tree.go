package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/stackdiff/pkg/crawl"
)

// writeTree prints snap as an indented tree. With onlyDifferent, subtrees
// without differences or problems are left out.
func writeTree(w io.Writer, snap *crawl.Snapshot, onlyDifferent bool) error {
	header := StyleTitle.Render(snap.Module) + " " +
		StyleValue.Render(orMissing(snap.First)) + StyleDim.Render(" "+iconArrow+" ") +
		StyleValue.Render(orMissing(snap.Second))
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if snap.Root == nil {
		return nil
	}

	tw := &treeWriter{w: w, onlyDifferent: onlyDifferent}
	tw.children(snap.Root, "")
	if tw.err != nil {
		return tw.err
	}

	diffs := snap.Root.Differences
	summary := fmt.Sprintf("%s difference%s", StyleNumber.Render(fmt.Sprint(diffs)), plural(diffs))
	if hidden := tw.hidden; hidden > 0 {
		summary += StyleDim.Render(fmt.Sprintf(" (%d unchanged hidden)", hidden))
	}
	_, err := fmt.Fprintln(w, "\n"+summary)
	return err
}

type treeWriter struct {
	w             io.Writer
	onlyDifferent bool
	hidden        int
	err           error
}

func (t *treeWriter) children(n *crawl.NodeSnapshot, prefix string) {
	var visible []*crawl.NodeSnapshot
	for _, child := range n.Dependencies {
		if child.Hidden(t.onlyDifferent) {
			t.hidden++
			continue
		}
		visible = append(visible, child)
	}

	for i, child := range visible {
		branch, indent := "├── ", "│   "
		if i == len(visible)-1 {
			branch, indent = "└── ", "    "
		}
		t.line(StyleDim.Render(prefix+branch) + formatNode(child))
		t.children(child, prefix+indent)
	}
}

func (t *treeWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}

// formatNode renders "name versions markers" for one tree row.
func formatNode(n *crawl.NodeSnapshot) string {
	var b strings.Builder
	b.WriteString(StyleValue.Render(n.Name))
	b.WriteString(" ")

	style := diffStyles[n.Diff]
	if n.Diff == crawl.DiffSame {
		b.WriteString(style.Render(n.First.Version()))
	} else {
		b.WriteString(style.Render(orMissing(n.First.Version()) + " " + iconArrow + " " + orMissing(n.Second.Version())))
	}

	for _, m := range markers(n) {
		b.WriteString(" ")
		b.WriteString(m)
	}
	return b.String()
}

func markers(n *crawl.NodeSnapshot) []string {
	var out []string
	if n.First.Circular || n.Second.Circular {
		out = append(out, StyleWarning.Render(iconCircular+" circular"+sideSuffix(n.First.Circular, n.Second.Circular)))
	}
	if n.First.Error != "" {
		out = append(out, styleIconError.Render(iconError+" "+n.First.Error))
	}
	if n.Second.Error != "" && n.Second.Error != n.First.Error {
		out = append(out, styleIconError.Render(iconError+" "+n.Second.Error))
	}
	if n.HintsDiffer && n.Diff == crawl.DiffSame {
		out = append(out, StyleDim.Render("(requested "+n.First.Hint+" "+iconArrow+" "+n.Second.Hint+")"))
	}
	if n.First.Canceled || n.Second.Canceled {
		out = append(out, StyleDim.Render("(canceled)"))
	}
	if n.Truncated {
		out = append(out, StyleDim.Render("(max depth)"))
	}
	if n.Stopped {
		out = append(out, StyleDim.Render("(stopped)"))
	}
	return out
}

func sideSuffix(first, second bool) string {
	switch {
	case first && second:
		return ""
	case first:
		return " in first"
	default:
		return " in second"
	}
}

func orMissing(v string) string {
	if v == "" {
		return "(missing)"
	}
	return v
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

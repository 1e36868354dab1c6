package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackdiff/pkg/crawl"
)

// Options configures node-link diagram rendering.
type Options struct {
	// OnlyDifferent leaves out subtrees in which nothing differs and
	// nothing went wrong.
	OnlyDifferent bool
}

var fillColors = map[crawl.DiffKind]string{
	crawl.DiffSame:    "white",
	crawl.DiffPatch:   "lightyellow",
	crawl.DiffMinor:   "orange",
	crawl.DiffMajor:   "salmon",
	crawl.DiffChanged: "lightblue",
	crawl.DiffMissing: "lightgrey",
}

// ToDOT converts a comparison snapshot to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(snap *crawl.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	if snap != nil && snap.Root != nil {
		writeNode(&buf, snap.Root, "n0", opts)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *crawl.NodeSnapshot, id string, opts Options) {
	fmt.Fprintf(buf, "  %s [%s];\n", id, strings.Join(fmtAttrs(n), ", "))
	for i, child := range n.Dependencies {
		if child.Hidden(opts.OnlyDifferent) {
			continue
		}
		childID := id + "_" + strconv.Itoa(i)
		writeNode(buf, child, childID, opts)
		fmt.Fprintf(buf, "  %s -> %s;\n", id, childID)
	}
}

func fmtLabel(n *crawl.NodeSnapshot) string {
	return n.Name + "\n" + fmtVersion(n.First) + " → " + fmtVersion(n.Second)
}

func fmtVersion(s crawl.SideSnapshot) string {
	v := s.Version()
	if s.Resolved != "" && s.Resolved != s.Hint {
		v += " [" + s.Hint + "]"
	}
	switch {
	case s.Missing():
		return "(missing)"
	case s.Circular:
		return v + " (circular)"
	case s.Error != "":
		return v + " (error)"
	default:
		return v
	}
}

func fmtAttrs(n *crawl.NodeSnapshot) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n))}
	if color, ok := fillColors[n.Diff]; ok && color != "white" {
		attrs = append(attrs, "fillcolor="+color)
	}

	style := []string{"rounded", "filled"}
	switch {
	case n.Diff == crawl.DiffMissing:
		style = append(style, "dashed")
	case n.First.Circular || n.Second.Circular:
		style = append(style, "dotted")
	}
	if len(style) > 2 {
		attrs = append(attrs, fmt.Sprintf("style=%q", strings.Join(style, ",")))
	}

	if n.First.Error != "" || n.Second.Error != "" {
		attrs = append(attrs, "color=red", "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(header))
}

package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stackdiff/pkg/crawl"
)

func testSnapshot() *crawl.Snapshot {
	return &crawl.Snapshot{
		Module: "x",
		First:  "1.0.0",
		Second: "2.0.0",
		Done:   true,
		Root: &crawl.NodeSnapshot{
			Name:        "x",
			First:       crawl.SideSnapshot{Hint: "1.0.0"},
			Second:      crawl.SideSnapshot{Hint: "2.0.0"},
			Diff:        crawl.DiffMajor,
			Differences: 3,
			Dependencies: []*crawl.NodeSnapshot{
				{
					Name:   "same",
					First:  crawl.SideSnapshot{Hint: "^1.0.0", Resolved: "1.0.0"},
					Second: crawl.SideSnapshot{Hint: "1.0.0", Resolved: "1.0.0"},
					Diff:   crawl.DiffSame,
				},
				{
					Name:        "gone",
					First:       crawl.SideSnapshot{Hint: "^1.2.0"},
					Diff:        crawl.DiffMissing,
					Differences: 1,
				},
				{
					Name:        "broken",
					First:       crawl.SideSnapshot{Hint: "1.0.0", Error: "boom"},
					Second:      crawl.SideSnapshot{Hint: "1.1.0"},
					Diff:        crawl.DiffMinor,
					Differences: 1,
					Wrong:       true,
				},
			},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{})

	for _, want := range []string{
		"digraph G {",
		`n0 [label="x\n1.0.0 → 2.0.0", fillcolor=salmon]`,
		`n0_0 [label="same\n1.0.0 [^1.0.0] → 1.0.0"]`,
		`n0_1 [label="gone\n^1.2.0 → (missing)", fillcolor=lightgrey, style="rounded,filled,dashed"]`,
		`n0_2 [label="broken\n1.0.0 (error) → 1.1.0", fillcolor=orange, color=red, penwidth=2]`,
		"n0 -> n0_0;",
		"n0 -> n0_2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTOnlyDifferent(t *testing.T) {
	dot := ToDOT(testSnapshot(), Options{OnlyDifferent: true})
	if strings.Contains(dot, "n0_0") {
		t.Errorf("unchanged dependency should be left out:\n%s", dot)
	}
	if !strings.Contains(dot, "n0 -> n0_1;") || !strings.Contains(dot, "n0 -> n0_2;") {
		t.Errorf("changed dependencies missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("unexpected DOT for nil snapshot:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testSnapshot(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("output is not SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox =\n%s\nwant\n%s", out, want)
	}
	if got := normalizeViewBox([]byte("<svg/>")); string(got) != "<svg/>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}

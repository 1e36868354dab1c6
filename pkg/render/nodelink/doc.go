// Package nodelink renders comparison trees as node-link diagrams.
//
// # Overview
//
// Each dependency of a comparison becomes a box labeled with its name and
// its version on both sides. Boxes are filled by [crawl.DiffKind]:
//
//   - same: white
//   - patch: light yellow
//   - minor: orange
//   - major: salmon
//   - changed: light blue
//   - missing: light grey, dashed outline
//
// Lookup failures get a red outline and circular references a dotted one.
// A module that appears at several places in the tree is drawn once per
// place, so the diagram stays a tree.
//
// # Usage
//
//	dot := nodelink.ToDOT(session.Snapshot(), nodelink.Options{OnlyDifferent: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [crawl.DiffKind]: github.com/matzehuels/stackdiff/pkg/crawl.DiffKind
package nodelink

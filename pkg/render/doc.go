// Package render turns comparison snapshots into diagrams.
//
// The [nodelink] subpackage draws the comparison tree as a Graphviz
// node-link diagram, coloring each dependency by how its version changed
// between the two sides.
//
// [nodelink]: github.com/matzehuels/stackdiff/pkg/render/nodelink
package render

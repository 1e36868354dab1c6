package crawl

import (
	"strings"

	"golang.org/x/mod/semver"
)

// DiffKind classifies how a dependency differs between the two sides.
type DiffKind string

const (
	DiffSame    DiffKind = "same"
	DiffPatch   DiffKind = "patch"
	DiffMinor   DiffKind = "minor"
	DiffMajor   DiffKind = "major"
	DiffChanged DiffKind = "changed" // differs, but not comparable as semver
	DiffMissing DiffKind = "missing" // present on one side only
)

// Diff classifies the change from version a to version b. Range operators
// such as ^ and ~ are ignored for the semver comparison, but two specs that
// differ only in their operator still count as changed.
func Diff(a, b string) DiffKind {
	switch {
	case a == b:
		return DiffSame
	case a == "" || b == "":
		return DiffMissing
	}

	va, vb := canonical(a), canonical(b)
	if va == "" || vb == "" {
		return DiffChanged
	}
	switch {
	case semver.Compare(va, vb) == 0:
		return DiffChanged
	case semver.Major(va) != semver.Major(vb):
		return DiffMajor
	case semver.MajorMinor(va) != semver.MajorMinor(vb):
		return DiffMinor
	default:
		return DiffPatch
	}
}

// canonical turns an npm version or simple range into a semver string
// accepted by x/mod/semver, or "" if that is not possible.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimLeft(v, "^~=>< ")
	if v == "" || strings.ContainsAny(v, " |") {
		return ""
	}
	for _, part := range strings.Split(v, ".") {
		if part == "x" || part == "X" || part == "*" {
			return ""
		}
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// AreVersionsDifferent reports whether both sides are present with
// different versions. Resolved versions are compared where known, so "^1.2.0"
// and "1.2.3" that both resolve to 1.2.3 are not different.
func (n *Node) AreVersionsDifferent() bool {
	first, second := n.First(), n.Second()
	return !first.Missing() && !second.Missing() && first.Version() != second.Version()
}

// AreHintsDifferent reports whether both sides are present and the parents
// requested different versions or ranges, whatever they resolved to.
func (n *Node) AreHintsDifferent() bool {
	first, second := n.First(), n.Second()
	return !first.Missing() && !second.Missing() && first.Hint != second.Hint
}

// IsOneMissing reports whether the dependency exists on exactly one side.
func (n *Node) IsOneMissing() bool {
	return n.First().Missing() != n.Second().Missing()
}

// IsSomethingWrong reports whether either side failed its lookup or is a
// circular reference.
func (n *Node) IsSomethingWrong() bool {
	first, second := n.First(), n.Second()
	return first.Err != nil || second.Err != nil || first.Circular || second.Circular
}

// DiffKind classifies the version change of this node, using resolved
// versions where known.
func (n *Node) DiffKind() DiffKind {
	return Diff(n.First().Version(), n.Second().Version())
}

// IsDifferent reports whether this node itself differs between the sides.
func (n *Node) IsDifferent() bool {
	return n.AreVersionsDifferent() || n.IsOneMissing()
}

// NumberOfDifferences counts the nodes in this subtree, including n itself,
// that differ between the sides. Children not yet known are not counted.
func (n *Node) NumberOfDifferences() int {
	count := 0
	if n.IsDifferent() {
		count++
	}
	for _, child := range n.Dependencies() {
		count += child.NumberOfDifferences()
	}
	return count
}

// ShouldHide reports whether n is hidden when only differences are shown:
// nothing is wrong with it and nothing in its subtree differs.
func (n *Node) ShouldHide(onlyDifferent bool) bool {
	return onlyDifferent && !n.IsSomethingWrong() && n.NumberOfDifferences() == 0
}

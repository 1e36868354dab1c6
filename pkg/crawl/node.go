package crawl

import (
	"slices"
	"sync"

	"github.com/matzehuels/stackdiff/pkg/deps"
)

// State is the lifecycle position of a [Node].
type State int

const (
	StateIdle     State = iota // created, not yet started
	StateFetching              // looking up both sides
	StateAwaiting              // children known, waiting for them to finish
	StateDone                  // node and all descendants settled
)

var stateNames = [...]string{"idle", "fetching", "awaiting", "done"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Side is one half of a comparison node: the dependency as seen from the
// first or the second root version.
type Side struct {
	// Hint is the version or range requested by the parent. Empty means the
	// dependency does not exist on this side.
	Hint string

	// Resolved is the concrete version the registry resolved Hint to. It is
	// empty until the side has been looked up, and stays empty when the
	// lookup was skipped or failed.
	Resolved string

	// Ancestors lists the modules from the root down to the parent on this
	// side, each at its resolved version when known. It is used for cycle
	// detection and never includes the node itself.
	Ancestors []deps.Module

	// Circular is set when this module already appears among Ancestors at
	// the same version: the hint itself before the lookup, the resolved
	// version after it. Circular sides are never expanded.
	Circular bool

	// Err is the lookup failure for this side, if any.
	Err error

	// Canceled is set when the lookup was abandoned because the session was
	// canceled.
	Canceled bool
}

// Missing reports whether the dependency is absent on this side.
func (s Side) Missing() bool { return s.Hint == "" }

// Version returns the resolved version when known and the hint otherwise.
func (s Side) Version() string {
	if s.Resolved != "" {
		return s.Resolved
	}
	return s.Hint
}

func newSide(name, hint string, ancestors []deps.Module) Side {
	s := Side{Hint: hint, Ancestors: ancestors}
	if hint != "" {
		s.Circular = s.repeats(name, hint)
	}
	return s
}

// repeats reports whether name at version already appears among Ancestors.
func (s Side) repeats(name, version string) bool {
	return slices.Contains(s.Ancestors, deps.Module{Name: name, Version: version})
}

// extend returns the ancestor chain a child of a node with this side sees.
func (s Side) extend(name string) []deps.Module {
	if s.Missing() {
		return s.Ancestors
	}
	out := make([]deps.Module, len(s.Ancestors), len(s.Ancestors)+1)
	copy(out, s.Ancestors)
	return append(out, deps.Module{Name: name, Version: s.Version()})
}

// Node is one row of a comparison: a module name with its version on each
// side and the merged children below it.
//
// All accessors are safe to call while the crawl is still running.
type Node struct {
	Name  string
	Depth int

	mu        sync.Mutex
	first     Side
	second    Side
	state     State
	children  []*Node
	stopped   bool
	truncated bool

	merged chan struct{}
	done   chan struct{}
}

func newNode(name string, depth int, first, second Side) *Node {
	return &Node{
		Name:   name,
		Depth:  depth,
		first:  first,
		second: second,
		merged: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// First returns a copy of the first side.
func (n *Node) First() Side {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.first
}

// Second returns a copy of the second side.
func (n *Node) Second() Side {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.second
}

// State returns the node's current lifecycle state.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Stopped reports whether the node was skipped because the session stopped.
func (n *Node) Stopped() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopped
}

// Truncated reports whether the node was skipped because of MaxDepth.
func (n *Node) Truncated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.truncated
}

// Dependencies returns the merged children in order. It returns nil until
// both sides have been resolved; see [Node.Merged].
func (n *Node) Dependencies() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.children
}

// Merged is closed once the node's children are known. For terminal nodes
// the children are empty.
func (n *Node) Merged() <-chan struct{} { return n.merged }

// Done is closed once the node and all of its descendants have settled.
func (n *Node) Done() <-chan struct{} { return n.done }

func (n *Node) setState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

func (n *Node) side(first bool) *Side {
	if first {
		return &n.first
	}
	return &n.second
}

// settle publishes the children (possibly none) exactly once.
func (n *Node) settle(children []*Node) {
	if children == nil {
		children = []*Node{}
	}
	n.mu.Lock()
	n.children = children
	if len(children) > 0 {
		n.state = StateAwaiting
	}
	n.mu.Unlock()
	close(n.merged)
}

func (n *Node) finish() {
	n.setState(StateDone)
	close(n.done)
}

package crawl

// Snapshot is a point-in-time copy of a session, safe to serialize while the
// crawl is still running.
type Snapshot struct {
	Module string        `json:"module"`
	First  string        `json:"first"`
	Second string        `json:"second"`
	Done   bool          `json:"done"`
	Stats  Stats         `json:"stats"`
	Root   *NodeSnapshot `json:"root"`
}

// NodeSnapshot is a copy of one [Node] and its subtree.
type NodeSnapshot struct {
	Name         string          `json:"name"`
	Depth        int             `json:"depth"`
	State        string          `json:"state"`
	First        SideSnapshot    `json:"first"`
	Second       SideSnapshot    `json:"second"`
	Diff         DiffKind        `json:"diff"`
	HintsDiffer  bool            `json:"hints_differ,omitempty"`
	Differences  int             `json:"differences"`
	Wrong        bool            `json:"wrong,omitempty"`
	Stopped      bool            `json:"stopped,omitempty"`
	Truncated    bool            `json:"truncated,omitempty"`
	Dependencies []*NodeSnapshot `json:"dependencies,omitempty"`
}

// SideSnapshot is a copy of one [Side]. Ancestors are omitted.
type SideSnapshot struct {
	Hint     string `json:"hint,omitempty"`
	Resolved string `json:"resolved,omitempty"`
	Circular bool   `json:"circular,omitempty"`
	Error    string `json:"error,omitempty"`
	Canceled bool   `json:"canceled,omitempty"`
}

// Version returns the resolved version when known and the hint otherwise.
func (s SideSnapshot) Version() string {
	if s.Resolved != "" {
		return s.Resolved
	}
	return s.Hint
}

// Missing reports whether the dependency is absent on this side.
func (s SideSnapshot) Missing() bool { return s.Hint == "" }

// Snapshot copies the current state of the session.
func (s *Session) Snapshot() *Snapshot {
	done := false
	select {
	case <-s.done:
		done = true
	default:
	}
	return &Snapshot{
		Module: s.Module,
		First:  s.First,
		Second: s.Second,
		Done:   done,
		Stats:  s.Stats(),
		Root:   s.Root.Snapshot(),
	}
}

// Snapshot copies n and its currently known subtree.
func (n *Node) Snapshot() *NodeSnapshot {
	n.mu.Lock()
	first, second := n.first, n.second
	out := &NodeSnapshot{
		Name:      n.Name,
		Depth:     n.Depth,
		State:     n.state.String(),
		Stopped:   n.stopped,
		Truncated: n.truncated,
	}
	children := n.children
	n.mu.Unlock()

	out.First = snapshotSide(first)
	out.Second = snapshotSide(second)
	out.Diff = Diff(first.Version(), second.Version())
	out.HintsDiffer = !first.Missing() && !second.Missing() && first.Hint != second.Hint
	out.Wrong = first.Err != nil || second.Err != nil || first.Circular || second.Circular
	if out.Diff != DiffSame {
		out.Differences = 1
	}

	for _, child := range children {
		cs := child.Snapshot()
		out.Differences += cs.Differences
		out.Dependencies = append(out.Dependencies, cs)
	}
	return out
}

// Hidden reports whether the node is hidden when only differences are shown.
func (n *NodeSnapshot) Hidden(onlyDifferent bool) bool {
	return onlyDifferent && !n.Wrong && n.Differences == 0
}

// Walk calls fn for n and every descendant in depth-first order. Returning
// false from fn skips the node's children.
func (n *NodeSnapshot) Walk(fn func(*NodeSnapshot) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Dependencies {
		child.Walk(fn)
	}
}

func snapshotSide(s Side) SideSnapshot {
	out := SideSnapshot{Hint: s.Hint, Resolved: s.Resolved, Circular: s.Circular, Canceled: s.Canceled}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

// Filter returns a copy of the subtree without the nodes hidden when only
// differences are shown. The receiver itself is always kept.
func (n *NodeSnapshot) Filter(onlyDifferent bool) *NodeSnapshot {
	out := *n
	out.Dependencies = nil
	for _, child := range n.Dependencies {
		if child.Hidden(onlyDifferent) {
			continue
		}
		out.Dependencies = append(out.Dependencies, child.Filter(onlyDifferent))
	}
	return &out
}

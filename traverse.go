package grove

// VisitResult tells Traverse how to continue after entering a node.
type VisitResult uint8

const (
	// VisitContinue descends into the node's children.
	VisitContinue VisitResult = iota
	// VisitSkipChildren continues with the node's next sibling.
	VisitSkipChildren
	// VisitExit stops the traversal.
	VisitExit
)

// NodeVisitor receives Enter before a node's children are visited and
// Leave after. Leave is called for every entered node unless the traversal
// is exited. Either function may be nil.
type NodeVisitor struct {
	Enter func(n *Node) VisitResult
	Leave func(n *Node) VisitResult
}

// Traverse walks n's subtree depth-first. Returns VisitExit if a visitor
// function stopped the traversal.
func (n *Node) Traverse(v NodeVisitor) VisitResult {
	if v.Enter != nil {
		switch v.Enter(n) {
		case VisitExit:
			return VisitExit
		case VisitSkipChildren:
			return n.leave(v)
		}
	}
	// Range over a snapshot so visitors may reparent nodes.
	children := n.children
	for _, c := range children {
		if c.Traverse(v) == VisitExit {
			return VisitExit
		}
	}
	return n.leave(v)
}

func (n *Node) leave(v NodeVisitor) VisitResult {
	if v.Leave != nil && v.Leave(n) == VisitExit {
		return VisitExit
	}
	return VisitContinue
}

// Walk calls fn for n and every descendant in depth-first order. Returning
// false from fn skips that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	n.Traverse(NodeVisitor{Enter: func(c *Node) VisitResult {
		if fn(c) {
			return VisitContinue
		}
		return VisitSkipChildren
	}})
}

// CollectNodes returns every node in n's subtree (n included) for which
// filter returns true, or every node if filter is nil. Closed groups are
// tested themselves but not descended into.
func (n *Node) CollectNodes(filter func(*Node) bool) []*Node {
	var out []*Node
	n.Traverse(NodeVisitor{Enter: func(c *Node) VisitResult {
		if filter == nil || filter(c) {
			out = append(out, c)
		}
		if c != n && c.IsClosed() {
			return VisitSkipChildren
		}
		return VisitContinue
	}})
	return out
}

// CollectNodesOfType returns every node of type t in n's subtree.
func (n *Node) CollectNodesOfType(t NodeType) []*Node {
	return n.CollectNodes(func(c *Node) bool { return c.Type == t })
}

// FindNode returns the first node named name in n's subtree, depth-first.
func (n *Node) FindNode(name string) *Node {
	var found *Node
	n.Traverse(NodeVisitor{Enter: func(c *Node) VisitResult {
		if c.Name == name {
			found = c
			return VisitExit
		}
		return VisitContinue
	}})
	return found
}

// CollectStates returns every distinct state attached to a node in n's
// subtree, in first-seen order. GroupStates are returned themselves, not
// their members.
func (n *Node) CollectStates() []State {
	var out []State
	seen := make(map[State]struct{})
	n.Walk(func(c *Node) bool {
		for _, e := range c.states {
			if _, ok := seen[e.State]; ok {
				continue
			}
			seen[e.State] = struct{}{}
			out = append(out, e.State)
		}
		return true
	})
	return out
}

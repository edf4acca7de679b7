package grove

// maxInlineStates is the number of enabled states Display tracks without
// allocating.
const maxInlineStates = 8

// Display enables the node's states, displays the node and disables the
// states again in reverse order. Inactive nodes and nodes outside
// rp.Layers are skipped.
//
// A state returning StateSkipOtherStates stops the enabling of further
// states. A state returning StateSkipRendering means the node was taken
// care of elsewhere: the states enabled so far are disabled and nothing is
// drawn.
func (n *Node) Display(fc *FrameContext, rp RenderParam) {
	if !n.IsActive() || !n.TestRenderingLayer(rp.Layers) {
		return
	}
	if globalDebug {
		debugCheckDestroyed(n, "Display")
	}
	if rp.Has(RenderNoStates) || len(n.states) == 0 {
		n.doDisplay(fc, rp)
		return
	}

	var inline [maxInlineStates]State
	enabled := inline[:0]
	// Range over the current list; states added or removed while enabling
	// take effect next time.
	entries := n.states
loop:
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		switch EnableState(e.State, fc, n, rp) {
		case StateOK:
			enabled = append(enabled, e.State)
		case StateSkipOtherStates:
			enabled = append(enabled, e.State)
			break loop
		case StateSkipRendering:
			disableStates(enabled, fc, n, rp)
			return
		case StateSkipped:
		}
	}

	n.doDisplay(fc, rp)
	disableStates(enabled, fc, n, rp)
}

func disableStates(enabled []State, fc *FrameContext, n *Node, rp RenderParam) {
	for i := len(enabled) - 1; i >= 0; i-- {
		DisableState(enabled[i], fc, n, rp)
	}
}

// doDisplay draws the node itself: list nodes pass each child to the
// frame's renderers, geometry nodes draw their mesh.
func (n *Node) doDisplay(fc *FrameContext, rp RenderParam) {
	fc.stats.NodesDisplayed++
	switch n.Type {
	case NodeTypeList:
		children := n.children
		for _, c := range children {
			fc.DisplayNode(c, rp)
		}
	case NodeTypeGeometry:
		if rp.Has(RenderNoGeometry) || n.Mesh == nil || n.Mesh.IsReleased() {
			return
		}
		fc.rc.DisplayMesh(n.Mesh, n.WorldTransformationMatrix())
		fc.stats.MeshesDisplayed++
	}
}

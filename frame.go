package grove

import (
	"log/slog"
	"slices"
)

// Render channel names.
const (
	ChannelDefault      = "DEFAULT"
	ChannelTransparency = "TRANSPARENCY"
)

// RenderFlags modify how nodes are displayed.
type RenderFlags uint16

const (
	// RenderNoStates displays nodes without enabling their states.
	RenderNoStates RenderFlags = 1 << iota
	// RenderNoGeometry walks the tree and enables states but draws no meshes.
	RenderNoGeometry
	// RenderNoCulling disables frustum culling by the default renderer.
	RenderNoCulling
)

// RenderParam travels with a display call down the tree.
type RenderParam struct {
	Flags   RenderFlags
	Channel string
	Layers  RenderingLayers
}

// NewRenderParam returns parameters for the default channel and layer.
func NewRenderParam() RenderParam {
	return RenderParam{Channel: ChannelDefault, Layers: RenderingLayerDefault}
}

// WithChannel returns a copy of rp targeting channel.
func (rp RenderParam) WithChannel(channel string) RenderParam {
	rp.Channel = channel
	return rp
}

// WithFlags returns a copy of rp with f added.
func (rp RenderParam) WithFlags(f RenderFlags) RenderParam {
	rp.Flags |= f
	return rp
}

// Has reports whether all flags in f are set.
func (rp RenderParam) Has(f RenderFlags) bool {
	return rp.Flags&f == f
}

// NodeRendererResult is returned by a NodeRenderer.
type NodeRendererResult uint8

const (
	// RendererPassOn lets the next renderer of the channel try the node.
	RendererPassOn NodeRendererResult = iota
	// RendererHandled stops the search; the node counts as displayed.
	RendererHandled
)

// NodeRenderer displays a node in one render channel.
type NodeRenderer func(fc *FrameContext, n *Node, rp RenderParam) NodeRendererResult

// RendererHandle identifies a registered NodeRenderer.
type RendererHandle uint64

type rendererEntry struct {
	handle RendererHandle
	fn     NodeRenderer
}

// FrameStats counts the work done since the last BeginFrame.
type FrameStats struct {
	NodesDisplayed  int
	MeshesDisplayed int
	NodesCulled     int
	Redirected      int
}

// FrameContext connects a display pass to its RenderingContext and holds
// the renderers registered per channel.
type FrameContext struct {
	rc       RenderingContext
	channels map[string][]rendererEntry
	handles  RendererHandle

	transparencyChannel string
	camera              *Node
	aspect              float64
	stats               FrameStats
}

// NewFrameContext creates a frame context drawing into rc. The default
// channel is served by a renderer that calls Node.Display.
func NewFrameContext(rc RenderingContext) *FrameContext {
	fc := &FrameContext{
		rc:                  rc,
		channels:            make(map[string][]rendererEntry),
		transparencyChannel: ChannelTransparency,
		aspect:              1,
	}
	fc.RegisterNodeRenderer(ChannelDefault, defaultNodeRenderer)
	return fc
}

// defaultNodeRenderer culls nodes outside the camera frustum and displays
// the rest.
func defaultNodeRenderer(fc *FrameContext, n *Node, rp RenderParam) NodeRendererResult {
	if fc.culled(n, rp) {
		fc.stats.NodesCulled++
		return RendererHandled
	}
	n.Display(fc, rp)
	return RendererHandled
}

func (fc *FrameContext) culled(n *Node, rp RenderParam) bool {
	if rp.Has(RenderNoCulling) || fc.camera == nil || fc.camera.Camera == nil || !fc.camera.Camera.CullEnabled {
		return false
	}
	// Lights and cameras have no extent but still affect what is drawn.
	if n.Type == NodeTypeLight || n.Type == NodeTypeCamera {
		return false
	}
	bb := n.WorldBB()
	if bb.IsEmpty() {
		return n.Type == NodeTypeGeometry
	}
	return !BoxInFrustum(fc.camera.ViewProjectionMatrix(fc.aspect), bb)
}

// RenderingContext returns the backend the frame draws into.
func (fc *FrameContext) RenderingContext() RenderingContext {
	return fc.rc
}

// RegisterNodeRenderer adds fn to channel. Renderers registered later are
// tried first.
func (fc *FrameContext) RegisterNodeRenderer(channel string, fn NodeRenderer) RendererHandle {
	fc.handles++
	entries := fc.channels[channel]
	// Copy so a DisplayNode call ranging over the old list is unaffected.
	next := make([]rendererEntry, len(entries), len(entries)+1)
	copy(next, entries)
	fc.channels[channel] = append(next, rendererEntry{handle: fc.handles, fn: fn})
	return fc.handles
}

// UnregisterNodeRenderer removes a renderer from channel and reports
// whether it was registered there.
func (fc *FrameContext) UnregisterNodeRenderer(channel string, h RendererHandle) bool {
	entries := fc.channels[channel]
	i := slices.IndexFunc(entries, func(e rendererEntry) bool { return e.handle == h })
	if i < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(entries), i, i+1)
	if len(next) == 0 {
		delete(fc.channels, channel)
	} else {
		fc.channels[channel] = next
	}
	return true
}

// HasRenderers reports whether any renderer serves channel.
func (fc *FrameContext) HasRenderers(channel string) bool {
	return len(fc.channels[channel]) > 0
}

// DisplayNode offers n to the renderers of rp.Channel, latest first, until
// one handles it. Returns false if none did.
func (fc *FrameContext) DisplayNode(n *Node, rp RenderParam) bool {
	if rp.Channel == "" {
		rp.Channel = ChannelDefault
	}
	entries := fc.channels[rp.Channel]
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].fn(fc, n, rp) == RendererHandled {
			return true
		}
	}
	return false
}

// TransparencyChannel returns the channel transparent nodes are
// redirected to.
func (fc *FrameContext) TransparencyChannel() string {
	return fc.transparencyChannel
}

// SetTransparencyChannel changes the channel transparent nodes are
// redirected to.
func (fc *FrameContext) SetTransparencyChannel(channel string) {
	fc.transparencyChannel = channel
}

// Camera returns the camera node of the frame, or nil.
func (fc *FrameContext) Camera() *Node {
	return fc.camera
}

// SetCamera sets the camera node and the viewport aspect ratio.
func (fc *FrameContext) SetCamera(camera *Node, aspect float64) {
	fc.camera = camera
	if aspect > 0 {
		fc.aspect = aspect
	}
}

// Aspect returns the viewport width/height ratio.
func (fc *FrameContext) Aspect() float64 {
	return fc.aspect
}

// BeginFrame resets the frame statistics.
func (fc *FrameContext) BeginFrame() {
	fc.stats = FrameStats{}
}

// EndFrame checks, in debug mode, that the backend's settings stacks were
// left balanced.
func (fc *FrameContext) EndFrame() {
	if !globalDebug {
		return
	}
	if b, ok := fc.rc.(interface{ Balanced() bool }); ok && !b.Balanced() {
		Logger().Warn("grove: rendering context not balanced at end of frame",
			slog.Int("nodes", fc.stats.NodesDisplayed))
	}
}

// Stats returns the counters for the current frame.
func (fc *FrameContext) Stats() FrameStats {
	return fc.stats
}

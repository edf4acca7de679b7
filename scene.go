package grove

import (
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// NodeEventType identifies a kind of tree event.
type NodeEventType uint8

const (
	NodeAdded       NodeEventType = iota // a node was added below the root
	NodeRemoved                          // a node was removed from below the root
	NodeTransformed                      // a node's relative transform changed
)

// String returns the event type name.
func (t NodeEventType) String() string {
	switch t {
	case NodeAdded:
		return "added"
	case NodeRemoved:
		return "removed"
	default:
		return "transformed"
	}
}

// NodeEvent describes a change to the scene tree.
type NodeEvent struct {
	Type     NodeEventType
	NodeID   uint32
	NodeName string
	// ParentID is the parent after an add and the former parent after a
	// removal; 0 for none.
	ParentID    uint32
	WorldOrigin mgl64.Vec3
}

// EntityStore is the interface for optional ECS integration. When set on a
// Scene, tree events are forwarded to it.
type EntityStore interface {
	EmitNodeEvent(event NodeEvent)
}

// Scene owns a node tree and the behaviours animating it.
type Scene struct {
	root       *Node
	behaviours *BehaviourManager
	config     SceneConfig
	camera     *Node
	debug      bool

	store        EntityStore
	storeHandles []ObserverHandle

	updateFunc func(now float64) error
}

// NewScene creates a scene with DefaultSceneConfig and an empty root.
func NewScene() *Scene {
	s, _ := NewSceneWithConfig(DefaultSceneConfig())
	return s
}

// NewSceneWithConfig creates a scene from cfg. The error wraps ErrConfig.
func NewSceneWithConfig(cfg SceneConfig) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		root:       NewListNode("root"),
		behaviours: NewBehaviourManager(cfg.BehaviorCapacity),
		config:     cfg,
	}
	debugMaxTreeDepth = cfg.MaxTreeDepth
	if cfg.Debug {
		s.SetDebugMode(true)
	}
	return s, nil
}

// Root returns the scene's root list node.
func (s *Scene) Root() *Node { return s.root }

// Behaviours returns the scene's behaviour manager.
func (s *Scene) Behaviours() *BehaviourManager { return s.behaviours }

// Config returns the scene configuration.
func (s *Scene) Config() SceneConfig { return s.config }

// Camera returns the camera node Display uses, or nil.
func (s *Scene) Camera() *Node { return s.camera }

// SetCamera sets the camera node Display uses.
func (s *Scene) SetCamera(camera *Node) { s.camera = camera }

// SetDebugMode enables or disables debug mode. When enabled, use of
// destroyed nodes panics, tree depth and child count warnings are logged,
// and per-frame timing stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// SetUpdateFunc sets a callback run at the start of every Update.
func (s *Scene) SetUpdateFunc(fn func(now float64) error) {
	s.updateFunc = fn
}

// SetEntityStore forwards tree events below the root to store. Passing
// nil stops forwarding.
func (s *Scene) SetEntityStore(store EntityStore) {
	for _, h := range s.storeHandles {
		s.root.RemoveObserver(h)
	}
	s.storeHandles = nil
	s.store = store
	if store == nil {
		return
	}
	s.storeHandles = append(s.storeHandles,
		s.root.AddNodeAddedObserver(func(n *Node) {
			store.EmitNodeEvent(newNodeEvent(NodeAdded, n, n.parent))
		}),
		s.root.AddNodeRemovedObserver(func(parent, n *Node) {
			store.EmitNodeEvent(newNodeEvent(NodeRemoved, n, parent))
		}),
		s.root.AddTransformationObserver(func(n *Node) {
			store.EmitNodeEvent(newNodeEvent(NodeTransformed, n, n.parent))
		}),
	)
}

func newNodeEvent(t NodeEventType, n, parent *Node) NodeEvent {
	e := NodeEvent{Type: t, NodeID: n.ID, NodeName: n.Name}
	if parent != nil {
		e.ParentID = parent.ID
	}
	if t != NodeRemoved {
		e.WorldOrigin = n.WorldOrigin()
	}
	return e
}

// Update runs the update callback and then one frame of behaviours at time
// now, in seconds.
func (s *Scene) Update(now float64) error {
	if s.updateFunc != nil {
		if err := s.updateFunc(now); err != nil {
			return err
		}
	}
	s.behaviours.ExecuteBehaviours(now)
	return nil
}

// NewFrameContext creates a frame context for rc configured for this
// scene.
func (s *Scene) NewFrameContext(rc RenderingContext) *FrameContext {
	fc := NewFrameContext(rc)
	fc.SetTransparencyChannel(s.config.TransparencyChannel)
	return fc
}

// Display draws the tree through fc from the scene camera.
func (s *Scene) Display(fc *FrameContext) {
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}
	if s.camera != nil {
		fc.SetCamera(s.camera, fc.Aspect())
	}
	fc.BeginFrame()
	rp := NewRenderParam()
	rp.Layers = s.config.RenderingLayers
	fc.DisplayNode(s.root, rp)
	fc.EndFrame()

	if s.debug {
		st := fc.Stats()
		Logger().Debug("grove: frame",
			slog.Duration("display", time.Since(t0)),
			slog.Int("nodes", st.NodesDisplayed),
			slog.Int("meshes", st.MeshesDisplayed),
			slog.Int("culled", st.NodesCulled),
			slog.Int("redirected", st.Redirected))
	}
}

// Destroy finalizes all behaviours and destroys the tree.
func (s *Scene) Destroy() {
	s.SetEntityStore(nil)
	s.behaviours.Clear()
	s.root.Destroy()
}

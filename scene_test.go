package grove

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	events []NodeEvent
}

func (l *eventLog) EmitNodeEvent(e NodeEvent) { l.events = append(l.events, e) }

func TestNewScene(t *testing.T) {
	s := NewScene()
	t.Cleanup(s.Destroy)
	require.NotNil(t, s.Root())
	assert.Equal(t, "root", s.Root().Name)
	assert.Equal(t, NodeTypeList, s.Root().Type)
	assert.NotNil(t, s.Behaviours())
	assert.Nil(t, s.Camera())
	assert.Equal(t, DefaultSceneConfig(), s.Config())
}

func TestNewSceneWithInvalidConfig(t *testing.T) {
	cfg := DefaultSceneConfig()
	cfg.RenderingLayers = 0
	_, err := NewSceneWithConfig(cfg)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestSceneEntityStoreEvents(t *testing.T) {
	s := NewScene()
	store := &eventLog{}
	s.SetEntityStore(store)

	a := NewListNode("a")
	a.SetRelPosition(mgl64.Vec3{1, 2, 3})
	s.Root().AddChild(a)
	a.MoveRel(mgl64.Vec3{1, 0, 0})
	s.Root().RemoveChild(a)

	require.Len(t, store.events, 3)
	added, moved, removed := store.events[0], store.events[1], store.events[2]
	assert.Equal(t, NodeAdded, added.Type)
	assert.Equal(t, a.ID, added.NodeID)
	assert.Equal(t, s.Root().ID, added.ParentID)
	requireVecNear(t, mgl64.Vec3{1, 2, 3}, added.WorldOrigin)
	assert.Equal(t, NodeTransformed, moved.Type)
	requireVecNear(t, mgl64.Vec3{2, 2, 3}, moved.WorldOrigin)
	assert.Equal(t, NodeRemoved, removed.Type)
	assert.Equal(t, "a", removed.NodeName)
	assert.Equal(t, s.Root().ID, removed.ParentID)
	assert.Equal(t, "removed", removed.Type.String())

	s.SetEntityStore(nil)
	s.Root().AddChild(NewListNode("b"))
	assert.Len(t, store.events, 3)
}

func TestSceneUpdate(t *testing.T) {
	s := NewScene()
	var order []string
	s.SetUpdateFunc(func(now float64) error {
		order = append(order, "update")
		return nil
	})
	s.Behaviours().StartNodeBehavior(BehaviorFunc(func(*BehaviorStatus) BehaviorResult {
		order = append(order, "behavior")
		return BehaviorContinue
	}), s.Root())

	require.NoError(t, s.Update(0))
	assert.Equal(t, []string{"update", "behavior"}, order)

	stop := errors.New("stop")
	s.SetUpdateFunc(func(float64) error { return stop })
	assert.ErrorIs(t, s.Update(1), stop)
	assert.Len(t, order, 2, "behaviours do not run after an update error")
}

func TestSceneDisplay(t *testing.T) {
	cfg := DefaultSceneConfig()
	cfg.RenderingLayers = 0b10
	cfg.TransparencyChannel = "GLASS"
	s, err := NewSceneWithConfig(cfg)
	require.NoError(t, err)

	shown := NewGeometryNode("shown", unitBoxMesh())
	shown.SetRenderingLayers(0b10)
	hidden := NewGeometryNode("hidden", unitBoxMesh())
	s.Root().SetRenderingLayers(0b11)
	s.Root().AddChild(shown)
	s.Root().AddChild(hidden)
	cam := NewCameraNode("cam", DefaultCameraParameters())
	cam.SetRelPosition(mgl64.Vec3{0, 0, 5})
	s.SetCamera(cam)

	rc := &recordingContext{}
	fc := s.NewFrameContext(rc)
	assert.Equal(t, "GLASS", fc.TransparencyChannel())
	s.Display(fc)
	assert.Equal(t, []*Mesh{shown.Mesh}, rc.drawnMeshes())
	assert.Same(t, cam, fc.Camera())
	assert.Equal(t, 1, fc.Stats().MeshesDisplayed)
}

func TestSceneDestroy(t *testing.T) {
	s := NewScene()
	child := NewGeometryNode("child", unitBoxMesh())
	s.Root().AddChild(child)
	b := &countingBehavior{}
	st := s.Behaviours().StartNodeBehavior(b, child)
	require.NoError(t, s.Update(0))

	s.Destroy()
	assert.True(t, st.IsFinished())
	assert.Equal(t, 1, b.finalized)
	assert.True(t, child.IsDestroyed())
	assert.True(t, s.Root().IsDestroyed())
}

func TestSceneDebugMode(t *testing.T) {
	withDebug(t)
	s := NewScene()
	s.SetDebugMode(false)
	assert.False(t, DebugMode())
	s.SetDebugMode(true)
	assert.True(t, DebugMode())
}

package grove

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureLog routes grove warnings into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func TestDebugDestroyedNodePanics(t *testing.T) {
	withDebug(t)
	n := NewListNode("gone")
	n.Destroy()
	assert.PanicsWithValue(t, `grove debug: AddChild (parent) on destroyed node "gone"`, func() {
		n.AddChild(NewListNode("x"))
	})
}

func TestDebugTreeDepthWarning(t *testing.T) {
	withDebug(t)
	buf := captureLog(t)
	prev := debugMaxTreeDepth
	debugMaxTreeDepth = 3
	t.Cleanup(func() { debugMaxTreeDepth = prev })

	n := NewListNode("n0")
	for i := range 3 {
		c := NewListNode("deep")
		n.AddChild(c)
		n = c
		if i < 2 {
			assert.Empty(t, buf.String())
		}
	}
	assert.Contains(t, buf.String(), "tree depth exceeds threshold")
	assert.Contains(t, buf.String(), "node=deep")
}

func TestDebugChildCountWarning(t *testing.T) {
	withDebug(t)
	buf := captureLog(t)
	root := NewListNode("wide")
	for range debugMaxChildCount + 1 {
		root.AddChild(NewListNode("c"))
	}
	assert.Contains(t, buf.String(), "node has many children")
}

func TestEndFrameWarnsWhenUnbalanced(t *testing.T) {
	withDebug(t)
	buf := captureLog(t)
	fc, rc := newTestFrame(t)
	fc.EndFrame()
	assert.Empty(t, buf.String())

	rc.PushAndSetMaterial(DefaultMaterial())
	fc.EndFrame()
	assert.Contains(t, buf.String(), "not balanced")
}

func TestLoggerDefaultsToSlog(t *testing.T) {
	SetLogger(nil)
	assert.Same(t, slog.Default(), Logger())
}

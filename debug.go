package grove

import (
	"fmt"
	"log/slog"
)

// globalDebug mirrors the most recently set debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// DefaultMaxTreeDepth is the default depth above which AddChild logs a
// warning in debug mode.
const DefaultMaxTreeDepth = 32

// debugMaxTreeDepth is the depth threshold in effect. Scene configuration
// may override it.
var debugMaxTreeDepth = DefaultMaxTreeDepth

// debugMaxChildCount is the child count above which AddChild logs a warning
// in debug mode.
const debugMaxChildCount = 1000

// SetDebugMode enables or disables debug checks globally. When enabled, use
// of destroyed nodes panics and tree depth and child count warnings are
// logged.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug checks are enabled.
func DebugMode() bool {
	return globalDebug
}

// debugCheckDestroyed panics with a descriptive message when a destroyed node
// is used. Callers skip this entirely outside debug mode.
func debugCheckDestroyed(n *Node, op string) {
	if n.status&statusDestroyed != 0 {
		panic(fmt.Sprintf("grove debug: %s on destroyed node %q", op, n.Name))
	}
}

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("grove: tree depth exceeds threshold",
			slog.Int("depth", depth),
			slog.Int("threshold", debugMaxTreeDepth),
			slog.String("node", n.Name))
	}
}

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("grove: node has many children",
			slog.String("node", n.Name),
			slog.Int("children", len(n.children)),
			slog.Int("threshold", debugMaxChildCount))
	}
}

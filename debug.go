package easel

import (
	"fmt"
	"sync/atomic"
)

var debugFlag atomic.Bool

func debugEnabled() bool { return debugFlag.Load() }

// logFrameStats writes the frame statistics at debug level.
func (c *Canvas) logFrameStats() {
	if !c.debug {
		return
	}
	st := c.Stats()
	Logger().Debug("easel: frame",
		"frame", st.Frame,
		"shapes", st.Shapes,
		"indexed", st.Indexed,
		"recomposed", st.Recomposed,
		"rendered", st.Rendered,
		"culled", st.Culled,
		"drawcalls", st.Batch.Drawcalls,
		"populated", st.Batch.Populated,
		"queued", st.Batch.Queued,
		"rebuilt", st.Batch.Rebuilt,
		"drawn", st.Batch.Drawn,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed shape
// is used in a tree operation. Only called in debug mode.
func debugCheckDisposed(s *Shape, op string) {
	if s.disposed {
		panic(fmt.Sprintf("easel debug: %s on disposed shape %q (ID was %d)", op, s.Name, s.ID))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(s *Shape) {
	depth := 0
	for p := s; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("easel: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "shape", s.Name)
	}
}

// debugCheckChildCount warns if a shape has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(s *Shape) {
	if len(s.children) > debugMaxChildCount {
		Logger().Warn("easel: child count exceeds threshold",
			"shape", s.Name, "children", len(s.children), "threshold", debugMaxChildCount)
	}
}

package easel

import (
	"strings"
	"testing"
)

func TestStatsText(t *testing.T) {
	st := FrameStats{
		Shapes:   12,
		Rendered: 9,
		Culled:   2,
		Batch:    BatchStats{Drawcalls: 5, Populated: 3, Rebuilt: 1, Drawn: 3},
	}
	got := statsText(59.94, 60, st)

	for _, want := range []string{
		"FPS: 59.9",
		"TPS: 60.0",
		"shapes: 12",
		"rendered: 9 culled: 2",
		"drawcalls: 3/5",
		"rebuilt: 1 drawn: 3",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("statsText missing %q in:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "\n"); n != 5 {
		t.Errorf("lines = %d, want 6", n+1)
	}
}

func TestStatsOverlayDrawWithoutUpdate(t *testing.T) {
	var o statsOverlay
	// Nothing has been rendered yet; draw must be a no-op.
	o.draw(nil)
}

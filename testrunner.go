package easel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// testStep is one scripted action. Coordinates are viewport pixels unless
// World is set, in which case they are mapped through the camera when the
// step runs.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	Shape  string  `json:"shape,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Steps  float64 `json:"steps,omitempty"`
	Frames int     `json:"frames,omitempty"`
	World  bool    `json:"world,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// scriptActions maps action names to their handlers.
var scriptActions = map[string]func(r *TestRunner, c *Canvas, st testStep){
	"screenshot": func(_ *TestRunner, c *Canvas, st testStep) { c.Screenshot(st.Label) },
	"click": func(_ *TestRunner, c *Canvas, st testStep) {
		x, y := st.point(c, st.X, st.Y)
		c.InjectClick(x, y)
	},
	"hover": func(_ *TestRunner, c *Canvas, st testStep) {
		x, y := st.point(c, st.X, st.Y)
		c.InjectHover(x, y)
	},
	"drag": func(_ *TestRunner, c *Canvas, st testStep) {
		fx, fy := st.point(c, st.FromX, st.FromY)
		tx, ty := st.point(c, st.ToX, st.ToY)
		c.InjectDrag(fx, fy, tx, ty, max(st.Frames, 2))
	},
	"wheel": func(_ *TestRunner, c *Canvas, st testStep) {
		x, y := st.point(c, st.X, st.Y)
		c.InjectWheel(x, y, st.Steps)
	},
	"wait": func(r *TestRunner, _ *Canvas, st testStep) {
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	},
	"expect": (*TestRunner).expect,
}

// point returns (x, y) in viewport pixels.
func (st testStep) point(c *Canvas, x, y float64) (float64, float64) {
	if st.World {
		return c.camera.WorldToViewport(x, y)
	}
	return x, y
}

func (st testStep) validate() error {
	if _, ok := scriptActions[st.Action]; !ok {
		return fmt.Errorf("unknown action %q", st.Action)
	}
	switch {
	case st.Frames < 0:
		return errors.New("negative frames")
	case st.Action == "wheel" && st.Steps == 0:
		return errors.New("wheel needs non-zero steps")
	}
	return nil
}

// TestRunner replays a JSON script of injected input, screenshots and pick
// expectations, one step per frame. Pass it to Run through RunConfig or call
// Step from a headless loop.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	failures  []string
}

// LoadTestScript parses and validates a JSON test script. Supported actions:
// click, hover, drag, wheel, wait, screenshot and expect. An expect step
// picks at (x, y) and records a failure unless the topmost shape is named
// shape; an empty shape expects a miss.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("parse test script: step %d: %w", i, err)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// Done reports whether every step has run and its injections drained.
func (r *TestRunner) Done() bool {
	return r.done
}

// Failures returns the messages of failed expect steps, in order.
func (r *TestRunner) Failures() []string {
	return r.failures
}

// Step advances the runner by one frame. Run calls it before input
// processing.
func (r *TestRunner) Step(c *Canvas) {
	if r.done || c.PendingInjected() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor < len(r.steps) {
		st := r.steps[r.cursor]
		r.cursor++
		scriptActions[st.Action](r, c, st)
	}
	if r.cursor >= len(r.steps) && r.waitCount == 0 && c.PendingInjected() == 0 {
		r.done = true
	}
}

func (r *TestRunner) expect(c *Canvas, st testStep) {
	x, y := st.point(c, st.X, st.Y)
	var got string
	if s := c.Pick(x, y); s != nil {
		got = s.Name
	}
	if got == st.Shape {
		return
	}
	msg := fmt.Sprintf("step %d: pick (%g, %g) = %q, want %q", r.cursor-1, st.X, st.Y, got, st.Shape)
	r.failures = append(r.failures, msg)
	Logger().Warn("easel: test script expectation failed", "step", r.cursor-1, "got", got, "want", st.Shape)
}

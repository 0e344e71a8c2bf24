package graphcanvas

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in an input script.
type scriptStep struct {
	Action string  `json:"action"`
	Button string  `json:"button,omitempty"`
	Key    string  `json:"key,omitempty"`
	Name   string  `json:"name,omitempty"`
	Value  float64 `json:"value,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

// InputScript sequences injected input across frames for automated
// end-to-end testing. Attach to a Canvas with SetInputScript.
//
// Supported actions: press, release, move, click, drag, key, wheel,
// manual, wait. Button names default to LeftMouseButton.
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

var scriptActions = map[string]bool{
	"press": true, "release": true, "move": true, "click": true, "drag": true,
	"key": true, "wheel": true, "manual": true, "wait": true,
}

// LoadInputScript parses a JSON input script.
func LoadInputScript(jsonData []byte) (*InputScript, error) {
	var script inputScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i, st := range script.Steps {
		if !scriptActions[st.Action] {
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
		if (st.Action == "key" && st.Key == "") || (st.Action == "manual" && st.Name == "") {
			return nil, fmt.Errorf("parse input script: step %d: %s needs a name", i, st.Action)
		}
	}
	return &InputScript{steps: script.Steps}, nil
}

// SetInputScript attaches a script to the canvas. Its steps run from
// Canvas.Update before input processing.
func (c *Canvas) SetInputScript(script *InputScript) {
	c.script = script
}

// Done reports whether all steps have been executed.
func (r *InputScript) Done() bool {
	return r.done
}

func (st scriptStep) button() Key {
	if st.Button == "" {
		return KeyLeftMouseButton
	}
	return Key(st.Button)
}

// step advances the script by one frame.
func (r *InputScript) step(c *Canvas) {
	if r.done {
		return
	}
	if len(c.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "press":
		c.InjectButtonPress(st.button(), st.X, st.Y)
	case "release":
		c.InjectButtonRelease(st.button(), st.X, st.Y)
	case "move":
		c.InjectMove(st.X, st.Y)
	case "click":
		c.InjectButtonPress(st.button(), st.X, st.Y)
		c.InjectButtonRelease(st.button(), st.X, st.Y)
	case "drag":
		c.InjectButtonDrag(st.button(), st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "key":
		c.InjectKey(Key(st.Key))
	case "wheel":
		c.InjectWheel(st.X, st.Y, st.Delta)
	case "manual":
		c.TriggerManual(nil, st.Name, st.Value)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(c.injectQueue) == 0 {
		r.done = true
	}
}

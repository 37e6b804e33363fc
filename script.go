package canopy

import (
	"encoding/json"
	"fmt"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `json:"action"`
	Device int     `json:"device,omitempty"`
	Button int     `json:"button,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Steps  int     `json:"steps,omitempty"`
	Key    string  `json:"key,omitempty"`
	Text   string  `json:"text,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Frames int     `json:"frames,omitempty"`

	key Key
}

// inputScript is the top-level JSON structure.
type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

// InputScript replays scripted input into a HeadlessWindow, one step per
// tick. Actions: move, press, release, click, drag, wheel, keydown, keyup,
// text, resize, deactivate, close and wait. Positions are window points;
// a wheel step reads its scroll delta from x and y.
type InputScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadInputScript parses and validates a JSON input script.
func LoadInputScript(data []byte) (*InputScript, error) {
	var script inputScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse input script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse input script: no steps")
	}
	for i := range script.Steps {
		st := &script.Steps[i]
		switch st.Action {
		case "move", "press", "release", "click", "drag", "wheel", "text",
			"resize", "deactivate", "close", "wait":
		case "keydown", "keyup":
			if err := st.key.UnmarshalText([]byte(st.Key)); err != nil {
				return nil, fmt.Errorf("parse input script: step %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &InputScript{steps: script.Steps}, nil
}

// Done reports whether every step has been executed.
func (s *InputScript) Done() bool {
	return s.done
}

// Step executes the next action against w. A wait step holds the script
// for its frame count.
func (s *InputScript) Step(w *HeadlessWindow) {
	if s.done {
		return
	}
	if s.waitCount > 0 {
		s.waitCount--
		return
	}
	if s.cursor >= len(s.steps) {
		s.done = true
		return
	}

	st := s.steps[s.cursor]
	s.cursor++

	at := Vec2{st.X, st.Y}
	switch st.Action {
	case "move":
		w.InjectMove(st.Device, at)
	case "press":
		w.InjectPress(st.Device, MouseButton(st.Button), at)
	case "release":
		w.InjectRelease(st.Device, MouseButton(st.Button), at)
	case "click":
		w.InjectClick(st.Device, at)
	case "drag":
		w.InjectDrag(st.Device, Vec2{st.FromX, st.FromY}, Vec2{st.ToX, st.ToY}, st.Steps)
	case "wheel":
		w.InjectWheel(st.Device, at)
	case "keydown":
		w.InjectKeyDown(st.Device, st.key)
	case "keyup":
		w.InjectKeyUp(st.Device, st.key)
	case "text":
		w.InjectText(st.Device, st.Text)
	case "resize":
		w.Resize(st.Width, st.Height)
	case "deactivate":
		w.Deactivate()
	case "close":
		w.Close()
	case "wait":
		if st.Frames > 0 {
			s.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if s.cursor >= len(s.steps) && s.waitCount == 0 {
		s.done = true
	}
}

// Run plays the whole script, stepping h once after every action.
func (s *InputScript) Run(h *Host, w *HeadlessWindow) error {
	for !s.done {
		s.Step(w)
		if err := h.Step(); err != nil {
			return err
		}
	}
	return nil
}

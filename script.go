package plotui

import (
	"encoding/json"
	"fmt"
	"strings"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
	From   float64 `json:"from,omitempty"`
	To     float64 `json:"to,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Key    string  `json:"key,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Index  int     `json:"index,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// script is the top-level JSON structure of an input script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected input across Session updates for
// reproducible multi-frame scenarios. Attach with Session.SetScript.
//
// Actions: click, drag, wheel, pinch, key, wait, expr (set function
// Index's expression to Text), slider (add a slider), animate (toggle
// slider Index).
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// scriptKeys maps script key names to engine key codes.
var scriptKeys = map[string]Key{
	"left": KeyLeft, "right": KeyRight, "up": KeyUp, "down": KeyDown,
	"-": KeyMinus, "=": KeyEquals, "+": KeyEquals,
	"0": Key0, "e": KeyE, "h": KeyH, "o": KeyO, "p": KeyP,
}

// LoadScript parses a JSON input script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("plotui: parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("plotui: parse script: no steps")
	}
	for i, st := range sc.Steps {
		switch st.Action {
		case "click", "drag", "wheel", "pinch", "wait", "expr", "slider", "animate":
		case "key":
			if _, ok := scriptKeys[strings.ToLower(st.Key)]; !ok {
				return nil, fmt.Errorf("plotui: parse script: step %d: unknown key %q", i, st.Key)
			}
		default:
			return nil, fmt.Errorf("plotui: parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: sc.Steps}, nil
}

// SetScript attaches a runner. Its steps run from Session.Update, one per
// update once the injected-event queue has drained.
func (s *Session) SetScript(r *ScriptRunner) {
	s.script = r
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Errors returns the errors returned by expr, slider and animate steps.
func (r *ScriptRunner) Errors() []error {
	return r.errs
}

// step advances the runner by one update.
func (r *ScriptRunner) step(s *Session) {
	if r.done {
		return
	}
	if len(s.injectQueue) > 0 {
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
	case "click":
		s.InjectClick(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wheel":
		s.InjectWheel(st.X, st.Y, st.Delta)
	case "pinch":
		s.InjectPinch(st.X, st.Y, st.From, st.To, st.Frames)
	case "key":
		var mods KeyModifiers
		if st.Ctrl {
			mods |= ModCtrl
		}
		s.InjectKey(scriptKeys[strings.ToLower(st.Key)], mods)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1
		}
	case "expr":
		e, ok := s.functions.Registry().At(st.Index)
		if !ok {
			r.errs = append(r.errs, fmt.Errorf("script expr: function %d: %w", st.Index, ErrNotFound))
			break
		}
		if err := s.functions.SetExpr(e.ID, st.Text); err != nil {
			r.errs = append(r.errs, err)
		}
	case "slider":
		if _, err := s.sliders.Add(); err != nil {
			r.errs = append(r.errs, err)
		}
	case "animate":
		e, ok := s.sliders.Registry().At(st.Index)
		if !ok {
			r.errs = append(r.errs, fmt.Errorf("script animate: slider %d: %w", st.Index, ErrNotFound))
			break
		}
		if _, err := s.sliders.ToggleAnimation(e.ID); err != nil {
			r.errs = append(r.errs, err)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(s.injectQueue) == 0 {
		r.done = true
	}
}

package plotui

import (
	"fmt"
	"io"
)

// Status is the last user-facing outcome of an import, export or save.
type Status struct {
	Message string
	Err     error
}

// Session is the top-level object a host drives. It owns the gesture
// normalizer, redraw scheduler, function and slider lists, view controls and
// marker overlay for one engine. A Session is not safe for concurrent use;
// hosts call every method from one goroutine.
type Session struct {
	engine Engine
	cfg    Config
	debug  bool

	gestures  *GestureNormalizer
	scheduler *RenderScheduler
	functions *FunctionList
	sliders   *SliderList
	view      *ViewController
	marker    *MarkerOverlay

	injectQueue []syntheticEvent
	script      *ScriptRunner
	status      Status
	lastFrames  int
}

// NewSession wires a session to engine. coords maps host document
// coordinates to canvas pixels; frames delivers redraw callbacks.
func NewSession(engine Engine, coords CoordinateTranslator, frames FrameSource, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Session{engine: engine, cfg: cfg}
	s.scheduler = NewRenderScheduler(engine, frames, s.animating, cfg.Render.FrameBudget)
	s.gestures = NewGestureNormalizer(coords, cfg.Gesture.PinchGain)
	s.functions = NewFunctionList(engine, s.scheduler, cfg.Functions.MaxEntities)
	s.sliders = NewSliderList(engine, s.scheduler, cfg.Sliders.MaxEntities)
	s.view = NewViewController(engine, s.scheduler, cfg.Gesture)
	s.marker = NewMarkerOverlay(cfg.Marker)

	if rs, ok := engine.(MarkerRadiusSetter); ok && cfg.Marker.ClickableRadius > 0 {
		rs.SetMarkerClickableRadius(cfg.Marker.ClickableRadius)
	}

	s.gestures.OnWheel(func(ev NormalizedWheelEvent) {
		s.view.Wheel(ev)
		s.syncMarker()
	})
	s.gestures.OnPointer(func(ev PointerEvent) {
		s.view.Pointer(ev)
		s.syncMarker()
	})

	s.Resync()
	return s, nil
}

// Engine returns the engine the session drives.
func (s *Session) Engine() Engine { return s.engine }

// Config returns the session's configuration.
func (s *Session) Config() Config { return s.cfg }

// Gestures returns the input normalizer. Hosts may register extra handlers.
func (s *Session) Gestures() *GestureNormalizer { return s.gestures }

// Scheduler returns the redraw scheduler.
func (s *Session) Scheduler() *RenderScheduler { return s.scheduler }

// Functions returns the function list.
func (s *Session) Functions() *FunctionList { return s.functions }

// Sliders returns the slider list.
func (s *Session) Sliders() *SliderList { return s.sliders }

// View returns the view controls.
func (s *Session) View() *ViewController { return s.view }

// Marker returns the hover marker overlay.
func (s *Session) Marker() *MarkerOverlay { return s.marker }

// Status returns the outcome of the last import, export or save.
func (s *Session) Status() Status { return s.status }

// SetDebugMode enables per-frame stats logging and registry invariant checks
// at debug level.
func (s *Session) SetDebugMode(enabled bool) {
	s.debug = enabled
	s.scheduler.debug = enabled
}

// animating keeps the redraw loop alive past its frame budget.
func (s *Session) animating() bool {
	return s.engine.AnySliderAnimating() || s.marker.Fading()
}

// Handle feeds one raw input event through the gesture normalizer. It
// reports whether the event was accepted.
func (s *Session) Handle(ev RawEvent) bool {
	return s.gestures.Handle(ev)
}

// HandleKey forwards a key press to the engine.
func (s *Session) HandleKey(k Key, mods KeyModifiers) {
	s.view.Key(k, mods)
	if k == KeyE {
		s.functions.FocusEditor()
	}
	s.syncMarker()
}

// Resize tells the engine the canvas is now width x height pixels.
func (s *Session) Resize(width, height int) {
	s.view.Resize(width, height)
}

// Update advances one host tick: it runs the attached script, consumes one
// injected event, advances the marker fade and polls animated sliders. dt
// is the tick length in seconds.
func (s *Session) Update(dt float32) {
	if s.script != nil {
		s.script.step(s)
	}
	s.processInjectedInput()
	s.marker.Update(dt)
	if s.sliders.Animating() {
		s.sliders.Poll()
	}
	s.functions.PollError()
	if s.debug {
		s.debugLog()
	}
}

// Resync rebuilds every local mirror from the engine.
func (s *Session) Resync() {
	s.functions.Resync()
	s.sliders.Resync()
	s.view.Sync()
	s.syncMarker()
	s.scheduler.RequestRedraw()
}

// syncMarker polls the engine's marker into the overlay.
func (s *Session) syncMarker() {
	x, y := s.engine.MarkerPosition()
	if s.marker.Sync(s.engine.MarkerText(), x, y) {
		s.scheduler.RequestRedraw()
	}
}

// ExportState returns the engine's state blob.
func (s *Session) ExportState() string {
	return s.engine.ExportState()
}

// Export writes the engine's state blob to w.
func (s *Session) Export(w io.Writer) error {
	blob := s.engine.ExportState()
	if _, err := io.WriteString(w, blob); err != nil {
		s.setStatus("Export failed", err)
		return fmt.Errorf("plotui: export: %w", err)
	}
	Logger().Info("state exported", "bytes", len(blob))
	s.setStatus("Exported", nil)
	return nil
}

// Import reads a state blob from r and loads it. On any failure the engine
// and the local lists are left as they were.
func (s *Session) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		err = fmt.Errorf("%w: read: %w", ErrImport, err)
		s.setStatus("Import failed", err)
		return err
	}
	return s.ImportState(string(data))
}

// ImportState validates blob and hands it to the engine, then resyncs.
func (s *Session) ImportState(blob string) error {
	if err := ValidateBlob([]byte(blob)); err != nil {
		s.setStatus("Invalid JSON", err)
		return err
	}
	if err := s.engine.ImportState(blob); err != nil {
		err = fmt.Errorf("%w: %w", ErrImport, err)
		s.setStatus(err.Error(), err)
		return err
	}
	s.Resync()
	Logger().Info("state imported", "bytes", len(blob))
	s.setStatus("Imported", nil)
	return nil
}

// Save stores the current state in a new slot.
func (s *Session) Save(slots *SaveSlots) (int, error) {
	i, err := slots.Save(s.engine.ExportState())
	if err != nil {
		s.setStatus("Save failed", err)
		return 0, err
	}
	s.setStatus(fmt.Sprintf("Saved to slot %d", i), nil)
	return i, nil
}

// Load imports the state in slot i.
func (s *Session) Load(slots *SaveSlots, i int) error {
	blob, err := slots.Load(i)
	if err != nil {
		s.setStatus("Load failed", err)
		return err
	}
	return s.ImportState(blob)
}

func (s *Session) setStatus(msg string, err error) {
	s.status = Status{Message: msg, Err: err}
}

package plotui

import "fmt"

// SliderItem is the view model of one slider row.
type SliderItem struct {
	ID      LocalID
	Var     string
	Value   float64
	Bounds  Range
	AnimDir int // -1, 0 or 1; non-zero while the engine animates the value
}

// Animating reports whether the engine is sweeping this slider.
func (s SliderItem) Animating() bool { return s.AnimDir != 0 }

// SliderList binds the engine's slider list to a registry.
type SliderList struct {
	engine SliderEngine
	reg    *Registry[*SliderItem]
	redraw RedrawRequester
	err    string
}

// NewSliderList creates a list over engine. maxSliders 0 leaves the limit to
// the engine.
func NewSliderList(engine SliderEngine, redraw RedrawRequester, maxSliders int) *SliderList {
	s := &SliderList{engine: engine, redraw: redraw}
	s.reg = NewRegistry[*SliderItem](sliderEntities{engine}, WidgetFuncs[*SliderItem]{
		Create: func(id LocalID, _ int) *SliderItem { return &SliderItem{ID: id} },
	}, redraw, RegistryOptions{Name: "sliders", MaxEntities: maxSliders})
	return s
}

// Registry exposes the underlying registry.
func (s *SliderList) Registry() *Registry[*SliderItem] { return s.reg }

// Len returns the number of sliders.
func (s *SliderList) Len() int { return s.reg.Len() }

// Items returns a snapshot of every slider in engine order.
func (s *SliderList) Items() []SliderItem {
	out := make([]SliderItem, 0, s.reg.Len())
	for _, e := range s.reg.Entities() {
		out = append(out, *e.Widget)
	}
	return out
}

// Item returns the slider for id.
func (s *SliderList) Item(id LocalID) (SliderItem, bool) {
	e, ok := s.reg.ByLocalID(id)
	if !ok {
		return SliderItem{}, false
	}
	return *e.Widget, true
}

// Resync discards local rows and rebuilds them from the engine.
func (s *SliderList) Resync() {
	s.reg.Reset()
	s.reg.Adopt()
	s.Poll()
	s.err = s.engine.SliderError()
}

// Add appends a slider with the engine's default variable and bounds.
func (s *SliderList) Add() (LocalID, error) {
	id, err := s.reg.Append()
	if err != nil {
		return 0, err
	}
	s.refresh(s.reg.Len() - 1)
	s.err = s.engine.SliderError()
	return id, nil
}

// Remove deletes a slider.
func (s *SliderList) Remove(id LocalID) error {
	if err := s.reg.Remove(id); err != nil {
		return err
	}
	s.err = s.engine.SliderError()
	return nil
}

// Move reorders a slider.
func (s *SliderList) Move(from, to int) error {
	return s.reg.Reorder(from, to)
}

// SetVar renames the slider's variable. The engine validates the name; see
// Error.
func (s *SliderList) SetVar(id LocalID, name string) error {
	i, err := s.reg.IndexOf(id)
	if err != nil {
		return err
	}
	s.engine.SetSliderVar(i, name)
	s.refresh(i)
	s.err = s.engine.SliderError()
	s.requestRedraw()
	return nil
}

// SetValue moves the slider.
func (s *SliderList) SetValue(id LocalID, v float64) error {
	i, err := s.reg.IndexOf(id)
	if err != nil {
		return err
	}
	if !finite(v) {
		return fmt.Errorf("sliders %d: value %v: %w", id, v, ErrInvalidRange)
	}
	s.engine.SetSliderValue(i, v)
	s.refresh(i)
	s.requestRedraw()
	return nil
}

// SetBounds changes the slider range.
func (s *SliderList) SetBounds(id LocalID, r Range) error {
	i, err := s.reg.IndexOf(id)
	if err != nil {
		return err
	}
	if !r.Valid() {
		return fmt.Errorf("sliders %d: bounds [%v, %v]: %w", id, r.Min, r.Max, ErrInvalidRange)
	}
	s.engine.SetSliderBounds(i, r.Min, r.Max)
	s.refresh(i)
	s.requestRedraw()
	return nil
}

// ToggleAnimation starts or stops the engine sweeping the slider between
// its bounds. It returns whether the slider is now animating.
func (s *SliderList) ToggleAnimation(id LocalID) (bool, error) {
	i, err := s.reg.IndexOf(id)
	if err != nil {
		return false, err
	}
	if s.engine.SliderAnimationDir(i) != 0 {
		s.engine.EndSliderAnimation(i)
	} else {
		s.engine.BeginSliderAnimation(i)
	}
	s.refresh(i)
	s.requestRedraw()
	e, _ := s.reg.At(i)
	return e.Widget.Animating(), nil
}

// Animating reports whether any slider is animating.
func (s *SliderList) Animating() bool { return s.engine.AnySliderAnimating() }

// Poll re-reads every slider from the engine. Call it each frame while
// animating so values track the engine.
func (s *SliderList) Poll() {
	for i := range s.reg.Len() {
		s.refresh(i)
	}
}

// Error returns the last polled slider error.
func (s *SliderList) Error() string { return s.err }

func (s *SliderList) refresh(i int) {
	e, ok := s.reg.At(i)
	if !ok {
		return
	}
	_ = s.reg.Refresh(e.ID)
	it := e.Widget
	it.Var = s.engine.SliderVar(i)
	it.Value = s.engine.SliderValue(i)
	lo, hi := s.engine.SliderBounds(i)
	it.Bounds = Range{lo, hi}
	it.AnimDir = s.engine.SliderAnimationDir(i)
}

func (s *SliderList) requestRedraw() {
	if s.redraw != nil {
		s.redraw.RequestRedraw()
	}
}

package plotui

import (
	"fmt"
	"math"
)

// ViewController forwards canonical gestures and keys to the engine's
// viewport and mirrors its bounds and grid mode.
type ViewController struct {
	engine ViewEngine
	redraw RedrawRequester
	cfg    GestureConfig

	bounds   ViewBounds
	polar    bool
	dragging bool
}

// NewViewController creates a controller. cfg supplies the zoom scales.
func NewViewController(engine ViewEngine, redraw RedrawRequester, cfg GestureConfig) *ViewController {
	v := &ViewController{engine: engine, redraw: redraw, cfg: cfg}
	v.Sync()
	return v
}

// Bounds returns the last synced view bounds.
func (v *ViewController) Bounds() ViewBounds { return v.bounds }

// Polar reports whether the polar grid is shown.
func (v *ViewController) Polar() bool { return v.polar }

// Dragging reports whether a primary-button drag is in progress.
func (v *ViewController) Dragging() bool { return v.dragging }

// Sync re-reads bounds and grid mode from the engine.
func (v *ViewController) Sync() {
	v.bounds = v.engine.View()
	v.polar = v.engine.PolarGrid()
}

// ZoomDistance converts a canonical delta to the engine's zoom distance.
func (v *ViewController) ZoomDistance(ev NormalizedWheelEvent) float64 {
	scale := v.cfg.WheelZoomScale
	if ev.Source == WheelPinch {
		scale = v.cfg.TouchZoomScale
	}
	return math.Max(math.Abs(ev.Delta)*scale, v.cfg.MinZoomDistance)
}

// Wheel zooms around the event's focal point. Negative deltas zoom in.
func (v *ViewController) Wheel(ev NormalizedWheelEvent) {
	if ev.Delta == 0 || !finite(ev.Delta) {
		return
	}
	v.engine.Wheel(ev.Delta < 0, v.ZoomDistance(ev), ev.FocalX, ev.FocalY)
	v.Sync()
	v.requestRedraw()
}

// Pointer forwards a primary-button pointer event. Other buttons are
// ignored.
func (v *ViewController) Pointer(ev PointerEvent) {
	if ev.Button != MouseButtonLeft {
		return
	}
	switch ev.Phase {
	case PointerDown:
		v.dragging = true
		v.engine.PointerDown(ev.X, ev.Y)
	case PointerMove:
		v.engine.PointerMove(ev.X, ev.Y)
		if !v.dragging {
			return
		}
	case PointerUp:
		v.dragging = false
		v.engine.PointerUp(ev.X, ev.Y)
	}
	v.Sync()
	v.requestRedraw()
}

// Key forwards a key press.
func (v *ViewController) Key(k Key, mods KeyModifiers) {
	v.engine.Key(k, mods)
	v.Sync()
	v.requestRedraw()
}

// SetBounds sets the view. Each axis must be a finite, non-empty interval.
func (v *ViewController) SetBounds(b ViewBounds) error {
	if !b.Valid() {
		return fmt.Errorf("view [%v, %v]x[%v, %v]: %w", b.XMin, b.XMax, b.YMin, b.YMax, ErrInvalidRange)
	}
	v.engine.SetView(b)
	v.Sync()
	v.requestRedraw()
	return nil
}

// Reset restores the engine's default view.
func (v *ViewController) Reset() {
	v.engine.ResetView()
	v.Sync()
	v.requestRedraw()
}

// SetPolar switches between polar and cartesian grids.
func (v *ViewController) SetPolar(on bool) {
	if on == v.polar {
		return
	}
	v.engine.SetPolarGrid(on)
	v.Sync()
	v.requestRedraw()
}

// TogglePolar flips the grid mode.
func (v *ViewController) TogglePolar() { v.SetPolar(!v.polar) }

// Resize tells the engine the canvas size changed.
func (v *ViewController) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.engine.Resize(width, height)
	v.Sync()
	v.requestRedraw()
}

func (v *ViewController) requestRedraw() {
	if v.redraw != nil {
		v.redraw.RequestRedraw()
	}
}

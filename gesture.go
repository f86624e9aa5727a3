package plotui

import (
	"fmt"
	"math"
)

// --- Raw input ---

// WheelSource identifies which class of raw wheel input produced an event.
type WheelSource uint8

const (
	WheelStandard         WheelSource = iota // DOM "wheel": DeltaY in DeltaMode units
	WheelLegacyMouseWheel                    // legacy "mousewheel": WheelDelta, 120 per notch
	WheelLegacyDOMScroll                     // legacy "DOMMouseScroll": Detail, 3 per notch
	WheelPinch                               // synthesized from a two-finger pinch
)

func (s WheelSource) String() string {
	switch s {
	case WheelStandard:
		return "wheel"
	case WheelLegacyMouseWheel:
		return "mousewheel"
	case WheelLegacyDOMScroll:
		return "DOMMouseScroll"
	case WheelPinch:
		return "pinch"
	}
	return fmt.Sprintf("WheelSource(%d)", uint8(s))
}

// DeltaMode is the unit of a standard wheel event's DeltaY.
type DeltaMode uint8

const (
	DeltaPixel DeltaMode = 0
	DeltaLine  DeltaMode = 1
	DeltaPage  DeltaMode = 2
)

// RawWheelEvent is a wheel event as delivered by a host. Only the fields of
// its Source class are read. X and Y are in document space, except for
// WheelPinch where they are the already canvas-local focal point.
type RawWheelEvent struct {
	Source     WheelSource
	DeltaY     float64
	DeltaMode  DeltaMode
	WheelDelta float64
	Detail     float64
	Delta      float64
	X, Y       float64
}

// NormalizedWheelEvent is the single canonical wheel form. Delta is in lines
// (one notch of a traditional wheel is about 1.0); positive means scroll
// down, i.e. zoom out. FocalX/FocalY are canvas-local pixels.
type NormalizedWheelEvent struct {
	Delta          float64
	FocalX, FocalY float64
	Source         WheelSource
}

// Touch is one active touch point in document space.
type Touch struct {
	ID           int
	PageX, PageY float64
}

// RawEventKind tags a RawEvent.
type RawEventKind uint8

const (
	RawWheel RawEventKind = iota + 1
	RawTouchStart
	RawTouchMove
	RawTouchEnd
	RawMouseDown
	RawMouseMove
	RawMouseUp
)

// RawEvent is the host-facing union of every input shape the normalizer
// accepts. Hosts that prefer direct calls use Wheel, TouchStart and friends.
type RawEvent struct {
	Kind         RawEventKind
	Wheel        RawWheelEvent
	Touches      []Touch
	PageX, PageY float64
	Button       MouseButton
}

// GestureState is the touch state machine's current state.
type GestureState uint8

const (
	GestureIdle GestureState = iota
	GestureSingleTouch
	GesturePinchTracking
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureSingleTouch:
		return "single-touch"
	case GesturePinchTracking:
		return "pinch"
	}
	return "unknown"
}

// GestureStats counts what the normalizer did with its input.
type GestureStats struct {
	Wheels   int // wheel events emitted (including pinch)
	Pointers int // pointer events emitted
	Dropped  int // raw events rejected at the boundary
}

// --- Handler registry ---

type wheelHandler struct {
	id uint32
	fn func(NormalizedWheelEvent)
}

type pointerHandler struct {
	id uint32
	fn func(PointerEvent)
}

type handlerRegistry struct {
	wheel   []wheelHandler
	pointer []pointerHandler
	nextID  uint32
}

type handlerKind uint8

const (
	handlerWheel handlerKind = iota
	handlerPointer
)

// CallbackHandle allows removing a registered gesture callback.
type CallbackHandle struct {
	id   uint32
	reg  *handlerRegistry
	kind handlerKind
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.kind {
	case handlerWheel:
		for i := range h.reg.wheel {
			if h.reg.wheel[i].id == h.id {
				h.reg.wheel = append(h.reg.wheel[:i], h.reg.wheel[i+1:]...)
				return
			}
		}
	case handlerPointer:
		for i := range h.reg.pointer {
			if h.reg.pointer[i].id == h.id {
				h.reg.pointer = append(h.reg.pointer[:i], h.reg.pointer[i+1:]...)
				return
			}
		}
	}
}

// --- Normalizer ---

// GestureNormalizer turns wheel, touch and mouse input into canonical wheel
// and pointer events.
type GestureNormalizer struct {
	coords    CoordinateTranslator
	pinchGain float64
	handlers  handlerRegistry

	state      GestureState
	touchCount int
	firstTouch int // ID of the touch that started a single-touch gesture
	refDist    float64
	focal      Vec2
	focusFirst bool
	last       Vec2 // last canvas position forwarded as a pointer event

	stats GestureStats
}

// NewGestureNormalizer creates a normalizer translating coordinates through
// coords. pinchGain <= 0 selects DefaultPinchGain.
func NewGestureNormalizer(coords CoordinateTranslator, pinchGain float64) *GestureNormalizer {
	if pinchGain <= 0 {
		pinchGain = DefaultPinchGain
	}
	return &GestureNormalizer{coords: coords, pinchGain: pinchGain}
}

// OnWheel registers a callback for canonical wheel events.
func (g *GestureNormalizer) OnWheel(fn func(NormalizedWheelEvent)) CallbackHandle {
	g.handlers.nextID++
	id := g.handlers.nextID
	g.handlers.wheel = append(g.handlers.wheel, wheelHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &g.handlers, kind: handlerWheel}
}

// OnPointer registers a callback for canonical pointer events.
func (g *GestureNormalizer) OnPointer(fn func(PointerEvent)) CallbackHandle {
	g.handlers.nextID++
	id := g.handlers.nextID
	g.handlers.pointer = append(g.handlers.pointer, pointerHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &g.handlers, kind: handlerPointer}
}

// State returns the touch state machine's current state.
func (g *GestureNormalizer) State() GestureState { return g.state }

// ReferenceDistance returns the finger distance at the last pinch sample,
// or 0 when not pinching.
func (g *GestureNormalizer) ReferenceDistance() float64 { return g.refDist }

// FocalPoint returns the pinned pinch focal point in canvas pixels.
func (g *GestureNormalizer) FocalPoint() Vec2 { return g.focal }

// FocusFirstTouch reports whether the current pinch grew from a single touch.
func (g *GestureNormalizer) FocusFirstTouch() bool { return g.focusFirst }

// Stats returns event counters.
func (g *GestureNormalizer) Stats() GestureStats { return g.stats }

// NormalizeWheel decodes a raw wheel event into canonical form without
// emitting it.
func (g *GestureNormalizer) NormalizeWheel(ev RawWheelEvent) (NormalizedWheelEvent, error) {
	out := NormalizedWheelEvent{Source: ev.Source}
	switch ev.Source {
	case WheelLegacyMouseWheel:
		out.Delta = ev.WheelDelta / 120
	case WheelLegacyDOMScroll:
		out.Delta = ev.Detail / 3
	case WheelStandard:
		d := ev.DeltaY
		switch ev.DeltaMode {
		case DeltaPixel:
			d /= 100
		case DeltaLine:
			d /= 3
		case DeltaPage:
			d *= 80
		default:
			return NormalizedWheelEvent{}, fmt.Errorf("%w: %d", ErrUnsupportedDeltaMode, ev.DeltaMode)
		}
		out.Delta = d
	case WheelPinch:
		out.Delta = ev.Delta
		out.FocalX, out.FocalY = ev.X, ev.Y
		return out, nil
	default:
		return NormalizedWheelEvent{}, fmt.Errorf("%w: wheel source %v", ErrMalformedGestureEvent, ev.Source)
	}
	out.FocalX, out.FocalY = toCanvas(g.coords, ev.X, ev.Y)
	return out, nil
}

// Wheel normalizes a raw wheel event and emits it.
func (g *GestureNormalizer) Wheel(ev RawWheelEvent) error {
	n, err := g.NormalizeWheel(ev)
	if err != nil {
		return err
	}
	g.fireWheel(n)
	return nil
}

// Handle is the error-swallowing boundary hosts feed raw events through.
// It reports whether the event was accepted; rejected events are counted
// and logged, never propagated.
func (g *GestureNormalizer) Handle(ev RawEvent) bool {
	var err error
	switch ev.Kind {
	case RawWheel:
		err = g.Wheel(ev.Wheel)
	case RawTouchStart:
		g.TouchStart(ev.Touches)
	case RawTouchMove:
		g.TouchMove(ev.Touches)
	case RawTouchEnd:
		g.TouchEnd()
	case RawMouseDown:
		g.MouseDown(ev.PageX, ev.PageY, ev.Button)
	case RawMouseMove:
		g.MouseMove(ev.PageX, ev.PageY)
	case RawMouseUp:
		g.MouseUp(ev.PageX, ev.PageY, ev.Button)
	default:
		err = fmt.Errorf("%w: event kind %d", ErrMalformedGestureEvent, ev.Kind)
	}
	if err != nil {
		g.stats.Dropped++
		Logger().Debug("gesture event dropped", "err", err)
		return false
	}
	return true
}

// TouchStart handles a touch-start with the full list of active touches.
func (g *GestureNormalizer) TouchStart(touches []Touch) {
	prev := g.touchCount
	g.touchCount = len(touches)

	switch {
	case len(touches) == 0:
		g.reset()
	case len(touches) == 1:
		g.state = GestureSingleTouch
		g.firstTouch = touches[0].ID
		g.refDist = 0
		g.focusFirst = false
		x, y := toCanvas(g.coords, touches[0].PageX, touches[0].PageY)
		g.firePointer(PointerDown, x, y, true)
	default:
		wasSingle := g.state == GestureSingleTouch
		t0, t1 := touches[0], touches[1]
		if prev == 1 && len(touches) == 2 {
			// Keep the zoom anchored under the finger that was already down.
			anchor := t0
			if t1.ID == g.firstTouch {
				anchor = t1
			}
			g.focusFirst = true
			g.focal.X, g.focal.Y = toCanvas(g.coords, anchor.PageX, anchor.PageY)
		} else {
			g.focusFirst = false
			g.focal.X, g.focal.Y = toCanvas(g.coords, (t0.PageX+t1.PageX)/2, (t0.PageY+t1.PageY)/2)
		}
		g.refDist = touchDistance(t0, t1)
		g.state = GesturePinchTracking
		if wasSingle {
			g.firePointer(PointerUp, g.last.X, g.last.Y, true)
		}
	}
}

// TouchMove handles a touch-move with the full list of active touches.
func (g *GestureNormalizer) TouchMove(touches []Touch) {
	if len(touches) == 0 {
		g.reset()
		return
	}
	switch g.state {
	case GestureIdle:
		// The start was lost; treat this sample as one.
		g.TouchStart(touches)
	case GesturePinchTracking:
		g.touchCount = len(touches)
		if len(touches) < 2 {
			return
		}
		dist := touchDistance(touches[0], touches[1])
		delta := (g.refDist - dist) * g.pinchGain
		g.refDist = dist
		n, _ := g.NormalizeWheel(RawWheelEvent{Source: WheelPinch, Delta: delta, X: g.focal.X, Y: g.focal.Y})
		g.fireWheel(n)
	case GestureSingleTouch:
		g.touchCount = len(touches)
		x, y := toCanvas(g.coords, touches[0].PageX, touches[0].PageY)
		g.firePointer(PointerMove, x, y, true)
	}
}

// TouchEnd resets the state machine unconditionally. Touch-end lists are
// unreliable about which touches remain, so any end means a fresh start.
func (g *GestureNormalizer) TouchEnd() {
	g.reset()
}

// MouseDown forwards a mouse press.
func (g *GestureNormalizer) MouseDown(pageX, pageY float64, button MouseButton) {
	x, y := toCanvas(g.coords, pageX, pageY)
	g.fireButton(PointerDown, x, y, button)
}

// MouseMove forwards a mouse move.
func (g *GestureNormalizer) MouseMove(pageX, pageY float64) {
	x, y := toCanvas(g.coords, pageX, pageY)
	g.fireButton(PointerMove, x, y, MouseButtonLeft)
}

// MouseUp forwards a mouse release.
func (g *GestureNormalizer) MouseUp(pageX, pageY float64, button MouseButton) {
	x, y := toCanvas(g.coords, pageX, pageY)
	g.fireButton(PointerUp, x, y, button)
}

// reset returns to Idle. A lost single touch is released at its last
// position so drags downstream end too.
func (g *GestureNormalizer) reset() {
	if g.state == GestureSingleTouch {
		g.firePointer(PointerUp, g.last.X, g.last.Y, true)
	}
	g.state = GestureIdle
	g.touchCount = 0
	g.refDist = 0
	g.focal = Vec2{}
	g.focusFirst = false
	g.firstTouch = 0
}

func touchDistance(a, b Touch) float64 {
	return math.Hypot(a.PageX-b.PageX, a.PageY-b.PageY)
}

func (g *GestureNormalizer) fireWheel(ev NormalizedWheelEvent) {
	g.stats.Wheels++
	for _, h := range g.handlers.wheel {
		h.fn(ev)
	}
}

func (g *GestureNormalizer) firePointer(phase PointerPhase, x, y float64, touch bool) {
	g.last = Vec2{x, y}
	g.stats.Pointers++
	ev := PointerEvent{Phase: phase, X: x, Y: y, Button: MouseButtonLeft, Touch: touch}
	for _, h := range g.handlers.pointer {
		h.fn(ev)
	}
}

func (g *GestureNormalizer) fireButton(phase PointerPhase, x, y float64, button MouseButton) {
	g.last = Vec2{x, y}
	g.stats.Pointers++
	ev := PointerEvent{Phase: phase, X: x, Y: y, Button: button}
	for _, h := range g.handlers.pointer {
		h.fn(ev)
	}
}

package plotui

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// gestureRecorder collects everything a normalizer emits.
type gestureRecorder struct {
	wheels   []NormalizedWheelEvent
	pointers []PointerEvent
}

func newRecordedNormalizer(coords CoordinateTranslator) (*GestureNormalizer, *gestureRecorder) {
	g := NewGestureNormalizer(coords, 0)
	rec := &gestureRecorder{}
	g.OnWheel(func(ev NormalizedWheelEvent) { rec.wheels = append(rec.wheels, ev) })
	g.OnPointer(func(ev PointerEvent) { rec.pointers = append(rec.pointers, ev) })
	return g, rec
}

func TestNormalizeWheelDeltas(t *testing.T) {
	g := NewGestureNormalizer(nil, 0)

	tests := []struct {
		name string
		ev   RawWheelEvent
		want float64
	}{
		{"standard pixel", RawWheelEvent{Source: WheelStandard, DeltaMode: DeltaPixel, DeltaY: 250}, 2.5},
		{"standard line", RawWheelEvent{Source: WheelStandard, DeltaMode: DeltaLine, DeltaY: 9}, 3},
		{"standard page", RawWheelEvent{Source: WheelStandard, DeltaMode: DeltaPage, DeltaY: -1}, -80},
		{"legacy mousewheel", RawWheelEvent{Source: WheelLegacyMouseWheel, WheelDelta: 240}, 2},
		{"legacy DOMMouseScroll", RawWheelEvent{Source: WheelLegacyDOMScroll, Detail: -6}, -2},
		{"pinch passthrough", RawWheelEvent{Source: WheelPinch, Delta: 30}, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.NormalizeWheel(tt.ev)
			if err != nil {
				t.Fatal(err)
			}
			if !approx(got.Delta, tt.want) {
				t.Errorf("Delta = %v, want %v", got.Delta, tt.want)
			}
			if got.Source != tt.ev.Source {
				t.Errorf("Source = %v, want %v", got.Source, tt.ev.Source)
			}
		})
	}
}

func TestNormalizeWheelRejects(t *testing.T) {
	g := NewGestureNormalizer(nil, 0)

	tests := []struct {
		name string
		ev   RawWheelEvent
		want error
	}{
		{"bad delta mode", RawWheelEvent{Source: WheelStandard, DeltaMode: 7, DeltaY: 1}, ErrUnsupportedDeltaMode},
		{"unknown source", RawWheelEvent{Source: 42}, ErrMalformedGestureEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.NormalizeWheel(tt.ev); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalizeWheelFocalPoint(t *testing.T) {
	coords := &StaticSurface{OriginX: 100, OriginY: 50, ScaleX: 2, ScaleY: 2}
	g := NewGestureNormalizer(coords, 0)

	got, err := g.NormalizeWheel(RawWheelEvent{Source: WheelLegacyMouseWheel, WheelDelta: 120, X: 110, Y: 60})
	if err != nil {
		t.Fatal(err)
	}
	if got.FocalX != 20 || got.FocalY != 20 {
		t.Errorf("focal = (%v, %v), want (20, 20)", got.FocalX, got.FocalY)
	}

	// Pinch focal points are already canvas-local.
	got, _ = g.NormalizeWheel(RawWheelEvent{Source: WheelPinch, Delta: 1, X: 110, Y: 60})
	if got.FocalX != 110 || got.FocalY != 60 {
		t.Errorf("pinch focal = (%v, %v), want (110, 60)", got.FocalX, got.FocalY)
	}
}

func TestHandleSwallowsBadEvents(t *testing.T) {
	g, rec := newRecordedNormalizer(nil)

	if g.Handle(RawEvent{Kind: RawWheel, Wheel: RawWheelEvent{Source: WheelStandard, DeltaMode: 9}}) {
		t.Error("bad delta mode accepted")
	}
	if g.Handle(RawEvent{Kind: 200}) {
		t.Error("unknown kind accepted")
	}
	if !g.Handle(RawEvent{Kind: RawWheel, Wheel: RawWheelEvent{Source: WheelLegacyDOMScroll, Detail: 3}}) {
		t.Error("valid wheel rejected")
	}
	if st := g.Stats(); st.Dropped != 2 || st.Wheels != 1 {
		t.Errorf("stats = %+v, want 2 dropped, 1 wheel", st)
	}
	if len(rec.wheels) != 1 {
		t.Errorf("emitted %d wheels, want 1", len(rec.wheels))
	}
}

func TestPinchFromTwoTouches(t *testing.T) {
	g, rec := newRecordedNormalizer(nil)

	g.TouchStart([]Touch{{ID: 1, PageX: 0, PageY: 0}, {ID: 2, PageX: 100, PageY: 0}})
	if g.State() != GesturePinchTracking {
		t.Fatalf("state = %v, want pinch", g.State())
	}
	if g.FocusFirstTouch() {
		t.Error("focusFirstTouch set for a simultaneous two-finger start")
	}
	if fp := g.FocalPoint(); fp != (Vec2{50, 0}) {
		t.Errorf("focal = %v, want midpoint (50, 0)", fp)
	}
	if g.ReferenceDistance() != 100 {
		t.Errorf("reference = %v, want 100", g.ReferenceDistance())
	}

	g.TouchMove([]Touch{{ID: 1, PageX: 10, PageY: 0}, {ID: 2, PageX: 90, PageY: 0}})
	if len(rec.wheels) != 1 {
		t.Fatalf("emitted %d wheels, want 1", len(rec.wheels))
	}
	ev := rec.wheels[0]
	if !approx(ev.Delta, 30) {
		t.Errorf("delta = %v, want (100-80)*1.5 = 30", ev.Delta)
	}
	if ev.FocalX != 50 || ev.FocalY != 0 {
		t.Errorf("focal = (%v, %v), want pinned (50, 0)", ev.FocalX, ev.FocalY)
	}
	if ev.Source != WheelPinch {
		t.Errorf("source = %v, want pinch", ev.Source)
	}
	if g.ReferenceDistance() != 80 {
		t.Errorf("reference = %v, want 80", g.ReferenceDistance())
	}
	if len(rec.pointers) != 0 {
		t.Errorf("pointer events during pinch: %v", rec.pointers)
	}
}

func TestPinchFocusesFirstTouch(t *testing.T) {
	coords := &StaticSurface{OriginX: 10, OriginY: 10, ScaleX: 1, ScaleY: 1}
	g, rec := newRecordedNormalizer(coords)

	g.TouchStart([]Touch{{ID: 7, PageX: 30, PageY: 40}})
	if g.State() != GestureSingleTouch {
		t.Fatalf("state = %v, want single-touch", g.State())
	}
	// The new touch is listed first; the anchor is still touch 7.
	g.TouchStart([]Touch{{ID: 8, PageX: 130, PageY: 40}, {ID: 7, PageX: 30, PageY: 40}})
	if !g.FocusFirstTouch() {
		t.Fatal("focusFirstTouch not set")
	}
	if fp := g.FocalPoint(); fp != (Vec2{20, 30}) {
		t.Errorf("focal = %v, want first touch (20, 30)", fp)
	}

	g.TouchMove([]Touch{{ID: 8, PageX: 230, PageY: 40}, {ID: 7, PageX: 30, PageY: 40}})
	ev := rec.wheels[len(rec.wheels)-1]
	if !approx(ev.Delta, -150) || ev.FocalX != 20 || ev.FocalY != 30 {
		t.Errorf("wheel = %+v, want delta -150 at (20, 30)", ev)
	}

	wantPhases := []PointerPhase{PointerDown, PointerUp}
	if len(rec.pointers) != len(wantPhases) {
		t.Fatalf("pointer events = %v, want down then up", rec.pointers)
	}
	for i, p := range wantPhases {
		if rec.pointers[i].Phase != p || !rec.pointers[i].Touch {
			t.Errorf("pointer %d = %+v, want touch %v", i, rec.pointers[i], p)
		}
	}
}

func TestTouchResetsToIdle(t *testing.T) {
	tests := []struct {
		name string
		end  func(g *GestureNormalizer)
	}{
		{"touchend", func(g *GestureNormalizer) { g.TouchEnd() }},
		{"empty move", func(g *GestureNormalizer) { g.TouchMove(nil) }},
		{"empty start", func(g *GestureNormalizer) { g.TouchStart(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, rec := newRecordedNormalizer(nil)
			g.TouchStart([]Touch{{ID: 1}, {ID: 2, PageX: 40}})
			wheels := len(rec.wheels)

			tt.end(g)

			if g.State() != GestureIdle {
				t.Errorf("state = %v, want idle", g.State())
			}
			if g.ReferenceDistance() != 0 || g.FocalPoint() != (Vec2{}) {
				t.Errorf("pinch state not cleared: ref %v focal %v", g.ReferenceDistance(), g.FocalPoint())
			}
			if len(rec.wheels) != wheels {
				t.Error("reset emitted a wheel event")
			}
		})
	}
}

func TestSingleTouchForwardsPointer(t *testing.T) {
	g, rec := newRecordedNormalizer(IdentitySurface())

	g.TouchStart([]Touch{{ID: 1, PageX: 5, PageY: 6}})
	g.TouchMove([]Touch{{ID: 1, PageX: 15, PageY: 16}})
	g.TouchEnd()

	want := []PointerEvent{
		{Phase: PointerDown, X: 5, Y: 6, Touch: true},
		{Phase: PointerMove, X: 15, Y: 16, Touch: true},
		{Phase: PointerUp, X: 15, Y: 16, Touch: true},
	}
	if len(rec.pointers) != len(want) {
		t.Fatalf("pointers = %v, want %v", rec.pointers, want)
	}
	for i := range want {
		if rec.pointers[i] != want[i] {
			t.Errorf("pointer %d = %+v, want %+v", i, rec.pointers[i], want[i])
		}
	}
}

func TestLostSingleTouchReleasesPointer(t *testing.T) {
	tests := []struct {
		name string
		lose func(g *GestureNormalizer)
	}{
		{"empty move", func(g *GestureNormalizer) { g.TouchMove(nil) }},
		{"empty start", func(g *GestureNormalizer) { g.TouchStart(nil) }},
		{"touchend", func(g *GestureNormalizer) { g.TouchEnd() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, rec := newRecordedNormalizer(IdentitySurface())
			g.TouchStart([]Touch{{ID: 1, PageX: 5, PageY: 6}})
			g.TouchMove([]Touch{{ID: 1, PageX: 9, PageY: 8}})

			tt.lose(g)

			if g.State() != GestureIdle {
				t.Errorf("state = %v, want idle", g.State())
			}
			if len(rec.pointers) != 3 {
				t.Fatalf("pointers = %v, want down, move, up", rec.pointers)
			}
			want := PointerEvent{Phase: PointerUp, X: 9, Y: 8, Touch: true}
			if rec.pointers[2] != want {
				t.Errorf("release = %+v, want %+v", rec.pointers[2], want)
			}
			if len(rec.wheels) != 0 {
				t.Error("losing a touch emitted a wheel event")
			}
		})
	}
}

func TestMoveWithoutStartBeginsGesture(t *testing.T) {
	g, rec := newRecordedNormalizer(nil)
	g.TouchMove([]Touch{{ID: 3, PageX: 1, PageY: 1}})
	if g.State() != GestureSingleTouch {
		t.Errorf("state = %v, want single-touch", g.State())
	}
	if len(rec.pointers) != 1 || rec.pointers[0].Phase != PointerDown {
		t.Errorf("pointers = %v, want one down", rec.pointers)
	}
}

func TestMouseEventsTranslate(t *testing.T) {
	coords := &StaticSurface{OriginX: 10, OriginY: 20, ScaleX: 0.5, ScaleY: 0.5}
	g, rec := newRecordedNormalizer(coords)

	g.MouseDown(30, 40, MouseButtonRight)
	g.MouseMove(50, 60)
	g.MouseUp(50, 60, MouseButtonRight)

	want := []PointerEvent{
		{Phase: PointerDown, X: 10, Y: 10, Button: MouseButtonRight},
		{Phase: PointerMove, X: 20, Y: 20, Button: MouseButtonLeft},
		{Phase: PointerUp, X: 20, Y: 20, Button: MouseButtonRight},
	}
	for i := range want {
		if rec.pointers[i] != want[i] {
			t.Errorf("pointer %d = %+v, want %+v", i, rec.pointers[i], want[i])
		}
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	g := NewGestureNormalizer(nil, 0)
	var a, b int
	ha := g.OnWheel(func(NormalizedWheelEvent) { a++ })
	g.OnWheel(func(NormalizedWheelEvent) { b++ })

	ev := RawWheelEvent{Source: WheelLegacyDOMScroll, Detail: 3}
	_ = g.Wheel(ev)
	ha.Remove()
	ha.Remove()
	_ = g.Wheel(ev)

	if a != 1 || b != 2 {
		t.Errorf("calls a=%d b=%d, want 1 and 2", a, b)
	}
}

func TestCustomPinchGain(t *testing.T) {
	g := NewGestureNormalizer(nil, 2)
	var got float64
	g.OnWheel(func(ev NormalizedWheelEvent) { got = ev.Delta })
	g.TouchStart([]Touch{{ID: 1}, {ID: 2, PageX: 50}})
	g.TouchMove([]Touch{{ID: 1}, {ID: 2, PageX: 60}})
	if !approx(got, -20) {
		t.Errorf("delta = %v, want (50-60)*2 = -20", got)
	}
}

package ebitenhost

import (
	"slices"
	"testing"

	"github.com/nivalis/plotui"
	"github.com/nivalis/plotui/memengine"
)

func kinds(evs []plotui.RawEvent) []plotui.RawEventKind {
	var out []plotui.RawEventKind
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

func TestTrackerMouseEdges(t *testing.T) {
	var tr tracker
	if evs := tr.events(snapshot{cursorX: 10, cursorY: 10}); len(evs) != 0 {
		t.Fatalf("first snapshot produced %v", kinds(evs))
	}

	press := snapshot{cursorX: 10, cursorY: 10}
	press.buttons[plotui.MouseButtonLeft] = true
	evs := tr.events(press)
	if !slices.Equal(kinds(evs), []plotui.RawEventKind{plotui.RawMouseDown}) {
		t.Fatalf("press = %v", kinds(evs))
	}

	drag := press
	drag.cursorX = 30
	if got := kinds(tr.events(drag)); !slices.Equal(got, []plotui.RawEventKind{plotui.RawMouseMove}) {
		t.Fatalf("drag = %v", got)
	}
	if got := kinds(tr.events(drag)); len(got) != 0 {
		t.Fatalf("idle tick = %v", got)
	}

	release := snapshot{cursorX: 30, cursorY: 10}
	evs = tr.events(release)
	if !slices.Equal(kinds(evs), []plotui.RawEventKind{plotui.RawMouseUp}) || evs[0].Button != plotui.MouseButtonLeft {
		t.Fatalf("release = %+v", evs)
	}
}

func TestTrackerWheel(t *testing.T) {
	var tr tracker
	evs := tr.events(snapshot{cursorX: 5, cursorY: 6, wheelY: 1})
	if len(evs) != 1 {
		t.Fatalf("events = %v", kinds(evs))
	}
	w := evs[0].Wheel
	if w.Source != plotui.WheelStandard || w.DeltaMode != plotui.DeltaPixel || w.DeltaY != -100 || w.X != 5 || w.Y != 6 {
		t.Errorf("wheel = %+v", w)
	}
}

func TestTrackerTouches(t *testing.T) {
	var tr tracker
	one := []plotui.Touch{{ID: 1, PageX: 10, PageY: 10}}
	two := []plotui.Touch{{ID: 1, PageX: 10, PageY: 10}, {ID: 2, PageX: 50, PageY: 10}}
	spread := []plotui.Touch{{ID: 1, PageX: 0, PageY: 10}, {ID: 2, PageX: 60, PageY: 10}}

	steps := []struct {
		name    string
		touches []plotui.Touch
		want    []plotui.RawEventKind
	}{
		{"first finger", one, []plotui.RawEventKind{plotui.RawTouchStart}},
		{"held still", one, nil},
		{"second finger", two, []plotui.RawEventKind{plotui.RawTouchStart}},
		{"spread", spread, []plotui.RawEventKind{plotui.RawTouchMove}},
		{"one lifted", spread[1:], []plotui.RawEventKind{plotui.RawTouchEnd, plotui.RawTouchStart}},
		{"all lifted", nil, []plotui.RawEventKind{plotui.RawTouchEnd}},
	}
	for _, st := range steps {
		// The cursor is parked far away and must not leak mouse events.
		got := kinds(tr.events(snapshot{touches: st.touches, cursorX: 999, cursorY: 999}))
		if !slices.Equal(got, st.want) {
			t.Errorf("%s: events = %v, want %v", st.name, got, st.want)
		}
	}
}

func newTestHost(t *testing.T) (*Host, *memengine.Engine) {
	t.Helper()
	eng := memengine.New(memengine.Config{})
	h, err := New(eng, plotui.DefaultConfig(), Options{Width: 1280, Height: 600, SidebarWidth: 280})
	if err != nil {
		t.Fatal(err)
	}
	return h, eng
}

func TestHostResizesCanvas(t *testing.T) {
	h, eng := newTestHost(t)
	if w, ht := eng.Size(); w != 1000 || ht != 600 {
		t.Errorf("engine size = %dx%d, want 1000x600", w, ht)
	}
	h.Layout(1480, 700)
	if w, ht := eng.Size(); w != 1200 || ht != 700 {
		t.Errorf("engine size after layout = %dx%d, want 1200x700", w, ht)
	}
}

func TestHostCanvasEventsAreOffset(t *testing.T) {
	h, _ := newTestHost(t)
	var got []plotui.PointerEvent
	h.Session().Gestures().OnPointer(func(ev plotui.PointerEvent) { got = append(got, ev) })

	h.dispatch(plotui.RawEvent{Kind: plotui.RawMouseDown, PageX: 380, PageY: 50})
	if len(got) != 1 || got[0].X != 100 || got[0].Y != 50 {
		t.Fatalf("pointer events = %+v, want one at (100, 50)", got)
	}
	if !h.Session().View().Dragging() {
		t.Error("canvas press did not start a pan")
	}
}

func TestHostSidebarEditing(t *testing.T) {
	h, eng := newTestHost(t)

	h.dispatch(plotui.RawEvent{Kind: plotui.RawMouseDown, PageX: 20, PageY: 2})
	h.dispatch(plotui.RawEvent{Kind: plotui.RawMouseUp, PageX: 20, PageY: 2})
	if !h.editing {
		t.Fatal("clicking the placeholder did not start editing")
	}
	h.typeChars([]rune("x^2"))
	h.typeChars([]rune("+1"))
	h.backspace()

	if eng.NumFuncs() != 2 || eng.FuncExpr(0) != "x^2+" {
		t.Fatalf("engine funcs = %d, first %q", eng.NumFuncs(), eng.FuncExpr(0))
	}
	if h.Session().Gestures().Stats().Pointers != 0 {
		t.Error("sidebar clicks reached the gesture normalizer")
	}
}

func TestHostSidebarDragReorders(t *testing.T) {
	h, eng := newTestHost(t)
	fl := h.Session().Functions()
	for _, expr := range []string{"a", "b", "c"} {
		items := fl.Items()
		if err := fl.SetExpr(items[len(items)-1].ID, expr); err != nil {
			t.Fatal(err)
		}
	}

	rh := h.rowHeight
	h.dispatch(plotui.RawEvent{Kind: plotui.RawMouseDown, PageX: 20, PageY: rh / 2})
	h.dispatch(plotui.RawEvent{Kind: plotui.RawMouseMove, PageX: 20, PageY: rh*2 + rh/2 + 1})
	h.dispatch(plotui.RawEvent{Kind: plotui.RawMouseUp, PageX: 20, PageY: rh*2 + rh/2 + 1})

	got := []string{eng.FuncExpr(0), eng.FuncExpr(1), eng.FuncExpr(2)}
	if !slices.Equal(got, []string{"b", "c", "a"}) {
		t.Errorf("engine order = %q, want [b c a]", got)
	}
	if h.drag.Active() {
		t.Error("drag still active after release")
	}
}

func TestHostSidebarSwallowsWheel(t *testing.T) {
	h, eng := newTestHost(t)
	before := eng.View()
	h.dispatch(plotui.RawEvent{Kind: plotui.RawWheel, Wheel: plotui.RawWheelEvent{
		Source: plotui.WheelStandard, DeltaY: -100, X: 10, Y: 10,
	}})
	if eng.View() != before {
		t.Error("wheel over the sidebar zoomed the plot")
	}
}

func TestStatsLabel(t *testing.T) {
	got := statsLabel(59.94, 60, plotui.SchedulerStats{Loops: 2, Frames: 100}, plotui.GestureStats{Wheels: 3, Pointers: 4, Dropped: 1})
	want := "FPS: 59.9\nTPS: 60.0\nredraws: 100 in 2 loops\nwheel 3  pointer 4  dropped 1"
	if got != want {
		t.Errorf("statsLabel = %q, want %q", got, want)
	}
}

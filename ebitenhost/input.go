package ebitenhost

import "github.com/nivalis/plotui"

// wheelPixelsPerUnit converts ebiten wheel offsets, roughly one per notch,
// into the pixel deltas a standard wheel event carries.
const wheelPixelsPerUnit = 100

// snapshot is one tick's worth of polled input.
type snapshot struct {
	touches          []plotui.Touch
	cursorX, cursorY float64
	buttons          [3]bool // indexed by plotui.MouseButton
	wheelY           float64
}

// tracker turns successive polled snapshots into the edge-triggered raw
// events a browser would have delivered.
type tracker struct {
	touchIDs []int
	touches  []plotui.Touch
	buttons  [3]bool
	cursorX  float64
	cursorY  float64
	seen     bool
	out      []plotui.RawEvent
}

// events diffs in against the previous snapshot. The returned slice is
// reused by the next call.
func (t *tracker) events(in snapshot) []plotui.RawEvent {
	t.out = t.out[:0]
	t.diffTouches(in.touches)

	// Touch screens also report a cursor; ignore it while fingers are down.
	if len(in.touches) == 0 && len(t.touchIDs) == 0 {
		t.diffMouse(in)
	}

	if in.wheelY != 0 {
		t.out = append(t.out, plotui.RawEvent{
			Kind: plotui.RawWheel,
			Wheel: plotui.RawWheelEvent{
				Source:    plotui.WheelStandard,
				DeltaMode: plotui.DeltaPixel,
				DeltaY:    -in.wheelY * wheelPixelsPerUnit,
				X:         in.cursorX,
				Y:         in.cursorY,
			},
		})
	}
	return t.out
}

func (t *tracker) diffTouches(now []plotui.Touch) {
	defer func() {
		t.touchIDs = t.touchIDs[:0]
		for _, tc := range now {
			t.touchIDs = append(t.touchIDs, tc.ID)
		}
		t.touches = append(t.touches[:0], now...)
	}()

	switch {
	case len(now) == 0 && len(t.touchIDs) == 0:
	case len(now) == 0:
		t.out = append(t.out, plotui.RawEvent{Kind: plotui.RawTouchEnd})
	case !sameIDs(t.touchIDs, now):
		// A finger was added or lifted: the remaining set starts afresh.
		if len(now) < len(t.touchIDs) {
			t.out = append(t.out, plotui.RawEvent{Kind: plotui.RawTouchEnd})
		}
		t.out = append(t.out, plotui.RawEvent{Kind: plotui.RawTouchStart, Touches: clone(now)})
	case moved(t.touches, now):
		t.out = append(t.out, plotui.RawEvent{Kind: plotui.RawTouchMove, Touches: clone(now)})
	}
}

func (t *tracker) diffMouse(in snapshot) {
	if !t.seen || in.cursorX != t.cursorX || in.cursorY != t.cursorY {
		if t.seen {
			t.out = append(t.out, plotui.RawEvent{Kind: plotui.RawMouseMove, PageX: in.cursorX, PageY: in.cursorY})
		}
		t.cursorX, t.cursorY = in.cursorX, in.cursorY
		t.seen = true
	}
	for b, down := range in.buttons {
		if down == t.buttons[b] {
			continue
		}
		kind := plotui.RawMouseUp
		if down {
			kind = plotui.RawMouseDown
		}
		t.out = append(t.out, plotui.RawEvent{
			Kind:   kind,
			PageX:  in.cursorX,
			PageY:  in.cursorY,
			Button: plotui.MouseButton(b),
		})
		t.buttons[b] = down
	}
}

func sameIDs(ids []int, touches []plotui.Touch) bool {
	if len(ids) != len(touches) {
		return false
	}
	for i, tc := range touches {
		if ids[i] != tc.ID {
			return false
		}
	}
	return true
}

func moved(prev, now []plotui.Touch) bool {
	for i := range now {
		if prev[i].PageX != now[i].PageX || prev[i].PageY != now[i].PageY {
			return true
		}
	}
	return false
}

func clone(ts []plotui.Touch) []plotui.Touch {
	return append([]plotui.Touch(nil), ts...)
}

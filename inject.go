package plotui

// syntheticEvent is one queued input event: either a raw event for the
// gesture normalizer or a key press.
type syntheticEvent struct {
	raw   RawEvent
	key   Key
	mods  KeyModifiers
	isKey bool
}

func (s *Session) inject(ev RawEvent) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{raw: ev})
}

// InjectPress queues a left-button press at the given document
// coordinates. Each queued event is consumed by one Update call.
func (s *Session) InjectPress(x, y float64) {
	s.inject(RawEvent{Kind: RawMouseDown, PageX: x, PageY: y, Button: MouseButtonLeft})
}

// InjectMove queues a pointer move. Use it between InjectPress and
// InjectRelease to simulate a drag.
func (s *Session) InjectMove(x, y float64) {
	s.inject(RawEvent{Kind: RawMouseMove, PageX: x, PageY: y})
}

// InjectRelease queues a left-button release.
func (s *Session) InjectRelease(x, y float64) {
	s.inject(RawEvent{Kind: RawMouseUp, PageX: x, PageY: y, Button: MouseButtonLeft})
}

// InjectClick queues a press followed by a release. Consumes two updates.
func (s *Session) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 interpolated moves
// and a release at (toX, toY). Minimum frames is 2.
func (s *Session) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		s.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectRelease(toX, toY)
}

// InjectWheel queues a standard wheel event of delta lines at (x, y).
// Positive deltas zoom out.
func (s *Session) InjectWheel(x, y, delta float64) {
	s.inject(RawEvent{Kind: RawWheel, Wheel: RawWheelEvent{
		Source:    WheelStandard,
		DeltaMode: DeltaLine,
		DeltaY:    delta * 3,
		X:         x,
		Y:         y,
	}})
}

// InjectPinch queues a two-finger pinch centred on (cx, cy): both touches
// land fromDist apart on a horizontal line, spread or close to toDist over
// frames-2 moves, then lift. Minimum frames is 2.
func (s *Session) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	pair := func(d float64) []Touch {
		return []Touch{
			{ID: 1, PageX: cx - d/2, PageY: cy},
			{ID: 2, PageX: cx + d/2, PageY: cy},
		}
	}
	s.inject(RawEvent{Kind: RawTouchStart, Touches: pair(fromDist)})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.inject(RawEvent{Kind: RawTouchMove, Touches: pair(fromDist + (toDist-fromDist)*t)})
	}
	s.inject(RawEvent{Kind: RawTouchEnd})
}

// InjectKey queues a key press.
func (s *Session) InjectKey(k Key, mods KeyModifiers) {
	s.injectQueue = append(s.injectQueue, syntheticEvent{key: k, mods: mods, isKey: true})
}

// Pending returns the number of queued synthetic events.
func (s *Session) Pending() int { return len(s.injectQueue) }

// processInjectedInput pops and handles one queued event. It reports
// whether an event was consumed.
func (s *Session) processInjectedInput() bool {
	if len(s.injectQueue) == 0 {
		return false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue[len(s.injectQueue)-1] = syntheticEvent{}
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]

	if evt.isKey {
		s.HandleKey(evt.key, evt.mods)
		return true
	}
	s.Handle(evt.raw)
	return true
}

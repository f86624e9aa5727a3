package plotui

// Redrawer is the engine side of the scheduler: one expensive, idempotent
// recompute-and-repaint.
type Redrawer interface {
	Redraw()
}

// SchedulerStats counts scheduler activity since creation.
type SchedulerStats struct {
	Requests int // RequestRedraw calls
	Loops    int // per-frame loops started
	Frames   int // frames run (one Redraw each)
}

// RenderScheduler coalesces redraw requests into at most one per-frame loop.
// The loop keeps running for a budget of frames after the last request, and
// for as long as the animation predicate reports activity.
type RenderScheduler struct {
	target    Redrawer
	frames    FrameSource
	animating func() bool
	budget    int

	remaining int
	looping   bool
	stats     SchedulerStats
	debug     bool
}

// NewRenderScheduler creates a scheduler redrawing target on frames from src.
// animating may be nil; budget <= 0 selects DefaultFrameBudget.
func NewRenderScheduler(target Redrawer, src FrameSource, animating func() bool, budget int) *RenderScheduler {
	if budget <= 0 {
		budget = DefaultFrameBudget
	}
	return &RenderScheduler{target: target, frames: src, animating: animating, budget: budget}
}

// RequestRedraw asks for the engine to be redrawn on the coming frames.
// Repeated requests before the loop stops only refill the frame budget.
func (s *RenderScheduler) RequestRedraw() {
	s.stats.Requests++
	s.remaining = s.budget
	if s.looping {
		return
	}
	s.looping = true
	s.stats.Loops++
	if s.debug {
		Logger().Debug("redraw loop started", "budget", s.budget)
	}
	s.frames.RequestFrame(s.frame)
}

// Active reports whether a per-frame loop is outstanding.
func (s *RenderScheduler) Active() bool { return s.looping }

// FramesRemaining returns the budget left before the loop may stop.
func (s *RenderScheduler) FramesRemaining() int { return s.remaining }

// Stats returns activity counters.
func (s *RenderScheduler) Stats() SchedulerStats { return s.stats }

func (s *RenderScheduler) frame() {
	if s.remaining > 0 {
		s.remaining--
	}
	s.stats.Frames++
	s.target.Redraw()
	if s.remaining > 0 || (s.animating != nil && s.animating()) {
		s.frames.RequestFrame(s.frame)
		return
	}
	s.looping = false
	if s.debug {
		Logger().Debug("redraw loop stopped", "frames", s.stats.Frames, "loops", s.stats.Loops)
	}
}

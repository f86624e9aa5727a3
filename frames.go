package plotui

// FrameSource schedules a callback for the next display frame, the way a
// browser's requestAnimationFrame does. It is the only asynchronous
// boundary the core depends on.
type FrameSource interface {
	RequestFrame(fn func())
}

// FrameQueue is a FrameSource driven by the host's tick: every Pump runs
// the callbacks requested before it started. Callbacks requested while
// pumping wait for the next Pump.
type FrameQueue struct {
	pending []func()
	running []func()
	frame   uint64
}

// RequestFrame implements FrameSource.
func (q *FrameQueue) RequestFrame(fn func()) {
	q.pending = append(q.pending, fn)
}

// Pending returns the number of callbacks waiting for the next Pump.
func (q *FrameQueue) Pending() int { return len(q.pending) }

// Frame returns the number of Pump calls so far.
func (q *FrameQueue) Frame() uint64 { return q.frame }

// Pump runs one frame's worth of callbacks and returns how many ran.
func (q *FrameQueue) Pump() int {
	q.frame++
	q.running, q.pending = q.pending, q.running[:0]
	n := len(q.running)
	for i, fn := range q.running {
		q.running[i] = nil
		fn()
	}
	q.running = q.running[:0]
	return n
}

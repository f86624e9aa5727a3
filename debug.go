package plotui

// debugLog logs scheduler and gesture counters whenever frames ran since the
// previous call, and checks both registries. Only called in debug mode.
func (s *Session) debugLog() {
	st := s.scheduler.Stats()
	if st.Frames == s.lastFrames {
		return
	}
	s.lastFrames = st.Frames
	g := s.gestures.Stats()
	Logger().Debug("frame",
		"frames", st.Frames,
		"loops", st.Loops,
		"requests", st.Requests,
		"remaining", s.scheduler.FramesRemaining(),
		"wheels", g.Wheels,
		"pointers", g.Pointers,
		"dropped", g.Dropped,
	)
	s.debugCheckRegistries()
}

// debugCheckRegistries warns when either registry's index invariant is
// broken.
func (s *Session) debugCheckRegistries() {
	if err := s.functions.Registry().Check(); err != nil {
		Logger().Warn("registry out of sync", "err", err)
	}
	if err := s.sliders.Registry().Check(); err != nil {
		Logger().Warn("registry out of sync", "err", err)
	}
}

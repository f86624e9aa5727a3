// Package plotui is the interaction core of a graphing calculator front end.
//
// A plotting engine owns the functions, sliders and viewport and draws the
// plot. plotui sits between that engine and a host (a window, a terminal, a
// browser bridge) and does the bookkeeping a UI needs around it: it turns
// raw wheel, mouse and touch input into zoom and pan calls, keeps a local
// list of rows in step with the engine's ordered lists, and schedules
// redraws so the engine is asked to repaint at most once per display frame.
//
// # Quick start
//
// Implement [Engine] for your plotting backend (or use the in-memory one in
// the memengine package), then create a [Session]:
//
//	frames := &plotui.FrameQueue{}
//	s, err := plotui.NewSession(engine, plotui.IdentitySurface(), frames, plotui.DefaultConfig())
//
// Each host tick, feed input and advance the session:
//
//	s.Handle(plotui.RawEvent{Kind: plotui.RawMouseDown, PageX: x, PageY: y})
//	s.Update(dt)
//	frames.Pump()
//
// The ebitenhost and tcellhost packages do this for Ebitengine windows and
// terminals.
//
// # Gestures
//
// [GestureNormalizer] accepts the three legacy wheel formats and a
// two-finger pinch and emits one canonical [NormalizedWheelEvent] where a
// delta of 1.0 is one wheel notch and positive means zoom out. Single touches
// and mouse buttons become [PointerEvent]s in canvas coordinates, using the
// host's [CoordinateTranslator].
//
// # Entity registries
//
// [Registry] mirrors one ordered engine list. Every row gets a [LocalID]
// that survives reordering and deletion of other rows, plus a host widget.
// Every change goes to the engine first; the local list is only updated once
// the engine has agreed. [FunctionList] and [SliderList] build the function
// and slider rows on top of it, and [DragReorder] reorders rows from a drag.
//
// # Redraws
//
// [RenderScheduler] coalesces any number of redraw requests into one redraw
// per frame and keeps redrawing for a frame budget after the last request,
// longer while a slider animates or the marker fades.
//
// # Configuration and persistence
//
// [Config] is loaded from TOML with [LoadConfig]. Exported engine state is
// an opaque JSON document; [SaveSlots] keeps numbered saves in a
// [KeyValueStore] such as the TOML-backed [FileStore].
//
// # Logging
//
// plotui is silent by default. Call [SetLogger] with a [log/slog] logger to
// see dropped input, engine rejections and save activity.
package plotui

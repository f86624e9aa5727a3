package plotui

// Key is a keyboard key code as the engine understands it (browser keyCode
// numbering). Hosts translate their own key events into these.
type Key int

const (
	KeyLeft    Key = 37
	KeyUp      Key = 38
	KeyRight   Key = 39
	KeyDown    Key = 40
	KeyMinus   Key = 45 // zoom out
	Key0       Key = 48 // with Ctrl: reset view
	KeyEquals  Key = 61 // zoom in
	KeyE       Key = 69 // focus the current function's editor
	KeyH       Key = 72 // with Ctrl: reset view
	KeyO       Key = 79 // cartesian grid
	KeyP       Key = 80 // polar grid
	KeyUnknown Key = -1
)

// FunctionEngine is the engine's function list. Indices are positions in
// the engine's own ordering.
type FunctionEngine interface {
	// AddFunc appends a function; false means the engine is full.
	AddFunc() bool
	DeleteFunc(i int)
	MoveFunc(from, to int)
	NumFuncs() int

	FuncName(i int) string
	FuncExpr(i int) string
	SetFuncExpr(i int, expr string)
	FuncColor(i int) string
	SetFuncColor(i int, hex string)
	FuncUsesT(i int) bool
	FuncTBounds(i int) (lo, hi float64)
	// SetFuncTBounds reports whether the engine accepted the bounds.
	SetFuncTBounds(i int, lo, hi float64) bool

	CurrFunc() int
	SetCurrFunc(i int)
	// FuncError returns the current function's parse error, if any.
	FuncError() string
}

// SliderEngine is the engine's slider list.
type SliderEngine interface {
	AddSlider() bool
	DeleteSlider(i int)
	MoveSlider(from, to int)
	NumSliders() int

	SliderVar(i int) string
	SetSliderVar(i int, name string)
	SliderValue(i int) float64
	SetSliderValue(i int, v float64)
	SliderBounds(i int) (lo, hi float64)
	SetSliderBounds(i int, lo, hi float64)

	// SliderAnimationDir is -1, 0 or 1.
	SliderAnimationDir(i int) int
	BeginSliderAnimation(i int)
	EndSliderAnimation(i int)
	AnySliderAnimating() bool
	SliderError() string
}

// ViewEngine is the engine's viewport and canvas input surface.
// Coordinates are canvas-local pixels.
type ViewEngine interface {
	View() ViewBounds
	SetView(v ViewBounds)
	ResetView()
	PolarGrid() bool
	SetPolarGrid(on bool)
	Resize(width, height int)

	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp(x, y float64)
	// Wheel zooms in (up) or out by a distance > 1 around (x, y).
	Wheel(up bool, distance, x, y float64)
	Key(key Key, mods KeyModifiers)

	// MarkerText is empty when no marker is shown.
	MarkerText() string
	MarkerPosition() (x, y float64)
}

// Engine is the full call set a Session drives.
type Engine interface {
	FunctionEngine
	SliderEngine
	ViewEngine
	Redraw()
	ExportState() string
	ImportState(blob string) error
}

// MarkerRadiusSetter is implemented by engines whose marker hit radius can
// be tuned by the host.
type MarkerRadiusSetter interface {
	SetMarkerClickableRadius(r int)
}

// functionEntities adapts FunctionEngine to EntityEngine.
type functionEntities struct{ e FunctionEngine }

func (f functionEntities) AppendEntity() bool      { return f.e.AddFunc() }
func (f functionEntities) DeleteEntity(i int)      { f.e.DeleteFunc(i) }
func (f functionEntities) MoveEntity(from, to int) { f.e.MoveFunc(from, to) }
func (f functionEntities) NumEntities() int        { return f.e.NumFuncs() }

func (f functionEntities) Describe(i int) Display {
	lo, hi := f.e.FuncTBounds(i)
	return Display{Name: f.e.FuncName(i), Color: f.e.FuncColor(i), Lo: lo, Hi: hi}
}

// sliderEntities adapts SliderEngine to EntityEngine.
type sliderEntities struct{ e SliderEngine }

func (s sliderEntities) AppendEntity() bool      { return s.e.AddSlider() }
func (s sliderEntities) DeleteEntity(i int)      { s.e.DeleteSlider(i) }
func (s sliderEntities) MoveEntity(from, to int) { s.e.MoveSlider(from, to) }
func (s sliderEntities) NumEntities() int        { return s.e.NumSliders() }

func (s sliderEntities) Describe(i int) Display {
	lo, hi := s.e.SliderBounds(i)
	return Display{Name: s.e.SliderVar(i), Lo: lo, Hi: hi}
}

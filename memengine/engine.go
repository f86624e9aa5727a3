// Package memengine is an in-memory graphing engine implementing
// plotui.Engine. It keeps functions, sliders and the viewport without
// evaluating anything, which makes it suitable for tests, demos and hosts
// that only need the editing surface.
package memengine

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/nivalis/plotui"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Config sizes an Engine. Zero fields take defaults.
type Config struct {
	MaxFuncs int // default 256
	Width    int // canvas pixels, default 1000
	Height   int // default 600
	// AnimSeconds is how long an animated slider takes to sweep its whole
	// range once. Default 2.
	AnimSeconds float32
	// FrameSeconds is how far each Redraw advances slider animations.
	// Default 1/60.
	FrameSeconds float32
}

const (
	zoomMultiplier = 0.012
	keyPanFraction = 0.006
	keyZoomStep    = 0.026
)

var palette = []string{
	"#c0392b", "#2980b9", "#27ae60", "#8e44ad", "#d35400", "#16a085", "#2c3e50",
}

// Function is one engine function.
type Function struct {
	Name  string  `json:"name"`
	Expr  string  `json:"expr"`
	Color string  `json:"color"`
	TMin  float64 `json:"tmin"`
	TMax  float64 `json:"tmax"`
}

// Slider is one engine slider.
type Slider struct {
	Var   string  `json:"var"`
	Value float64 `json:"val"`
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`

	dir   int
	tween *gween.Tween
}

// Engine is an in-memory plotui.Engine. It is not safe for concurrent use.
type Engine struct {
	cfg Config

	funcs     []Function
	curr      int
	nameSeq   int
	colorSeq  int
	funcErr   string
	sliders   []Slider
	sliderErr string

	view   plotui.ViewBounds
	polar  bool
	width  int
	height int

	dragging     bool
	dragX, dragY float64
	marker       string
	markerX      float64
	markerY      float64
	markerRadius int

	redraws int
}

var _ plotui.Engine = (*Engine)(nil)

// New creates an engine with no functions and the default view.
func New(cfg Config) *Engine {
	if cfg.MaxFuncs <= 0 {
		cfg.MaxFuncs = 256
	}
	if cfg.Width <= 0 {
		cfg.Width = 1000
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	if cfg.AnimSeconds <= 0 {
		cfg.AnimSeconds = 2
	}
	if cfg.FrameSeconds <= 0 {
		cfg.FrameSeconds = 1.0 / 60
	}
	e := &Engine{cfg: cfg, width: cfg.Width, height: cfg.Height, markerRadius: 5}
	e.ResetView()
	return e
}

// Redraws returns how many times Redraw ran.
func (e *Engine) Redraws() int { return e.redraws }

// Functions returns a copy of the function list.
func (e *Engine) Functions() []Function { return append([]Function(nil), e.funcs...) }

// Sliders returns a copy of the slider list.
func (e *Engine) Sliders() []Slider {
	out := make([]Slider, len(e.sliders))
	for i, s := range e.sliders {
		out[i] = Slider{Var: s.Var, Value: s.Value, Lo: s.Lo, Hi: s.Hi, dir: s.dir}
	}
	return out
}

// MarkerClickableRadius returns the marker hit radius in pixels.
func (e *Engine) MarkerClickableRadius() int { return e.markerRadius }

// SetMarkerClickableRadius implements plotui.MarkerRadiusSetter.
func (e *Engine) SetMarkerClickableRadius(r int) { e.markerRadius = r }

// Redraw advances slider animations by one frame.
func (e *Engine) Redraw() {
	e.redraws++
	for i := range e.sliders {
		e.stepAnimation(&e.sliders[i])
	}
}

// --- functions ---

func (e *Engine) AddFunc() bool {
	if len(e.funcs) >= e.cfg.MaxFuncs {
		return false
	}
	e.funcs = append(e.funcs, Function{
		Name:  fmt.Sprintf("f%d", e.nameSeq),
		Color: palette[e.colorSeq%len(palette)],
		TMin:  0,
		TMax:  2 * math.Pi,
	})
	e.nameSeq++
	e.colorSeq++
	e.curr = len(e.funcs) - 1
	e.funcErr = ""
	return true
}

func (e *Engine) DeleteFunc(i int) {
	if i < 0 || i >= len(e.funcs) {
		return
	}
	e.funcs = append(e.funcs[:i], e.funcs[i+1:]...)
	if e.curr > i || e.curr >= len(e.funcs) {
		e.curr--
	}
	e.curr = max(e.curr, 0)
	e.reparse()
}

func (e *Engine) MoveFunc(from, to int) {
	if !inRange(from, len(e.funcs)) || !inRange(to, len(e.funcs)) || from == to {
		return
	}
	e.curr = moveIndex(e.curr, from, to)
	e.funcs = move(e.funcs, from, to)
}

func (e *Engine) NumFuncs() int { return len(e.funcs) }

func (e *Engine) FuncName(i int) string {
	if !inRange(i, len(e.funcs)) {
		return ""
	}
	return e.funcs[i].Name
}

func (e *Engine) FuncExpr(i int) string {
	if !inRange(i, len(e.funcs)) {
		return ""
	}
	return e.funcs[i].Expr
}

func (e *Engine) SetFuncExpr(i int, expr string) {
	if !inRange(i, len(e.funcs)) {
		return
	}
	e.funcs[i].Expr = expr
	if i == e.curr {
		e.reparse()
	}
}

func (e *Engine) FuncColor(i int) string {
	if !inRange(i, len(e.funcs)) {
		return ""
	}
	return e.funcs[i].Color
}

func (e *Engine) SetFuncColor(i int, hex string) {
	if !inRange(i, len(e.funcs)) {
		return
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	e.funcs[i].Color = hex
}

// FuncUsesT reports whether the expression mentions the parameter t.
func (e *Engine) FuncUsesT(i int) bool {
	if !inRange(i, len(e.funcs)) {
		return false
	}
	return mentions(e.funcs[i].Expr, "t")
}

func (e *Engine) FuncTBounds(i int) (float64, float64) {
	if !inRange(i, len(e.funcs)) {
		return 0, 0
	}
	return e.funcs[i].TMin, e.funcs[i].TMax
}

func (e *Engine) SetFuncTBounds(i int, lo, hi float64) bool {
	if !inRange(i, len(e.funcs)) || !finite(lo) || !finite(hi) || lo >= hi {
		return false
	}
	e.funcs[i].TMin, e.funcs[i].TMax = lo, hi
	return true
}

func (e *Engine) CurrFunc() int { return e.curr }

func (e *Engine) SetCurrFunc(i int) {
	if !inRange(i, len(e.funcs)) {
		return
	}
	e.curr = i
	e.reparse()
}

func (e *Engine) FuncError() string { return e.funcErr }

// reparse checks the current expression's brackets, the only syntax this
// engine understands.
func (e *Engine) reparse() {
	e.funcErr = ""
	if !inRange(e.curr, len(e.funcs)) {
		return
	}
	depth := 0
	for _, r := range e.funcs[e.curr].Expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			break
		}
	}
	if depth != 0 {
		e.funcErr = "Unmatched parenthesis"
	}
}

// --- sliders ---

func (e *Engine) AddSlider() bool {
	name := "a"
	for name[0] < 'z' && (e.sliderIndex(name) >= 0 || reserved[name]) {
		name = string(name[0] + 1)
	}
	e.sliders = append(e.sliders, Slider{Var: name, Value: 0, Lo: 0, Hi: 1})
	e.sliderErr = ""
	return true
}

func (e *Engine) DeleteSlider(i int) {
	if !inRange(i, len(e.sliders)) {
		return
	}
	e.sliders = append(e.sliders[:i], e.sliders[i+1:]...)
	e.sliderErr = ""
}

func (e *Engine) MoveSlider(from, to int) {
	if !inRange(from, len(e.sliders)) || !inRange(to, len(e.sliders)) || from == to {
		return
	}
	e.sliders = move(e.sliders, from, to)
}

func (e *Engine) NumSliders() int { return len(e.sliders) }

func (e *Engine) sliderIndex(name string) int {
	for i, s := range e.sliders {
		if s.Var == name {
			return i
		}
	}
	return -1
}

func (e *Engine) SliderVar(i int) string {
	if !inRange(i, len(e.sliders)) {
		return ""
	}
	return e.sliders[i].Var
}

// SetSliderVar renames a slider's variable. Invalid or reserved names are
// refused and reported through SliderError.
func (e *Engine) SetSliderVar(i int, name string) {
	if !inRange(i, len(e.sliders)) {
		return
	}
	switch {
	case !validVar(name):
		e.sliderErr = fmt.Sprintf("Invalid variable name %q", name)
	case e.sliderIndex(name) >= 0 && e.sliderIndex(name) != i:
		e.sliderErr = fmt.Sprintf("Variable %q already has a slider", name)
	default:
		e.sliders[i].Var = name
		e.sliderErr = ""
	}
}

func (e *Engine) SliderValue(i int) float64 {
	if !inRange(i, len(e.sliders)) {
		return 0
	}
	return e.sliders[i].Value
}

// SetSliderValue sets the value, widening the bounds to include it.
func (e *Engine) SetSliderValue(i int, v float64) {
	if !inRange(i, len(e.sliders)) || !finite(v) {
		return
	}
	s := &e.sliders[i]
	s.Value = v
	s.Lo = math.Min(s.Lo, v)
	s.Hi = math.Max(s.Hi, v)
}

func (e *Engine) SliderBounds(i int) (float64, float64) {
	if !inRange(i, len(e.sliders)) {
		return 0, 0
	}
	return e.sliders[i].Lo, e.sliders[i].Hi
}

// SetSliderBounds sets the range, clamping the value into it.
func (e *Engine) SetSliderBounds(i int, lo, hi float64) {
	if !inRange(i, len(e.sliders)) || !finite(lo) || !finite(hi) || lo >= hi {
		return
	}
	s := &e.sliders[i]
	s.Lo, s.Hi = lo, hi
	s.Value = math.Min(math.Max(s.Value, lo), hi)
	if s.dir != 0 {
		e.startLeg(s, s.dir)
	}
}

func (e *Engine) SliderAnimationDir(i int) int {
	if !inRange(i, len(e.sliders)) {
		return 0
	}
	return e.sliders[i].dir
}

// BeginSliderAnimation sweeps the slider towards Hi, then back and forth.
func (e *Engine) BeginSliderAnimation(i int) {
	if !inRange(i, len(e.sliders)) {
		return
	}
	s := &e.sliders[i]
	dir := 1
	if s.Value >= s.Hi {
		dir = -1
	}
	e.startLeg(s, dir)
}

func (e *Engine) EndSliderAnimation(i int) {
	if !inRange(i, len(e.sliders)) {
		return
	}
	e.sliders[i].dir = 0
	e.sliders[i].tween = nil
}

func (e *Engine) AnySliderAnimating() bool {
	for _, s := range e.sliders {
		if s.dir != 0 {
			return true
		}
	}
	return false
}

func (e *Engine) SliderError() string { return e.sliderErr }

// startLeg tweens s from its value to the bound in direction dir, taking
// the share of AnimSeconds the remaining distance represents.
func (e *Engine) startLeg(s *Slider, dir int) {
	target := s.Hi
	if dir < 0 {
		target = s.Lo
	}
	span := s.Hi - s.Lo
	d := e.cfg.AnimSeconds
	if span > 0 {
		d = float32(math.Abs(target-s.Value)/span) * e.cfg.AnimSeconds
	}
	s.dir = dir
	s.tween = gween.New(float32(s.Value), float32(target), max(d, e.cfg.FrameSeconds), ease.Linear)
}

func (e *Engine) stepAnimation(s *Slider) {
	if s.dir == 0 || s.tween == nil {
		return
	}
	val, finished := s.tween.Update(e.cfg.FrameSeconds)
	s.Value = float64(val)
	if finished {
		if s.dir > 0 {
			s.Value = s.Hi
		} else {
			s.Value = s.Lo
		}
		e.startLeg(s, -s.dir)
	}
}

// --- view ---

func (e *Engine) View() plotui.ViewBounds { return e.view }

func (e *Engine) SetView(v plotui.ViewBounds) {
	if !v.Valid() {
		return
	}
	e.view = v
}

// ResetView shows y in [-6, 6] with x scaled to the canvas aspect ratio.
func (e *Engine) ResetView() {
	wid := 10 * float64(e.width) / float64(e.height) * 0.6
	e.view = plotui.ViewBounds{XMin: -wid, XMax: wid, YMin: -6, YMax: 6}
}

func (e *Engine) PolarGrid() bool      { return e.polar }
func (e *Engine) SetPolarGrid(on bool) { e.polar = on }

func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.width, e.height = width, height
}

// Size returns the canvas size in pixels.
func (e *Engine) Size() (int, int) { return e.width, e.height }

// PointerDown starts a view drag and shows the graph coordinates under the
// pointer as the marker.
func (e *Engine) PointerDown(x, y float64) {
	e.dragging = true
	e.dragX, e.dragY = x, y
	e.showMarker(x, y)
}

// PointerMove pans the view while dragging.
func (e *Engine) PointerMove(x, y float64) {
	if !e.dragging {
		return
	}
	dx, dy := x-e.dragX, y-e.dragY
	e.dragX, e.dragY = x, y
	fx := (e.view.XMax - e.view.XMin) / float64(e.width) * dx
	fy := (e.view.YMax - e.view.YMin) / float64(e.height) * dy
	e.view.XMin -= fx
	e.view.XMax -= fx
	e.view.YMin += fy
	e.view.YMax += fy
	e.showMarker(x, y)
}

// PointerUp applies the last pan step, ends the drag and hides the marker.
func (e *Engine) PointerUp(x, y float64) {
	e.PointerMove(x, y)
	e.dragging = false
	e.marker = ""
}

// Wheel zooms around (x, y). distance > 1 grows the effect logarithmically.
func (e *Engine) Wheel(up bool, distance, x, y float64) {
	e.dragging = false
	if !(distance > 0) {
		return
	}
	scaling := math.Exp(math.Log(distance) * zoomMultiplier)
	if up {
		scaling = math.Exp(-math.Log(distance) * zoomMultiplier)
	}
	scaling = math.Max(math.Min(scaling, 100), 0.01)
	xdiff := (e.view.XMax - e.view.XMin) * (scaling - 1)
	ydiff := (e.view.YMax - e.view.YMin) * (scaling - 1)
	focx := clamp01(x / float64(e.width))
	focy := clamp01(y / float64(e.height))
	e.view.XMax += xdiff * (1 - focx)
	e.view.XMin -= xdiff * focx
	e.view.YMax += ydiff * focy
	e.view.YMin -= ydiff * (1 - focy)
}

// Key handles arrow panning, +/- zoom (Shift: x only, Alt: y only),
// Ctrl+0 or Ctrl+H reset, P/O polar/cartesian grid.
func (e *Engine) Key(k plotui.Key, mods plotui.KeyModifiers) {
	w := e.view.XMax - e.view.XMin
	h := e.view.YMax - e.view.YMin
	switch k {
	case plotui.KeyLeft, plotui.KeyRight:
		d := w * keyPanFraction
		if k == plotui.KeyLeft {
			d = -d
		}
		e.view.XMin += d
		e.view.XMax += d
	case plotui.KeyUp, plotui.KeyDown:
		d := h * keyPanFraction
		if k == plotui.KeyDown {
			d = -d
		}
		e.view.YMin += d
		e.view.YMax += d
	case plotui.KeyMinus, plotui.KeyEquals:
		fa := 1 - keyZoomStep
		if k == plotui.KeyMinus {
			fa = 1 + keyZoomStep
		}
		dx := w * (fa - 1) / 2
		dy := h * (fa - 1) / 2
		if mods&plotui.ModShift != 0 {
			dy = 0
		}
		if mods&plotui.ModAlt != 0 {
			dx = 0
		}
		e.view.XMin -= dx
		e.view.XMax += dx
		e.view.YMin -= dy
		e.view.YMax += dy
	case plotui.Key0, plotui.KeyH:
		if mods&plotui.ModCtrl != 0 {
			e.ResetView()
		}
	case plotui.KeyP:
		e.polar = true
	case plotui.KeyO:
		e.polar = false
	}
}

func (e *Engine) MarkerText() string { return e.marker }

func (e *Engine) MarkerPosition() (float64, float64) { return e.markerX, e.markerY }

func (e *Engine) showMarker(x, y float64) {
	gx := e.view.XMin + (e.view.XMax-e.view.XMin)*x/float64(e.width)
	gy := e.view.YMax - (e.view.YMax-e.view.YMin)*y/float64(e.height)
	e.marker = fmt.Sprintf("%.4g, %.4g", gx, gy)
	e.markerX, e.markerY = x, y
}

// --- state ---

type state struct {
	Funcs   []Function        `json:"funcs"`
	Sliders []Slider          `json:"sliders"`
	View    plotui.ViewBounds `json:"view"`
	Polar   bool              `json:"polar"`
	Curr    int               `json:"curr"`
}

// ExportState encodes functions, sliders, view and grid mode as JSON.
func (e *Engine) ExportState() string {
	st := state{Funcs: e.funcs, Sliders: e.sliders, View: e.view, Polar: e.polar, Curr: e.curr}
	data, err := json.Marshal(st)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ImportState replaces all state with blob. Nothing changes on error.
func (e *Engine) ImportState(blob string) error {
	var st state
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}
	if len(st.Funcs) > e.cfg.MaxFuncs {
		return fmt.Errorf("too many functions: %d > %d", len(st.Funcs), e.cfg.MaxFuncs)
	}
	if st.View != (plotui.ViewBounds{}) && !st.View.Valid() {
		return errors.New("invalid view bounds")
	}
	for i, s := range st.Sliders {
		if !validVar(s.Var) {
			return fmt.Errorf("slider %d: invalid variable name %q", i, s.Var)
		}
	}
	e.funcs = st.Funcs
	for i := range e.funcs {
		if e.funcs[i].Name == "" {
			e.funcs[i].Name = fmt.Sprintf("f%d", e.nameSeq)
			e.nameSeq++
		}
	}
	e.sliders = st.Sliders
	if st.View != (plotui.ViewBounds{}) {
		e.view = st.View
	}
	e.polar = st.Polar
	e.curr = min(max(st.Curr, 0), max(len(e.funcs)-1, 0))
	e.marker = ""
	e.dragging = false
	e.reparse()
	e.sliderErr = ""
	return nil
}

// --- helpers ---

func inRange(i, n int) bool { return i >= 0 && i < n }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func clamp01(v float64) float64 { return math.Min(math.Max(v, 0), 1) }

// move relocates s[from] to to, shifting the elements between.
func move[T any](s []T, from, to int) []T {
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
	return s
}

// moveIndex returns where the element at i ends up after move(from, to).
func moveIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < to && i > from && i <= to:
		return i - 1
	case to < from && i >= to && i < from:
		return i + 1
	}
	return i
}

var reserved = map[string]bool{"x": true, "y": true, "t": true, "r": true, "z": true}

func validVar(name string) bool {
	if name == "" || reserved[name] {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

// mentions reports whether expr contains ident as a whole identifier.
func mentions(expr, ident string) bool {
	isIdent := func(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
	for _, tok := range strings.FieldsFunc(expr, func(r rune) bool { return !isIdent(r) }) {
		if tok == ident {
			return true
		}
	}
	return false
}

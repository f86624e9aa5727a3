// Package ebitenhost runs a plotui Session inside an Ebitengine window. It
// polls mouse, touch, wheel and keyboard state each tick, feeds the edges
// through the Session's gesture normalizer, pumps redraw frames and draws
// the function list, sliders and hover marker with text/v2.
package ebitenhost

import (
	"bytes"
	"fmt"
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/nivalis/plotui"
)

// Options configures a Host.
type Options struct {
	Title        string
	Width        int
	Height       int
	SidebarWidth float64
	FontSize     float64
	ShowStats    bool
	// Slots, if set, backs Ctrl+S (save) and Ctrl+L (load the newest slot).
	Slots *plotui.SaveSlots
}

func (o *Options) defaults() {
	if o.Title == "" {
		o.Title = "plotui"
	}
	if o.Width <= 0 {
		o.Width = 1000
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.SidebarWidth <= 0 {
		o.SidebarWidth = 280
	}
	if o.FontSize <= 0 {
		o.FontSize = 15
	}
}

var keyMap = map[ebiten.Key]plotui.Key{
	ebiten.KeyArrowLeft:  plotui.KeyLeft,
	ebiten.KeyArrowUp:    plotui.KeyUp,
	ebiten.KeyArrowRight: plotui.KeyRight,
	ebiten.KeyArrowDown:  plotui.KeyDown,
	ebiten.KeyMinus:      plotui.KeyMinus,
	ebiten.KeyEqual:      plotui.KeyEquals,
	ebiten.KeyDigit0:     plotui.Key0,
	ebiten.KeyE:          plotui.KeyE,
	ebiten.KeyH:          plotui.KeyH,
	ebiten.KeyO:          plotui.KeyO,
	ebiten.KeyP:          plotui.KeyP,
}

var (
	colorBackground = color.RGBA{0xfa, 0xfa, 0xfa, 0xff}
	colorSidebar    = color.RGBA{0xee, 0xee, 0xf2, 0xff}
	colorFocus      = color.RGBA{0xd6, 0xe4, 0xff, 0xff}
	colorAxis       = color.RGBA{0x80, 0x80, 0x80, 0xff}
	colorText       = color.RGBA{0x20, 0x20, 0x20, 0xff}
	colorHint       = color.RGBA{0x99, 0x99, 0x99, 0xff}
	colorError      = color.RGBA{0xc0, 0x20, 0x20, 0xff}
)

// Host implements ebiten.Game for one Session.
type Host struct {
	session *plotui.Session
	frames  *plotui.FrameQueue
	surface *plotui.StaticSurface
	opts    Options

	face       *text.GoTextFace
	lineHeight float64
	rowHeight  float64

	input    tracker
	touchIDs []ebiten.TouchID
	touches  []plotui.Touch
	keys     []ebiten.Key
	chars    []rune

	stats statsOverlay

	width, height int
	editing       bool
	sidebarPress  bool
	drag          *plotui.DragReorder[*plotui.FunctionItem]
}

// New creates a Session over engine and a Host to run it.
func New(engine plotui.Engine, cfg plotui.Config, opts Options) (*Host, error) {
	opts.defaults()
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: load font: %w", err)
	}
	face := &text.GoTextFace{Source: src, Size: opts.FontSize}
	m := face.Metrics()

	h := &Host{
		frames:     &plotui.FrameQueue{},
		surface:    &plotui.StaticSurface{OriginX: opts.SidebarWidth, ScaleX: 1, ScaleY: 1},
		opts:       opts,
		face:       face,
		lineHeight: m.HAscent + m.HDescent + m.HLineGap,
	}
	h.rowHeight = h.lineHeight * 1.6

	h.session, err = plotui.NewSession(engine, h.surface, h.frames, cfg)
	if err != nil {
		return nil, err
	}
	h.drag = plotui.NewDragReorder(h.session.Functions().Registry(), h.rowHeight)
	h.session.Functions().OnFocusEditor = func(plotui.LocalID) { h.editing = true }
	h.stats.shown = opts.ShowStats
	h.resize(opts.Width, opts.Height)
	return h, nil
}

// Session returns the hosted session.
func (h *Host) Session() *plotui.Session { return h.session }

// Frames returns the frame queue the host pumps once per tick.
func (h *Host) Frames() *plotui.FrameQueue { return h.frames }

// Run opens the window and blocks until it is closed.
func (h *Host) Run() error {
	ebiten.SetWindowTitle(h.opts.Title)
	ebiten.SetWindowSize(h.opts.Width, h.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(h)
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	for _, ev := range h.input.events(h.poll()) {
		h.dispatch(ev)
	}
	h.pollKeys()
	dt := 1 / float64(ebiten.TPS())
	h.session.Update(float32(dt))
	h.frames.Pump()
	h.stats.update(dt, h.session)
	return nil
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != h.width || outsideHeight != h.height {
		h.resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func (h *Host) resize(w, ht int) {
	h.width, h.height = w, ht
	h.session.Resize(max(w-int(h.opts.SidebarWidth), 1), ht)
}

func (h *Host) poll() snapshot {
	var in snapshot
	h.touchIDs = ebiten.AppendTouchIDs(h.touchIDs[:0])
	h.touches = h.touches[:0]
	for _, id := range h.touchIDs {
		x, y := ebiten.TouchPosition(id)
		h.touches = append(h.touches, plotui.Touch{ID: int(id), PageX: float64(x), PageY: float64(y)})
	}
	in.touches = h.touches
	x, y := ebiten.CursorPosition()
	in.cursorX, in.cursorY = float64(x), float64(y)
	in.buttons[plotui.MouseButtonLeft] = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	in.buttons[plotui.MouseButtonRight] = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	in.buttons[plotui.MouseButtonMiddle] = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	_, in.wheelY = ebiten.Wheel()
	return in
}

// dispatch routes one raw event either to the sidebar or to the session.
func (h *Host) dispatch(ev plotui.RawEvent) {
	inSidebar := ev.PageX < h.opts.SidebarWidth
	switch ev.Kind {
	case plotui.RawMouseDown:
		if inSidebar && ev.Button == plotui.MouseButtonLeft {
			h.sidebarPress = true
			h.pressRow(ev.PageY)
			return
		}
		h.editing = false
	case plotui.RawMouseMove:
		if h.sidebarPress {
			if _, err := h.drag.Move(ev.PageY); err != nil {
				plotui.Logger().Warn("row drag failed", "err", err)
			}
			return
		}
	case plotui.RawMouseUp:
		if h.sidebarPress && ev.Button == plotui.MouseButtonLeft {
			h.sidebarPress = false
			h.drag.End()
			return
		}
	case plotui.RawWheel:
		if ev.Wheel.X < h.opts.SidebarWidth {
			return
		}
	}
	h.session.Handle(ev)
}

// pressRow focuses the function row under list coordinate y and starts a
// drag on it.
func (h *Host) pressRow(y float64) {
	fl := h.session.Functions()
	i := int(y / h.rowHeight)
	e, ok := fl.Registry().At(i)
	if !ok {
		return
	}
	if err := fl.Focus(e.ID); err != nil {
		return
	}
	h.editing = true
	if !e.Widget.Placeholder {
		h.drag.Begin(e.ID, y)
	}
}

func (h *Host) pollKeys() {
	mods := modifiers()
	wasEditing := h.editing
	h.keys = inpututil.AppendJustPressedKeys(h.keys[:0])
	for _, k := range h.keys {
		h.key(k, mods)
	}
	// The key that opened the editor is not typed into it.
	if wasEditing && h.editing && mods&plotui.ModCtrl == 0 {
		h.chars = ebiten.AppendInputChars(h.chars[:0])
		if len(h.chars) > 0 {
			h.typeChars(h.chars)
		}
	}
}

func (h *Host) key(k ebiten.Key, mods plotui.KeyModifiers) {
	fl := h.session.Functions()
	if k == ebiten.KeyF3 {
		h.stats.shown = !h.stats.shown
		return
	}
	if mods&plotui.ModCtrl != 0 && h.opts.Slots != nil {
		switch k {
		case ebiten.KeyS:
			h.session.Save(h.opts.Slots)
			return
		case ebiten.KeyL:
			h.loadNewest()
			return
		}
	}
	if h.editing {
		switch k {
		case ebiten.KeyEscape:
			h.editing = false
		case ebiten.KeyBackspace:
			h.backspace()
		case ebiten.KeyEnter, ebiten.KeyArrowDown:
			fl.FocusNext()
		case ebiten.KeyArrowUp:
			fl.FocusPrev()
		}
		return
	}
	if pk, ok := keyMap[k]; ok {
		h.session.HandleKey(pk, mods)
	}
}

func (h *Host) loadNewest() {
	slots, err := h.opts.Slots.List()
	if err != nil || len(slots) == 0 {
		return
	}
	h.session.Load(h.opts.Slots, slots[len(slots)-1])
}

// typeChars appends to the focused function's expression.
func (h *Host) typeChars(rs []rune) {
	fl := h.session.Functions()
	id, ok := fl.Focused()
	if !ok {
		return
	}
	it, _ := fl.Item(id)
	if err := fl.SetExpr(id, it.Expr+string(rs)); err != nil {
		plotui.Logger().Warn("edit rejected", "err", err)
	}
}

// backspace drops the last rune of the focused expression.
func (h *Host) backspace() {
	fl := h.session.Functions()
	id, ok := fl.Focused()
	if !ok {
		return
	}
	it, _ := fl.Item(id)
	if it.Expr == "" {
		return
	}
	_, n := utf8.DecodeLastRuneInString(it.Expr)
	fl.SetExpr(id, it.Expr[:len(it.Expr)-n])
}

func modifiers() plotui.KeyModifiers {
	var m plotui.KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		m |= plotui.ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		m |= plotui.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		m |= plotui.ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		m |= plotui.ModMeta
	}
	return m
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	h.drawAxes(screen)
	h.drawSidebar(screen)
	h.drawMarker(screen)
	h.stats.draw(screen, h.opts.SidebarWidth+8, 8)
}

func (h *Host) drawAxes(screen *ebiten.Image) {
	b := h.session.View().Bounds()
	left := float32(h.opts.SidebarWidth)
	w := float32(h.width) - left
	ht := float32(h.height)
	if b.XMin < 0 && b.XMax > 0 {
		x := left + w*float32(-b.XMin/(b.XMax-b.XMin))
		vector.StrokeLine(screen, x, 0, x, ht, 1, colorAxis, false)
	}
	if b.YMin < 0 && b.YMax > 0 {
		y := ht * float32(b.YMax/(b.YMax-b.YMin))
		vector.StrokeLine(screen, left, y, float32(h.width), y, 1, colorAxis, false)
	}
	grid := "cartesian"
	if h.session.View().Polar() {
		grid = "polar"
	}
	label := fmt.Sprintf("x [%.3g, %.3g]  y [%.3g, %.3g]  %s", b.XMin, b.XMax, b.YMin, b.YMax, grid)
	h.drawText(screen, label, float64(left)+8, ht-h.lineHeight-8, colorHint, 1)
}

func (h *Host) drawSidebar(screen *ebiten.Image) {
	sw := float32(h.opts.SidebarWidth)
	vector.DrawFilledRect(screen, 0, 0, sw, float32(h.height), colorSidebar, false)

	fl := h.session.Functions()
	focused, hasFocus := fl.Focused()
	dragged, dragging := h.drag.Dragged()
	for i, it := range fl.Items() {
		y := float64(i) * h.rowHeight
		if dragging && it.ID == dragged {
			y += h.drag.Offset()
		}
		if hasFocus && it.ID == focused {
			vector.DrawFilledRect(screen, 0, float32(y), sw, float32(h.rowHeight), colorFocus, false)
		}
		label, c := it.Expr, colorText
		if it.Placeholder {
			label, c = "new function", colorHint
		} else {
			sc := toRGBA(it.Color)
			vector.DrawFilledRect(screen, 8, float32(y+h.rowHeight/2-5), 10, 10, sc, false)
		}
		h.drawText(screen, label, 26, y+(h.rowHeight-h.lineHeight)/2, c, 1)
	}

	y := float64(fl.Len())*h.rowHeight + 8
	for _, it := range h.session.Sliders().Items() {
		label := fmt.Sprintf("%s = %.3g  [%.3g, %.3g]", it.Var, it.Value, it.Bounds.Min, it.Bounds.Max)
		if it.Animating() {
			label += "  ~"
		}
		h.drawText(screen, label, 8, y, colorText, 1)
		y += h.rowHeight
	}

	foot := float64(h.height) - h.lineHeight - 8
	if msg := fl.Error(); msg != "" {
		h.drawText(screen, msg, 8, foot-h.lineHeight-4, colorError, 1)
	}
	if st := h.session.Status(); st.Message != "" {
		c := colorHint
		if st.Err != nil {
			c = colorError
		}
		h.drawText(screen, st.Message, 8, foot, c, 1)
	}
}

func (h *Host) drawMarker(screen *ebiten.Image) {
	m := h.session.Marker()
	if m.Text() == "" || m.Alpha() <= 0 {
		return
	}
	p := m.Position()
	h.drawText(screen, m.Text(), h.opts.SidebarWidth+p.X, p.Y, colorText, m.Alpha())
}

func (h *Host) drawText(screen *ebiten.Image, s string, x, y float64, c color.RGBA, alpha float32) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	op.ColorScale.ScaleAlpha(alpha)
	op.LineSpacing = h.lineHeight
	text.Draw(screen, s, h.face, op)
}

func toRGBA(c plotui.Color) color.RGBA {
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

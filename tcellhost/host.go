// Package tcellhost runs a plotui Session in a terminal. Cells stand in for
// pixels: the session's surface scales cell coordinates by a fixed cell size
// so the engine sees a pixel canvas. Wheel and mouse reports arrive as tcell
// events; a ticker drives session updates and redraw frames.
package tcellhost

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/nivalis/plotui"
)

// TickInterval is the update and redraw period of Run.
const TickInterval = 16 * time.Millisecond

// Options configures a Host.
type Options struct {
	SidebarCols int
	// CellWidth and CellHeight are the pixel size the engine is told one
	// terminal cell has.
	CellWidth  float64
	CellHeight float64
	Slots      *plotui.SaveSlots
}

func (o *Options) defaults() {
	if o.SidebarCols <= 0 {
		o.SidebarCols = 30
	}
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
}

var (
	styleDefault = tcell.StyleDefault
	styleSidebar = tcell.StyleDefault.Background(tcell.ColorDarkSlateGray).Foreground(tcell.ColorWhite)
	styleHint    = styleSidebar.Foreground(tcell.ColorSilver).Dim(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleAxis    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

var runeKeys = map[rune]plotui.Key{
	'-': plotui.KeyMinus,
	'=': plotui.KeyEquals,
	'+': plotui.KeyEquals,
	'0': plotui.Key0,
	'e': plotui.KeyE,
	'h': plotui.KeyH,
	'o': plotui.KeyO,
	'p': plotui.KeyP,
}

var specialKeys = map[tcell.Key]plotui.Key{
	tcell.KeyLeft:  plotui.KeyLeft,
	tcell.KeyUp:    plotui.KeyUp,
	tcell.KeyRight: plotui.KeyRight,
	tcell.KeyDown:  plotui.KeyDown,
}

// Host drives a Session from a tcell screen.
type Host struct {
	screen  tcell.Screen
	session *plotui.Session
	frames  *plotui.FrameQueue
	surface *plotui.StaticSurface
	opts    Options

	cols, rows int
	pressed    bool
	sidebar    bool // current press started in the sidebar
	editing    bool
	drag       *plotui.DragReorder[*plotui.FunctionItem]

	pollDone chan struct{} // closed when Run's event reader exits
}

// New creates a Session over engine drawn on screen. The screen must be
// initialised; New enables mouse reporting on it.
func New(screen tcell.Screen, engine plotui.Engine, cfg plotui.Config, opts Options) (*Host, error) {
	opts.defaults()
	h := &Host{
		screen: screen,
		frames: &plotui.FrameQueue{},
		surface: &plotui.StaticSurface{
			OriginX: float64(opts.SidebarCols),
			ScaleX:  opts.CellWidth,
			ScaleY:  opts.CellHeight,
		},
		opts: opts,
	}
	var err error
	h.session, err = plotui.NewSession(engine, h.surface, h.frames, cfg)
	if err != nil {
		return nil, err
	}
	// Rows are one cell tall in document space.
	h.drag = plotui.NewDragReorder(h.session.Functions().Registry(), 1)
	h.session.Functions().OnFocusEditor = func(plotui.LocalID) { h.editing = true }
	screen.EnableMouse()
	h.resize()
	return h, nil
}

// Session returns the hosted session.
func (h *Host) Session() *plotui.Session { return h.session }

// Run polls events and ticks until ctx is cancelled or the user quits.
func (h *Host) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	h.pollDone = make(chan struct{})
	go func() {
		defer close(h.pollDone)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			if ctx.Err() != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	h.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !h.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			h.tick(float32(TickInterval.Seconds()))
		}
	}
}

func (h *Host) tick(dt float32) {
	h.session.Update(dt)
	if h.frames.Pump() > 0 || h.session.Marker().Fading() {
		h.draw()
	}
}

func (h *Host) resize() {
	h.cols, h.rows = h.screen.Size()
	w := max(h.cols-h.opts.SidebarCols, 1)
	h.session.Resize(int(float64(w)*h.opts.CellWidth), int(float64(h.rows)*h.opts.CellHeight))
}

// handleEvent applies one terminal event and reports whether to keep running.
func (h *Host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *tcell.EventMouse:
		h.handleMouse(ev)
	case *tcell.EventResize:
		h.screen.Sync()
		h.resize()
		h.draw()
	}
	return true
}

func (h *Host) handleKey(ev *tcell.EventKey) bool {
	fl := h.session.Functions()
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return false
	case tcell.KeyCtrlS:
		if h.opts.Slots != nil {
			h.session.Save(h.opts.Slots)
		}
		return true
	case tcell.KeyCtrlL:
		if h.opts.Slots != nil {
			if slots, err := h.opts.Slots.List(); err == nil && len(slots) > 0 {
				h.session.Load(h.opts.Slots, slots[len(slots)-1])
			}
		}
		return true
	}

	if h.editing {
		switch ev.Key() {
		case tcell.KeyEscape:
			h.editing = false
		case tcell.KeyEnter, tcell.KeyDown:
			fl.FocusNext()
		case tcell.KeyUp:
			fl.FocusPrev()
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			h.editFocused(func(s string) string {
				r := []rune(s)
				if len(r) == 0 {
					return s
				}
				return string(r[:len(r)-1])
			})
		case tcell.KeyRune:
			h.editFocused(func(s string) string { return s + string(ev.Rune()) })
		}
		return true
	}

	mods := modifiers(ev.Modifiers())
	switch ev.Key() {
	case tcell.KeyRune:
		if k, ok := runeKeys[ev.Rune()]; ok {
			if ev.Rune() == '+' {
				mods |= plotui.ModShift
			}
			h.session.HandleKey(k, mods)
		}
	case tcell.KeyBackspace:
		// Ctrl+H arrives as backspace in most terminals.
		h.session.HandleKey(plotui.KeyH, mods|plotui.ModCtrl)
	default:
		if k, ok := specialKeys[ev.Key()]; ok {
			h.session.HandleKey(k, mods)
		}
	}
	return true
}

func (h *Host) editFocused(edit func(string) string) {
	fl := h.session.Functions()
	id, ok := fl.Focused()
	if !ok {
		return
	}
	it, _ := fl.Item(id)
	if err := fl.SetExpr(id, edit(it.Expr)); err != nil {
		plotui.Logger().Warn("edit rejected", "err", err)
	}
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := float64(col), float64(row)
	btn := ev.Buttons()
	inSidebar := col < h.opts.SidebarCols

	if btn&(tcell.WheelUp|tcell.WheelDown) != 0 {
		if inSidebar {
			return
		}
		detail := 3.0
		if btn&tcell.WheelUp != 0 {
			detail = -3
		}
		h.session.Handle(plotui.RawEvent{
			Kind:  plotui.RawWheel,
			Wheel: plotui.RawWheelEvent{Source: plotui.WheelLegacyDOMScroll, Detail: detail, X: x, Y: y},
		})
		return
	}

	down := btn&tcell.Button1 != 0
	switch {
	case down && !h.pressed:
		h.pressed = true
		h.sidebar = inSidebar
		if inSidebar {
			h.pressRow(row)
			return
		}
		h.editing = false
		h.session.Handle(plotui.RawEvent{Kind: plotui.RawMouseDown, PageX: x, PageY: y})
	case down:
		if h.sidebar {
			h.drag.Move(y)
			return
		}
		h.session.Handle(plotui.RawEvent{Kind: plotui.RawMouseMove, PageX: x, PageY: y})
	case h.pressed:
		h.pressed = false
		if h.sidebar {
			h.drag.End()
			return
		}
		h.session.Handle(plotui.RawEvent{Kind: plotui.RawMouseUp, PageX: x, PageY: y})
	default:
		if !inSidebar {
			h.session.Handle(plotui.RawEvent{Kind: plotui.RawMouseMove, PageX: x, PageY: y})
		}
	}
}

func (h *Host) pressRow(row int) {
	fl := h.session.Functions()
	e, ok := fl.Registry().At(row)
	if !ok {
		return
	}
	if fl.Focus(e.ID) != nil {
		return
	}
	h.editing = true
	if !e.Widget.Placeholder {
		h.drag.Begin(e.ID, float64(row))
	}
}

func modifiers(m tcell.ModMask) plotui.KeyModifiers {
	var out plotui.KeyModifiers
	if m&tcell.ModShift != 0 {
		out |= plotui.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= plotui.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= plotui.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		out |= plotui.ModMeta
	}
	return out
}

func (h *Host) draw() {
	h.screen.Clear()
	h.drawAxes()
	h.drawSidebar()
	h.drawMarker()
	h.screen.Show()
}

func (h *Host) drawAxes() {
	b := h.session.View().Bounds()
	left := h.opts.SidebarCols
	w := h.cols - left
	if w <= 0 || h.rows <= 0 {
		return
	}
	if b.YMin < 0 && b.YMax > 0 {
		y := int(float64(h.rows) * b.YMax / (b.YMax - b.YMin))
		for x := left; x < h.cols; x++ {
			h.screen.SetContent(x, y, '─', nil, styleAxis)
		}
	}
	if b.XMin < 0 && b.XMax > 0 {
		x := left + int(float64(w)*-b.XMin/(b.XMax-b.XMin))
		for y := 0; y < h.rows; y++ {
			h.screen.SetContent(x, y, '│', nil, styleAxis)
		}
	}
	grid := "cartesian"
	if h.session.View().Polar() {
		grid = "polar"
	}
	h.put(left+1, h.rows-1, w-1, fmt.Sprintf("x [%.3g, %.3g] y [%.3g, %.3g] %s", b.XMin, b.XMax, b.YMin, b.YMax, grid), styleAxis)
}

func (h *Host) drawSidebar() {
	sw := h.opts.SidebarCols
	for y := 0; y < h.rows; y++ {
		for x := 0; x < sw; x++ {
			h.screen.SetContent(x, y, ' ', nil, styleSidebar)
		}
	}

	fl := h.session.Functions()
	focused, hasFocus := fl.Focused()
	row := 0
	for _, it := range fl.Items() {
		st := styleSidebar
		if hasFocus && it.ID == focused {
			st = st.Reverse(true)
		}
		if it.Placeholder {
			h.put(2, row, sw-2, "+ new function", styleHint)
		} else {
			c := tcell.NewRGBColor(int32(it.Color.R*255), int32(it.Color.G*255), int32(it.Color.B*255))
			h.screen.SetContent(0, row, '■', nil, styleSidebar.Foreground(c))
			h.put(2, row, sw-2, it.Expr, st)
		}
		row++
	}
	row++
	for _, it := range h.session.Sliders().Items() {
		label := fmt.Sprintf("%s = %.3g [%.3g, %.3g]", it.Var, it.Value, it.Bounds.Min, it.Bounds.Max)
		if it.Animating() {
			label += " ~"
		}
		h.put(1, row, sw-1, label, styleSidebar)
		row++
	}

	if msg := fl.Error(); msg != "" {
		h.put(1, h.rows-2, sw-1, msg, styleError.Background(tcell.ColorDarkSlateGray))
	}
	if st := h.session.Status(); st.Message != "" {
		h.put(1, h.rows-1, sw-1, st.Message, styleHint)
	}
}

func (h *Host) drawMarker() {
	m := h.session.Marker()
	if m.Text() == "" || m.Alpha() <= 0 {
		return
	}
	p := m.Position()
	col := h.opts.SidebarCols + int(p.X/h.opts.CellWidth)
	row := int(p.Y / h.opts.CellHeight)
	st := styleDefault.Bold(true)
	if m.Alpha() < 1 {
		st = styleDefault.Dim(true)
	}
	h.put(col, row, h.cols-col, m.Text(), st)
}

// put writes s at (x, y), clipped to width cells.
func (h *Host) put(x, y, width int, s string, st tcell.Style) {
	if y < 0 || y >= h.rows || width <= 0 {
		return
	}
	used := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if used+rw > width {
			return
		}
		h.screen.SetContent(x+used, y, r, nil, st)
		used += rw
	}
}

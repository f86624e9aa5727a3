package plotui

import "fmt"

// FunctionItem is the view model of one function row. Hosts render from it;
// every field is re-read from the engine after each edit.
type FunctionItem struct {
	ID          LocalID
	Name        string
	Expr        string
	Color       Color
	UsesT       bool
	TBounds     Range
	Placeholder bool
}

// FunctionList binds the engine's function list to a placeholder-terminated
// registry. The last row is always an empty placeholder; typing into it
// turns it into a real function and adds a new placeholder.
type FunctionList struct {
	engine FunctionEngine
	reg    *Registry[*FunctionItem]
	redraw RedrawRequester

	focused  LocalID
	hasFocus bool
	err      string

	// OnFocusEditor, if set, is called when the engine asks for the
	// current function's editor to take keyboard focus.
	OnFocusEditor func(id LocalID)
}

// NewFunctionList creates a list over engine. Call Resync to adopt the
// engine's existing functions.
func NewFunctionList(engine FunctionEngine, redraw RedrawRequester, maxFuncs int) *FunctionList {
	f := &FunctionList{engine: engine, redraw: redraw}
	f.reg = NewRegistry[*FunctionItem](functionEntities{engine}, WidgetFuncs[*FunctionItem]{
		Create: func(id LocalID, _ int) *FunctionItem { return &FunctionItem{ID: id} },
	}, redraw, RegistryOptions{Name: "functions", MaxEntities: maxFuncs, Placeholder: true})
	return f
}

// Registry exposes the underlying registry, e.g. for a DragReorder.
func (f *FunctionList) Registry() *Registry[*FunctionItem] { return f.reg }

// Len returns the number of rows, placeholder included.
func (f *FunctionList) Len() int { return f.reg.Len() }

// Items returns a snapshot of every row in engine order.
func (f *FunctionList) Items() []FunctionItem {
	out := make([]FunctionItem, 0, f.reg.Len())
	for _, e := range f.reg.Entities() {
		out = append(out, *e.Widget)
	}
	return out
}

// Item returns the row for id.
func (f *FunctionList) Item(id LocalID) (FunctionItem, bool) {
	e, ok := f.reg.ByLocalID(id)
	if !ok {
		return FunctionItem{}, false
	}
	return *e.Widget, true
}

// Resync discards local rows and rebuilds them from the engine.
func (f *FunctionList) Resync() {
	f.reg.Reset()
	f.reg.Adopt()
	f.ensurePlaceholder()
	f.refreshAll()
	f.syncFocus()
	f.err = f.engine.FuncError()
}

// ensurePlaceholder reserves the last row when it is empty and otherwise
// appends an empty one. A full engine is left without a placeholder; the
// next Remove tries again.
func (f *FunctionList) ensurePlaceholder() {
	if f.reg.HasPlaceholder() {
		return
	}
	n := f.reg.Len()
	if n > 0 && f.engine.FuncExpr(n-1) == "" {
		f.reg.ReserveTail()
		return
	}
	if _, err := f.reg.Append(); err != nil {
		Logger().Warn("no room for placeholder function", "err", err)
	}
}

// SetExpr sets id's expression. Editing the placeholder first appends a new
// placeholder; if that fails the edit is not applied.
func (f *FunctionList) SetExpr(id LocalID, expr string) error {
	promoted := false
	if expr != "" {
		var err error
		if promoted, err = f.reg.Promote(id); err != nil {
			return err
		}
	}
	i, err := f.reg.IndexOf(id)
	if err != nil {
		return err
	}
	f.engine.SetFuncExpr(i, expr)
	f.engine.SetCurrFunc(i)
	f.focused, f.hasFocus = id, true
	f.refresh(i)
	if promoted {
		f.refresh(f.reg.Len() - 1)
	}
	f.err = f.engine.FuncError()
	f.requestRedraw()
	return nil
}

// SetColor sets id's plot color.
func (f *FunctionList) SetColor(id LocalID, c Color) error {
	i, err := f.reg.IndexOf(id)
	if err != nil {
		return err
	}
	f.engine.SetFuncColor(i, c.Hex())
	f.refresh(i)
	f.requestRedraw()
	return nil
}

// SetTBounds sets the parameter range of a function that uses t.
func (f *FunctionList) SetTBounds(id LocalID, r Range) error {
	i, err := f.reg.IndexOf(id)
	if err != nil {
		return err
	}
	if !r.Valid() {
		return fmt.Errorf("functions %d: t-bounds [%v, %v]: %w", id, r.Min, r.Max, ErrInvalidRange)
	}
	if !f.engine.SetFuncTBounds(i, r.Min, r.Max) {
		return fmt.Errorf("functions %d: t-bounds: %w", id, ErrRejectedByEngine)
	}
	f.refresh(i)
	f.requestRedraw()
	return nil
}

// Remove deletes a function. The placeholder cannot be removed. Removing
// from a full list makes room for a new placeholder.
func (f *FunctionList) Remove(id LocalID) error {
	if err := f.reg.Remove(id); err != nil {
		return err
	}
	if !f.reg.HasPlaceholder() {
		f.ensurePlaceholder()
		f.refreshAll()
	}
	f.syncFocus()
	f.err = f.engine.FuncError()
	return nil
}

// Move reorders a function. Neither index may be the placeholder.
func (f *FunctionList) Move(from, to int) error {
	if err := f.reg.Reorder(from, to); err != nil {
		return err
	}
	f.syncFocus()
	return nil
}

// Focus makes id the engine's current function.
func (f *FunctionList) Focus(id LocalID) error {
	i, err := f.reg.IndexOf(id)
	if err != nil {
		return err
	}
	f.engine.SetCurrFunc(i)
	f.focused, f.hasFocus = id, true
	f.err = f.engine.FuncError()
	f.requestRedraw()
	return nil
}

// Focused returns the current function, if any.
func (f *FunctionList) Focused() (LocalID, bool) { return f.focused, f.hasFocus }

// FocusNext moves focus one row down, stopping at the placeholder.
func (f *FunctionList) FocusNext() (LocalID, bool) { return f.focusStep(1) }

// FocusPrev moves focus one row up, stopping at the first row.
func (f *FunctionList) FocusPrev() (LocalID, bool) { return f.focusStep(-1) }

func (f *FunctionList) focusStep(d int) (LocalID, bool) {
	if f.reg.Len() == 0 {
		return 0, false
	}
	i := 0
	if f.hasFocus {
		if j, err := f.reg.IndexOf(f.focused); err == nil {
			i = min(max(j+d, 0), f.reg.Len()-1)
		}
	}
	e, _ := f.reg.At(i)
	if err := f.Focus(e.ID); err != nil {
		return 0, false
	}
	return e.ID, true
}

// FocusEditor handles the engine's request to focus the current editor.
func (f *FunctionList) FocusEditor() {
	f.syncFocus()
	if f.hasFocus && f.OnFocusEditor != nil {
		f.OnFocusEditor(f.focused)
	}
}

// Error returns the last polled parse error of the current function.
func (f *FunctionList) Error() string { return f.err }

// PollError re-reads the engine's error string and reports whether it
// changed.
func (f *FunctionList) PollError() bool {
	e := f.engine.FuncError()
	if e == f.err {
		return false
	}
	f.err = e
	return true
}

func (f *FunctionList) syncFocus() {
	e, ok := f.reg.At(f.engine.CurrFunc())
	f.focused, f.hasFocus = e.ID, ok
}

func (f *FunctionList) refreshAll() {
	for i := range f.reg.Len() {
		f.refresh(i)
	}
}

func (f *FunctionList) refresh(i int) {
	e, ok := f.reg.At(i)
	if !ok {
		return
	}
	_ = f.reg.Refresh(e.ID)
	it := e.Widget
	it.Name = f.engine.FuncName(i)
	it.Expr = f.engine.FuncExpr(i)
	c, err := ParseHexColor(f.engine.FuncColor(i))
	if err != nil {
		Logger().Debug("function color", "index", i, "err", err)
	}
	it.Color = c
	it.UsesT = f.engine.FuncUsesT(i)
	lo, hi := f.engine.FuncTBounds(i)
	it.TBounds = Range{lo, hi}
	it.Placeholder = f.reg.IsPlaceholder(e.ID)
}

func (f *FunctionList) requestRedraw() {
	if f.redraw != nil {
		f.redraw.RequestRedraw()
	}
}

package plotui

import "fmt"

// LocalID identifies an entity for the lifetime of a session. IDs are
// assigned in increasing order and never reused, even after Reset.
type LocalID int

// Display holds fields mirrored from the engine for rendering only. The
// engine stays authoritative; these are refreshed, never written back.
type Display struct {
	Name  string
	Color string
	Lo    float64
	Hi    float64
}

// EntityEngine is the index-addressed call set a Registry drives. Indices
// always refer to the engine's current ordering.
type EntityEngine interface {
	// AppendEntity creates an entity at the tail; false means rejected.
	AppendEntity() bool
	DeleteEntity(index int)
	MoveEntity(from, to int)
	NumEntities() int
	Describe(index int) Display
}

// WidgetFactory creates and destroys the on-screen representation of an
// entity. W is an opaque handle; it must be comparable so the registry can
// map it back to an index.
type WidgetFactory[W comparable] interface {
	CreateWidget(id LocalID, index int) W
	DestroyWidget(w W)
}

// WidgetFuncs adapts a pair of functions to WidgetFactory. Destroy may be nil.
type WidgetFuncs[W comparable] struct {
	Create  func(id LocalID, index int) W
	Destroy func(w W)
}

// CreateWidget implements WidgetFactory.
func (f WidgetFuncs[W]) CreateWidget(id LocalID, index int) W { return f.Create(id, index) }

// DestroyWidget implements WidgetFactory.
func (f WidgetFuncs[W]) DestroyWidget(w W) {
	if f.Destroy != nil {
		f.Destroy(w)
	}
}

// RedrawRequester receives a redraw request after each mutation.
// *RenderScheduler implements it.
type RedrawRequester interface {
	RequestRedraw()
}

// Entity is a registry record. Values returned by the registry are copies.
type Entity[W comparable] struct {
	ID      LocalID
	Index   int
	Widget  W
	Display Display
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// Name labels log lines ("functions", "sliders").
	Name string
	// MaxEntities caps the collection, placeholder included. 0 = no cap.
	MaxEntities int
	// Placeholder reserves the final slot for the next append: it can be
	// neither removed nor reordered. The tail is only reserved while one
	// exists; a full engine leaves every row a real entity.
	Placeholder bool
}

// Registry keeps an ordered list of entities in lockstep with the engine's
// index-addressed list. After every public method returns, entity i has
// Index i and both lookup maps agree with the sequence.
type Registry[W comparable] struct {
	backend EntityEngine
	widgets WidgetFactory[W]
	redraw  RedrawRequester
	opts    RegistryOptions

	entities []*Entity[W]
	byID     map[LocalID]int
	byWidget map[W]int
	nextID   LocalID
	// reserved is set while the tail entity is the placeholder.
	reserved bool
}

// NewRegistry creates an empty registry. Call Adopt to pick up entities the
// engine already holds. redraw may be nil.
func NewRegistry[W comparable](backend EntityEngine, widgets WidgetFactory[W], redraw RedrawRequester, opts RegistryOptions) *Registry[W] {
	if opts.Name == "" {
		opts.Name = "entities"
	}
	return &Registry[W]{
		backend:  backend,
		widgets:  widgets,
		redraw:   redraw,
		opts:     opts,
		byID:     make(map[LocalID]int),
		byWidget: make(map[W]int),
	}
}

// Len returns the number of entities, placeholder included.
func (r *Registry[W]) Len() int { return len(r.entities) }

// At returns the entity at index i.
func (r *Registry[W]) At(i int) (Entity[W], bool) {
	if i < 0 || i >= len(r.entities) {
		return Entity[W]{}, false
	}
	return *r.entities[i], true
}

// Entities returns a snapshot of the sequence in index order.
func (r *Registry[W]) Entities() []Entity[W] {
	out := make([]Entity[W], len(r.entities))
	for i, e := range r.entities {
		out[i] = *e
	}
	return out
}

// ByLocalID looks an entity up by its session ID.
func (r *Registry[W]) ByLocalID(id LocalID) (Entity[W], bool) {
	i, ok := r.byID[id]
	if !ok {
		return Entity[W]{}, false
	}
	return *r.entities[i], true
}

// ByWidget looks an entity up by its widget handle.
func (r *Registry[W]) ByWidget(w W) (Entity[W], bool) {
	i, ok := r.byWidget[w]
	if !ok {
		return Entity[W]{}, false
	}
	return *r.entities[i], true
}

// IndexOf returns the current engine index of id.
func (r *Registry[W]) IndexOf(id LocalID) (int, error) {
	i, ok := r.byID[id]
	if !ok {
		return -1, fmt.Errorf("%s %d: %w", r.opts.Name, id, ErrNotFound)
	}
	return i, nil
}

// IsPlaceholder reports whether id is the reserved tail slot.
func (r *Registry[W]) IsPlaceholder(id LocalID) bool {
	i, ok := r.byID[id]
	return ok && r.reservedAt(i)
}

// HasPlaceholder reports whether the tail is currently reserved.
func (r *Registry[W]) HasPlaceholder() bool { return r.reserved && len(r.entities) > 0 }

// ReserveTail marks the existing tail entity as the placeholder. It reports
// false when the registry has no placeholder option or no entities.
func (r *Registry[W]) ReserveTail() bool {
	if !r.opts.Placeholder || len(r.entities) == 0 {
		return false
	}
	r.reserved = true
	return true
}

func (r *Registry[W]) reservedAt(i int) bool {
	return r.opts.Placeholder && r.reserved && i == len(r.entities)-1
}

// Append asks the engine for a new entity at the tail and, only if it
// agrees, records it locally and creates its widget.
func (r *Registry[W]) Append() (LocalID, error) {
	if r.opts.MaxEntities > 0 && len(r.entities) >= r.opts.MaxEntities {
		return 0, fmt.Errorf("%s: %d of %d: %w", r.opts.Name, len(r.entities), r.opts.MaxEntities, ErrEntityLimitReached)
	}
	if !r.backend.AppendEntity() {
		Logger().Warn("engine rejected append", "registry", r.opts.Name, "len", len(r.entities))
		return 0, fmt.Errorf("%s: append: %w", r.opts.Name, ErrRejectedByEngine)
	}
	id := r.push()
	r.reserved = r.opts.Placeholder
	r.requestRedraw()
	return id, nil
}

// push records the engine entity at index len(entities).
func (r *Registry[W]) push() LocalID {
	idx := len(r.entities)
	id := r.nextID
	r.nextID++
	e := &Entity[W]{
		ID:      id,
		Index:   idx,
		Widget:  r.widgets.CreateWidget(id, idx),
		Display: r.backend.Describe(idx),
	}
	r.entities = append(r.entities, e)
	r.byID[id] = idx
	r.byWidget[e.Widget] = idx
	return id
}

// Promote turns the placeholder into a real entity by appending a fresh
// placeholder after it. It reports whether id was the placeholder. Calling
// it on any other entity is a no-op.
func (r *Registry[W]) Promote(id LocalID) (bool, error) {
	i, ok := r.byID[id]
	if !ok {
		return false, fmt.Errorf("%s %d: %w", r.opts.Name, id, ErrNotFound)
	}
	if !r.reservedAt(i) {
		return false, nil
	}
	if _, err := r.Append(); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes id from the engine and then from the local sequence,
// shifting every later entity down by one.
func (r *Registry[W]) Remove(id LocalID) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%s %d: %w", r.opts.Name, id, ErrNotFound)
	}
	if r.reservedAt(i) {
		return fmt.Errorf("%s %d: remove placeholder: %w", r.opts.Name, id, ErrProtectedEntity)
	}
	r.backend.DeleteEntity(i)

	e := r.entities[i]
	copy(r.entities[i:], r.entities[i+1:])
	r.entities[len(r.entities)-1] = nil
	r.entities = r.entities[:len(r.entities)-1]
	delete(r.byID, e.ID)
	delete(r.byWidget, e.Widget)
	r.reindex(i, len(r.entities)-1)

	r.widgets.DestroyWidget(e.Widget)
	r.requestRedraw()
	return nil
}

// Reorder moves the entity at from to to, shifting the ones in between by
// one toward from, and issues a single engine move.
func (r *Registry[W]) Reorder(from, to int) error {
	n := len(r.entities)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return fmt.Errorf("%s: reorder %d -> %d of %d: %w", r.opts.Name, from, to, n, ErrInvalidRange)
	}
	if r.reservedAt(from) || r.reservedAt(to) {
		return fmt.Errorf("%s: reorder %d -> %d: %w", r.opts.Name, from, to, ErrProtectedEntity)
	}
	r.backend.MoveEntity(from, to)

	moved := r.entities[from]
	if from < to {
		copy(r.entities[from:to], r.entities[from+1:to+1])
	} else {
		copy(r.entities[to+1:from+1], r.entities[to:from])
	}
	r.entities[to] = moved
	r.reindex(min(from, to), max(from, to))

	r.requestRedraw()
	return nil
}

// reindex rewrites Index and both maps for entities[lo..hi].
func (r *Registry[W]) reindex(lo, hi int) {
	for j := lo; j <= hi && j < len(r.entities); j++ {
		e := r.entities[j]
		e.Index = j
		r.byID[e.ID] = j
		r.byWidget[e.Widget] = j
	}
}

// Refresh re-reads id's cached display fields from the engine.
func (r *Registry[W]) Refresh(id LocalID) error {
	i, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%s %d: %w", r.opts.Name, id, ErrNotFound)
	}
	r.entities[i].Display = r.backend.Describe(i)
	return nil
}

// Adopt records every engine entity beyond the local length, without
// calling the engine's append. It returns how many were adopted. Adopted
// entities are real; call ReserveTail to treat the last one as the
// placeholder.
func (r *Registry[W]) Adopt() int {
	n := 0
	for len(r.entities) < r.backend.NumEntities() {
		r.push()
		n++
	}
	if n > 0 {
		r.reserved = false
		r.requestRedraw()
	}
	return n
}

// Reset drops every local record and destroys their widgets. The engine is
// not touched; IDs keep counting up.
func (r *Registry[W]) Reset() {
	for _, e := range r.entities {
		r.widgets.DestroyWidget(e.Widget)
	}
	clear(r.entities)
	r.entities = r.entities[:0]
	clear(r.byID)
	clear(r.byWidget)
	r.reserved = false
}

// Check verifies the index and lookup-map invariants.
func (r *Registry[W]) Check() error {
	if len(r.byID) != len(r.entities) || len(r.byWidget) != len(r.entities) {
		return fmt.Errorf("%s: %d entities, %d ids, %d widgets", r.opts.Name, len(r.entities), len(r.byID), len(r.byWidget))
	}
	for i, e := range r.entities {
		if e.Index != i {
			return fmt.Errorf("%s: entity %d has index %d at position %d", r.opts.Name, e.ID, e.Index, i)
		}
		if r.byID[e.ID] != i {
			return fmt.Errorf("%s: id %d maps to %d, want %d", r.opts.Name, e.ID, r.byID[e.ID], i)
		}
		if j, ok := r.byWidget[e.Widget]; !ok || j != i {
			return fmt.Errorf("%s: widget of %d maps to %d, want %d", r.opts.Name, e.ID, j, i)
		}
	}
	return nil
}

func (r *Registry[W]) requestRedraw() {
	if r.redraw != nil {
		r.redraw.RequestRedraw()
	}
}

package plotui

import "errors"

// DragReorder moves a registry entity while the user drags its row in a
// list of fixed-height rows. Each time the dragged row's centre crosses the
// midpoint of a neighbour, the two swap through Registry.Reorder.
type DragReorder[W comparable] struct {
	reg       *Registry[W]
	rowHeight float64

	id     LocalID
	active bool
	grab   float64 // pointer offset from the dragged row's top
	top    float64 // dragged row's current top, list coordinates
	swaps  int
}

// NewDragReorder creates a drag helper over reg for rows of rowHeight.
func NewDragReorder[W comparable](reg *Registry[W], rowHeight float64) *DragReorder[W] {
	return &DragReorder[W]{reg: reg, rowHeight: rowHeight}
}

// Begin starts dragging id, grabbed at list coordinate y.
func (d *DragReorder[W]) Begin(id LocalID, y float64) error {
	i, err := d.reg.IndexOf(id)
	if err != nil {
		return err
	}
	d.id = id
	d.active = true
	d.top = float64(i) * d.rowHeight
	d.grab = y - d.top
	d.swaps = 0
	return nil
}

// Move updates the drag with the pointer at list coordinate y and returns
// how many swaps it caused. A protected neighbour stops the row in place.
func (d *DragReorder[W]) Move(y float64) (int, error) {
	if !d.active {
		return 0, nil
	}
	d.top = y - d.grab
	centre := d.top + d.rowHeight/2
	i, err := d.reg.IndexOf(d.id)
	if err != nil {
		d.active = false
		return 0, err
	}
	n := 0
	for {
		var to int
		switch {
		case i+1 < d.reg.Len() && centre > d.mid(i+1):
			to = i + 1
		case i > 0 && centre < d.mid(i-1):
			to = i - 1
		default:
			d.swaps += n
			return n, nil
		}
		if err := d.reg.Reorder(i, to); err != nil {
			d.swaps += n
			if errors.Is(err, ErrProtectedEntity) {
				return n, nil
			}
			return n, err
		}
		i = to
		n++
	}
}

// End finishes the drag and returns the total number of swaps.
func (d *DragReorder[W]) End() int {
	d.active = false
	return d.swaps
}

// Active reports whether a drag is in progress.
func (d *DragReorder[W]) Active() bool { return d.active }

// Dragged returns the entity being dragged.
func (d *DragReorder[W]) Dragged() (LocalID, bool) { return d.id, d.active }

// Offset returns how far the dragged row is drawn from its slot.
func (d *DragReorder[W]) Offset() float64 {
	i, err := d.reg.IndexOf(d.id)
	if !d.active || err != nil {
		return 0
	}
	return d.top - float64(i)*d.rowHeight
}

func (d *DragReorder[W]) mid(i int) float64 {
	return float64(i)*d.rowHeight + d.rowHeight/2
}

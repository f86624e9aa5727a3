package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/nivalis/plotui"
)

// statsInterval is how often the overlay text is rebuilt, in seconds.
const statsInterval = 0.5

// statsOverlay shows frame rates and redraw and gesture counters in the
// canvas corner. F3 toggles it.
type statsOverlay struct {
	img     *ebiten.Image
	label   string
	elapsed float64
	shown   bool
}

func (o *statsOverlay) update(dt float64, s *plotui.Session) {
	if !o.shown {
		return
	}
	o.elapsed += dt
	if o.label != "" && o.elapsed < statsInterval {
		return
	}
	o.elapsed = 0
	o.label = statsLabel(ebiten.ActualFPS(), ebiten.ActualTPS(), s.Scheduler().Stats(), s.Gestures().Stats())
}

func statsLabel(fps, tps float64, sch plotui.SchedulerStats, g plotui.GestureStats) string {
	return fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nredraws: %d in %d loops\nwheel %d  pointer %d  dropped %d",
		fps, tps, sch.Frames, sch.Loops, g.Wheels, g.Pointers, g.Dropped)
}

func (o *statsOverlay) draw(screen *ebiten.Image, x, y float64) {
	if !o.shown || o.label == "" {
		return
	}
	if o.img == nil {
		// Enough for four lines of debug text.
		o.img = ebiten.NewImage(220, 64)
	}
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, o.label)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(x, y)
	screen.DrawImage(o.img, op)
}

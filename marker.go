package plotui

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// MarkerOverlay mirrors the engine's hover marker (the label shown next to a
// point under the pointer) and fades it in and out. Hosts draw it at
// Position with Alpha; the Session polls the engine into it after pointer
// input and keeps redrawing while it fades.
type MarkerOverlay struct {
	offset Vec2
	fade   float32

	text    string
	anchor  Vec2
	visible bool
	alpha   float32
	tween   *gween.Tween
}

// NewMarkerOverlay creates a hidden marker.
func NewMarkerOverlay(cfg MarkerConfig) *MarkerOverlay {
	return &MarkerOverlay{
		offset: Vec2{cfg.OffsetX, cfg.OffsetY},
		fade:   float32(cfg.FadeSeconds),
	}
}

// Sync applies the engine's marker state and reports whether anything
// visible changed. Empty text hides the marker; the last text is kept while
// it fades out.
func (m *MarkerOverlay) Sync(text string, x, y float64) bool {
	changed := false
	if text != "" {
		if m.text != text || m.anchor != (Vec2{x, y}) {
			changed = true
		}
		m.text = text
		m.anchor = Vec2{x, y}
		if !m.visible {
			m.visible = true
			m.fadeTo(1)
			changed = true
		}
		return changed
	}
	if m.visible {
		m.visible = false
		m.fadeTo(0)
		changed = true
	}
	return changed
}

func (m *MarkerOverlay) fadeTo(a float32) {
	if m.fade <= 0 || m.alpha == a {
		m.alpha = a
		m.tween = nil
		if a == 0 {
			m.text = ""
		}
		return
	}
	m.tween = gween.New(m.alpha, a, m.fade*absf(a-m.alpha), ease.OutQuad)
}

// Update advances the fade by dt seconds.
func (m *MarkerOverlay) Update(dt float32) {
	if m.tween == nil {
		return
	}
	val, finished := m.tween.Update(dt)
	m.alpha = val
	if finished {
		m.tween = nil
		if !m.visible {
			m.text = ""
		}
	}
}

// Fading reports whether a fade is in progress.
func (m *MarkerOverlay) Fading() bool { return m.tween != nil }

// Visible reports whether the engine currently shows a marker.
func (m *MarkerOverlay) Visible() bool { return m.visible }

// Text returns the label to draw; empty once fully hidden.
func (m *MarkerOverlay) Text() string { return m.text }

// Alpha returns the current opacity in [0, 1].
func (m *MarkerOverlay) Alpha() float32 { return m.alpha }

// Position returns where to draw the label: the engine's anchor plus the
// configured offset.
func (m *MarkerOverlay) Position() Vec2 {
	return Vec2{m.anchor.X + m.offset.X, m.anchor.Y + m.offset.Y}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

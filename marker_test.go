package plotui

import "testing"

func TestMarkerFadesInAndOut(t *testing.T) {
	m := NewMarkerOverlay(MarkerConfig{FadeSeconds: 0.2})

	if !m.Sync("1, 2", 10, 20) {
		t.Fatal("showing the marker reported no change")
	}
	if !m.Visible() || !m.Fading() || m.Alpha() != 0 {
		t.Fatalf("visible %v fading %v alpha %v", m.Visible(), m.Fading(), m.Alpha())
	}
	m.Update(0.1)
	if a := m.Alpha(); a <= 0 || a >= 1 {
		t.Errorf("alpha mid-fade = %v", a)
	}
	m.Update(0.2)
	if m.Fading() || m.Alpha() != 1 {
		t.Errorf("after fade in: fading %v alpha %v", m.Fading(), m.Alpha())
	}

	if m.Sync("1, 2", 10, 20) {
		t.Error("unchanged marker reported a change")
	}
	if !m.Sync("3, 4", 30, 40) {
		t.Error("moved marker reported no change")
	}

	m.Sync("", 0, 0)
	if m.Visible() || m.Text() != "3, 4" || !m.Fading() {
		t.Errorf("hiding: visible %v text %q fading %v", m.Visible(), m.Text(), m.Fading())
	}
	m.Update(1)
	if m.Text() != "" || m.Alpha() != 0 || m.Fading() {
		t.Errorf("hidden: text %q alpha %v fading %v", m.Text(), m.Alpha(), m.Fading())
	}
}

func TestMarkerInterruptedFade(t *testing.T) {
	m := NewMarkerOverlay(MarkerConfig{FadeSeconds: 0.2})
	m.Sync("x", 0, 0)
	m.Update(0.1)
	partial := m.Alpha()

	m.Sync("", 0, 0)
	if m.Alpha() != partial {
		t.Errorf("hiding jumped alpha from %v to %v", partial, m.Alpha())
	}
	m.Update(1)
	if m.Alpha() != 0 || m.Text() != "" {
		t.Errorf("alpha %v text %q", m.Alpha(), m.Text())
	}
}

func TestMarkerWithoutFade(t *testing.T) {
	m := NewMarkerOverlay(MarkerConfig{})
	m.Sync("x", 0, 0)
	if m.Alpha() != 1 || m.Fading() {
		t.Errorf("show: alpha %v fading %v", m.Alpha(), m.Fading())
	}
	m.Sync("", 0, 0)
	if m.Alpha() != 0 || m.Text() != "" {
		t.Errorf("hide: alpha %v text %q", m.Alpha(), m.Text())
	}
}

func TestMarkerPositionAddsOffset(t *testing.T) {
	m := NewMarkerOverlay(MarkerConfig{OffsetX: -160, OffsetY: -70})
	m.Sync("x", 300, 200)
	if p := m.Position(); p != (Vec2{140, 130}) {
		t.Errorf("Position = %v, want (140, 130)", p)
	}
}

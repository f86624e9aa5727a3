package plotui

import (
	"fmt"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorBlack is the fallback color for unparsable hex strings.
var ColorBlack = Color{0, 0, 0, 1}

// ParseHexColor parses "rrggbb", "#rrggbb" or "rrggbbaa" as used by the
// engine's color accessors.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return ColorBlack, fmt.Errorf("plotui: bad hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return ColorBlack, fmt.Errorf("plotui: bad hex color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xff
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

// Hex formats the color as "rrggbb" (alpha dropped), the form the engine
// accepts.
func (c Color) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Vec2 is a 2D vector used for canvas positions and offsets.
type Vec2 struct {
	X, Y float64
}

// Range is a closed numeric interval, used for t-bounds and slider bounds.
type Range struct {
	Min, Max float64
}

// Valid reports whether the range is finite and Min < Max.
func (r Range) Valid() bool {
	return finite(r.Min) && finite(r.Max) && r.Min < r.Max
}

// ViewBounds is the visible region of the plot in graph coordinates.
type ViewBounds struct {
	XMin, XMax, YMin, YMax float64
}

// Valid reports whether both axes are finite, non-empty intervals.
func (v ViewBounds) Valid() bool {
	return Range{v.XMin, v.XMax}.Valid() && Range{v.YMin, v.YMax}.Valid()
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// PointerPhase identifies a canonical pointer event.
type PointerPhase uint8

const (
	PointerDown PointerPhase = iota // button pressed or first touch landed
	PointerMove                     // pointer moved, pressed or not
	PointerUp                       // button released or last touch lifted
)

func (p PointerPhase) String() string {
	switch p {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	}
	return "unknown"
}

// PointerEvent is a canvas-local pointer event produced by the
// GestureNormalizer from mouse input or a single touch.
type PointerEvent struct {
	Phase  PointerPhase
	X, Y   float64
	Button MouseButton
	Touch  bool
}

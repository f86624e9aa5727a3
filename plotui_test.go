package plotui

import (
	"math"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"ff0000", Color{1, 0, 0, 1}, false},
		{"#00ff00", Color{0, 1, 0, 1}, false},
		{" 0000ff ", Color{0, 0, 1, 1}, false},
		{"ffffff00", Color{1, 1, 1, 0}, false},
		{"fff", ColorBlack, true},
		{"gg0000", ColorBlack, true},
		{"", ColorBlack, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	for _, s := range []string{"3366cc", "000000", "ffffff", "0a0b0c"} {
		c, err := ParseHexColor(s)
		if err != nil {
			t.Fatal(err)
		}
		if got := c.Hex(); got != s {
			t.Errorf("Hex() = %q, want %q", got, s)
		}
	}
	if got := (Color{R: 2, G: -1, B: 0.5, A: 1}).Hex(); got != "ff0080" {
		t.Errorf("out-of-range channels = %q, want ff0080", got)
	}
}

func TestRangeValid(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want bool
	}{
		{"ordered", Range{0, 1}, true},
		{"negative", Range{-5, -1}, true},
		{"empty", Range{1, 1}, false},
		{"inverted", Range{1, 0}, false},
		{"nan", Range{math.NaN(), 1}, false},
		{"inf", Range{0, math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewBoundsValid(t *testing.T) {
	if !(ViewBounds{-1, 1, -1, 1}).Valid() {
		t.Error("square view rejected")
	}
	if (ViewBounds{-1, 1, 1, 1}).Valid() {
		t.Error("zero-height view accepted")
	}
}

func TestPointerPhaseString(t *testing.T) {
	for p, want := range map[PointerPhase]string{PointerDown: "down", PointerMove: "move", PointerUp: "up", 9: "unknown"} {
		if got := p.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", p, got, want)
		}
	}
}

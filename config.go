package plotui

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Gesture tunables. The touch zoom scale has no single right value: 2 suits
// pinch on phones, FastTouchZoomScale is the snappier alternative.
const (
	DefaultPinchGain       = 1.5
	DefaultTouchZoomScale  = 2.0
	FastTouchZoomScale     = 10.0
	DefaultWheelZoomScale  = 120.0
	DefaultMinZoomDistance = 1.0001
	DefaultFrameBudget     = 50
)

// Config holds every tunable of a Session. Zero values are not usable; start
// from DefaultConfig and override, or load a TOML document with LoadConfig.
type Config struct {
	Gesture   GestureConfig  `toml:"gesture"`
	Render    RenderConfig   `toml:"render"`
	Functions RegistryConfig `toml:"functions"`
	Sliders   RegistryConfig `toml:"sliders"`
	Marker    MarkerConfig   `toml:"marker"`
	Saves     SavesConfig    `toml:"saves"`
}

// GestureConfig controls how raw input turns into engine zoom amounts.
type GestureConfig struct {
	// PinchGain multiplies the change in finger distance (pixels) to produce
	// a synthetic wheel delta.
	PinchGain float64 `toml:"pinch_gain"`
	// TouchZoomScale converts pinch-derived canonical deltas to engine
	// zoom distance.
	TouchZoomScale float64 `toml:"touch_zoom_scale"`
	// WheelZoomScale converts wheel canonical deltas (lines) to engine zoom
	// distance.
	WheelZoomScale float64 `toml:"wheel_zoom_scale"`
	// MinZoomDistance is the smallest distance sent to the engine; the
	// engine takes its logarithm, so it must stay above 1.
	MinZoomDistance float64 `toml:"min_zoom_distance"`
}

// RenderConfig controls the RenderScheduler.
type RenderConfig struct {
	// FrameBudget is the number of frames redrawn after the last request.
	FrameBudget int `toml:"frame_budget"`
}

// RegistryConfig bounds one entity collection. MaxEntities 0 leaves the
// limit to the engine.
type RegistryConfig struct {
	MaxEntities int `toml:"max_entities"`
}

// MarkerConfig positions the hover marker relative to the engine's anchor.
type MarkerConfig struct {
	OffsetX         float64 `toml:"offset_x"`
	OffsetY         float64 `toml:"offset_y"`
	FadeSeconds     float64 `toml:"fade_seconds"`
	ClickableRadius int     `toml:"clickable_radius"`
}

// SavesConfig names the keys used in the save-slot store.
type SavesConfig struct {
	CountKey  string `toml:"count_key"`
	KeyPrefix string `toml:"key_prefix"`
}

// DefaultConfig returns the desktop defaults.
func DefaultConfig() Config {
	return Config{
		Gesture: GestureConfig{
			PinchGain:       DefaultPinchGain,
			TouchZoomScale:  DefaultTouchZoomScale,
			WheelZoomScale:  DefaultWheelZoomScale,
			MinZoomDistance: DefaultMinZoomDistance,
		},
		Render: RenderConfig{FrameBudget: DefaultFrameBudget},
		Marker: MarkerConfig{FadeSeconds: 0.2},
		Saves:  SavesConfig{CountKey: "nsaves", KeyPrefix: "save"},
	}
}

// MobileConfig returns DefaultConfig adjusted for touch screens: a larger
// marker hit radius and the marker lifted clear of the finger.
func MobileConfig() Config {
	c := DefaultConfig()
	c.Marker.ClickableRadius = 12
	c.Marker.OffsetX = -160
	c.Marker.OffsetY = -70
	return c
}

// LoadConfig decodes a TOML document over DefaultConfig. Unknown keys are
// an error.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("plotui: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes a TOML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("plotui: read config: %w", err)
	}
	return LoadConfig(data)
}

// Validate rejects tunables that would break the gesture or redraw math.
func (c Config) Validate() error {
	g := c.Gesture
	switch {
	case !(g.PinchGain > 0):
		return fmt.Errorf("plotui: config: pinch_gain must be > 0, got %v", g.PinchGain)
	case !(g.TouchZoomScale > 0):
		return fmt.Errorf("plotui: config: touch_zoom_scale must be > 0, got %v", g.TouchZoomScale)
	case !(g.WheelZoomScale > 0):
		return fmt.Errorf("plotui: config: wheel_zoom_scale must be > 0, got %v", g.WheelZoomScale)
	case !(g.MinZoomDistance > 1):
		return fmt.Errorf("plotui: config: min_zoom_distance must be > 1, got %v", g.MinZoomDistance)
	case c.Render.FrameBudget <= 0:
		return fmt.Errorf("plotui: config: frame_budget must be > 0, got %d", c.Render.FrameBudget)
	case c.Functions.MaxEntities < 0 || c.Sliders.MaxEntities < 0:
		return fmt.Errorf("plotui: config: max_entities must be >= 0")
	case c.Marker.FadeSeconds < 0:
		return fmt.Errorf("plotui: config: fade_seconds must be >= 0")
	case c.Saves.CountKey == "" || c.Saves.KeyPrefix == "":
		return fmt.Errorf("plotui: config: save keys must not be empty")
	}
	return nil
}

// Encode renders the config as TOML, e.g. to write a starter file.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

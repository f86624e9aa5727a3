package plotui

// CoordinateTranslator maps document (page) coordinates onto the drawing
// surface. Hosts implement it from their own window geometry so the gesture
// code never reads display state itself.
type CoordinateTranslator interface {
	// SurfaceOrigin returns the surface's top-left corner in document space,
	// including any scroll offset.
	SurfaceOrigin() (x, y float64)
	// PixelScale returns surface pixels per document pixel on each axis.
	PixelScale() (sx, sy float64)
}

// StaticSurface is a CoordinateTranslator with fixed geometry. Hosts whose
// geometry changes update the fields between events.
type StaticSurface struct {
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
}

// IdentitySurface returns a surface at the origin with 1:1 scale.
func IdentitySurface() *StaticSurface {
	return &StaticSurface{ScaleX: 1, ScaleY: 1}
}

// SurfaceOrigin implements CoordinateTranslator.
func (s *StaticSurface) SurfaceOrigin() (float64, float64) { return s.OriginX, s.OriginY }

// PixelScale implements CoordinateTranslator.
func (s *StaticSurface) PixelScale() (float64, float64) { return s.ScaleX, s.ScaleY }

// toCanvas converts a document-space point to surface-local pixels.
func toCanvas(t CoordinateTranslator, pageX, pageY float64) (float64, float64) {
	if t == nil {
		return pageX, pageY
	}
	ox, oy := t.SurfaceOrigin()
	sx, sy := t.PixelScale()
	return (pageX - ox) * sx, (pageY - oy) * sy
}

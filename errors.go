package plotui

import (
	"errors"
	"math"
)

// Every public operation either succeeds or returns one of these (possibly
// wrapped with context) and leaves all state as it was.
var (
	ErrEntityLimitReached    = errors.New("plotui: entity limit reached")
	ErrRejectedByEngine      = errors.New("plotui: rejected by engine")
	ErrNotFound              = errors.New("plotui: entity not found")
	ErrInvalidRange          = errors.New("plotui: invalid range")
	ErrProtectedEntity       = errors.New("plotui: protected entity")
	ErrUnsupportedDeltaMode  = errors.New("plotui: unsupported wheel delta mode")
	ErrMalformedGestureEvent = errors.New("plotui: malformed gesture event")
	ErrImport                = errors.New("plotui: import failed")
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package placement

import (
	"fmt"
	"math"
)

// ZoomLimits bounds and steps the user controlled zoom level
type ZoomLimits struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// DefaultZoomLimits matches the editor's zoom buttons
func DefaultZoomLimits() ZoomLimits {
	return ZoomLimits{Min: 0.5, Max: 3, Step: 0.1}
}

// Validate checks that the limits describe a usable range
func (z ZoomLimits) Validate() error {
	if z.Min <= 0 {
		return fmt.Errorf("zoom minimum must be positive, got %g", z.Min)
	}
	if z.Max < z.Min {
		return fmt.Errorf("zoom maximum %g is below minimum %g", z.Max, z.Min)
	}
	if z.Step <= 0 {
		return fmt.Errorf("zoom step must be positive, got %g", z.Step)
	}
	return nil
}

// Clamp limits zoom to [Min, Max]
func (z ZoomLimits) Clamp(zoom float64) float64 {
	return math.Max(z.Min, math.Min(z.Max, zoom))
}

// In returns the zoom level one step closer
func (z ZoomLimits) In(zoom float64) float64 {
	if zoom >= z.Max {
		return z.Max
	}
	return z.Clamp(zoom + z.Step)
}

// Out returns the zoom level one step further away
func (z ZoomLimits) Out(zoom float64) float64 {
	if zoom <= z.Min {
		return z.Min
	}
	return z.Clamp(zoom - z.Step)
}

// Apply moves zoom by delta and clamps the result
func (z ZoomLimits) Apply(zoom, delta float64) float64 {
	return z.Clamp(zoom + delta)
}

package catalog

import "math"

// Display scale defaults, matching the published visualization.
const (
	DefaultObjectiveRadius = 16.0
	DefaultToolMinRadius   = 14.0
	DefaultToolMaxRadius   = 40.0
	DefaultToolExponent    = 1.25
)

// Scale maps a tool's unfiltered degree to a display radius through a
// power-law curve clamped to [Min, Max]. Monotonicity in the degree and
// the unfiltered-degree input are contract; the constants are cosmetic.
type Scale struct {
	Exponent float64
	Min      float64
	Max      float64

	maxDegree int
}

// NewScale builds a scale anchored to the catalog's maximum tool degree.
func NewScale(c *Catalog, exponent, min, max float64) Scale {
	if exponent <= 0 {
		exponent = DefaultToolExponent
	}
	if min <= 0 {
		min = DefaultToolMinRadius
	}
	if max < min {
		max = DefaultToolMaxRadius
	}
	return Scale{
		Exponent:  exponent,
		Min:       min,
		Max:       max,
		maxDegree: c.MaxDegree(),
	}
}

// Radius returns the display radius for a tool with the given unfiltered
// degree.
func (s Scale) Radius(degree int) float64 {
	if degree < 1 {
		degree = 1
	}
	if degree > s.maxDegree {
		degree = s.maxDegree
	}
	if s.maxDegree <= 1 {
		return s.Min
	}
	// Normalized power curve over [1, maxDegree], like d3.scalePow.
	t := float64(degree-1) / float64(s.maxDegree-1)
	return s.Min + math.Pow(t, s.Exponent)*(s.Max-s.Min)
}

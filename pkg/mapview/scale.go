package mapview

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MissingColor is the neutral fill for regions without a matching
// statistic. It sits outside the blue gradient so absent data is never
// mistaken for a low value.
var MissingColor = color.RGBA{R: 209, G: 213, B: 219, A: 255}

var (
	gradientLow, _  = colorful.Hex("#e3f0fa")
	gradientHigh, _ = colorful.Hex("#08519c")
)

// ColorScale maps an indicator value domain onto a continuous two-endpoint
// gradient blended in Lab space. It is derived state: rebuilt whenever the
// statistic set for the current view changes, never mutated in place.
type ColorScale struct {
	min, max float64
}

// NewColorScale builds a scale over the [min, max] of values. A degenerate
// single-value domain is widened symmetrically by one unit so the scale
// never has zero width. Returns nil for an empty value set; callers fall
// back to MissingColor for every region.
func NewColorScale(values []float64) *ColorScale {
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		min--
		max++
	}
	return &ColorScale{min: min, max: max}
}

// Domain returns the calibrated [min, max] range.
func (s *ColorScale) Domain() (min, max float64) { return s.min, s.max }

// Color maps a value to its gradient color. Values outside the domain
// clamp to the nearest endpoint.
func (s *ColorScale) Color(v float64) color.RGBA {
	t := (v - s.min) / (s.max - s.min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	c := gradientLow.BlendLab(gradientHigh, t).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

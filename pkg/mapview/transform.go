package mapview

// Pan/zoom bounds. Scale 1 shows the full fitted extent; zooming past
// MaxScale or under MinScale is refused regardless of the input channel.
const (
	MinScale = 1.0
	MaxScale = 5.0

	// ButtonZoomStep is the multiplicative factor of one discrete zoom
	// press, anchored at the viewport center.
	ButtonZoomStep = 1.2
)

// Transform is the affine pan/zoom applied on top of the fixed projection:
// screen = world*K + (Tx, Ty). It is the only mutable rendering state the
// input channels share, and every channel leaves K inside the clamp range.
// Keeping it separate from the projection means panning and zooming never
// re-trigger the fit-to-viewport computation.
type Transform struct {
	Tx, Ty float64
	K      float64
}

func NewTransform() Transform { return Transform{K: 1} }

// Reset returns the transform to identity. Called when the viewport
// degenerates or is reattached, and on tier changes.
func (t *Transform) Reset() { *t = Transform{K: 1} }

func (t Transform) Identity() bool { return t.K == 1 && t.Tx == 0 && t.Ty == 0 }

// Pan translates by a pointer delta, scale unchanged.
func (t *Transform) Pan(dx, dy float64) {
	t.Tx += dx
	t.Ty += dy
}

// ZoomAt scales by factor while keeping the screen point (px, py) anchored:
// the world point under the pointer before the zoom maps to the same screen
// point after it.
func (t *Transform) ZoomAt(factor, px, py float64) {
	k := clampScale(t.K * factor)
	if k == t.K {
		return
	}
	t.Tx = px - (px-t.Tx)/t.K*k
	t.Ty = py - (py-t.Ty)/t.K*k
	t.K = k
}

// ZoomStep applies one discrete button zoom, anchored at the viewport
// center (cx, cy).
func (t *Transform) ZoomStep(in bool, cx, cy float64) {
	factor := ButtonZoomStep
	if !in {
		factor = 1 / ButtonZoomStep
	}
	t.ZoomAt(factor, cx, cy)
}

// Apply maps a projected world coordinate to the screen.
func (t *Transform) Apply(x, y float64) (sx, sy float64) {
	return x*t.K + t.Tx, y*t.K + t.Ty
}

// Invert maps a screen coordinate back into projected world space, used to
// resolve pointer events against untransformed geometry.
func (t *Transform) Invert(sx, sy float64) (x, y float64) {
	return (sx - t.Tx) / t.K, (sy - t.Ty) / t.K
}

func clampScale(k float64) float64 {
	if k < MinScale {
		return MinScale
	}
	if k > MaxScale {
		return MaxScale
	}
	return k
}

package mapview

// Viewport tracks the pixel size of the rendering surface. It is fed from
// the runtime's layout callback, so it reacts to window resizes without
// polling, and it deduplicates redundant notifications: the generation
// counter advances exactly once per actual size change.
//
// The zero value reports (0, 0), the pending state before the surface is
// first laid out. That is not an error; the view renders a placeholder
// until the viewport becomes ready.
type Viewport struct {
	w, h int
	gen  uint64
}

// Observe records a size notification and reports whether the size
// actually changed.
func (v *Viewport) Observe(w, h int) bool {
	if w == v.w && h == v.h {
		return false
	}
	v.w, v.h = w, h
	v.gen++
	return true
}

// Size returns the current pixel dimensions.
func (v *Viewport) Size() (w, h int) { return v.w, v.h }

// Generation returns the change counter; derived state caches it to decide
// when re-projection is due.
func (v *Viewport) Generation() uint64 { return v.gen }

// Ready reports whether both dimensions are at or above the minimum usable
// size for geometry fitting.
func (v *Viewport) Ready() bool {
	return v.w >= MinViewportSize && v.h >= MinViewportSize
}

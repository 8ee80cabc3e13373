// Package mapview implements the drilldown choropleth map: viewport-fitted
// geometry projection, value-to-color scaling, pan/zoom and pointer
// interaction over irregular region shapes.
package mapview

import (
	"math"

	"github.com/kmapviz/drillmap/pkg/region"
)

const (
	// MinViewportSize is the smallest usable viewport edge in pixels.
	// Below it the projector is undefined and the view shows a placeholder.
	MinViewportSize = 50

	fitPadding = 0.05
)

// PathOpKind is one drawing command of a region outline.
type PathOpKind int

const (
	MoveTo PathOpKind = iota
	LineTo
	ClosePath
)

// PathOp is a single move/line/close command in screen coordinates.
// Close carries no coordinates.
type PathOp struct {
	Kind PathOpKind
	X, Y float64
}

// Projection maps lon/lat onto a pixel viewport. It is fitted once per
// (viewport, feature set) pair and is never touched by pan/zoom; the
// transform layer handles that on top.
type Projection struct {
	width, height int

	minLon, maxLat float64
	cosLat         float64
	scale          float64
	offsetX        float64
	offsetY        float64
}

// FitProjection fits the union of all feature geometries into a w by h
// viewport, preserving aspect ratio. Longitude is compressed by the cosine
// of the mid latitude so shapes keep roughly true proportions, and the
// vertical axis is inverted so north is up.
//
// Returns nil when the viewport is below the minimum usable size or the
// collection has no usable geometry.
func FitProjection(features []region.Feature, w, h int) *Projection {
	if w < MinViewportSize || h < MinViewportSize || len(features) == 0 {
		return nil
	}

	minLon, minLat := math.Inf(1), math.Inf(1)
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	any := false
	for i := range features {
		for _, poly := range features[i].Polygons {
			for _, ring := range poly {
				if len(ring) < 3 {
					continue
				}
				for _, pt := range ring {
					minLon = math.Min(minLon, pt[0])
					maxLon = math.Max(maxLon, pt[0])
					minLat = math.Min(minLat, pt[1])
					maxLat = math.Max(maxLat, pt[1])
					any = true
				}
			}
		}
	}
	if !any {
		return nil
	}

	cosLat := math.Cos((minLat + maxLat) / 2 * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}

	geoW := (maxLon - minLon) * cosLat
	geoH := maxLat - minLat
	// A single point or a degenerate strip still needs a finite fit.
	if geoW < 1e-9 {
		geoW = 1e-9
	}
	if geoH < 1e-9 {
		geoH = 1e-9
	}

	usableW := float64(w) * (1 - 2*fitPadding)
	usableH := float64(h) * (1 - 2*fitPadding)
	scale := math.Min(usableW/geoW, usableH/geoH)

	return &Projection{
		width:   w,
		height:  h,
		minLon:  minLon,
		maxLat:  maxLat,
		cosLat:  cosLat,
		scale:   scale,
		offsetX: (float64(w) - geoW*scale) / 2,
		offsetY: (float64(h) - geoH*scale) / 2,
	}
}

// Project converts a lon/lat coordinate to viewport pixels.
func (p *Projection) Project(lon, lat float64) (x, y float64) {
	x = p.offsetX + (lon-p.minLon)*p.cosLat*p.scale
	y = p.offsetY + (p.maxLat-lat)*p.scale
	return x, y
}

// Size returns the viewport dimensions the projection was fitted for.
func (p *Projection) Size() (int, int) { return p.width, p.height }

// PathOps builds the renderable path for a feature: one MoveTo/LineTo...
// /Close run per ring. Returns nil when the feature has no drawable
// geometry, in which case the caller skips the feature.
func (p *Projection) PathOps(f *region.Feature) []PathOp {
	var ops []PathOp
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			x, y := p.Project(ring[0][0], ring[0][1])
			ops = append(ops, PathOp{Kind: MoveTo, X: x, Y: y})
			for _, pt := range ring[1:] {
				x, y = p.Project(pt[0], pt[1])
				ops = append(ops, PathOp{Kind: LineTo, X: x, Y: y})
			}
			ops = append(ops, PathOp{Kind: ClosePath})
		}
	}
	return ops
}

// ProjectRings returns the feature's rings in viewport coordinates, outer
// rings and holes alike. The result backs both hit testing and label
// placement.
func (p *Projection) ProjectRings(f *region.Feature) [][][2]float64 {
	var rings [][][2]float64
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			if len(ring) < 3 {
				continue
			}
			out := make([][2]float64, len(ring))
			for i, pt := range ring {
				x, y := p.Project(pt[0], pt[1])
				out[i] = [2]float64{x, y}
			}
			rings = append(rings, out)
		}
	}
	return rings
}

// Centroid returns the area centroid of the feature's largest projected
// ring, used as the label anchor. ok is false for empty geometry.
func (p *Projection) Centroid(f *region.Feature) (x, y float64, ok bool) {
	var bestArea float64
	for _, ring := range p.ProjectRings(f) {
		cx, cy, area := ringCentroid(ring)
		if area > bestArea {
			bestArea = area
			x, y, ok = cx, cy, true
		}
	}
	return x, y, ok
}

// ringCentroid computes the shoelace area centroid of a closed ring.
// The returned area is absolute.
func ringCentroid(ring [][2]float64) (cx, cy, area float64) {
	var a float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
		a += cross
		cx += (ring[i][0] + ring[j][0]) * cross
		cy += (ring[i][1] + ring[j][1]) * cross
	}
	a /= 2
	if math.Abs(a) < 1e-12 {
		// Fall back to the vertex mean for zero-area rings.
		for _, pt := range ring {
			cx += pt[0]
			cy += pt[1]
		}
		return cx / float64(n), cy / float64(n), 0
	}
	return cx / (6 * a), cy / (6 * a), math.Abs(a)
}

package mapview

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kmapviz/drillmap/pkg/region"
	"github.com/kmapviz/drillmap/pkg/stats"
)

// LabelZoomThreshold is the minimum zoom factor at which labels appear on
// tiers below the top one. Province labels always show.
const LabelZoomThreshold = 1.6

// Distinguishes a click from a drag on release.
const clickSlopPx = 4

var (
	backgroundColor  = color.RGBA{8, 10, 15, 255}
	regionOutline    = color.RGBA{36, 42, 53, 255}
	hoverOutline     = color.RGBA{240, 244, 248, 255}
	labelColor       = color.RGBA{232, 236, 241, 255}
	placeholderColor = color.RGBA{120, 128, 140, 255}
)

// dimAlpha is the fill opacity of non-hovered regions while one is hovered.
const dimAlpha = 0.55

// SelectionFunc receives the drilldown selection: the next tier and the
// code of the clicked region. The host consumes it to refilter features
// and statistics for the next render.
type SelectionFunc func(next region.Level, code string)

// featureShape is the per-feature derived geometry for the current
// projection: path commands for rendering, projected rings for hit
// testing, and the label anchor.
type featureShape struct {
	ops      []PathOp
	rings    [][][2]float64
	labelX   float64
	labelY   float64
	hasLabel bool
}

// View is the drilldown choropleth map. It owns the pan/zoom transform and
// hover/tooltip state exclusively; features and statistics are passed in
// as immutable snapshots.
type View struct {
	level    region.Level
	features []region.Feature
	stats    *stats.StatSet
	onSelect SelectionFunc

	viewport  Viewport
	transform Transform

	proj        *Projection
	projGen     uint64
	shapesDirty bool
	shapes      []featureShape
	scale       *ColorScale
	ranks       map[string]int
	fills       []color.RGBA
	hasValue    []bool

	hovered int
	tooltip *TooltipPayload

	dragging         bool
	lastX, lastY     int
	pressX, pressY   int
	cursorX, cursorY int

	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource
}

// NewView creates an empty map view. Data arrives through SetData/SetStats.
func NewView(onSelect SelectionFunc) *View {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	m, _ := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	return &View{
		onSelect:   onSelect,
		transform:  NewTransform(),
		hovered:    -1,
		fontSource: s,
		monoSource: m,
	}
}

// SetData replaces the displayed tier and feature collection. A tier
// change resets the pan/zoom transform to identity; a same-tier refresh
// preserves it.
func (v *View) SetData(level region.Level, features []region.Feature) {
	if level != v.level {
		v.transform.Reset()
	}
	v.level = level
	v.features = features
	v.shapesDirty = true
	v.hovered = -1
	v.tooltip = nil
	v.restyle()
}

// SetStats replaces the statistic snapshot. Switching indicator or year
// re-derives colors and ranks without touching projection or transform.
func (v *View) SetStats(set *stats.StatSet) {
	v.stats = set
	v.tooltip = nil
	v.restyle()
}

func (v *View) Level() region.Level { return v.level }

// Features returns the feature snapshot on display. Callers must treat it
// as read-only.
func (v *View) Features() []region.Feature { return v.features }

// FeatureByCode finds a displayed feature by its region code.
func (v *View) FeatureByCode(code string) *region.Feature {
	if code == "" {
		return nil
	}
	for i := range v.features {
		if v.features[i].Code == code {
			return &v.features[i]
		}
	}
	return nil
}

// Transform exposes the current pan/zoom state, read-only for the host.
func (v *View) Transform() Transform { return v.transform }

// Hovered returns the code of the region under the pointer, if any.
func (v *View) Hovered() (string, bool) {
	if v.hovered < 0 || v.hovered >= len(v.features) {
		return "", false
	}
	return v.features[v.hovered].Code, true
}

// Tooltip returns the active tooltip payload, nil when nothing is hovered.
func (v *View) Tooltip() *TooltipPayload { return v.tooltip }

// Ranks returns the rank of every region with a value, 1 = highest.
func (v *View) Ranks() map[string]int { return v.ranks }

// FillColor returns the fill for the i-th feature; regions without a
// matching statistic get MissingColor.
func (v *View) FillColor(i int) color.RGBA {
	if i < 0 || i >= len(v.fills) {
		return MissingColor
	}
	return v.fills[i]
}

// restyle re-derives the color scale, fills and ranks from the current
// (features, stats) pair. Whole-sale recomputation keeps stale derived
// values from ever being displayed.
func (v *View) restyle() {
	v.scale = nil
	v.ranks = nil
	v.fills = make([]color.RGBA, len(v.features))
	v.hasValue = make([]bool, len(v.features))
	if v.stats != nil {
		v.scale = NewColorScale(v.stats.ValueSlice())
		v.ranks = v.stats.Rank()
	}
	for i := range v.features {
		v.fills[i] = MissingColor
		if v.stats == nil || v.scale == nil {
			continue
		}
		if val, ok := v.stats.Value(v.features[i].Code); ok {
			v.fills[i] = v.scale.Color(val)
			v.hasValue[i] = true
		}
	}
}

// Layout feeds a surface size notification into the viewport tracker.
func (v *View) Layout(w, h int) {
	v.viewport.Observe(w, h)
}

// ensureDerived rebuilds projection-dependent state when the viewport
// generation or feature set changed. Pan/zoom never invalidates it.
func (v *View) ensureDerived() {
	if !v.viewport.Ready() {
		if v.proj != nil || !v.transform.Identity() {
			v.transform.Reset()
		}
		v.proj = nil
		v.shapes = nil
		v.hovered = -1
		v.tooltip = nil
		return
	}
	if v.proj != nil && !v.shapesDirty && v.projGen == v.viewport.Generation() {
		return
	}

	w, h := v.viewport.Size()
	v.proj = FitProjection(v.features, w, h)
	v.projGen = v.viewport.Generation()
	v.shapesDirty = false
	v.shapes = nil
	v.hovered = -1
	v.tooltip = nil
	if v.proj == nil {
		return
	}
	v.shapes = make([]featureShape, len(v.features))
	for i := range v.features {
		f := &v.features[i]
		shape := featureShape{
			ops:   v.proj.PathOps(f),
			rings: v.proj.ProjectRings(f),
		}
		shape.labelX, shape.labelY, shape.hasLabel = v.proj.Centroid(f)
		v.shapes[i] = shape
	}
}

// Ready reports whether the view has a valid projection to render.
func (v *View) Ready() bool {
	v.ensureDerived()
	return v.proj != nil
}

// --- input channels -----------------------------------------------------

// PointerMove resolves hover state for the pointer position. Moving from
// one region straight onto another behaves as leave+enter: the previous
// tooltip payload is replaced, never left stale.
func (v *View) PointerMove(mx, my int) {
	v.cursorX, v.cursorY = mx, my
	if v.proj == nil || v.dragging {
		return
	}
	idx := v.hitTest(float64(mx), float64(my))
	if idx == v.hovered {
		if idx < 0 {
			return
		}
		// A stats refresh drops the payload while the hover survives;
		// rebuild it here so the tooltip reflects the new snapshot.
		if v.tooltip == nil {
			v.tooltip = v.payloadFor(idx, mx, my)
			return
		}
		v.tooltip.X, v.tooltip.Y = mx, my
		return
	}
	v.hovered = idx
	if idx < 0 {
		v.tooltip = nil
		return
	}
	v.tooltip = v.payloadFor(idx, mx, my)
}

// PointerLeave clears hover and tooltip state, e.g. when the cursor exits
// the surface.
func (v *View) PointerLeave() {
	v.hovered = -1
	v.tooltip = nil
}

// StartDrag begins a drag/click gesture at the given pointer position.
func (v *View) StartDrag(mx, my int) {
	v.dragging = true
	v.lastX, v.lastY = mx, my
	v.pressX, v.pressY = mx, my
}

// Drag pans by the pointer delta while the button is held.
func (v *View) Drag(mx, my int) {
	if !v.dragging {
		return
	}
	v.transform.Pan(float64(mx-v.lastX), float64(my-v.lastY))
	v.lastX, v.lastY = mx, my
}

// EndDrag finishes the gesture. A release within the click slop of the
// press position counts as a click and may trigger a drilldown.
func (v *View) EndDrag(mx, my int) {
	if !v.dragging {
		return
	}
	v.dragging = false
	dx, dy := mx-v.pressX, my-v.pressY
	if dx*dx+dy*dy <= clickSlopPx*clickSlopPx {
		v.Click(mx, my)
	}
}

// Wheel zooms multiplicatively around the pointer position.
func (v *View) Wheel(dy float64, mx, my int) {
	if v.proj == nil || dy == 0 {
		return
	}
	v.transform.ZoomAt(math.Pow(1.1, dy), float64(mx), float64(my))
}

// ZoomButton applies one discrete zoom step anchored at the viewport
// center.
func (v *View) ZoomButton(in bool) {
	if v.proj == nil {
		return
	}
	w, h := v.viewport.Size()
	v.transform.ZoomStep(in, float64(w)/2, float64(h)/2)
}

// Click resolves the region under the pointer and, below the deepest tier,
// emits exactly one (nextLevel, code) selection. Clicks at the deepest
// tier or on regions without a resolvable code are no-ops.
func (v *View) Click(mx, my int) {
	if v.proj == nil || v.onSelect == nil {
		return
	}
	idx := v.hitTest(float64(mx), float64(my))
	if idx < 0 {
		return
	}
	f := &v.features[idx]
	if !f.Resolvable() {
		return
	}
	next, ok := v.level.Deeper()
	if !ok {
		return
	}
	v.onSelect(next, f.Code)
}

// hitTest maps a screen point to the index of the topmost feature covering
// it, or -1. The point is inverted through the pan/zoom transform and
// ray-cast against the projected rings; even-odd counting across all of a
// feature's rings makes holes subtract naturally.
func (v *View) hitTest(sx, sy float64) int {
	x, y := v.transform.Invert(sx, sy)
	for i := len(v.shapes) - 1; i >= 0; i-- {
		crossings := 0
		for _, ring := range v.shapes[i].rings {
			crossings += rayCrossings(ring, x, y)
		}
		if crossings%2 == 1 {
			return i
		}
	}
	return -1
}

func rayCrossings(ring [][2]float64, x, y float64) int {
	n := len(ring)
	count := 0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		yi, yj := ring[i][1], ring[j][1]
		if (yi > y) == (yj > y) {
			continue
		}
		xi, xj := ring[i][0], ring[j][0]
		if x < xi+(y-yi)/(yj-yi)*(xj-xi) {
			count++
		}
	}
	return count
}

func (v *View) payloadFor(idx, mx, my int) *TooltipPayload {
	f := &v.features[idx]
	p := &TooltipPayload{
		X:    mx,
		Y:    my,
		Code: f.Code,
		Name: f.DisplayName(),
	}
	if v.stats != nil {
		if val, ok := v.stats.Value(f.Code); ok {
			p.Value, p.HasValue = val, true
			p.Unit = v.stats.Unit
			p.Year = v.stats.Year
			p.Rank = v.ranks[f.Code]
			p.RankedCount = len(v.ranks)
			if d, ok := v.stats.Delta(f.Code); ok {
				p.Delta, p.HasDelta = d, true
			}
		}
	}
	return p
}

// --- frame loop ---------------------------------------------------------

// Update consumes this tick's pointer, wheel and key input. It is the only
// place the view reads the runtime's input state; every handler above is a
// plain method so behavior stays testable without a display.
func (v *View) Update() {
	v.ensureDerived()
	mx, my := ebiten.CursorPosition()

	if v.proj == nil {
		v.cursorX, v.cursorY = mx, my
		return
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		v.Wheel(wy, mx, my)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		v.ZoomButton(true)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		v.ZoomButton(false)
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		v.StartDrag(mx, my)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		v.EndDrag(mx, my)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		v.Drag(mx, my)
	}

	v.PointerMove(mx, my)
}

// Draw renders the map: one filled path per feature under the pan/zoom
// transform, hover emphasis, conditional labels and the floating tooltip.
func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	v.ensureDerived()
	if v.proj == nil {
		v.drawPlaceholder(screen)
		return
	}

	anyHovered := v.hovered >= 0
	for i := range v.shapes {
		if len(v.shapes[i].ops) == 0 {
			continue
		}
		alpha := 1.0
		if anyHovered && i != v.hovered {
			alpha = dimAlpha
		}
		path := v.buildPath(v.shapes[i].ops)
		fillPath(screen, path, v.fills[i], alpha)
		strokePath(screen, path, regionOutline, 1, alpha)
	}
	// Hovered region drawn last so its emphasis stroke stays on top.
	if anyHovered && len(v.shapes[v.hovered].ops) > 0 {
		path := v.buildPath(v.shapes[v.hovered].ops)
		strokePath(screen, path, hoverOutline, 2.5, 1)
	}

	v.drawLabels(screen)
	v.drawTooltip(screen)
}

// buildPath converts cached path ops into a vector path with the current
// transform applied, so stroke widths stay constant under zoom.
func (v *View) buildPath(ops []PathOp) *vector.Path {
	var path vector.Path
	for _, op := range ops {
		switch op.Kind {
		case MoveTo:
			x, y := v.transform.Apply(op.X, op.Y)
			path.MoveTo(float32(x), float32(y))
		case LineTo:
			x, y := v.transform.Apply(op.X, op.Y)
			path.LineTo(float32(x), float32(y))
		case ClosePath:
			path.Close()
		}
	}
	return &path
}

func (v *View) drawLabels(screen *ebiten.Image) {
	if v.fontSource == nil {
		return
	}
	if v.level != region.LevelProvince && v.transform.K < LabelZoomThreshold {
		return
	}
	face := &text.GoTextFace{Source: v.fontSource, Size: 13}
	for i := range v.shapes {
		if !v.shapes[i].hasLabel {
			continue
		}
		label := v.features[i].DisplayName()
		x, y := v.transform.Apply(v.shapes[i].labelX, v.shapes[i].labelY)
		tw, th := text.Measure(label, face, 0)
		op := &text.DrawOptions{}
		op.GeoM.Translate(x-tw/2, y-th/2)
		op.ColorScale.ScaleWithColor(labelColor)
		op.ColorScale.ScaleAlpha(0.85)
		text.Draw(screen, label, face, op)
	}
}

func (v *View) drawPlaceholder(screen *ebiten.Image) {
	if v.monoSource == nil {
		return
	}
	msg := "Preparing map..."
	if len(v.features) == 0 {
		msg = "No boundary data"
	}
	face := &text.GoTextFace{Source: v.monoSource, Size: 16}
	w, h := v.viewport.Size()
	tw, th := text.Measure(msg, face, 0)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(w)/2-tw/2, float64(h)/2-th/2)
	op.ColorScale.ScaleWithColor(placeholderColor)
	text.Draw(screen, msg, face, op)
}

// --- low-level path rendering -------------------------------------------

var whiteSubImage *ebiten.Image

func whiteSub() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

func fillPath(dst *ebiten.Image, path *vector.Path, clr color.RGBA, alpha float64) {
	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	tintVertices(vs, clr, alpha)
	dst.DrawTriangles(vs, is, whiteSub(), &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		FillRule:  ebiten.EvenOdd,
	})
}

func strokePath(dst *ebiten.Image, path *vector.Path, clr color.RGBA, width float32, alpha float64) {
	opts := &vector.StrokeOptions{Width: width, LineJoin: vector.LineJoinRound}
	vs, is := path.AppendVerticesAndIndicesForStroke(nil, nil, opts)
	tintVertices(vs, clr, alpha)
	dst.DrawTriangles(vs, is, whiteSub(), &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
	})
}

func tintVertices(vs []ebiten.Vertex, clr color.RGBA, alpha float64) {
	r := float32(clr.R) / 255 * float32(alpha)
	g := float32(clr.G) / 255 * float32(alpha)
	b := float32(clr.B) / 255 * float32(alpha)
	a := float32(clr.A) / 255 * float32(alpha)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = r
		vs[i].ColorG = g
		vs[i].ColorB = b
		vs[i].ColorA = a
	}
}

package mapview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TooltipPayload is the hover state shown in the floating box: region
// identity, the formatted indicator value with its rank among the visible
// regions, and the year-over-year delta when the statistics carry one.
type TooltipPayload struct {
	X, Y int

	Code string
	Name string

	Value    float64
	HasValue bool
	Unit     string
	Year     int

	Rank        int
	RankedCount int

	Delta    float64
	HasDelta bool
}

// Lines renders the payload into display rows. Kept separate from drawing
// so formatting is testable without a screen.
func (p *TooltipPayload) Lines() []string {
	lines := []string{p.Name}
	if !p.HasValue {
		return append(lines, "no data")
	}
	value := fmt.Sprintf("%.1f", p.Value)
	if p.Unit != "" {
		value += " " + p.Unit
	}
	if p.Year != 0 {
		value += fmt.Sprintf(" (%d)", p.Year)
	}
	lines = append(lines, value)
	if p.Rank > 0 {
		lines = append(lines, fmt.Sprintf("Rank %d of %d", p.Rank, p.RankedCount))
	}
	if p.HasDelta {
		lines = append(lines, fmt.Sprintf("YoY %+.1f", p.Delta))
	}
	return lines
}

const (
	tooltipOffset  = 16.0
	tooltipPadding = 10.0
)

var (
	tooltipFill   = color.RGBA{0, 0, 0, 200}
	tooltipBorder = color.RGBA{36, 42, 53, 255}
	tooltipAccent = color.RGBA{0, 191, 255, 255}
)

func (v *View) drawTooltip(screen *ebiten.Image) {
	p := v.tooltip
	if p == nil || v.fontSource == nil || v.monoSource == nil {
		return
	}

	titleFace := &text.GoTextFace{Source: v.fontSource, Size: 15}
	bodyFace := &text.GoTextFace{Source: v.monoSource, Size: 13}
	lines := p.Lines()

	lineH := titleFace.Size * 1.5
	boxW := 0.0
	for i, line := range lines {
		face := text.Face(bodyFace)
		if i == 0 {
			face = titleFace
		}
		tw, _ := text.Measure(line, face, 0)
		if tw > boxW {
			boxW = tw
		}
	}
	boxW += 2 * tooltipPadding
	boxH := lineH*float64(len(lines)) + 2*tooltipPadding

	// Follow the pointer, clamped so the box never leaves the surface.
	x := float64(p.X) + tooltipOffset
	y := float64(p.Y) + tooltipOffset
	w, h := v.viewport.Size()
	if x+boxW > float64(w) {
		x = float64(p.X) - tooltipOffset - boxW
	}
	if y+boxH > float64(h) {
		y = float64(p.Y) - tooltipOffset - boxH
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), tooltipFill, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), 1, tooltipBorder, false)
	vector.DrawFilledRect(screen, float32(x), float32(y), 3, float32(boxH), tooltipAccent, false)

	for i, line := range lines {
		face := text.Face(bodyFace)
		alpha := float32(0.75)
		if i == 0 {
			face = titleFace
			alpha = 1
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(x+tooltipPadding+4, y+tooltipPadding+float64(i)*lineH)
		op.ColorScale.Scale(1, 1, 1, alpha)
		text.Draw(screen, line, face, op)
	}
}

// Package app hosts the drilldown map as an ebiten game: it owns the
// navigation stack across tiers and feeds boundary and statistic snapshots
// into the view.
package app

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/kmapviz/drillmap/pkg/boundary"
	"github.com/kmapviz/drillmap/pkg/mapview"
	"github.com/kmapviz/drillmap/pkg/region"
	"github.com/kmapviz/drillmap/pkg/stats"
)

// navEntry is one step of the drilldown: the tier on display and the
// parent region it was scoped to.
type navEntry struct {
	level  region.Level
	parent string
	title  string
}

// App wires boundaries, statistics and the map view into an ebiten game.
type App struct {
	boundaries *boundary.Provider
	stats      stats.Provider
	view       *mapview.View

	nav        []navEntry
	indicator  string
	indicators []string
	year       int

	mu      sync.Mutex
	pending *stats.StatSet

	fontSource *text.GoTextFaceSource
}

// New builds the app at the province tier. indicators is the catalog the
// Tab key cycles through; indicator must be one of them.
func New(boundaries *boundary.Provider, provider stats.Provider, indicators []string, indicator string, year int) (*App, error) {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	a := &App{
		boundaries: boundaries,
		stats:      provider,
		indicator:  indicator,
		indicators: indicators,
		year:       year,
		fontSource: s,
	}
	a.view = mapview.NewView(a.drillDown)

	features, err := boundaries.Load(region.LevelProvince, "")
	if err != nil {
		return nil, fmt.Errorf("loading provinces: %w", err)
	}
	a.nav = []navEntry{{level: region.LevelProvince}}
	a.view.SetData(region.LevelProvince, features)
	a.refreshStats(features)
	return a, nil
}

// ApplyLive queues a pushed statistic snapshot. Safe to call from the
// stream goroutine; the snapshot is applied on the next Update tick.
func (a *App) ApplyLive(set *stats.StatSet) {
	a.mu.Lock()
	a.pending = set
	a.mu.Unlock()
}

func (a *App) current() navEntry { return a.nav[len(a.nav)-1] }

// drillDown descends into the clicked region. When the deeper tier has no
// boundaries for it, the map stays where it is.
func (a *App) drillDown(next region.Level, code string) {
	features, err := a.boundaries.Load(next, code)
	if err != nil {
		log.Printf("[app] Loading %s boundaries under %s: %v", next, code, err)
		return
	}
	if len(features) == 0 {
		log.Printf("[app] No %s boundaries under %s", next, code)
		return
	}
	a.nav = append(a.nav, navEntry{level: next, parent: code, title: a.titleFor(code)})
	a.view.SetData(next, features)
	a.refreshStats(features)
}

// drillUp pops one tier off the navigation stack, stopping at provinces.
func (a *App) drillUp() {
	if len(a.nav) <= 1 {
		return
	}
	a.nav = a.nav[:len(a.nav)-1]
	cur := a.current()
	features, err := a.boundaries.Load(cur.level, cur.parent)
	if err != nil {
		log.Printf("[app] Loading %s boundaries under %q: %v", cur.level, cur.parent, err)
		features = nil
	}
	a.view.SetData(cur.level, features)
	a.refreshStats(features)
}

// titleFor resolves the breadcrumb label of the region being entered from
// the features currently on screen.
func (a *App) titleFor(code string) string {
	f := a.view.FeatureByCode(code)
	if f == nil {
		return code
	}
	return f.DisplayName()
}

// cycleIndicator advances to the next indicator in the catalog and
// refetches values for the regions on screen. Pan and zoom are untouched.
func (a *App) cycleIndicator() {
	if len(a.indicators) < 2 {
		return
	}
	for i, name := range a.indicators {
		if name == a.indicator {
			a.indicator = a.indicators[(i+1)%len(a.indicators)]
			break
		}
	}
	a.refreshStats(a.view.Features())
}

// shiftYear moves the displayed year and refetches. Stats-only refresh,
// the transform survives.
func (a *App) shiftYear(delta int) {
	a.year += delta
	a.refreshStats(a.view.Features())
}

func (a *App) refreshStats(features []region.Feature) {
	if a.stats == nil {
		a.view.SetStats(nil)
		return
	}
	codes := make([]string, 0, len(features))
	for i := range features {
		if features[i].Resolvable() {
			codes = append(codes, features[i].Code)
		}
	}
	set, err := a.stats.Fetch(a.current().level, codes, a.indicator, a.year)
	if err != nil {
		log.Printf("[app] Fetching %s/%d: %v", a.indicator, a.year, err)
		a.view.SetStats(nil)
		return
	}
	a.view.SetStats(set)
}

// applyPending moves a queued live snapshot into the view, following its
// indicator and year so the HUD matches what is displayed.
func (a *App) applyPending() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()
	if pending == nil {
		return
	}
	if pending.Indicator != "" {
		a.indicator = pending.Indicator
	}
	if pending.Year != 0 {
		a.year = pending.Year
	}
	a.view.SetStats(pending)
}

func (a *App) breadcrumb() []string {
	parts := []string{"전국"}
	for _, e := range a.nav[1:] {
		parts = append(parts, e.title)
	}
	return parts
}

// Update runs one tick: apply any pushed statistics, handle app-level
// keys, then let the view consume pointer input.
func (a *App) Update() error {
	a.applyPending()

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) ||
		inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		a.drillUp()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		a.cycleIndicator()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		a.shiftYear(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		a.shiftYear(1)
	}

	a.view.Update()
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	a.view.Draw(screen)
	a.drawHUD(screen)
}

// Layout tracks the window size 1:1 so the projection refits on resize.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.view.Layout(outsideWidth, outsideHeight)
	if outsideWidth < 1 {
		outsideWidth = 1
	}
	if outsideHeight < 1 {
		outsideHeight = 1
	}
	return outsideWidth, outsideHeight
}

var (
	hudColor     = color.RGBA{232, 236, 241, 255}
	hudDimColor  = color.RGBA{120, 128, 140, 255}
	hudHintColor = color.RGBA{90, 98, 110, 255}
)

func (a *App) drawHUD(screen *ebiten.Image) {
	if a.fontSource == nil {
		return
	}
	face := &text.GoTextFace{Source: a.fontSource, Size: 16}
	small := &text.GoTextFace{Source: a.fontSource, Size: 12}

	crumb := ""
	for i, part := range a.breadcrumb() {
		if i > 0 {
			crumb += "  ›  "
		}
		crumb += part
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(12, 10)
	op.ColorScale.ScaleWithColor(hudColor)
	text.Draw(screen, crumb, face, op)

	meta := fmt.Sprintf("%s · %d", a.indicator, a.year)
	op = &text.DrawOptions{}
	op.GeoM.Translate(12, 34)
	op.ColorScale.ScaleWithColor(hudDimColor)
	text.Draw(screen, meta, small, op)

	if len(a.nav) > 1 {
		hint := "right-click / backspace: back"
		op = &text.DrawOptions{}
		op.GeoM.Translate(12, 50)
		op.ColorScale.ScaleWithColor(hudHintColor)
		text.Draw(screen, hint, small, op)
	}
}

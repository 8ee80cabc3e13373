package app

import (
	"strings"
	"testing"

	"github.com/kmapviz/drillmap/pkg/boundary"
	"github.com/kmapviz/drillmap/pkg/region"
	"github.com/kmapviz/drillmap/pkg/stats"
)

func demoApp(t *testing.T) *App {
	t.Helper()
	a, err := New(boundary.NewProvider("", nil), stats.DemoProvider{}, stats.DemoIndicators(), "population", 2025)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestNewStartsAtProvinces(t *testing.T) {
	a := demoApp(t)
	if a.view.Level() != region.LevelProvince {
		t.Errorf("initial level = %s; want province", a.view.Level())
	}
	if got := len(a.view.Features()); got != 2 {
		t.Errorf("initial feature count = %d; want the 2 demo provinces", got)
	}
	if crumb := a.breadcrumb(); len(crumb) != 1 || crumb[0] != "전국" {
		t.Errorf("breadcrumb = %v; want just the national root", crumb)
	}
}

func TestDrillDownAndUp(t *testing.T) {
	a := demoApp(t)

	a.drillDown(region.LevelMunicipality, "11")
	if a.view.Level() != region.LevelMunicipality {
		t.Fatalf("level after drilldown = %s; want municipality", a.view.Level())
	}
	if got := len(a.view.Features()); got != 2 {
		t.Errorf("municipality count under 11 = %d; want 2", got)
	}
	crumb := strings.Join(a.breadcrumb(), "/")
	if crumb != "전국/서울특별시" {
		t.Errorf("breadcrumb = %q; want the province name appended", crumb)
	}

	a.drillDown(region.LevelSubMunicipality, "11110")
	if a.view.Level() != region.LevelSubMunicipality {
		t.Fatalf("level after second drilldown = %s; want submunicipality", a.view.Level())
	}
	if len(a.nav) != 3 {
		t.Errorf("navigation depth = %d; want 3", len(a.nav))
	}

	a.drillUp()
	if a.view.Level() != region.LevelMunicipality {
		t.Errorf("level after drillup = %s; want municipality", a.view.Level())
	}
	a.drillUp()
	a.drillUp() // already at the top, must be a no-op
	if a.view.Level() != region.LevelProvince || len(a.nav) != 1 {
		t.Errorf("level/depth after draining the stack = %s/%d; want province/1", a.view.Level(), len(a.nav))
	}
}

func TestDrillDownWithoutDeeperBoundariesStays(t *testing.T) {
	a := demoApp(t)
	a.drillDown(region.LevelMunicipality, "99")
	if a.view.Level() != region.LevelProvince || len(a.nav) != 1 {
		t.Errorf("drilldown into an unknown region moved to %s (depth %d); want to stay put",
			a.view.Level(), len(a.nav))
	}
}

func TestStatsFollowNavigation(t *testing.T) {
	a := demoApp(t)
	a.drillDown(region.LevelMunicipality, "26")
	ranks := a.view.Ranks()
	if len(ranks) != 2 {
		t.Fatalf("rank count = %d; want one per visible municipality", len(ranks))
	}
	for code := range ranks {
		if !strings.HasPrefix(code, "26") {
			t.Errorf("rank map holds %s; want only regions under 26", code)
		}
	}
}

func TestCycleIndicator(t *testing.T) {
	a := demoApp(t)
	before := a.indicator
	a.cycleIndicator()
	if a.indicator == before {
		t.Error("cycleIndicator did not advance")
	}
	for i := 0; i < len(a.indicators); i++ {
		a.cycleIndicator()
	}
	if a.indicator != a.indicators[(indexOf(a.indicators, before)+1)%len(a.indicators)] {
		t.Error("cycling the full catalog did not wrap around")
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestShiftYear(t *testing.T) {
	a := demoApp(t)
	a.shiftYear(-1)
	if a.year != 2024 {
		t.Errorf("year = %d; want 2024", a.year)
	}
	a.shiftYear(1)
	a.shiftYear(1)
	if a.year != 2026 {
		t.Errorf("year = %d; want 2026", a.year)
	}
}

func TestApplyLiveTakesEffectNextTick(t *testing.T) {
	a := demoApp(t)
	a.ApplyLive(&stats.StatSet{
		Indicator: "density",
		Year:      2026,
		Unit:      "people/km²",
		Values:    map[string]float64{"11": 42, "26": 7},
	})

	a.applyPending()
	if a.indicator != "density" || a.year != 2026 {
		t.Errorf("indicator/year = %s/%d; want density/2026", a.indicator, a.year)
	}
	ranks := a.view.Ranks()
	if ranks["11"] != 1 || ranks["26"] != 2 {
		t.Errorf("ranks after live update = %v; want 11 above 26", ranks)
	}

	// Nothing queued: a second tick must not disturb the state.
	a.applyPending()
	if a.indicator != "density" {
		t.Error("an empty tick changed the indicator")
	}
}

package stats

import (
	"testing"

	"github.com/kmapviz/drillmap/pkg/region"
)

func TestRankOrdersByValueDescending(t *testing.T) {
	s := &StatSet{Values: map[string]float64{
		"11": 80,
		"26": 20,
		"27": 55,
	}}
	ranks := s.Rank()
	if ranks["11"] != 1 || ranks["27"] != 2 || ranks["26"] != 3 {
		t.Errorf("ranks = %v; want 11, 27, 26 in that order", ranks)
	}
}

func TestRankTiesBreakByCode(t *testing.T) {
	s := &StatSet{Values: map[string]float64{
		"28": 40,
		"26": 40,
		"11": 40,
	}}
	ranks := s.Rank()
	if ranks["11"] != 1 || ranks["26"] != 2 || ranks["28"] != 3 {
		t.Errorf("tied ranks = %v; want deterministic code order", ranks)
	}
}

func TestRankExcludesMissing(t *testing.T) {
	s := &StatSet{Values: map[string]float64{"11": 1}}
	ranks := s.Rank()
	if len(ranks) != 1 {
		t.Errorf("rank map has %d entries; want only regions with values", len(ranks))
	}
	if _, ok := ranks["26"]; ok {
		t.Error("a region without a value must not be ranked")
	}
}

func TestDelta(t *testing.T) {
	s := &StatSet{
		Values:   map[string]float64{"11": 80, "26": 20},
		Previous: map[string]float64{"11": 70},
	}
	if d, ok := s.Delta("11"); !ok || d != 10 {
		t.Errorf("Delta(11) = (%f, %v); want (10, true)", d, ok)
	}
	if _, ok := s.Delta("26"); ok {
		t.Error("Delta must report false without a previous-year value")
	}
	if _, ok := s.Delta("99"); ok {
		t.Error("Delta must report false for an unknown code")
	}
}

func TestDemoProviderDeterministic(t *testing.T) {
	codes := []string{"11", "26", "27"}
	a, err := DemoProvider{}.Fetch(region.LevelProvince, codes, "population", 2025)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := DemoProvider{}.Fetch(region.LevelProvince, codes, "population", 2025)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	for _, code := range codes {
		if a.Values[code] != b.Values[code] {
			t.Errorf("value for %s changed between runs: %f vs %f", code, a.Values[code], b.Values[code])
		}
		if v := a.Values[code]; v < 0 || v >= 100 {
			t.Errorf("value for %s = %f; want within [0, 100)", code, v)
		}
	}
	if a.Unit != "thousand" || a.Year != 2025 || a.Indicator != "population" {
		t.Errorf("snapshot metadata = %q/%q/%d; want population/thousand/2025", a.Indicator, a.Unit, a.Year)
	}
}

func TestDemoProviderPreviousYearMatches(t *testing.T) {
	cur, err := DemoProvider{}.Fetch(region.LevelProvince, []string{"11"}, "density", 2025)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	prev, err := DemoProvider{}.Fetch(region.LevelProvince, []string{"11"}, "density", 2024)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if cur.Previous["11"] != prev.Values["11"] {
		t.Errorf("previous-year value %f disagrees with last year's fetch %f",
			cur.Previous["11"], prev.Values["11"])
	}
}

func TestDemoProviderUnknownIndicator(t *testing.T) {
	if _, err := (DemoProvider{}).Fetch(region.LevelProvince, []string{"11"}, "happiness", 2025); err == nil {
		t.Error("expected an error for an indicator outside the catalog")
	}
}

func TestDemoProviderSkipsEmptyCodes(t *testing.T) {
	set, err := DemoProvider{}.Fetch(region.LevelProvince, []string{"11", ""}, "budget", 2025)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(set.Values) != 1 {
		t.Errorf("got %d values; an empty code must be skipped", len(set.Values))
	}
}

func TestDemoIndicatorsSorted(t *testing.T) {
	names := DemoIndicators()
	if len(names) == 0 {
		t.Fatal("expected a non-empty indicator catalog")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("indicator list not sorted at %q, %q", names[i-1], names[i])
		}
	}
}

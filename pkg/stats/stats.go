// Package stats supplies per-region indicator values to the map. The map
// core treats providers as opaque: it only ever sees a StatSet snapshot for
// the regions currently on screen.
package stats

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/kmapviz/drillmap/pkg/region"
)

// StatSet is one indicator's values for the currently visible region set,
// plus optional previous-year values for deltas. It is treated as an
// immutable snapshot for the duration of a render.
type StatSet struct {
	Indicator string
	Year      int
	Unit      string
	Values    map[string]float64
	Previous  map[string]float64
}

// Value returns the indicator value for a region code.
func (s *StatSet) Value(code string) (float64, bool) {
	v, ok := s.Values[code]
	return v, ok
}

// ValueSlice returns all values in unspecified order, for scale domain
// derivation.
func (s *StatSet) ValueSlice() []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		out = append(out, v)
	}
	return out
}

// Rank maps each code with a value to its rank among the set, 1 being the
// highest value. Ties break by code so the result is deterministic. Codes
// without values never appear: missing data is not treated as zero.
func (s *StatSet) Rank() map[string]int {
	type entry struct {
		code  string
		value float64
	}
	entries := make([]entry, 0, len(s.Values))
	for code, v := range s.Values {
		entries = append(entries, entry{code, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].code < entries[j].code
	})
	ranks := make(map[string]int, len(entries))
	for i, e := range entries {
		ranks[e.code] = i + 1
	}
	return ranks
}

// Delta returns the year-over-year change for a code. ok is false when
// either year lacks a value.
func (s *StatSet) Delta(code string) (float64, bool) {
	cur, ok := s.Values[code]
	if !ok {
		return 0, false
	}
	prev, ok := s.Previous[code]
	if !ok {
		return 0, false
	}
	return cur - prev, true
}

// Provider hands the host a StatSet for the given region codes. Fetch must
// return values only for codes it knows; unmatched codes simply stay
// missing.
type Provider interface {
	Fetch(level region.Level, codes []string, indicator string, year int) (*StatSet, error)
}

// Indicator catalog for the demo provider. A real deployment would pull
// this from the statistics backend.
var demoIndicators = map[string]string{
	"population": "thousand",
	"density":    "people/km²",
	"employment": "%",
	"budget":     "billion KRW",
}

// DemoIndicators lists the indicators the demo provider can synthesize.
func DemoIndicators() []string {
	out := make([]string, 0, len(demoIndicators))
	for name := range demoIndicators {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DemoProvider synthesizes deterministic placeholder values from a hash of
// (code, indicator, year). It stands in for a real statistics backend and
// carries no meaning beyond being stable across runs.
type DemoProvider struct{}

func (DemoProvider) Fetch(_ region.Level, codes []string, indicator string, year int) (*StatSet, error) {
	unit, ok := demoIndicators[indicator]
	if !ok {
		return nil, fmt.Errorf("unknown indicator %q", indicator)
	}
	set := &StatSet{
		Indicator: indicator,
		Year:      year,
		Unit:      unit,
		Values:    make(map[string]float64, len(codes)),
		Previous:  make(map[string]float64, len(codes)),
	}
	for _, code := range codes {
		if code == "" {
			continue
		}
		set.Values[code] = demoValue(code, indicator, year)
		set.Previous[code] = demoValue(code, indicator, year-1)
	}
	return set, nil
}

func demoValue(code, indicator string, year int) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d", code, indicator, year)
	// Scale the hash into [0, 100) with one decimal of resolution.
	return float64(h.Sum64()%1000) / 10
}

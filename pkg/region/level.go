// Package region defines the administrative region model shared by the
// boundary provider, the statistics providers and the map view.
package region

// Level is one of the three nested administrative tiers shown by the map.
type Level int

const (
	LevelProvince Level = iota
	LevelMunicipality
	LevelSubMunicipality
)

func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelMunicipality:
		return "municipality"
	case LevelSubMunicipality:
		return "submunicipality"
	}
	return "unknown"
}

// Deeper returns the next tier down. ok is false at the deepest tier.
func (l Level) Deeper() (Level, bool) {
	if l >= LevelSubMunicipality {
		return l, false
	}
	return l + 1, true
}

// Shallower returns the next tier up. ok is false at the top tier.
func (l Level) Shallower() (Level, bool) {
	if l <= LevelProvince {
		return l, false
	}
	return l - 1, true
}

func (l Level) Deepest() bool { return l == LevelSubMunicipality }

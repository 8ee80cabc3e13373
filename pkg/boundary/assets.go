package boundary

import (
	_ "embed"

	"github.com/kmapviz/drillmap/pkg/region"
)

// Embedded demo dataset: simplified stand-in shapes keyed with the Korean
// administrative boundary conventions, so the map runs without any data
// directory configured.

//go:embed data/provinces.geojson
var demoProvinces []byte

//go:embed data/municipalities.geojson
var demoMunicipalities []byte

//go:embed data/submunicipalities.geojson
var demoSubMunicipalities []byte

func demoTier(level region.Level) []byte {
	switch level {
	case region.LevelMunicipality:
		return demoMunicipalities
	case region.LevelSubMunicipality:
		return demoSubMunicipalities
	}
	return demoProvinces
}

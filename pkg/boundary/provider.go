// Package boundary loads administrative boundary geometry and normalizes
// it into the region model. Sources are GeoJSON files on disk, with an
// embedded demo dataset as the fallback and a badger cache in front of the
// parse step.
package boundary

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	geojson "github.com/paulmach/go.geojson"

	"github.com/kmapviz/drillmap/pkg/region"
)

// Tier file names expected inside the data directory.
const (
	provinceFile        = "provinces.geojson"
	municipalityFile    = "municipalities.geojson"
	subMunicipalityFile = "submunicipalities.geojson"
)

// Provider resolves (tier, parent) requests to normalized feature sets.
type Provider struct {
	dataDir string
	cache   *Cache
}

// NewProvider builds a provider reading from dataDir. An empty dataDir
// serves the embedded demo dataset; a nil cache disables caching.
func NewProvider(dataDir string, cache *Cache) *Provider {
	return &Provider{dataDir: dataDir, cache: cache}
}

// Load returns the features of one tier scoped to a parent region. An
// empty parentCode returns the whole tier, which is what the top-level
// province view asks for.
func (p *Provider) Load(level region.Level, parentCode string) ([]region.Feature, error) {
	key := cacheKey(level, parentCode)
	if p.cache != nil {
		raw, err := p.cache.Get(key)
		if err == nil && raw != nil {
			var features []region.Feature
			if err := json.Unmarshal(raw, &features); err == nil {
				return features, nil
			}
			// A corrupt entry falls through to a fresh parse.
		}
	}

	all, err := p.loadTier(level)
	if err != nil {
		return nil, err
	}
	features := region.FilterByParent(all, parentCode)

	if p.cache != nil {
		if raw, err := json.Marshal(features); err == nil {
			if err := p.cache.Put(key, raw); err != nil {
				log.Printf("[boundary] Cache write failed: %v", err)
			}
		}
	}
	return features, nil
}

func cacheKey(level region.Level, parentCode string) string {
	return fmt.Sprintf("boundary|%s|%s", level, parentCode)
}

func (p *Provider) loadTier(level region.Level) ([]region.Feature, error) {
	raw, err := p.rawTier(level)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s boundaries: %w", level, err)
	}
	features := make([]region.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		conv := convertFeature(level, f)
		if conv.Empty() {
			continue
		}
		features = append(features, conv)
	}
	return features, nil
}

// rawTier prefers the configured data directory and falls back to the
// embedded demo dataset when the tier file is absent.
func (p *Provider) rawTier(level region.Level) ([]byte, error) {
	if p.dataDir != "" {
		path := filepath.Join(p.dataDir, tierFile(level))
		raw, err := os.ReadFile(path)
		if err == nil {
			return raw, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
		log.Printf("[boundary] %s not found, using the embedded demo dataset", path)
	}
	return demoTier(level), nil
}

func tierFile(level region.Level) string {
	switch level {
	case region.LevelMunicipality:
		return municipalityFile
	case region.LevelSubMunicipality:
		return subMunicipalityFile
	}
	return provinceFile
}

func convertFeature(level region.Level, f *geojson.Feature) region.Feature {
	out := region.Feature{
		Code: region.ResolveCode(level, f.Properties),
		Name: region.ResolveName(level, f.Properties),
	}
	if f.Geometry == nil {
		return out
	}
	if f.Geometry.IsPolygon() {
		out.Polygons = append(out.Polygons, convertPolygon(f.Geometry.Polygon))
	} else if f.Geometry.IsMultiPolygon() {
		for _, poly := range f.Geometry.MultiPolygon {
			out.Polygons = append(out.Polygons, convertPolygon(poly))
		}
	}
	return out
}

func convertPolygon(coords [][][]float64) region.Polygon {
	poly := make(region.Polygon, 0, len(coords))
	for _, rawRing := range coords {
		ring := make(region.Ring, 0, len(rawRing))
		for _, pt := range rawRing {
			if len(pt) < 2 {
				continue
			}
			ring = append(ring, [2]float64{pt[0], pt[1]})
		}
		// GeoJSON rings repeat the first vertex at the end; the region
		// model treats rings as implicitly closed.
		if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		poly = append(poly, ring)
	}
	return poly
}

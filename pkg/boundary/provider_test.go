package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kmapviz/drillmap/pkg/region"
)

func TestLoadEmbeddedProvinces(t *testing.T) {
	p := NewProvider("", nil)
	features, err := p.Load(region.LevelProvince, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d provinces; want 2", len(features))
	}
	byCode := map[string]region.Feature{}
	for _, f := range features {
		byCode[f.Code] = f
	}
	if f, ok := byCode["11"]; !ok || f.Name != "서울특별시" {
		t.Errorf("province 11 = %+v; want 서울특별시", f)
	}
	if f, ok := byCode["26"]; !ok || f.Name != "부산광역시" {
		t.Errorf("province 26 = %+v; want 부산광역시", f)
	}
	for _, f := range features {
		if f.Empty() {
			t.Errorf("province %s has no drawable geometry", f.Code)
		}
	}
}

func TestLoadFiltersByParent(t *testing.T) {
	p := NewProvider("", nil)

	munis, err := p.Load(region.LevelMunicipality, "11")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(munis) != 2 {
		t.Fatalf("got %d municipalities under 11; want 2", len(munis))
	}
	for _, f := range munis {
		if f.Code[:2] != "11" {
			t.Errorf("municipality %s leaked into province 11", f.Code)
		}
	}

	subs, err := p.Load(region.LevelSubMunicipality, "11110")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d sub-municipalities under 11110; want 2", len(subs))
	}
	for _, f := range subs {
		if f.Code[:5] != "11110" {
			t.Errorf("sub-municipality %s does not belong to 11110", f.Code)
		}
	}
}

func TestLoadEmptyParentKeepsWholeTier(t *testing.T) {
	p := NewProvider("", nil)
	all, err := p.Load(region.LevelMunicipality, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d municipalities; want the whole demo tier of 4", len(all))
	}
}

func TestLoadPrefersDataDir(t *testing.T) {
	dir := t.TempDir()
	custom := `{"type":"FeatureCollection","features":[{
		"type":"Feature",
		"properties":{"CTPRVN_CD":"27","CTP_KOR_NM":"대구광역시"},
		"geometry":{"type":"Polygon","coordinates":[[
			[128.4,35.7],[128.8,35.7],[128.8,36.0],[128.4,36.0],[128.4,35.7]
		]]}
	}]}`
	if err := os.WriteFile(filepath.Join(dir, "provinces.geojson"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(dir, nil)
	features, err := p.Load(region.LevelProvince, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(features) != 1 || features[0].Code != "27" {
		t.Errorf("features = %+v; want only the on-disk province 27", features)
	}

	// Tiers missing from the directory still come from the embedded set.
	munis, err := p.Load(region.LevelMunicipality, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(munis) == 0 {
		t.Error("missing tier file should fall back to the embedded dataset")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "provinces.geojson"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewProvider(dir, nil)
	if _, err := p.Load(region.LevelProvince, ""); err == nil {
		t.Error("expected an error for a malformed boundary file")
	}
}

func TestLoadMultiPolygon(t *testing.T) {
	dir := t.TempDir()
	custom := `{"type":"FeatureCollection","features":[{
		"type":"Feature",
		"properties":{"CTPRVN_CD":"28","CTP_KOR_NM":"인천광역시"},
		"geometry":{"type":"MultiPolygon","coordinates":[
			[[[126.3,37.3],[126.5,37.3],[126.5,37.5],[126.3,37.5],[126.3,37.3]]],
			[[[126.0,37.2],[126.1,37.2],[126.1,37.3],[126.0,37.3],[126.0,37.2]]]
		]}
	}]}`
	if err := os.WriteFile(filepath.Join(dir, "provinces.geojson"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	p := NewProvider(dir, nil)
	features, err := p.Load(region.LevelProvince, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(features) != 1 {
		t.Fatalf("got %d features; want 1", len(features))
	}
	if len(features[0].Polygons) != 2 {
		t.Errorf("island province has %d polygons; want both parts", len(features[0].Polygons))
	}
}

func TestLoadCachesResults(t *testing.T) {
	cache, err := OpenCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	dir := t.TempDir()
	p := NewProvider(dir, cache)

	first, err := p.Load(region.LevelProvince, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Poison the data directory; a cached tier must not re-read it.
	if err := os.WriteFile(filepath.Join(dir, "provinces.geojson"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := p.Load(region.LevelProvince, "")
	if err != nil {
		t.Fatalf("cached Load: %v", err)
	}
	if len(second) != len(first) {
		t.Errorf("cached load returned %d features; want %d", len(second), len(first))
	}
	for i := range first {
		if second[i].Code != first[i].Code || second[i].Name != first[i].Name {
			t.Errorf("cached feature %d = %+v; want %+v", i, second[i], first[i])
		}
	}
}

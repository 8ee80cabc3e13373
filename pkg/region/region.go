package region

import (
	"strconv"
	"strings"
)

// Ring is a closed sequence of lon/lat vertices.
type Ring [][2]float64

// Polygon is one outer ring followed by zero or more hole rings.
type Polygon []Ring

// Feature is a single region: its polygon geometry plus the identity
// resolved from the source properties. Code is stable and hierarchical by
// string prefix across tiers (a sub-municipality code starts with its
// municipality code, which starts with its province code).
type Feature struct {
	Code     string
	Name     string
	Polygons []Polygon
}

// Resolvable reports whether the feature carries a usable region code.
// Features without one still render but are excluded from navigation.
func (f *Feature) Resolvable() bool { return f.Code != "" }

// DisplayName returns the label to show for the feature, falling back to
// the code and then a placeholder dash.
func (f *Feature) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	if f.Code != "" {
		return f.Code
	}
	return "-"
}

// Empty reports whether the feature has no drawable geometry.
func (f *Feature) Empty() bool {
	for _, poly := range f.Polygons {
		for _, ring := range poly {
			if len(ring) >= 3 {
				return false
			}
		}
	}
	return true
}

// Property keys tried in order when resolving a feature's code and name.
// The Korean administrative boundary shapefile conventions come first
// (CTPRVN = province, SIG = municipality, EMD = sub-municipality), then
// the generic keys seen in repackaged datasets.
var codeKeys = map[Level][]string{
	LevelProvince:        {"CTPRVN_CD", "CTP_CD", "code", "adm_cd", "id"},
	LevelMunicipality:    {"SIG_CD", "SIGUNGU_CD", "code", "adm_cd", "id"},
	LevelSubMunicipality: {"EMD_CD", "ADM_DR_CD", "code", "adm_cd", "id"},
}

var nameKeys = map[Level][]string{
	LevelProvince:        {"CTP_KOR_NM", "CTPRVN_NM", "name", "adm_nm"},
	LevelMunicipality:    {"SIG_KOR_NM", "SIGUNGU_NM", "name", "adm_nm"},
	LevelSubMunicipality: {"EMD_KOR_NM", "ADM_DR_NM", "name", "adm_nm"},
}

// ResolveCode extracts the region code from a raw property bag, trying the
// tier's key list in order and returning the first non-empty match.
func ResolveCode(level Level, props map[string]interface{}) string {
	return stringProp(props, codeKeys[level])
}

// ResolveName extracts the display name from a raw property bag.
func ResolveName(level Level, props map[string]interface{}) string {
	return stringProp(props, nameKeys[level])
}

func stringProp(props map[string]interface{}, keys []string) string {
	for _, key := range keys {
		v, ok := props[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			// JSON numbers decode as float64; codes must not come out in
			// exponent notation.
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		}
	}
	return ""
}

// FilterByParent returns the features whose codes start with parentCode.
// An empty parentCode keeps the whole collection.
func FilterByParent(features []Feature, parentCode string) []Feature {
	if parentCode == "" {
		return features
	}
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if strings.HasPrefix(f.Code, parentCode) {
			out = append(out, f)
		}
	}
	return out
}

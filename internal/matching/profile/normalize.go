// Package profile normalizes raw startup and investor data from heterogeneous
// sources into the canonical documents consumed by the scoring engine.
package profile

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// stagePair keeps lookup order stable for substring matching.
type stagePair struct {
	key    string
	mapped string
}

var stagePairs = []stagePair{
	{"preseed", "pre_seed"}, {"pre-seed", "pre_seed"}, {"pre seed", "pre_seed"},
	{"seed", "seed"},
	{"series a", "series_a"}, {"series-a", "series_a"}, {"series_a", "series_a"},
	{"series b", "series_b"}, {"series-b", "series_b"}, {"series_b", "series_b"},
	{"series c", "series_c_plus"}, {"series d", "series_c_plus"}, {"growth", "series_c_plus"},
}

// RegRiskMap converts textual regulatory risk levels to the 1..4 scale.
var RegRiskMap = map[string]int{
	"low": 1, "medium": 2, "high": 3, "very_high": 4, "very high": 4,
}

// CapitalIntensityMap converts textual capital intensity to the 1..3 scale.
var CapitalIntensityMap = map[string]int{
	"light": 1, "moderate": 2, "heavy": 3,
}

// StageOrder indexes canonical stages for adjacency checks.
var StageOrder = map[string]int{
	"pre_seed": 0, "seed": 1, "series_a": 2, "series_b": 3, "series_c_plus": 4,
}

// NormText lowercases and trims any value rendered as text.
func NormText(x interface{}) string {
	return strings.ToLower(CleanText(x))
}

// CleanText renders a value as trimmed text, empty for nil.
func CleanText(x interface{}) string {
	if x == nil {
		return ""
	}
	switch v := x.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimSpace(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

var numCleanRe = regexp.MustCompile(`[$%]`)

// ToFloat parses a numeric value leniently, stripping commas and $/% signs.
// Returns nil when the value is absent or unparseable.
func ToFloat(x interface{}) *float64 {
	if x == nil {
		return nil
	}
	switch v := x.(type) {
	case float64:
		if math.IsNaN(v) {
			return nil
		}
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		s = strings.ReplaceAll(s, ",", "")
		s = numCleanRe.ReplaceAllString(s, "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ToInt parses an integer leniently through ToFloat.
func ToInt(x interface{}) *int {
	f := ToFloat(x)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

var (
	trueTokens  = map[string]bool{"true": true, "yes": true, "y": true, "1": true, "provided": true, "available": true}
	falseTokens = map[string]bool{"false": true, "no": true, "n": true, "0": true, "missing": true, "unknown": true, "not provided": true, "none": true}
)

// ToBool parses affirmative and negative tokens. Returns nil when the value
// cannot be interpreted either way.
func ToBool(x interface{}) *bool {
	if x == nil {
		return nil
	}
	if b, ok := x.(bool); ok {
		return &b
	}
	s := NormText(x)
	if trueTokens[s] {
		t := true
		return &t
	}
	if falseTokens[s] {
		f := false
		return &f
	}
	return nil
}

var listSplitRe = regexp.MustCompile(`[;,]`)

// ToList coerces a value into a slice, splitting strings on commas and
// semicolons.
func ToList(x interface{}) []interface{} {
	if x == nil {
		return []interface{}{}
	}
	switch v := x.(type) {
	case []interface{}:
		return v
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []interface{}{}
		}
		if strings.ContainsAny(s, ",;") {
			parts := listSplitRe.Split(s, -1)
			out := make([]interface{}, 0, len(parts))
			for _, p := range parts {
				if t := strings.TrimSpace(p); t != "" {
					out = append(out, t)
				}
			}
			return out
		}
		return []interface{}{s}
	default:
		return []interface{}{x}
	}
}

// UniqueNormList deduplicates values case-insensitively while preserving the
// first-seen original text.
func UniqueNormList(values []interface{}) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		t := CleanText(v)
		if t == "" {
			continue
		}
		n := strings.ToLower(t)
		if !seen[n] {
			seen[n] = true
			out = append(out, t)
		}
	}
	return out
}

// FirstNonNull returns the first value that is neither nil nor blank text.
func FirstNonNull(vals ...interface{}) interface{} {
	for _, v := range vals {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

// IsMissing reports whether a value counts as absent for completeness checks.
func IsMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// ParsePercent accepts ratios (0..1), percentages (1..100) and "%"-suffixed
// strings, returning a 0..1 ratio.
func ParsePercent(x interface{}) *float64 {
	if x == nil {
		return nil
	}
	if s, ok := x.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if strings.HasSuffix(s, "%") {
			v := ToFloat(strings.TrimSuffix(s, "%"))
			if v == nil {
				return nil
			}
			r := *v / 100.0
			return &r
		}
	}
	v := ToFloat(x)
	if v == nil {
		return nil
	}
	if *v >= 0 && *v <= 1 {
		return v
	}
	if *v > 1 && *v <= 100 {
		r := *v / 100.0
		return &r
	}
	return nil
}

var condSpaceRe = regexp.MustCompile(`\s+`)

// NormalizeConditionKey collapses whitespace so rubric lookups are stable
// against formatting drift in condition strings.
func NormalizeConditionKey(s string) string {
	return condSpaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns arbitrary text into a snake_case identifier.
func Slugify(s string) string {
	out := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
	if out == "" {
		return "task"
	}
	return out
}

// NormalizeStage maps free-form stage text onto the canonical stage set.
func NormalizeStage(v interface{}) *string {
	s := NormText(v)
	if s == "" {
		return nil
	}
	for _, p := range stagePairs {
		if p.key == s {
			m := p.mapped
			return &m
		}
	}
	for _, p := range stagePairs {
		if strings.Contains(s, p.key) {
			m := p.mapped
			return &m
		}
	}
	return nil
}

// NormalizeRound shares the stage vocabulary.
func NormalizeRound(v interface{}) *string {
	return NormalizeStage(v)
}

// NormalizeInstrument maps instrument descriptions onto the canonical set.
func NormalizeInstrument(v interface{}) *string {
	s := NormText(v)
	if s == "" {
		return nil
	}
	var out string
	switch {
	case strings.Contains(s, "safe"):
		out = "safe"
	case strings.Contains(s, "convertible") || strings.Contains(s, "note"):
		out = "convertible_note"
	case strings.Contains(s, "equity") || strings.Contains(s, "priced"):
		out = "equity"
	case strings.Contains(s, "debt"):
		out = "debt"
	default:
		out = strings.ReplaceAll(s, " ", "_")
	}
	return &out
}

// NormalizeGeos cleans and deduplicates geography names.
func NormalizeGeos(values []interface{}) []string {
	cleaned := make([]interface{}, 0, len(values))
	for _, v := range values {
		if t := CleanText(v); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return UniqueNormList(cleaned)
}

// NormalizeSectors deduplicates sector names.
func NormalizeSectors(values []interface{}) []string {
	return UniqueNormList(values)
}

// NormalizeBusinessModel resolves the primary model and the b2b/b2c flags
// together, inferring one side from the other when possible.
func NormalizeBusinessModel(primary interface{}, isB2B, isB2C *bool) (*string, *bool, *bool) {
	p := NormText(primary)
	if p == "" {
		switch {
		case isB2B != nil && *isB2B && isB2C != nil && *isB2C:
			p = "b2b_b2c"
		case isB2B != nil && *isB2B:
			p = "b2b"
		case isB2C != nil && *isB2C:
			p = "b2c"
		default:
			return nil, isB2B, isB2C
		}
	}

	boolPtr := func(v bool) *bool { return &v }
	strPtr := func(v string) *string { return &v }

	switch {
	case strings.Contains(p, "b2b") && strings.Contains(p, "b2c"):
		if isB2B == nil {
			isB2B = boolPtr(true)
		}
		if isB2C == nil {
			isB2C = boolPtr(true)
		}
		return strPtr("b2b_b2c"), isB2B, isB2C
	case strings.Contains(p, "b2b") || strings.Contains(p, "enterprise") || strings.Contains(p, "saas"):
		if isB2B == nil {
			isB2B = boolPtr(true)
		}
		if isB2C == nil {
			isB2C = boolPtr(false)
		}
		return strPtr("b2b"), isB2B, isB2C
	case strings.Contains(p, "b2c") || strings.Contains(p, "consumer") || strings.Contains(p, "d2c"):
		if isB2B == nil {
			isB2B = boolPtr(false)
		}
		if isB2C == nil {
			isB2C = boolPtr(true)
		}
		return strPtr("b2c"), isB2B, isB2C
	case strings.Contains(p, "marketplace"):
		return strPtr("marketplace"), isB2B, isB2C
	}
	return strPtr(strings.ReplaceAll(p, " ", "_")), isB2B, isB2C
}

// ListNormSet builds a lowercase set from any list-ish value.
func ListNormSet(v interface{}) map[string]bool {
	out := map[string]bool{}
	for _, x := range ToList(v) {
		if CleanText(x) != "" {
			out[NormText(x)] = true
		}
	}
	return out
}

// Overlap reports whether two list-ish values share any element.
func Overlap(a, b interface{}) bool {
	return CountOverlap(a, b) > 0
}

// CountOverlap counts shared elements between two list-ish values.
func CountOverlap(a, b interface{}) int {
	as := ListNormSet(a)
	bs := ListNormSet(b)
	n := 0
	for k := range as {
		if bs[k] {
			n++
		}
	}
	return n
}

// RangeOverlap reports whether [aMin,aMax] and [bMin,bMax] intersect. Any nil
// bound means no overlap can be established.
func RangeOverlap(aMin, aMax, bMin, bMax *float64) bool {
	if aMin == nil || aMax == nil || bMin == nil || bMax == nil {
		return false
	}
	return math.Max(*aMin, *bMin) <= math.Min(*aMax, *bMax)
}

// AbsDistanceToRange measures how far a value sits outside [lo,hi], zero when
// inside.
func AbsDistanceToRange(value, lo, hi *float64) *float64 {
	if value == nil || lo == nil || hi == nil {
		return nil
	}
	var d float64
	switch {
	case *value >= *lo && *value <= *hi:
		d = 0
	case *value < *lo:
		d = *lo - *value
	default:
		d = *value - *hi
	}
	return &d
}

// AdjacentStage reports whether the startup's stage sits exactly one step
// from any of the investor's focus stages.
func AdjacentStage(startupStage *string, investorStages []string) bool {
	if startupStage == nil {
		return false
	}
	sIdx, ok := StageOrder[*startupStage]
	if !ok {
		return false
	}
	for _, st := range investorStages {
		n := st
		if mapped := NormalizeStage(st); mapped != nil {
			n = *mapped
		}
		if idx, ok := StageOrder[n]; ok && abs(idx-sIdx) == 1 {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// StrictRoleConflict reports a hard lead/follow mismatch.
func StrictRoleConflict(needsLead, onlyFollowers *bool, investorRole string) bool {
	role := strings.ToLower(strings.TrimSpace(investorRole))
	return (needsLead != nil && *needsLead && role == "follow") ||
		(onlyFollowers != nil && *onlyFollowers && role == "lead")
}

// ArtifactCountPresent counts how many of the given artifact signals are
// actually present.
func ArtifactCountPresent(vals ...interface{}) int {
	c := 0
	for _, v := range vals {
		switch t := v.(type) {
		case nil:
		case bool:
			if t {
				c++
			}
		case string:
			if strings.TrimSpace(t) != "" {
				c++
			}
		default:
			c++
		}
	}
	return c
}

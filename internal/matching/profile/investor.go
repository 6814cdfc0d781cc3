package profile

import (
	"strings"
	"time"
)

// InferInvestorHeuristic assembles a canonical investor document from a flat
// investor record. Thresholds that the record does not state are inferred
// from the investor type and thesis keywords.
func InferInvestorHeuristic(d map[string]interface{}) map[string]interface{} {
	var stagesRaw []interface{}
	stagesRaw = append(stagesRaw, ToList(d["investor_stages"])...)
	stagesRaw = append(stagesRaw, ToList(d["investor_stage_keywords"])...)
	stages := UniqueNormList(stagesRaw)

	var sectorsRaw []interface{}
	sectorsRaw = append(sectorsRaw, ToList(d["investor_sectors"])...)
	sectorsRaw = append(sectorsRaw, ToList(d["investor_sector_keywords"])...)
	sectors := UniqueNormList(sectorsRaw)

	var geosRaw []interface{}
	geosRaw = append(geosRaw, ToList(d["investor_geography_focus"])...)
	geosRaw = append(geosRaw, ToList(d["investor_geo_keywords"])...)
	geosRaw = append(geosRaw, ToList(d["investor_hq_country"])...)
	geosRaw = append(geosRaw, ToList(d["investor_hq_state"])...)
	geosRaw = append(geosRaw, ToList(d["investor_hq_city"])...)
	geos := UniqueNormList(geosRaw)

	stageFocusRaw := make([]interface{}, 0, len(stages))
	for _, x := range stages {
		if CleanText(x) == "" {
			continue
		}
		if mapped := NormalizeStage(x); mapped != nil {
			stageFocusRaw = append(stageFocusRaw, *mapped)
		} else {
			stageFocusRaw = append(stageFocusRaw, strings.ReplaceAll(NormText(x), " ", "_"))
		}
	}
	stageFocus := UniqueNormList(stageFocusRaw)
	sectorFocus := NormalizeSectors(toInterfaces(sectors))
	geoFocus := NormalizeGeos(toInterfaces(geos))

	leadOrFollow := NormText(d["investor_lead_or_follow"])
	if leadOrFollow != "lead" && leadOrFollow != "follow" && leadOrFollow != "both" {
		leadOrFollow = "both"
	}

	investorType := NormText(d["investor_type"])
	requiresDataRoom := investorType == "vc" || investorType == "pe" || investorType == "growth"

	var bmi []interface{}
	prefersB2B := ToBool(d["investor_prefers_b2b"])
	prefersB2C := ToBool(d["investor_prefers_b2c"])
	if prefersB2B != nil && *prefersB2B {
		bmi = append(bmi, "b2b")
	}
	if prefersB2C != nil && *prefersB2C {
		bmi = append(bmi, "b2c")
	}
	if len(bmi) == 0 {
		bmi = []interface{}{"b2b", "b2c"}
	}

	sfParts := make([]string, 0, len(sectorFocus)+4)
	for _, x := range sectorFocus {
		sfParts = append(sfParts, strings.ToLower(x))
	}
	for _, x := range ToList(d["investor_thesis_summary"]) {
		sfParts = append(sfParts, NormText(x))
	}
	sfText := strings.Join(sfParts, " ")
	regTol := 2
	for _, k := range []string{"health", "biotech", "medtech", "fintech", "insurtech"} {
		if strings.Contains(sfText, k) {
			regTol = 3
			break
		}
	}

	institutional := investorType == "vc" || investorType == "growth" || investorType == "cvc"
	defensibilityMin := 0.5
	horizonMin, horizonMax, capTol := 2, 10, 2
	if institutional {
		defensibilityMin = 0.6
		horizonMin, horizonMax, capTol = 3, 12, 2
	}

	activeStatus := NormText(d["investor_active_status"])
	if activeStatus == "" {
		activeStatus = "active"
	}

	var sourceURLsRaw []interface{}
	sourceURLsRaw = append(sourceURLsRaw, ToList(d["investor_source_urls"])...)
	sourceURLsRaw = append(sourceURLsRaw, ToList(d["investor_grounding_urls"])...)

	checkMin := ToFloat(d["investor_minimum_check_usd"])
	checkTypical := ToFloat(d["investor_typical_check_usd"])
	checkMax := ToFloat(d["investor_maximum_check_usd"])

	if checkMin == nil && checkTypical != nil {
		v := round2(0.5 * *checkTypical)
		checkMin = &v
	}
	if checkMax == nil && checkTypical != nil {
		v := round2(2.0 * *checkTypical)
		checkMax = &v
	}
	if checkTypical == nil && checkMin != nil && checkMax != nil {
		v := round2((*checkMin + *checkMax) / 2.0)
		checkTypical = &v
	}

	return map[string]interface{}{
		"investor": map[string]interface{}{
			"name":                              d["investor_name"],
			"active_status":                     activeStatus,
			"stage_focus_normalized":            stageFocus,
			"stage_exclude_normalized":          []interface{}{},
			"sector_focus_normalized":           sectorFocus,
			"sector_exclude_normalized":         []interface{}{},
			"business_models_include":           UniqueNormList(bmi),
			"business_models_exclude":           []interface{}{},
			"prefers_b2b":                       boolVal(prefersB2B),
			"prefers_b2c":                       boolVal(prefersB2C),
			"geo_focus_normalized":              geoFocus,
			"geo_exclude_normalized":            []interface{}{},
			"geo_hard_constraint":               false,
			"remote_ok":                         true,
			"check_min_usd":                     numVal(checkMin),
			"check_typical_usd":                 numVal(checkTypical),
			"check_max_usd":                     numVal(checkMax),
			"lead_or_follow":                    leadOrFollow,
			"lead_follow_strict":                false,
			"instrument_include_normalized":     []interface{}{"equity", "safe", "convertible_note"},
			"instrument_exclude_normalized":     []interface{}{},
			"regulatory_exclude":                []interface{}{},
			"regulatory_tolerance_level":        regTol,
			"defensibility_preference_min_score": defensibilityMin,
			"time_horizon_min_years":            horizonMin,
			"time_horizon_max_years":            horizonMax,
			"capital_intensity_tolerance_level": capTol,
			"requires_pitch_deck":               true,
			"requires_data_room":                requiresDataRoom,
			"decision_speed_days":               intVal(ToInt(d["investor_decision_speed_days"])),
			"source_urls":                       UniqueNormList(sourceURLsRaw),
		},
		"metadata": map[string]interface{}{
			"generated_at_utc": time.Now().UTC().Format(time.RFC3339),
			"generator":        "heuristic_investor_builder_v2",
			"source_variables": []string{"investor_data"},
		},
	}
}

// FillInvestorDefaults guarantees every key the scoring engine reads exists
// and re-normalizes list and enum fields after an LLM merge.
func FillInvestorDefaults(obj map[string]interface{}) map[string]interface{} {
	x := DeepCopy(obj)
	i := ensureMap(x, "investor")
	setDefault(i, "active_status", "active")

	for _, k := range []string{
		"stage_focus_normalized", "stage_exclude_normalized", "sector_focus_normalized", "sector_exclude_normalized",
		"business_models_include", "business_models_exclude", "geo_focus_normalized", "geo_exclude_normalized",
		"instrument_include_normalized", "instrument_exclude_normalized", "regulatory_exclude", "source_urls",
	} {
		setDefault(i, k, []interface{}{})
	}

	for _, k := range []string{"geo_hard_constraint", "remote_ok", "lead_follow_strict", "requires_pitch_deck", "requires_data_room", "prefers_b2b", "prefers_b2c"} {
		setDefault(i, k, nil)
	}

	for _, k := range []string{
		"check_min_usd", "check_typical_usd", "check_max_usd", "decision_speed_days",
		"regulatory_tolerance_level", "capital_intensity_tolerance_level",
		"time_horizon_min_years", "time_horizon_max_years", "defensibility_preference_min_score",
	} {
		setDefault(i, k, nil)
	}

	setDefault(i, "lead_or_follow", "both")

	i["stage_focus_normalized"] = normalizeStageList(i["stage_focus_normalized"])
	i["stage_exclude_normalized"] = normalizeStageList(i["stage_exclude_normalized"])
	i["sector_focus_normalized"] = NormalizeSectors(ToList(i["sector_focus_normalized"]))
	i["sector_exclude_normalized"] = NormalizeSectors(ToList(i["sector_exclude_normalized"]))
	i["business_models_include"] = normalizeTokenList(i["business_models_include"])
	i["business_models_exclude"] = normalizeTokenList(i["business_models_exclude"])
	i["geo_focus_normalized"] = NormalizeGeos(ToList(i["geo_focus_normalized"]))
	i["geo_exclude_normalized"] = NormalizeGeos(ToList(i["geo_exclude_normalized"]))
	i["instrument_include_normalized"] = normalizeInstrumentList(i["instrument_include_normalized"])
	i["instrument_exclude_normalized"] = normalizeInstrumentList(i["instrument_exclude_normalized"])
	i["regulatory_exclude"] = UniqueNormList(ToList(i["regulatory_exclude"]))

	for _, k := range []string{"check_min_usd", "check_typical_usd", "check_max_usd", "defensibility_preference_min_score"} {
		i[k] = numVal(ToFloat(i[k]))
	}
	for _, k := range []string{"decision_speed_days", "regulatory_tolerance_level", "capital_intensity_tolerance_level", "time_horizon_min_years", "time_horizon_max_years"} {
		i[k] = intVal(ToInt(i[k]))
	}

	if v, ok := i["defensibility_preference_min_score"].(float64); ok {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		i["defensibility_preference_min_score"] = v
	}
	lof := CleanText(i["lead_or_follow"])
	if lof != "lead" && lof != "follow" && lof != "both" {
		i["lead_or_follow"] = "both"
	}

	return x
}

func normalizeStageList(v interface{}) []string {
	out := []interface{}{}
	for _, x := range ToList(v) {
		if CleanText(x) == "" {
			continue
		}
		if mapped := NormalizeStage(x); mapped != nil {
			out = append(out, *mapped)
		} else {
			out = append(out, strings.ReplaceAll(NormText(x), " ", "_"))
		}
	}
	return UniqueNormList(out)
}

func normalizeTokenList(v interface{}) []string {
	out := []interface{}{}
	for _, x := range ToList(v) {
		if CleanText(x) == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(NormText(x), " ", "_"))
	}
	return UniqueNormList(out)
}

func normalizeInstrumentList(v interface{}) []string {
	out := []interface{}{}
	for _, x := range ToList(v) {
		if CleanText(x) == "" {
			continue
		}
		if mapped := NormalizeInstrument(x); mapped != nil {
			out = append(out, *mapped)
		} else {
			out = append(out, strings.ReplaceAll(NormText(x), " ", "_"))
		}
	}
	return UniqueNormList(out)
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

var investorCriticalPaths = [][]string{
	{"active_status"}, {"stage_focus_normalized"}, {"sector_focus_normalized"}, {"geo_focus_normalized"},
	{"check_typical_usd"}, {"lead_or_follow"}, {"instrument_include_normalized"}, {"regulatory_tolerance_level"},
}

// CriticalMissingRatioInvestor measures absent decision-critical fields for
// the corrective second refinement pass.
func CriticalMissingRatioInvestor(obj map[string]interface{}) float64 {
	i, _ := obj["investor"].(map[string]interface{})
	return missingRatio(i, investorCriticalPaths)
}

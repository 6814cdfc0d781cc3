package engine

import (
	"math"

	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// scoreRiskRegulatoryAlignment evaluates regulatory exposure, defensibility
// and time-horizon fit (sub-rules E1 to E3).
func scoreRiskRegulatoryAlignment(startup, investor map[string]interface{}) map[string]RuleResult {
	out := map[string]RuleResult{}

	r := subMap(startup, "risk")
	m := subMap(startup, "moat")

	regDomain := profile.NormText(r["regulatory_domain"])
	regLevel := profile.ToInt(r["regulatory_risk_level"])
	regTol := profile.ToInt(investor["regulatory_tolerance_level"])
	mitigate := r["mitigation_plan_present"]

	switch {
	case regDomain != "" && profile.ListNormSet(investor["regulatory_exclude"])[regDomain]:
		out["E1_regulatory_exposure_vs_tolerance"] = rr("E1_regulatory_exposure_vs_tolerance", 0, 30, "startup.risk.regulatory_domain IN investor.regulatory_exclude", "Regulatory domain excluded.")
	case regLevel != nil && regTol != nil && *regLevel <= *regTol:
		out["E1_regulatory_exposure_vs_tolerance"] = rr("E1_regulatory_exposure_vs_tolerance", 30, 30, "startup.risk.regulatory_risk_level <= investor.regulatory_tolerance_level", "Regulatory risk within tolerance.")
	case regLevel != nil && regTol != nil && *regLevel == *regTol+1 && boolIs(mitigate, true):
		out["E1_regulatory_exposure_vs_tolerance"] = rr("E1_regulatory_exposure_vs_tolerance", 20, 30, "startup.risk.regulatory_risk_level == investor.regulatory_tolerance_level + 1 AND startup.risk.mitigation_plan_present == true", "Slightly above tolerance but mitigated.")
	case regLevel != nil && regTol != nil && *regLevel > *regTol:
		out["E1_regulatory_exposure_vs_tolerance"] = rr("E1_regulatory_exposure_vs_tolerance", 8, 30, "startup.risk.regulatory_risk_level > investor.regulatory_tolerance_level", "Above tolerance.")
	default:
		out["E1_regulatory_exposure_vs_tolerance"] = rr("E1_regulatory_exposure_vs_tolerance", 5, 30, "missing(startup.risk.regulatory_risk_level) OR missing(investor.regulatory_tolerance_level)", "Missing regulatory risk inputs.")
	}

	moatScore := profile.ParsePercent(m["score"])
	minPref := 0.0
	if v := profile.ToFloat(investor["defensibility_preference_min_score"]); v != nil {
		minPref = *v
	}

	switch {
	case moatScore != nil && *moatScore >= math.Max(0.8, minPref):
		out["E2_defensibility_vs_preference"] = rr("E2_defensibility_vs_preference", 25, 25, "startup.moat.score >= max(0.8, investor.defensibility_preference_min_score)", "High defensibility.")
	case moatScore != nil && *moatScore >= math.Max(0.6, minPref):
		out["E2_defensibility_vs_preference"] = rr("E2_defensibility_vs_preference", 18, 25, "startup.moat.score >= max(0.6, investor.defensibility_preference_min_score)", "Good defensibility.")
	case moatScore != nil && *moatScore >= 0.4:
		out["E2_defensibility_vs_preference"] = rr("E2_defensibility_vs_preference", 10, 25, "startup.moat.score >= 0.4", "Moderate defensibility.")
	case moatScore != nil && *moatScore < 0.4:
		out["E2_defensibility_vs_preference"] = rr("E2_defensibility_vs_preference", 4, 25, "startup.moat.score < 0.4", "Low defensibility.")
	default:
		out["E2_defensibility_vs_preference"] = rr("E2_defensibility_vs_preference", 5, 25, "missing(startup.moat.score)", "Missing moat score.")
	}

	tli := profile.ToFloat(r["time_to_liquidity_years"])
	hmin := profile.ToFloat(investor["time_horizon_min_years"])
	hmax := profile.ToFloat(investor["time_horizon_max_years"])
	sCap := profile.ToInt(r["capital_intensity_level"])
	iCap := profile.ToInt(investor["capital_intensity_tolerance_level"])
	dist := profile.AbsDistanceToRange(tli, hmin, hmax)

	switch {
	case tli != nil && hmin != nil && hmax != nil && sCap != nil && iCap != nil && *hmin <= *tli && *tli <= *hmax && *sCap <= *iCap:
		out["E3_time_horizon_risk_concentration"] = rr("E3_time_horizon_risk_concentration", 20, 20, "startup.risk.time_to_liquidity_years BETWEEN investor.time_horizon_min_years AND investor.time_horizon_max_years AND startup.risk.capital_intensity_level <= investor.capital_intensity_tolerance_level", "Time horizon and capital intensity fit.")
	case dist != nil && *dist <= 2:
		out["E3_time_horizon_risk_concentration"] = rr("E3_time_horizon_risk_concentration", 14, 20, "abs_distance_to_range(startup.risk.time_to_liquidity_years, [investor.time_horizon_min_years, investor.time_horizon_max_years]) <= 2", "Near horizon range.")
	case sCap != nil && iCap != nil && *sCap > *iCap:
		out["E3_time_horizon_risk_concentration"] = rr("E3_time_horizon_risk_concentration", 6, 20, "startup.risk.capital_intensity_level > investor.capital_intensity_tolerance_level", "Capital intensity above tolerance.")
	case dist != nil && *dist > 2:
		out["E3_time_horizon_risk_concentration"] = rr("E3_time_horizon_risk_concentration", 6, 20, "abs_distance_to_range(startup.risk.time_to_liquidity_years, [investor.time_horizon_min_years, investor.time_horizon_max_years]) > 2", "Outside time horizon.")
	default:
		out["E3_time_horizon_risk_concentration"] = rr("E3_time_horizon_risk_concentration", 4, 20, "missing(startup.risk.time_to_liquidity_years) OR missing(investor.time_horizon_min_years)", "Missing time-horizon inputs.")
	}

	return out
}

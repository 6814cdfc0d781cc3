package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// scoreDealCompatibility evaluates stage, check size, geography, lead/follow
// and instrument fit (sub-rules A1 to A5).
func scoreDealCompatibility(startup, investor map[string]interface{}) map[string]RuleResult {
	out := map[string]RuleResult{}

	sStage := startup["stage_normalized"]
	sRound := startup["round_normalized"]
	iFocus := profile.ToList(investor["stage_focus_normalized"])
	iExcl := profile.ToList(investor["stage_exclude_normalized"])
	focusSet := profile.ListNormSet(iFocus)
	exclSet := profile.ListNormSet(iExcl)

	var sStagePtr *string
	if t := profile.CleanText(sStage); t != "" {
		n := profile.NormText(sStage)
		sStagePtr = &n
	}

	switch {
	case sStagePtr != nil && focusSet[*sStagePtr]:
		out["A1_stage_alignment"] = rr("A1_stage_alignment", 30, 30, "startup.stage_normalized IN investor.stage_focus_normalized", "Stage directly in focus.")
	case profile.CleanText(sRound) != "" && focusSet[profile.NormText(sRound)]:
		out["A1_stage_alignment"] = rr("A1_stage_alignment", 26, 30, "startup.round_normalized IN investor.stage_focus_normalized", "Round aligns with stage focus.")
	case profile.AdjacentStage(sStagePtr, toStrings(iFocus)):
		out["A1_stage_alignment"] = rr("A1_stage_alignment", 20, 30, "adjacent_stage(startup.stage_normalized, investor.stage_focus_normalized)", "Adjacent stage to focus.")
	case sStagePtr != nil && exclSet[*sStagePtr]:
		out["A1_stage_alignment"] = rr("A1_stage_alignment", 0, 30, "startup.stage_normalized IN investor.stage_exclude_normalized", "Stage is explicitly excluded.")
	case profile.IsMissing(sStage) || len(iFocus) == 0:
		out["A1_stage_alignment"] = rr("A1_stage_alignment", 6, 30, "missing(startup.stage_normalized) OR empty(investor.stage_focus_normalized)", "Missing stage or empty investor stage focus.")
	default:
		out["A1_stage_alignment"] = rr("A1_stage_alignment", 10, 30, "default_non_focus_stage", "Stage not focused and not excluded.")
	}

	sr := subMap(startup, "raise")
	sMin := profile.ToFloat(sr["min_ticket_usd"])
	sMax := profile.ToFloat(sr["max_ticket_usd"])
	sTarget := profile.ToFloat(sr["target_raise_usd"])
	iMin := profile.ToFloat(investor["check_min_usd"])
	iTyp := profile.ToFloat(investor["check_typical_usd"])
	iMax := profile.ToFloat(investor["check_max_usd"])

	switch {
	case profile.RangeOverlap(sMin, sMax, iMin, iMax):
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 30, 30, "range_overlap([startup.raise.min_ticket_usd, startup.raise.max_ticket_usd], [investor.check_min_usd, investor.check_max_usd])", "Check ranges overlap.")
	case iTyp != nil && sMin != nil && sMax != nil && *sMin <= *iTyp && *iTyp <= *sMax:
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 26, 30, "investor.check_typical_usd BETWEEN startup.raise.min_ticket_usd AND startup.raise.max_ticket_usd", "Typical check fits startup acceptable ticket.")
	case iTyp != nil && sTarget != nil && *iTyp >= 0.01**sTarget:
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 22, 30, "investor.check_typical_usd >= 0.01 * startup.raise.target_raise_usd", "Typical check is meaningful relative to round.")
	case iTyp != nil && sTarget != nil && *iTyp >= 0.005**sTarget:
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 16, 30, "investor.check_typical_usd >= 0.005 * startup.raise.target_raise_usd", "Typical check is small but usable.")
	case iMax != nil && sMin != nil && *iMax < *sMin:
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 0, 30, "investor.check_max_usd < startup.raise.min_ticket_usd", "Investor cannot meet minimum ticket.")
	case sTarget == nil || iMax == nil:
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 6, 30, "missing(startup.raise.target_raise_usd) OR missing(investor.check_max_usd)", "Missing raise target or investor max check.")
	default:
		out["A2_check_size_compatibility"] = rr("A2_check_size_compatibility", 8, 30, "default_low_coverage", "Low check coverage.")
	}

	tg := profile.ToList(startup["target_geographies"])
	og := profile.ToList(startup["operating_geographies"])
	hq := startup["hq_country"]
	gf := profile.ToList(investor["geo_focus_normalized"])
	union := geoUnion(startup)

	switch {
	case profile.Overlap(tg, gf):
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 25, 25, "overlap(startup.target_geographies, investor.geo_focus_normalized)", "Target geography overlaps investor focus.")
	case profile.Overlap(og, gf):
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 21, 25, "overlap(startup.operating_geographies, investor.geo_focus_normalized)", "Operating geography overlaps investor focus.")
	case profile.CleanText(hq) != "" && profile.ListNormSet(gf)[profile.NormText(hq)]:
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 18, 25, "startup.hq_country IN investor.geo_focus_normalized", "HQ country in investor geo focus.")
	case boolIs(investor["remote_ok"], true):
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 16, 25, "investor.remote_ok == true", "Investor open to remote/cross-geo deals.")
	case boolIs(investor["geo_hard_constraint"], true) && !profile.Overlap(union, gf):
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 0, 25, "investor.geo_hard_constraint == true AND NOT overlap(startup.target_geographies OR startup.operating_geographies OR startup.hq_country, investor.geo_focus_normalized)", "Hard geo constraint not met.")
	case profile.IsMissing(hq) || len(gf) == 0:
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 5, 25, "missing(startup.hq_country) OR empty(investor.geo_focus_normalized)", "Missing HQ country or no geo focus.")
	default:
		out["A3_geography_jurisdiction_fit"] = rr("A3_geography_jurisdiction_fit", 9, 25, "default_outside_preference", "Outside primary geo preference.")
	}

	dp := subMap(startup, "deal_preferences")
	needsLead := dp["needs_lead"]
	onlyFollowers := dp["only_followers"]
	role := profile.NormText(investor["lead_or_follow"])

	switch {
	case boolIs(needsLead, true) && (role == "lead" || role == "both"):
		out["A4_deal_leadership_preference_fit"] = rr("A4_deal_leadership_preference_fit", 20, 20, "startup.deal_preferences.needs_lead == true AND investor.lead_or_follow IN ['lead','both']", "Lead need is satisfied.")
	case boolIs(onlyFollowers, true) && (role == "follow" || role == "both"):
		out["A4_deal_leadership_preference_fit"] = rr("A4_deal_leadership_preference_fit", 18, 20, "startup.deal_preferences.only_followers == true AND investor.lead_or_follow IN ['follow','both']", "Follower preference is satisfied.")
	case role == "both":
		out["A4_deal_leadership_preference_fit"] = rr("A4_deal_leadership_preference_fit", 16, 20, "investor.lead_or_follow == 'both'", "Investor can lead or follow.")
	case boolIs(investor["lead_follow_strict"], true) && profile.StrictRoleConflict(asBoolPtr(needsLead), asBoolPtr(onlyFollowers), role):
		out["A4_deal_leadership_preference_fit"] = rr("A4_deal_leadership_preference_fit", 0, 20, "investor.lead_follow_strict == true AND strict_role_conflict(startup.deal_preferences, investor.lead_or_follow)", "Strict lead/follow conflict.")
	case needsLead == nil || role == "":
		out["A4_deal_leadership_preference_fit"] = rr("A4_deal_leadership_preference_fit", 5, 20, "missing(startup.deal_preferences.needs_lead) OR missing(investor.lead_or_follow)", "Missing lead/follow inputs.")
	default:
		out["A4_deal_leadership_preference_fit"] = rr("A4_deal_leadership_preference_fit", 9, 20, "default_role_friction", "Some role friction.")
	}

	instr := profile.NormText(sr["instrument_normalized"])
	iInc := profile.ToList(investor["instrument_include_normalized"])
	iExc := profile.ToList(investor["instrument_exclude_normalized"])

	switch {
	case instr != "" && profile.ListNormSet(iInc)[instr]:
		out["A5_investment_instrument_fit"] = rr("A5_investment_instrument_fit", 20, 20, "startup.raise.instrument_normalized IN investor.instrument_include_normalized", "Instrument in included list.")
	case len(iInc) == 0:
		out["A5_investment_instrument_fit"] = rr("A5_investment_instrument_fit", 14, 20, "empty(investor.instrument_include_normalized)", "No include constraints set.")
	case instr != "" && profile.ListNormSet(iExc)[instr]:
		out["A5_investment_instrument_fit"] = rr("A5_investment_instrument_fit", 0, 20, "startup.raise.instrument_normalized IN investor.instrument_exclude_normalized", "Instrument explicitly excluded.")
	case instr == "":
		out["A5_investment_instrument_fit"] = rr("A5_investment_instrument_fit", 5, 20, "missing(startup.raise.instrument_normalized) OR empty(investor.instrument_include_normalized)", "Missing instrument info.")
	default:
		out["A5_investment_instrument_fit"] = rr("A5_investment_instrument_fit", 8, 20, "default_unlisted_instrument", "Instrument not listed.")
	}

	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, profile.CleanText(v))
	}
	return out
}

func asBoolPtr(v interface{}) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

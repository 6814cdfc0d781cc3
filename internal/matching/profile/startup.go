package profile

import (
	"math"
	"time"
)

// deref helpers keep the document maps JSON-clean: nil for absent, concrete
// values otherwise.
func numVal(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func intVal(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func boolVal(p *bool) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func strVal(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func textOrNil(v interface{}) interface{} {
	if t := CleanText(v); t != "" {
		return t
	}
	return nil
}

func normTextOrNil(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if t := NormText(v); t != "" {
		return t
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// InferStartupHeuristic assembles a canonical startup document from the three
// raw sources: enrichment data, the founder-entered key/value form and the
// readiness questionnaire. Source priority is startup_kv, readiness, apollo.
func InferStartupHeuristic(apollo, startupKV, readiness map[string]interface{}) map[string]interface{} {
	sources := []map[string]interface{}{startupKV, readiness, apollo}
	rmap := ReadinessMap(readiness)

	stageRaw := FirstNonNull(
		FromSourcesFirst(sources, []string{"current_stage", "stage", "startup_stage", "funding_stage", "company_stage"}),
		answerOf(rmap, "company.current_stage", "answer"),
		answerOf(rmap, "funds.current_round", "answer"),
	)
	roundRaw := FirstNonNull(
		FromSourcesFirst(sources, []string{"round", "current_round", "raise_round", "funding_round"}),
		answerOf(rmap, "funds.current_round", "answer"),
	)

	hqCountry := FirstNonNull(
		FromSourcesFirst(sources, []string{"hq_country", "country", "headquarters_country", "company_country"}),
		answerOf(rmap, "company.hq_country", "answer"),
	)
	hqState := FromSourcesFirst(sources, []string{"hq_state", "state", "headquarters_state"})
	hqCity := FromSourcesFirst(sources, []string{"hq_city", "city", "headquarters_city"})

	var targetGeos []interface{}
	targetGeos = append(targetGeos, ToList(FromSourcesFirst(sources, []string{"target_geography", "target_geographies", "target_market_geography"}))...)
	targetGeos = append(targetGeos, ToList(answerOf(rmap, "market.target_geography", "extracted_value"))...)
	var operatingGeos []interface{}
	operatingGeos = append(operatingGeos, ToList(FromSourcesFirst(sources, []string{"operating_geographies", "operating_countries", "current_geographies"}))...)
	operatingGeos = append(operatingGeos, ToList(hqCountry)...)

	var sectors []interface{}
	sectors = append(sectors, ToList(FromSourcesFirst(sources, []string{"industry", "industries", "sector", "sectors", "market_industry"}))...)
	sectors = append(sectors, ToList(FromSourcesFirst(sources, []string{"investor_sectors_fit", "primary_sector"}))...)
	subsectors := ToList(FromSourcesFirst(sources, []string{"sub_industry", "subsector", "subsectors", "category"}))

	bmPrimary := FirstNonNull(
		FromSourcesFirst(sources, []string{"business_model", "business_model_primary", "go_to_market_model"}),
		answerOf(rmap, "biz.business_model", "answer"),
	)
	isB2B := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"is_b2b", "b2b"}), answerOf(rmap, "biz.is_b2b", "answer")))
	isB2C := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"is_b2c", "b2c"}), answerOf(rmap, "biz.is_b2c", "answer")))

	targetRaiseUSD := ToFloat(FirstNonNull(
		FromSourcesFirst(sources, []string{"target_raise_usd", "raise_amount_usd", "fundraising_target_usd", "round_size_usd"}),
		answerOf(rmap, "funds.target_raise_usd", "extracted_value"),
	))
	minTicketUSD := ToFloat(FirstNonNull(
		FromSourcesFirst(sources, []string{"min_ticket_usd", "minimum_ticket_usd", "min_check_accepted_usd"}),
		answerOf(rmap, "funds.min_ticket_usd", "extracted_value"),
	))
	maxTicketUSD := ToFloat(FirstNonNull(
		FromSourcesFirst(sources, []string{"max_ticket_usd", "maximum_ticket_usd", "max_check_accepted_usd"}),
		answerOf(rmap, "funds.max_ticket_usd", "extracted_value"),
	))
	instrument := NormalizeInstrument(FirstNonNull(
		FromSourcesFirst(sources, []string{"instrument", "funding_instrument", "security_type"}),
		answerOf(rmap, "funds.instrument", "answer"),
	))

	needsLead := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"needs_lead", "requires_lead", "need_lead_investor"}), answerOf(rmap, "deal.needs_lead", "answer")))
	onlyFollowers := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"only_followers", "followers_only"}), answerOf(rmap, "deal.only_followers", "answer")))
	timelineToCloseDays := ToInt(FirstNonNull(FromSourcesFirst(sources, []string{"timeline_to_close_days", "close_timeline_days", "fundraise_timeline_days"}), answerOf(rmap, "deal.timeline_to_close_days", "extracted_value")))

	tractionPrimary := FirstNonNull(FromSourcesFirst(sources, []string{"traction_primary_signal", "primary_traction_signal", "traction_type"}), answerOf(rmap, "traction.primary_signal", "answer"))
	arrUSD := ToFloat(FirstNonNull(FromSourcesFirst(sources, []string{"arr_usd", "annual_recurring_revenue_usd"}), answerOf(rmap, "biz.arr_usd", "extracted_value")))
	revenueTTMUSD := ToFloat(FirstNonNull(FromSourcesFirst(sources, []string{"revenue_ttm_usd", "ttm_revenue_usd", "revenue_usd"}), answerOf(rmap, "biz.revenue_ttm_usd", "extracted_value")))
	payingCustomers := ToInt(FirstNonNull(FromSourcesFirst(sources, []string{"paying_customers", "paying_customers_count", "customers_count"}), answerOf(rmap, "traction.paying_customers_count", "extracted_value")))
	momGrowthPct := ToFloat(FirstNonNull(FromSourcesFirst(sources, []string{"mom_growth_pct_3m_avg", "mom_growth_pct", "growth_mom_pct"}), answerOf(rmap, "traction.mom_growth_pct_3m_avg", "extracted_value")))
	yoyGrowthPct := ToFloat(FirstNonNull(FromSourcesFirst(sources, []string{"yoy_growth_pct", "growth_yoy_pct"}), answerOf(rmap, "traction.yoy_growth_pct", "extracted_value")))

	evidenceLinksCount := 0
	for _, src := range sources {
		for _, v := range RecursiveFindAll(src, []string{"evidence_url", "evidence_urls", "source_url", "source_urls"}) {
			evidenceLinksCount += len(ToList(v))
		}
	}

	quantifiedCount := ToInt(FirstNonNull(FromSourcesFirst(sources, []string{"milestones_quantified_count", "quantified_milestones_count"}), answerOf(rmap, "milestones.quantified_count", "extracted_value")))
	stageLinked := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"milestones_stage_linked", "stage_linked_milestones"}), answerOf(rmap, "milestones.stage_linked", "answer")))

	coreRolesCoveredPct := ParsePercent(FirstNonNull(FromSourcesFirst(sources, []string{"core_roles_covered_pct", "team_core_roles_coverage"}), answerOf(rmap, "team.core_roles_covered_pct", "extracted_value")))
	domainYearsAvg := ToFloat(FirstNonNull(FromSourcesFirst(sources, []string{"domain_years_avg", "founder_domain_years_avg"}), answerOf(rmap, "team.domain_years_avg", "extracted_value")))
	priorExitCount := ToInt(FirstNonNull(FromSourcesFirst(sources, []string{"prior_exit_count", "founder_prior_exit_count", "team_prior_exit_count"}), answerOf(rmap, "team.prior_exit_count", "extracted_value")))

	responsivenessDays := ToInt(FirstNonNull(FromSourcesFirst(sources, []string{"responsiveness_days", "response_time_days"}), answerOf(rmap, "signals.responsiveness_days", "extracted_value")))
	referenceCount := ToInt(FirstNonNull(FromSourcesFirst(sources, []string{"reference_count", "references_count"}), answerOf(rmap, "signals.reference_count", "extracted_value")))
	negativeReferenceFlag := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"negative_reference_flag", "negative_references"}), answerOf(rmap, "signals.negative_reference_flag", "answer")))

	regulatoryDomain := FirstNonNull(FromSourcesFirst(sources, []string{"regulatory_domain", "compliance_domain"}), answerOf(rmap, "risk.regulatory_domain", "answer"))
	regRiskRaw := FirstNonNull(FromSourcesFirst(sources, []string{"regulatory_risk_level", "risk_level", "regulatory_risk"}), answerOf(rmap, "risk.regulatory_risk_level", "answer"))
	mitigationPlanPresent := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"mitigation_plan_present", "risk_mitigation_plan_present"}), answerOf(rmap, "risk.mitigation_plan_present", "answer")))
	moatScore := ParsePercent(FirstNonNull(FromSourcesFirst(sources, []string{"moat_score", "defensibility_score"}), answerOf(rmap, "moat.score", "extracted_value")))
	moatTypes := ToList(FirstNonNull(FromSourcesFirst(sources, []string{"moat_types", "defensibility_types"}), answerOf(rmap, "moat.types", "extracted_value")))
	timeToLiquidityYears := ToFloat(FirstNonNull(FromSourcesFirst(sources, []string{"time_to_liquidity_years", "time_to_exit_years", "liquidity_timeline_years"}), answerOf(rmap, "risk.time_to_liquidity_years", "extracted_value")))
	capIntensityRaw := FirstNonNull(FromSourcesFirst(sources, []string{"capital_intensity_level", "capital_intensity"}), answerOf(rmap, "risk.capital_intensity_level", "answer"))

	pitchDeckLink := FirstNonNull(FromSourcesFirst(sources, []string{"pitch_deck_link", "pitchdeck_link", "deck_url"}), answerOf(rmap, "company.pitch_deck_link", "extracted_value"))
	dataRoomLink := FirstNonNull(FromSourcesFirst(sources, []string{"data_room_link", "dataroom_link", "data_room_url"}), answerOf(rmap, "company.data_room_link", "extracted_value"))
	capTableLink := FirstNonNull(FromSourcesFirst(sources, []string{"cap_table_link"}), answerOf(rmap, "funds.cap_table_link", "extracted_value"))
	finModelLink := FirstNonNull(FromSourcesFirst(sources, []string{"financial_model_link", "finance_model_link"}), answerOf(rmap, "fin.financial_model_link", "extracted_value"))
	customerMetricsUploaded := ToBool(FirstNonNull(FromSourcesFirst(sources, []string{"customer_metrics_uploaded", "metrics_uploaded"}), answerOf(rmap, "biz.customer_metrics_uploaded", "answer")))

	if customerMetricsUploaded == nil {
		present := arrUSD != nil || revenueTTMUSD != nil || payingCustomers != nil || momGrowthPct != nil || yoyGrowthPct != nil
		customerMetricsUploaded = &present
	}
	if minTicketUSD == nil && targetRaiseUSD != nil {
		v := round2(0.05 * *targetRaiseUSD)
		minTicketUSD = &v
	}
	if maxTicketUSD == nil && targetRaiseUSD != nil {
		v := round2(0.30 * *targetRaiseUSD)
		maxTicketUSD = &v
	}
	if timelineToCloseDays == nil {
		v := 90
		timelineToCloseDays = &v
	}
	if quantifiedCount == nil {
		v := 0
		if arrUSD != nil || revenueTTMUSD != nil || payingCustomers != nil {
			v = 1
		}
		quantifiedCount = &v
	}
	if stageLinked == nil {
		v := false
		stageLinked = &v
	}

	bmPrimaryNorm, isB2BNorm, isB2CNorm := NormalizeBusinessModel(bmPrimary, isB2B, isB2C)

	var regLevel interface{}
	if f, ok := regRiskRaw.(float64); ok {
		regLevel = int(f)
	} else if lvl, ok := RegRiskMap[NormText(regRiskRaw)]; ok {
		regLevel = lvl
	}
	var capIntensity interface{}
	if f, ok := capIntensityRaw.(float64); ok {
		capIntensity = int(f)
	} else if lvl, ok := CapitalIntensityMap[NormText(capIntensityRaw)]; ok {
		capIntensity = lvl
	}

	var pitchDeckCompleteness interface{}
	if CleanText(pitchDeckLink) != "" {
		pitchDeckCompleteness = 0.8
	}

	return map[string]interface{}{
		"startup": map[string]interface{}{
			"stage_normalized":       strVal(NormalizeStage(stageRaw)),
			"round_normalized":       strVal(NormalizeRound(roundRaw)),
			"hq_country":             textOrNil(hqCountry),
			"hq_state":               textOrNil(hqState),
			"hq_city":                textOrNil(hqCity),
			"target_geographies":     NormalizeGeos(targetGeos),
			"operating_geographies":  NormalizeGeos(operatingGeos),
			"sectors_normalized":     NormalizeSectors(sectors),
			"subsectors_normalized":  NormalizeSectors(subsectors),
			"business_model": map[string]interface{}{
				"primary": strVal(bmPrimaryNorm),
				"is_b2b":  boolVal(isB2BNorm),
				"is_b2c":  boolVal(isB2CNorm),
			},
			"raise": map[string]interface{}{
				"target_raise_usd":      numVal(targetRaiseUSD),
				"min_ticket_usd":        numVal(minTicketUSD),
				"max_ticket_usd":        numVal(maxTicketUSD),
				"instrument_normalized": strVal(instrument),
			},
			"deal_preferences": map[string]interface{}{
				"needs_lead":             boolVal(needsLead),
				"only_followers":         boolVal(onlyFollowers),
				"timeline_to_close_days": intVal(timelineToCloseDays),
			},
			"traction": map[string]interface{}{
				"primary_signal":         normTextOrNil(tractionPrimary),
				"arr_usd":                numVal(arrUSD),
				"revenue_ttm_usd":        numVal(revenueTTMUSD),
				"paying_customers_count": intVal(payingCustomers),
				"mom_growth_pct_3m_avg":  numVal(momGrowthPct),
				"yoy_growth_pct":         numVal(yoyGrowthPct),
				"evidence_links_count":   evidenceLinksCount,
			},
			"milestones": map[string]interface{}{
				"quantified_count": intVal(quantifiedCount),
				"stage_linked":     boolVal(stageLinked),
			},
			"team": map[string]interface{}{
				"core_roles_covered_pct": numVal(coreRolesCoveredPct),
				"domain_years_avg":       numVal(domainYearsAvg),
				"prior_exit_count":       intVal(priorExitCount),
			},
			"signals": map[string]interface{}{
				"responsiveness_days":     intVal(responsivenessDays),
				"reference_count":         intVal(referenceCount),
				"negative_reference_flag": boolVal(negativeReferenceFlag),
			},
			"risk": map[string]interface{}{
				"regulatory_domain":       normTextOrNil(regulatoryDomain),
				"regulatory_risk_level":   regLevel,
				"mitigation_plan_present": boolVal(mitigationPlanPresent),
				"time_to_liquidity_years": numVal(timeToLiquidityYears),
				"capital_intensity_level": capIntensity,
			},
			"moat": map[string]interface{}{
				"score": numVal(moatScore),
				"types": UniqueNormList(moatTypes),
			},
			"artifacts": map[string]interface{}{
				"pitch_deck_uploaded":           CleanText(pitchDeckLink) != "",
				"pitch_deck_completeness_score": pitchDeckCompleteness,
				"data_room_url":                 textOrNil(dataRoomLink),
				"cap_table_uploaded":            CleanText(capTableLink) != "",
				"financial_model_uploaded":      CleanText(finModelLink) != "",
				"customer_metrics_uploaded":     boolVal(customerMetricsUploaded),
			},
		},
		"metadata": map[string]interface{}{
			"generated_at_utc": time.Now().UTC().Format(time.RFC3339),
			"generator":        "heuristic_startup_builder_v2",
			"source_variables": []string{"apollo", "startup_kv", "readiness_que"},
		},
	}
}

// FillStartupDefaults guarantees every key the scoring engine reads exists,
// re-normalizing enum fields that an LLM pass may have rewritten as text.
func FillStartupDefaults(obj map[string]interface{}) map[string]interface{} {
	x := DeepCopy(obj)
	s := ensureMap(x, "startup")

	setDefault(s, "target_geographies", []interface{}{})
	setDefault(s, "operating_geographies", []interface{}{})
	setDefault(s, "sectors_normalized", []interface{}{})
	setDefault(s, "subsectors_normalized", []interface{}{})

	bm := ensureMap(s, "business_model")
	for _, k := range []string{"primary", "is_b2b", "is_b2c"} {
		setDefault(bm, k, nil)
	}

	raise := ensureMap(s, "raise")
	for _, k := range []string{"target_raise_usd", "min_ticket_usd", "max_ticket_usd", "instrument_normalized"} {
		setDefault(raise, k, nil)
	}

	dp := ensureMap(s, "deal_preferences")
	for _, k := range []string{"needs_lead", "only_followers", "timeline_to_close_days"} {
		setDefault(dp, k, nil)
	}

	tr := ensureMap(s, "traction")
	for _, k := range []string{"primary_signal", "arr_usd", "revenue_ttm_usd", "paying_customers_count", "mom_growth_pct_3m_avg", "yoy_growth_pct"} {
		setDefault(tr, k, nil)
	}
	setDefault(tr, "evidence_links_count", 0)

	ms := ensureMap(s, "milestones")
	setDefault(ms, "quantified_count", nil)
	setDefault(ms, "stage_linked", nil)

	team := ensureMap(s, "team")
	for _, k := range []string{"core_roles_covered_pct", "domain_years_avg", "prior_exit_count"} {
		setDefault(team, k, nil)
	}

	sig := ensureMap(s, "signals")
	for _, k := range []string{"responsiveness_days", "reference_count", "negative_reference_flag"} {
		setDefault(sig, k, nil)
	}

	risk := ensureMap(s, "risk")
	for _, k := range []string{"regulatory_domain", "regulatory_risk_level", "mitigation_plan_present", "time_to_liquidity_years", "capital_intensity_level"} {
		setDefault(risk, k, nil)
	}

	moat := ensureMap(s, "moat")
	setDefault(moat, "score", nil)
	setDefault(moat, "types", []interface{}{})

	art := ensureMap(s, "artifacts")
	for _, k := range []string{"pitch_deck_uploaded", "pitch_deck_completeness_score", "data_room_url", "cap_table_uploaded", "financial_model_uploaded", "customer_metrics_uploaded"} {
		setDefault(art, k, nil)
	}

	if rr, ok := risk["regulatory_risk_level"].(string); ok {
		if lvl, found := RegRiskMap[NormText(rr)]; found {
			risk["regulatory_risk_level"] = lvl
		} else {
			risk["regulatory_risk_level"] = nil
		}
	}
	if ci, ok := risk["capital_intensity_level"].(string); ok {
		if lvl, found := CapitalIntensityMap[NormText(ci)]; found {
			risk["capital_intensity_level"] = lvl
		} else {
			risk["capital_intensity_level"] = nil
		}
	}

	if v := CleanText(s["stage_normalized"]); v != "" {
		if mapped := NormalizeStage(v); mapped != nil {
			s["stage_normalized"] = *mapped
		}
	}
	if v := CleanText(s["round_normalized"]); v != "" {
		if mapped := NormalizeRound(v); mapped != nil {
			s["round_normalized"] = *mapped
		}
	}
	if v := CleanText(raise["instrument_normalized"]); v != "" {
		if mapped := NormalizeInstrument(v); mapped != nil {
			raise["instrument_normalized"] = *mapped
		}
	}

	team["core_roles_covered_pct"] = numVal(ParsePercent(team["core_roles_covered_pct"]))
	moat["score"] = numVal(ParsePercent(moat["score"]))

	return x
}

var startupCriticalPaths = [][]string{
	{"stage_normalized"}, {"round_normalized"}, {"hq_country"},
	{"sectors_normalized"}, {"raise", "target_raise_usd"}, {"raise", "instrument_normalized"},
	{"traction", "primary_signal"}, {"risk", "regulatory_risk_level"},
	{"team", "domain_years_avg"},
}

// CriticalMissingRatioStartup measures how many decision-critical fields are
// still absent, driving the corrective second refinement pass.
func CriticalMissingRatioStartup(obj map[string]interface{}) float64 {
	s, _ := obj["startup"].(map[string]interface{})
	return missingRatio(s, startupCriticalPaths)
}

func missingRatio(root map[string]interface{}, paths [][]string) float64 {
	miss := 0
	for _, p := range paths {
		var cur interface{} = root
		ok := true
		for _, k := range p {
			m, isMap := cur.(map[string]interface{})
			if !isMap {
				ok = false
				break
			}
			v, exists := m[k]
			if !exists {
				ok = false
				break
			}
			cur = v
		}
		if !ok || IsMissing(cur) {
			miss++
		}
	}
	if len(paths) == 0 {
		return 0
	}
	return float64(miss) / float64(len(paths))
}

func ensureMap(parent map[string]interface{}, key string) map[string]interface{} {
	if m, ok := parent[key].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	parent[key] = m
	return m
}

func setDefault(m map[string]interface{}, key string, def interface{}) {
	if _, ok := m[key]; !ok {
		m[key] = def
	}
}

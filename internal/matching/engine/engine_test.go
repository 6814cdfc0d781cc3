package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fitStartup and fitInvestor describe a pair that scores the maximum in
// every category, so tests can degrade single fields and assert the delta.
func fitStartup() map[string]interface{} {
	return map[string]interface{}{
		"stage_normalized":      "seed",
		"round_normalized":      "seed",
		"hq_country":            "india",
		"operating_geographies": []interface{}{"india"},
		"target_geographies":    []interface{}{"india", "singapore"},
		"sectors_normalized":    []interface{}{"fintech", "saas"},
		"subsectors_normalized": []interface{}{"payments"},
		"business_model": map[string]interface{}{
			"primary": "b2b_saas",
			"is_b2b":  true,
			"is_b2c":  false,
		},
		"raise": map[string]interface{}{
			"target_raise_usd":      2000000.0,
			"min_ticket_usd":        100000.0,
			"max_ticket_usd":        600000.0,
			"instrument_normalized": "equity",
		},
		"traction": map[string]interface{}{
			"arr_usd":               300000.0,
			"revenue_ttm_usd":       350000.0,
			"mom_growth_pct_3m_avg": 12.0,
			"yoy_growth_pct":        80.0,
			"primary_signal":        "paying_customers",
			"evidence_links_count":  2,
		},
		"milestones": map[string]interface{}{
			"quantified_count": 3,
			"stage_linked":     true,
		},
		"team": map[string]interface{}{
			"core_roles_covered_pct": 0.95,
			"domain_years_avg":       9.0,
			"prior_exit_count":       1,
		},
		"signals": map[string]interface{}{
			"responsiveness_days":     2,
			"reference_count":         3,
			"negative_reference_flag": false,
		},
		"risk": map[string]interface{}{
			"regulatory_risk_level":   2,
			"regulatory_domain":       "fintech",
			"mitigation_plan_present": true,
			"time_to_liquidity_years": 6.0,
			"capital_intensity_level": 1,
		},
		"moat": map[string]interface{}{
			"score": 0.85,
		},
		"artifacts": map[string]interface{}{
			"pitch_deck_uploaded":           true,
			"pitch_deck_completeness_score": 0.9,
			"data_room_url":                 "https://example.com/data-room",
			"cap_table_uploaded":            true,
			"financial_model_uploaded":      true,
			"customer_metrics_uploaded":     true,
		},
		"deal_preferences": map[string]interface{}{
			"needs_lead":             true,
			"only_followers":         false,
			"timeline_to_close_days": 90,
		},
	}
}

func fitInvestor() map[string]interface{} {
	return map[string]interface{}{
		"name":                               "Acme Ventures",
		"active_status":                      "active",
		"stage_focus_normalized":             []interface{}{"seed", "series_a"},
		"stage_exclude_normalized":           []interface{}{},
		"sector_focus_normalized":            []interface{}{"fintech", "saas"},
		"sector_exclude_normalized":          []interface{}{},
		"geo_focus_normalized":               []interface{}{"india"},
		"geo_exclude_normalized":             []interface{}{},
		"check_min_usd":                      50000.0,
		"check_typical_usd":                  250000.0,
		"check_max_usd":                      700000.0,
		"lead_or_follow":                     "lead",
		"business_models_include":            []interface{}{"b2b_saas"},
		"business_models_exclude":            []interface{}{},
		"prefers_b2b":                        true,
		"prefers_b2c":                        false,
		"instrument_include_normalized":      []interface{}{"equity", "safe"},
		"instrument_exclude_normalized":      []interface{}{},
		"regulatory_tolerance_level":         3,
		"regulatory_exclude":                 []interface{}{},
		"defensibility_preference_min_score": 0.5,
		"time_horizon_min_years":             3.0,
		"time_horizon_max_years":             12.0,
		"capital_intensity_tolerance_level":  2,
		"requires_pitch_deck":                true,
		"requires_data_room":                 true,
		"decision_speed_days":                45,
		"remote_ok":                          false,
		"geo_hard_constraint":                false,
		"lead_follow_strict":                 false,
	}
}

func wrapStartup(s map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"startup": s}
}

func wrapInvestor(i map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"investor": i}
}

func TestMatchPerfectFit(t *testing.T) {
	result := Match(wrapStartup(fitStartup()), wrapInvestor(fitInvestor()), nil)

	require.True(t, result.Eligible)
	assert.Empty(t, result.GateFailReasons)
	assert.Equal(t, "manual_deterministic_v2", result.MatchingVersion)
	assert.Equal(t, 100.0, result.FitScore)
	assert.Equal(t, 100.0, result.FitScoreIfEligible)
	assert.Equal(t, 475.0, result.RawPointsTotal)
	assert.Equal(t, 475.0, result.RawPointsMaxTotal)
	assert.Len(t, result.CategoryBreakdown, 6)
}

func TestMatchInactiveInvestorGated(t *testing.T) {
	investor := fitInvestor()
	investor["active_status"] = "paused"

	result := Match(wrapStartup(fitStartup()), wrapInvestor(investor), nil)

	require.False(t, result.Eligible)
	assert.Contains(t, result.GateFailReasons, GateInvestorInactive)
	assert.Equal(t, 0.0, result.FitScore)
	// Category math still runs so the would-be score is reported.
	assert.Equal(t, 100.0, result.FitScoreIfEligible)
}

func TestMatchStageAndCheckFullPoints(t *testing.T) {
	result := Match(wrapStartup(fitStartup()), wrapInvestor(fitInvestor()), nil)

	deal := result.CategoryBreakdown["deal_compatibility"]
	a1 := deal.Subcategories["A1_stage_alignment"]
	a2 := deal.Subcategories["A2_check_size_compatibility"]

	assert.Equal(t, 30.0, a1.Points)
	assert.Equal(t, a1.MaxPoints, a1.Points)
	assert.Equal(t, 30.0, a2.Points)
	assert.Equal(t, a2.MaxPoints, a2.Points)
}

func TestMatchCheckBelowMinTicketGated(t *testing.T) {
	startup := fitStartup()
	startup["raise"].(map[string]interface{})["min_ticket_usd"] = 500000.0
	investor := fitInvestor()
	investor["check_max_usd"] = 200000.0

	result := Match(wrapStartup(startup), wrapInvestor(investor), nil)

	require.False(t, result.Eligible)
	assert.Contains(t, result.GateFailReasons, GateCheckBelowMinTicket)
	assert.Equal(t, 0.0, result.FitScore)

	// Task list still reflects category gaps so remediation can be shown.
	tasks := GenerateImprovementTasks(result, wrapInvestor(investor), DefaultMaxTasks)
	var hasGateTask, hasCheckGapTask bool
	for _, task := range tasks {
		if task.TaskType == "hard_gate" {
			hasGateTask = true
		}
		if task.SubcategoryKey == "A2_check_size_compatibility" {
			hasCheckGapTask = true
		}
	}
	assert.True(t, hasGateTask)
	assert.True(t, hasCheckGapTask)
}

func TestMatchRubricPointOverride(t *testing.T) {
	startup := fitStartup()
	startup["stage_normalized"] = "series_c_plus"
	startup["round_normalized"] = "series_c_plus"

	rubric := map[string]interface{}{
		"categories": map[string]interface{}{
			"deal_compatibility": map[string]interface{}{
				"A1_stage_alignment": []interface{}{
					map[string]interface{}{
						"options": map[string]interface{}{
							"default_non_focus_stage": 3,
						},
					},
				},
			},
		},
	}

	base := Match(wrapStartup(startup), wrapInvestor(fitInvestor()), nil)
	overridden := Match(wrapStartup(startup), wrapInvestor(fitInvestor()), rubric)

	baseA1 := base.CategoryBreakdown["deal_compatibility"].Subcategories["A1_stage_alignment"]
	newA1 := overridden.CategoryBreakdown["deal_compatibility"].Subcategories["A1_stage_alignment"]

	assert.Equal(t, 10.0, baseA1.Points)
	assert.Equal(t, 3.0, newA1.Points)
	assert.Less(t,
		overridden.CategoryBreakdown["deal_compatibility"].Percent,
		base.CategoryBreakdown["deal_compatibility"].Percent,
	)
}

func TestMatchCompletedTaskOverrideImprovesTeamScore(t *testing.T) {
	startup := fitStartup()
	startup["team"].(map[string]interface{})["core_roles_covered_pct"] = 0.5

	before := Match(wrapStartup(startup), wrapInvestor(fitInvestor()), nil)

	overrides := []interface{}{
		map[string]interface{}{
			"task_done": true,
			"field_updates": map[string]interface{}{
				"startup.team.core_roles_covered_pct": 1.0,
			},
		},
	}
	newStartup, newInvestor, applied := ApplyCompletedTaskOverrides(wrapStartup(startup), wrapInvestor(fitInvestor()), overrides)
	require.Equal(t, []string{"startup.team.core_roles_covered_pct"}, applied)

	after := Match(newStartup, newInvestor, nil)

	assert.Greater(t,
		after.CategoryBreakdown["founder_team_fit"].RawPoints,
		before.CategoryBreakdown["founder_team_fit"].RawPoints,
	)
}

func TestMatchCategoryMathIdentity(t *testing.T) {
	startup := fitStartup()
	startup["moat"].(map[string]interface{})["score"] = 0.45
	delete(startup, "milestones")

	result := Match(wrapStartup(startup), wrapInvestor(fitInvestor()), nil)

	for name, cat := range result.CategoryBreakdown {
		sum := 0.0
		for _, sub := range cat.Subcategories {
			sum += sub.Points
		}
		assert.InDelta(t, cat.RawPoints, sum, 0.0001, "category %s", name)
		if cat.MaxPoint > 0 {
			assert.InDelta(t, cat.Percent, cat.RawPoints/cat.MaxPoint*100.0, 0.0001, "category %s", name)
			assert.InDelta(t, cat.WeightedContribution, cat.RawPoints/cat.MaxPoint*cat.Weight, 0.0001, "category %s", name)
		}
	}
}

func TestMatchRerunIsByteIdentical(t *testing.T) {
	score := func() []byte {
		startup := wrapStartup(fitStartup())
		investor := wrapInvestor(fitInvestor())

		result := Match(startup, investor, nil)
		result.Tasks = GenerateImprovementTasks(result, investor, DefaultMaxTasks)
		result.Reasoning = DeterministicReasoning(result, investor, result.Tasks)
		result.GeneratedAtUTC = ""

		raw, err := json.Marshal(result)
		require.NoError(t, err)
		return raw
	}

	first := score()
	for i := 0; i < 20; i++ {
		assert.Equal(t, string(first), string(score()))
	}
}

func TestMatchAcceptsBareProfiles(t *testing.T) {
	wrapped := Match(wrapStartup(fitStartup()), wrapInvestor(fitInvestor()), nil)
	bare := Match(fitStartup(), fitInvestor(), nil)

	assert.Equal(t, wrapped.FitScore, bare.FitScore)
	assert.Equal(t, wrapped.Eligible, bare.Eligible)
}

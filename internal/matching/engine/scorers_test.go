package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDealCompatibilityCascades(t *testing.T) {
	t.Run("adjacent stage", func(t *testing.T) {
		startup := fitStartup()
		startup["stage_normalized"] = "series_b"
		startup["round_normalized"] = "series_b"

		out := scoreDealCompatibility(startup, fitInvestor())
		assert.Equal(t, 20.0, out["A1_stage_alignment"].Points)
	})

	t.Run("excluded stage", func(t *testing.T) {
		startup := fitStartup()
		startup["stage_normalized"] = "series_c_plus"
		startup["round_normalized"] = "series_c_plus"
		investor := fitInvestor()
		investor["stage_exclude_normalized"] = []interface{}{"series_c_plus"}

		out := scoreDealCompatibility(startup, investor)
		assert.Equal(t, 0.0, out["A1_stage_alignment"].Points)
	})

	t.Run("missing stage", func(t *testing.T) {
		startup := fitStartup()
		delete(startup, "stage_normalized")
		delete(startup, "round_normalized")

		out := scoreDealCompatibility(startup, fitInvestor())
		assert.Equal(t, 6.0, out["A1_stage_alignment"].Points)
	})

	t.Run("typical check meaningful relative to round", func(t *testing.T) {
		startup := fitStartup()
		startup["raise"].(map[string]interface{})["min_ticket_usd"] = 800000.0
		startup["raise"].(map[string]interface{})["max_ticket_usd"] = 900000.0
		investor := fitInvestor()
		investor["check_min_usd"] = 10000.0
		investor["check_max_usd"] = 50000.0
		investor["check_typical_usd"] = 25000.0

		out := scoreDealCompatibility(startup, investor)
		// 25k >= 1% of the 2M target.
		assert.Equal(t, 22.0, out["A2_check_size_compatibility"].Points)
	})

	t.Run("remote investor without geo overlap", func(t *testing.T) {
		startup := fitStartup()
		startup["hq_country"] = "brazil"
		startup["operating_geographies"] = []interface{}{"brazil"}
		startup["target_geographies"] = []interface{}{"latam"}
		investor := fitInvestor()
		investor["remote_ok"] = true

		out := scoreDealCompatibility(startup, investor)
		assert.Equal(t, 16.0, out["A3_geography_jurisdiction_fit"].Points)
	})

	t.Run("strict role conflict", func(t *testing.T) {
		startup := fitStartup()
		startup["deal_preferences"].(map[string]interface{})["needs_lead"] = true
		investor := fitInvestor()
		investor["lead_or_follow"] = "follow"
		investor["lead_follow_strict"] = true

		out := scoreDealCompatibility(startup, investor)
		assert.Equal(t, 0.0, out["A4_deal_leadership_preference_fit"].Points)
	})

	t.Run("no instrument constraints", func(t *testing.T) {
		investor := fitInvestor()
		investor["instrument_include_normalized"] = []interface{}{}

		out := scoreDealCompatibility(fitStartup(), investor)
		assert.Equal(t, 14.0, out["A5_investment_instrument_fit"].Points)
	})
}

func TestScoreSectorBusinessModelFitCascades(t *testing.T) {
	t.Run("single sector overlap", func(t *testing.T) {
		startup := fitStartup()
		startup["sectors_normalized"] = []interface{}{"fintech"}

		out := scoreSectorBusinessModelFit(startup, fitInvestor())
		assert.Equal(t, 24.0, out["B1_sector_focus_alignment"].Points)
	})

	t.Run("subsector overlap only", func(t *testing.T) {
		startup := fitStartup()
		startup["sectors_normalized"] = []interface{}{"logistics"}
		startup["subsectors_normalized"] = []interface{}{"fintech"}

		out := scoreSectorBusinessModelFit(startup, fitInvestor())
		assert.Equal(t, 18.0, out["B1_sector_focus_alignment"].Points)
	})

	t.Run("b2b preference match without include list", func(t *testing.T) {
		investor := fitInvestor()
		investor["business_models_include"] = []interface{}{}

		out := scoreSectorBusinessModelFit(fitStartup(), investor)
		assert.Equal(t, 17.0, out["B2_business_model_fit"].Points)
	})
}

func TestScoreTractionCascades(t *testing.T) {
	t.Run("pilots with evidence", func(t *testing.T) {
		startup := fitStartup()
		tr := startup["traction"].(map[string]interface{})
		delete(tr, "arr_usd")
		delete(tr, "revenue_ttm_usd")
		tr["primary_signal"] = "pilots"

		out := scoreTractionVsThesis(startup, fitInvestor())
		assert.Equal(t, 20.0, out["C1_traction_evidence_type"].Points)
	})

	t.Run("negative momentum", func(t *testing.T) {
		startup := fitStartup()
		tr := startup["traction"].(map[string]interface{})
		tr["mom_growth_pct_3m_avg"] = -5.0
		tr["yoy_growth_pct"] = -10.0

		out := scoreTractionVsThesis(startup, fitInvestor())
		assert.Equal(t, 0.0, out["C2_traction_momentum"].Points)
	})

	t.Run("missing milestones", func(t *testing.T) {
		startup := fitStartup()
		delete(startup, "milestones")

		out := scoreTractionVsThesis(startup, fitInvestor())
		assert.Equal(t, 5.0, out["C3_milestones_vs_next_stage"].Points)
	})
}

func TestScoreTeamCascades(t *testing.T) {
	t.Run("negative references zero out coachability", func(t *testing.T) {
		startup := fitStartup()
		startup["signals"].(map[string]interface{})["negative_reference_flag"] = true

		out := scoreFounderTeamFit(startup, fitInvestor())
		assert.Equal(t, 0.0, out["D3_coachability_signals"].Points)
	})

	t.Run("domain years without exits", func(t *testing.T) {
		startup := fitStartup()
		team := startup["team"].(map[string]interface{})
		team["prior_exit_count"] = 0
		team["domain_years_avg"] = 4.0

		out := scoreFounderTeamFit(startup, fitInvestor())
		assert.Equal(t, 18.0, out["D2_domain_execution_evidence"].Points)
	})
}

func TestScoreRiskCascades(t *testing.T) {
	t.Run("mitigated over-tolerance", func(t *testing.T) {
		startup := fitStartup()
		startup["risk"].(map[string]interface{})["regulatory_risk_level"] = 4

		out := scoreRiskRegulatoryAlignment(startup, fitInvestor())
		require.Equal(t, 20.0, out["E1_regulatory_exposure_vs_tolerance"].Points)
	})

	t.Run("unmitigated over-tolerance", func(t *testing.T) {
		startup := fitStartup()
		r := startup["risk"].(map[string]interface{})
		r["regulatory_risk_level"] = 4
		r["mitigation_plan_present"] = false

		out := scoreRiskRegulatoryAlignment(startup, fitInvestor())
		assert.Equal(t, 8.0, out["E1_regulatory_exposure_vs_tolerance"].Points)
	})

	t.Run("defensibility floor raised by investor preference", func(t *testing.T) {
		startup := fitStartup()
		startup["moat"].(map[string]interface{})["score"] = 0.7
		investor := fitInvestor()
		investor["defensibility_preference_min_score"] = 0.75

		out := scoreRiskRegulatoryAlignment(startup, investor)
		// 0.7 misses max(0.8, 0.75) and max(0.6, 0.75); falls to the 0.4 band.
		assert.Equal(t, 10.0, out["E2_defensibility_vs_preference"].Points)
	})

	t.Run("near horizon range", func(t *testing.T) {
		startup := fitStartup()
		startup["risk"].(map[string]interface{})["time_to_liquidity_years"] = 13.5

		out := scoreRiskRegulatoryAlignment(startup, fitInvestor())
		assert.Equal(t, 14.0, out["E3_time_horizon_risk_concentration"].Points)
	})
}

func TestScoreDiligenceCascades(t *testing.T) {
	t.Run("deck required but missing", func(t *testing.T) {
		startup := fitStartup()
		startup["artifacts"].(map[string]interface{})["pitch_deck_uploaded"] = false

		out := scoreDiligenceProcessFit(startup, fitInvestor())
		assert.Equal(t, 0.0, out["F1_pitch_deck_availability"].Points)
	})

	t.Run("partial artifact pack", func(t *testing.T) {
		startup := fitStartup()
		a := startup["artifacts"].(map[string]interface{})
		delete(a, "data_room_url")
		a["financial_model_uploaded"] = false

		out := scoreDiligenceProcessFit(startup, fitInvestor())
		assert.Equal(t, 20.0, out["F2_data_room_artifacts"].Points)
	})

	t.Run("major timeline mismatch", func(t *testing.T) {
		investor := fitInvestor()
		investor["decision_speed_days"] = 180

		out := scoreDiligenceProcessFit(fitStartup(), investor)
		assert.Equal(t, 0.0, out["F3_timeline_compatibility"].Points)
	})
}

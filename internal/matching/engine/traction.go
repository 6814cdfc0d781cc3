package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// scoreTractionVsThesis evaluates traction evidence, momentum and milestone
// readiness (sub-rules C1 to C3).
func scoreTractionVsThesis(startup, investor map[string]interface{}) map[string]RuleResult {
	out := map[string]RuleResult{}

	stage := profile.NormText(startup["stage_normalized"])
	t := subMap(startup, "traction")
	arr := profile.ToFloat(t["arr_usd"])
	rev := profile.ToFloat(t["revenue_ttm_usd"])
	links := 0
	if l := profile.ToInt(t["evidence_links_count"]); l != nil {
		links = *l
	}
	primary := profile.NormText(t["primary_signal"])

	revenueStage := stage == "seed" || stage == "series_a" || stage == "series_b"
	hasRevenue := (arr != nil && *arr > 0) || (rev != nil && *rev > 0)

	switch {
	case revenueStage && hasRevenue && links >= 1:
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 30, 30, "startup.stage_normalized IN ['seed','series_a','series_b'] AND (startup.traction.arr_usd > 0 OR startup.traction.revenue_ttm_usd > 0) AND startup.traction.evidence_links_count >= 1", "Revenue evidence aligned with stage.")
	case (primary == "paying_customers" || primary == "revenue" || primary == "arr") && links >= 1:
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 26, 30, "startup.traction.primary_signal IN ['paying_customers','revenue','arr'] AND startup.traction.evidence_links_count >= 1", "Strong traction signal with evidence.")
	case (primary == "pilots" || primary == "lois") && links >= 1:
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 20, 30, "startup.traction.primary_signal IN ['pilots','lois'] AND startup.traction.evidence_links_count >= 1", "Early commercial signal with evidence.")
	case primary == "waitlist" || primary == "engagement":
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 12, 30, "startup.traction.primary_signal IN ['waitlist','engagement']", "Directional signal, weaker commercial proof.")
	case primary == "none" || primary == "unknown":
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 0, 30, "startup.traction.primary_signal IN ['none','unknown']", "No traction signal.")
	case primary == "":
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 6, 30, "missing(startup.traction.primary_signal)", "Missing traction primary signal.")
	default:
		out["C1_traction_evidence_type"] = rr("C1_traction_evidence_type", 10, 30, "default_other_signal", "Other traction signal.")
	}

	mom := profile.ToFloat(t["mom_growth_pct_3m_avg"])
	yoy := profile.ToFloat(t["yoy_growth_pct"])

	switch {
	case (mom != nil && *mom >= 10) || (yoy != nil && *yoy >= 50):
		out["C2_traction_momentum"] = rr("C2_traction_momentum", 20, 20, "startup.traction.mom_growth_pct_3m_avg >= 10 OR startup.traction.yoy_growth_pct >= 50", "Strong growth momentum.")
	case (mom != nil && *mom >= 5) || (yoy != nil && *yoy >= 20):
		out["C2_traction_momentum"] = rr("C2_traction_momentum", 16, 20, "startup.traction.mom_growth_pct_3m_avg >= 5 OR startup.traction.yoy_growth_pct >= 20", "Good growth momentum.")
	case mom != nil && *mom >= 0:
		out["C2_traction_momentum"] = rr("C2_traction_momentum", 10, 20, "startup.traction.mom_growth_pct_3m_avg >= 0", "Flat-to-positive momentum.")
	case (mom != nil && *mom < 0) || (yoy != nil && *yoy < 0):
		out["C2_traction_momentum"] = rr("C2_traction_momentum", 0, 20, "startup.traction.mom_growth_pct_3m_avg < 0 OR startup.traction.yoy_growth_pct < 0", "Negative momentum.")
	case mom == nil && yoy == nil:
		out["C2_traction_momentum"] = rr("C2_traction_momentum", 4, 20, "missing(startup.traction.mom_growth_pct_3m_avg) AND missing(startup.traction.yoy_growth_pct)", "Missing momentum metrics.")
	default:
		out["C2_traction_momentum"] = rr("C2_traction_momentum", 8, 20, "default_momentum_mid", "Partial momentum evidence.")
	}

	m := subMap(startup, "milestones")
	q := profile.ToInt(m["quantified_count"])
	linked := m["stage_linked"]

	switch {
	case q != nil && *q >= 3 && boolIs(linked, true):
		out["C3_milestones_vs_next_stage"] = rr("C3_milestones_vs_next_stage", 25, 25, "startup.milestones.quantified_count >= 3 AND startup.milestones.stage_linked == true", "Strong quantified milestones linked to stage.")
	case q != nil && *q >= 2:
		out["C3_milestones_vs_next_stage"] = rr("C3_milestones_vs_next_stage", 18, 25, "startup.milestones.quantified_count >= 2", "Good quantified milestones.")
	case q != nil && *q == 1:
		out["C3_milestones_vs_next_stage"] = rr("C3_milestones_vs_next_stage", 10, 25, "startup.milestones.quantified_count == 1", "Single quantified milestone.")
	case q != nil && *q == 0:
		out["C3_milestones_vs_next_stage"] = rr("C3_milestones_vs_next_stage", 0, 25, "startup.milestones.quantified_count == 0", "No quantified milestones.")
	case q == nil:
		out["C3_milestones_vs_next_stage"] = rr("C3_milestones_vs_next_stage", 5, 25, "missing(startup.milestones.quantified_count)", "Missing milestones count.")
	default:
		out["C3_milestones_vs_next_stage"] = rr("C3_milestones_vs_next_stage", 8, 25, "default_milestone_mid", "Partial milestone info.")
	}

	return out
}

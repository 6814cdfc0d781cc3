package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// scoreFounderTeamFit evaluates role coverage, execution evidence and
// coachability signals (sub-rules D1 to D3).
func scoreFounderTeamFit(startup, investor map[string]interface{}) map[string]RuleResult {
	out := map[string]RuleResult{}

	t := subMap(startup, "team")
	s := subMap(startup, "signals")

	coverage := profile.ParsePercent(t["core_roles_covered_pct"])
	switch {
	case coverage != nil && *coverage >= 0.9:
		out["D1_team_completeness_vs_stage"] = rr("D1_team_completeness_vs_stage", 25, 25, "startup.team.core_roles_covered_pct >= 0.9", "Excellent role coverage.")
	case coverage != nil && *coverage >= 0.7:
		out["D1_team_completeness_vs_stage"] = rr("D1_team_completeness_vs_stage", 18, 25, "startup.team.core_roles_covered_pct >= 0.7", "Good role coverage.")
	case coverage != nil && *coverage >= 0.4:
		out["D1_team_completeness_vs_stage"] = rr("D1_team_completeness_vs_stage", 10, 25, "startup.team.core_roles_covered_pct >= 0.4", "Partial role coverage.")
	case coverage != nil && *coverage < 0.4:
		out["D1_team_completeness_vs_stage"] = rr("D1_team_completeness_vs_stage", 0, 25, "startup.team.core_roles_covered_pct < 0.4", "Weak role coverage.")
	default:
		out["D1_team_completeness_vs_stage"] = rr("D1_team_completeness_vs_stage", 5, 25, "missing(startup.team.core_roles_covered_pct)", "Missing role coverage metric.")
	}

	exits := 0
	if e := profile.ToInt(t["prior_exit_count"]); e != nil {
		exits = *e
	}
	years := profile.ToFloat(t["domain_years_avg"])

	switch {
	case exits >= 1 || (years != nil && *years >= 8):
		out["D2_domain_execution_evidence"] = rr("D2_domain_execution_evidence", 30, 30, "startup.team.prior_exit_count >= 1 OR startup.team.domain_years_avg >= 8", "Strong founder execution proof.")
	case years != nil && *years >= 5:
		out["D2_domain_execution_evidence"] = rr("D2_domain_execution_evidence", 24, 30, "startup.team.domain_years_avg >= 5", "Strong domain depth.")
	case years != nil && *years >= 3:
		out["D2_domain_execution_evidence"] = rr("D2_domain_execution_evidence", 18, 30, "startup.team.domain_years_avg >= 3", "Moderate domain depth.")
	case years != nil && *years >= 1:
		out["D2_domain_execution_evidence"] = rr("D2_domain_execution_evidence", 10, 30, "startup.team.domain_years_avg >= 1", "Early domain experience.")
	case years != nil && *years < 1:
		out["D2_domain_execution_evidence"] = rr("D2_domain_execution_evidence", 4, 30, "startup.team.domain_years_avg < 1", "Limited domain depth.")
	default:
		out["D2_domain_execution_evidence"] = rr("D2_domain_execution_evidence", 6, 30, "missing(startup.team.domain_years_avg)", "Missing domain-years metric.")
	}

	neg := s["negative_reference_flag"]
	respDays := profile.ToInt(s["responsiveness_days"])
	refs := 0
	if r := profile.ToInt(s["reference_count"]); r != nil {
		refs = *r
	}

	switch {
	case boolIs(neg, true):
		out["D3_coachability_signals"] = rr("D3_coachability_signals", 0, 20, "startup.signals.negative_reference_flag == true", "Negative references present.")
	case respDays != nil && *respDays <= 3 && refs >= 2:
		out["D3_coachability_signals"] = rr("D3_coachability_signals", 20, 20, "startup.signals.responsiveness_days <= 3 AND startup.signals.reference_count >= 2", "Fast response with strong references.")
	case respDays != nil && *respDays <= 7 && refs >= 1:
		out["D3_coachability_signals"] = rr("D3_coachability_signals", 15, 20, "startup.signals.responsiveness_days <= 7 AND startup.signals.reference_count >= 1", "Good responsiveness and references.")
	case respDays != nil && *respDays <= 14:
		out["D3_coachability_signals"] = rr("D3_coachability_signals", 9, 20, "startup.signals.responsiveness_days <= 14", "Moderate responsiveness.")
	default:
		out["D3_coachability_signals"] = rr("D3_coachability_signals", 4, 20, "missing(startup.signals.responsiveness_days)", "Missing coachability timing signals.")
	}

	return out
}

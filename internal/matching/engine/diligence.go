package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// scoreDiligenceProcessFit evaluates deck readiness, data room depth and
// close-timeline compatibility (sub-rules F1 to F3).
func scoreDiligenceProcessFit(startup, investor map[string]interface{}) map[string]RuleResult {
	out := map[string]RuleResult{}

	a := subMap(startup, "artifacts")
	d := subMap(startup, "deal_preferences")

	deck := a["pitch_deck_uploaded"]
	deckScore := profile.ToFloat(a["pitch_deck_completeness_score"])

	switch {
	case boolIs(deck, true) && deckScore != nil && *deckScore >= 0.8:
		out["F1_pitch_deck_availability"] = rr("F1_pitch_deck_availability", 20, 20, "startup.artifacts.pitch_deck_uploaded == true AND startup.artifacts.pitch_deck_completeness_score >= 0.8", "Deck is strong and ready.")
	case boolIs(deck, true) && deckScore != nil && *deckScore >= 0.6:
		out["F1_pitch_deck_availability"] = rr("F1_pitch_deck_availability", 15, 20, "startup.artifacts.pitch_deck_uploaded == true AND startup.artifacts.pitch_deck_completeness_score >= 0.6", "Deck is usable.")
	case boolIs(deck, true):
		out["F1_pitch_deck_availability"] = rr("F1_pitch_deck_availability", 9, 20, "startup.artifacts.pitch_deck_uploaded == true", "Deck exists.")
	case boolIs(investor["requires_pitch_deck"], true) && boolIs(deck, false):
		out["F1_pitch_deck_availability"] = rr("F1_pitch_deck_availability", 0, 20, "investor.requires_pitch_deck == true AND startup.artifacts.pitch_deck_uploaded == false", "Deck required but missing.")
	default:
		out["F1_pitch_deck_availability"] = rr("F1_pitch_deck_availability", 4, 20, "missing(startup.artifacts.pitch_deck_uploaded)", "Deck availability unknown.")
	}

	c := profile.ArtifactCountPresent(a["data_room_url"], a["cap_table_uploaded"], a["financial_model_uploaded"], a["customer_metrics_uploaded"], a["pitch_deck_uploaded"])

	switch {
	case c == 5:
		out["F2_data_room_artifacts"] = rr("F2_data_room_artifacts", 35, 35, "artifact_count_present(startup.artifacts.data_room_url, startup.artifacts.cap_table_uploaded, startup.artifacts.financial_model_uploaded, startup.artifacts.customer_metrics_uploaded, startup.artifacts.pitch_deck_uploaded) == 5", "Complete diligence pack.")
	case c == 4:
		out["F2_data_room_artifacts"] = rr("F2_data_room_artifacts", 28, 35, "artifact_count_present(startup.artifacts.data_room_url, startup.artifacts.cap_table_uploaded, startup.artifacts.financial_model_uploaded, startup.artifacts.customer_metrics_uploaded, startup.artifacts.pitch_deck_uploaded) == 4", "Near-complete diligence pack.")
	case c == 3:
		out["F2_data_room_artifacts"] = rr("F2_data_room_artifacts", 20, 35, "artifact_count_present(startup.artifacts.data_room_url, startup.artifacts.cap_table_uploaded, startup.artifacts.financial_model_uploaded, startup.artifacts.customer_metrics_uploaded, startup.artifacts.pitch_deck_uploaded) == 3", "Moderate diligence pack.")
	case c == 1 || c == 2:
		out["F2_data_room_artifacts"] = rr("F2_data_room_artifacts", 10, 35, "artifact_count_present(startup.artifacts.data_room_url, startup.artifacts.cap_table_uploaded, startup.artifacts.financial_model_uploaded, startup.artifacts.customer_metrics_uploaded, startup.artifacts.pitch_deck_uploaded) IN [1,2]", "Limited artifacts.")
	case boolIs(investor["requires_data_room"], true) && c == 0:
		out["F2_data_room_artifacts"] = rr("F2_data_room_artifacts", 0, 35, "investor.requires_data_room == true AND artifact_count_present(startup.artifacts.data_room_url, startup.artifacts.cap_table_uploaded, startup.artifacts.financial_model_uploaded, startup.artifacts.customer_metrics_uploaded, startup.artifacts.pitch_deck_uploaded) == 0", "Data room required but absent.")
	default:
		out["F2_data_room_artifacts"] = rr("F2_data_room_artifacts", 6, 35, "missing(startup.artifacts.data_room_url) AND missing(startup.artifacts.cap_table_uploaded)", "Missing core diligence artifacts.")
	}

	ds := profile.ToInt(investor["decision_speed_days"])
	tl := profile.ToInt(d["timeline_to_close_days"])

	switch {
	case ds != nil && tl != nil && *ds <= *tl:
		out["F3_timeline_compatibility"] = rr("F3_timeline_compatibility", 20, 20, "investor.decision_speed_days <= startup.deal_preferences.timeline_to_close_days", "Decision speed fits close timeline.")
	case ds != nil && tl != nil && *ds <= *tl+14:
		out["F3_timeline_compatibility"] = rr("F3_timeline_compatibility", 14, 20, "investor.decision_speed_days <= startup.deal_preferences.timeline_to_close_days + 14", "Slight timeline stretch.")
	case ds != nil && tl != nil && *ds <= *tl+45:
		out["F3_timeline_compatibility"] = rr("F3_timeline_compatibility", 8, 20, "investor.decision_speed_days <= startup.deal_preferences.timeline_to_close_days + 45", "Moderate timeline friction.")
	case ds != nil && tl != nil && *ds > *tl+45:
		out["F3_timeline_compatibility"] = rr("F3_timeline_compatibility", 0, 20, "investor.decision_speed_days > startup.deal_preferences.timeline_to_close_days + 45", "Major timeline mismatch.")
	default:
		out["F3_timeline_compatibility"] = rr("F3_timeline_compatibility", 4, 20, "missing(investor.decision_speed_days) OR missing(startup.deal_preferences.timeline_to_close_days)", "Missing timeline inputs.")
	}

	return out
}

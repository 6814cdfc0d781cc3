package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// scoreSectorBusinessModelFit evaluates sector thesis overlap and business
// model preference (sub-rules B1 and B2).
func scoreSectorBusinessModelFit(startup, investor map[string]interface{}) map[string]RuleResult {
	out := map[string]RuleResult{}

	sSec := startup["sectors_normalized"]
	sSub := startup["subsectors_normalized"]
	iSec := investor["sector_focus_normalized"]
	iExc := investor["sector_exclude_normalized"]

	cMain := profile.CountOverlap(sSec, iSec)
	cSub := profile.CountOverlap(sSub, iSec)

	switch {
	case cMain >= 2:
		out["B1_sector_focus_alignment"] = rr("B1_sector_focus_alignment", 30, 30, "count_overlap(startup.sectors_normalized, investor.sector_focus_normalized) >= 2", "Strong multi-sector overlap.")
	case cMain == 1:
		out["B1_sector_focus_alignment"] = rr("B1_sector_focus_alignment", 24, 30, "count_overlap(startup.sectors_normalized, investor.sector_focus_normalized) == 1", "Single sector overlap.")
	case cSub >= 1:
		out["B1_sector_focus_alignment"] = rr("B1_sector_focus_alignment", 18, 30, "count_overlap(startup.subsectors_normalized, investor.sector_focus_normalized) >= 1", "Subsector overlap.")
	case profile.Overlap(sSec, iExc):
		out["B1_sector_focus_alignment"] = rr("B1_sector_focus_alignment", 0, 30, "overlap(startup.sectors_normalized, investor.sector_exclude_normalized)", "Sector explicitly excluded.")
	case len(profile.ToList(sSec)) == 0 || len(profile.ToList(iSec)) == 0:
		out["B1_sector_focus_alignment"] = rr("B1_sector_focus_alignment", 6, 30, "missing(startup.sectors_normalized) OR empty(investor.sector_focus_normalized)", "Missing sector info.")
	default:
		out["B1_sector_focus_alignment"] = rr("B1_sector_focus_alignment", 10, 30, "default_no_overlap", "No sector overlap.")
	}

	bm := subMap(startup, "business_model")
	primary := profile.NormText(bm["primary"])
	isB2B := bm["is_b2b"]
	isB2C := bm["is_b2c"]
	include := investor["business_models_include"]
	exclude := investor["business_models_exclude"]

	switch {
	case primary != "" && profile.ListNormSet(include)[primary]:
		out["B2_business_model_fit"] = rr("B2_business_model_fit", 20, 20, "startup.business_model.primary IN investor.business_models_include", "Primary model explicitly included.")
	case boolIs(isB2B, true) && boolIs(investor["prefers_b2b"], true):
		out["B2_business_model_fit"] = rr("B2_business_model_fit", 17, 20, "startup.business_model.is_b2b == true AND investor.prefers_b2b == true", "B2B preference match.")
	case boolIs(isB2C, true) && boolIs(investor["prefers_b2c"], true):
		out["B2_business_model_fit"] = rr("B2_business_model_fit", 17, 20, "startup.business_model.is_b2c == true AND investor.prefers_b2c == true", "B2C preference match.")
	case primary != "" && profile.ListNormSet(exclude)[primary]:
		out["B2_business_model_fit"] = rr("B2_business_model_fit", 0, 20, "startup.business_model.primary IN investor.business_models_exclude", "Primary model excluded.")
	case primary == "":
		out["B2_business_model_fit"] = rr("B2_business_model_fit", 5, 20, "missing(startup.business_model.primary)", "Missing business model.")
	default:
		out["B2_business_model_fit"] = rr("B2_business_model_fit", 8, 20, "default_model_misalignment", "Model does not align well.")
	}

	return out
}

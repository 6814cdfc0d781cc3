package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// Hard-gate failure reasons. These exact strings key the gate task templates,
// so they must stay stable.
const (
	GateInvestorInactive      = "Investor is not active."
	GateCheckBelowMinTicket   = "Investor max check is below startup minimum acceptable check."
	GateGeographyExcluded     = "Startup falls in investor explicit geography exclusion."
	GateSectorExcluded        = "Startup sector explicitly excluded by investor."
	GateBusinessModelExcluded = "Startup business model explicitly excluded by investor."
	GateInstrumentExcluded    = "Startup instrument explicitly excluded by investor."
	GateRegulatoryExcluded    = "Regulatory domain explicitly excluded by investor."
	GateHardGeoConstraint     = "Investor has hard geography constraint and startup is outside allowed geography."
)

// CheckHardGates evaluates every exclusion gate in declaration order and
// collects all failures rather than stopping at the first.
func CheckHardGates(startup, investor map[string]interface{}) (bool, []string) {
	fails := []string{}

	if profile.NormText(investor["active_status"]) != "active" {
		fails = append(fails, GateInvestorInactive)
	}

	iMax := profile.ToFloat(investor["check_max_usd"])
	sMin := profile.ToFloat(subMap(startup, "raise")["min_ticket_usd"])
	if iMax != nil && sMin != nil && *iMax < *sMin {
		fails = append(fails, GateCheckBelowMinTicket)
	}

	if profile.Overlap(geoUnion(startup), investor["geo_exclude_normalized"]) {
		fails = append(fails, GateGeographyExcluded)
	}

	if profile.Overlap(startup["sectors_normalized"], investor["sector_exclude_normalized"]) {
		fails = append(fails, GateSectorExcluded)
	}

	bmPrimary := profile.NormText(subMap(startup, "business_model")["primary"])
	if bmPrimary != "" && profile.ListNormSet(investor["business_models_exclude"])[bmPrimary] {
		fails = append(fails, GateBusinessModelExcluded)
	}

	instr := profile.NormText(subMap(startup, "raise")["instrument_normalized"])
	if instr != "" && profile.ListNormSet(investor["instrument_exclude_normalized"])[instr] {
		fails = append(fails, GateInstrumentExcluded)
	}

	regDomain := profile.NormText(subMap(startup, "risk")["regulatory_domain"])
	if regDomain != "" && profile.ListNormSet(investor["regulatory_exclude"])[regDomain] {
		fails = append(fails, GateRegulatoryExcluded)
	}

	if boolIs(investor["geo_hard_constraint"], true) && !profile.Overlap(geoUnion(startup), investor["geo_focus_normalized"]) {
		fails = append(fails, GateHardGeoConstraint)
	}

	return len(fails) == 0, fails
}

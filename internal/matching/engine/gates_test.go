package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckHardGatesAllPass(t *testing.T) {
	eligible, fails := CheckHardGates(fitStartup(), fitInvestor())
	assert.True(t, eligible)
	assert.Empty(t, fails)
}

func TestCheckHardGatesCollectsAllFailures(t *testing.T) {
	startup := fitStartup()
	startup["raise"].(map[string]interface{})["min_ticket_usd"] = 900000.0
	startup["raise"].(map[string]interface{})["instrument_normalized"] = "debt"

	investor := fitInvestor()
	investor["active_status"] = "inactive"
	investor["instrument_exclude_normalized"] = []interface{}{"debt"}

	eligible, fails := CheckHardGates(startup, investor)
	require.False(t, eligible)
	assert.Equal(t, []string{
		GateInvestorInactive,
		GateCheckBelowMinTicket,
		GateInstrumentExcluded,
	}, fails)
}

func TestCheckHardGatesGeoExclusion(t *testing.T) {
	investor := fitInvestor()
	investor["geo_exclude_normalized"] = []interface{}{"india"}

	eligible, fails := CheckHardGates(fitStartup(), investor)
	assert.False(t, eligible)
	assert.Contains(t, fails, GateGeographyExcluded)
}

func TestCheckHardGatesSectorExclusion(t *testing.T) {
	investor := fitInvestor()
	investor["sector_exclude_normalized"] = []interface{}{"fintech"}

	eligible, fails := CheckHardGates(fitStartup(), investor)
	assert.False(t, eligible)
	assert.Contains(t, fails, GateSectorExcluded)
}

func TestCheckHardGatesBusinessModelExclusion(t *testing.T) {
	investor := fitInvestor()
	investor["business_models_exclude"] = []interface{}{"b2b_saas"}

	eligible, fails := CheckHardGates(fitStartup(), investor)
	assert.False(t, eligible)
	assert.Contains(t, fails, GateBusinessModelExcluded)
}

func TestCheckHardGatesRegulatoryExclusion(t *testing.T) {
	investor := fitInvestor()
	investor["regulatory_exclude"] = []interface{}{"fintech"}

	eligible, fails := CheckHardGates(fitStartup(), investor)
	assert.False(t, eligible)
	assert.Contains(t, fails, GateRegulatoryExcluded)
}

func TestCheckHardGatesHardGeoConstraint(t *testing.T) {
	startup := fitStartup()
	startup["hq_country"] = "brazil"
	startup["operating_geographies"] = []interface{}{"brazil"}
	startup["target_geographies"] = []interface{}{"latam"}

	investor := fitInvestor()
	investor["geo_hard_constraint"] = true

	eligible, fails := CheckHardGates(startup, investor)
	assert.False(t, eligible)
	assert.Contains(t, fails, GateHardGeoConstraint)
}

func TestCheckHardGatesMissingDataDoesNotGate(t *testing.T) {
	// Gates only trigger on explicit exclusions, never on absent fields.
	startup := map[string]interface{}{}
	investor := map[string]interface{}{"active_status": "active"}

	eligible, fails := CheckHardGates(startup, investor)
	assert.True(t, eligible)
	assert.Empty(t, fails)
}

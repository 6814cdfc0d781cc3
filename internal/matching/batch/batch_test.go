package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/store"
)

func batchStartup() map[string]interface{} {
	return map[string]interface{}{
		"startup": map[string]interface{}{
			"stage_normalized":      "seed",
			"hq_country":            "india",
			"operating_geographies": []interface{}{"india"},
			"target_geographies":    []interface{}{"india"},
			"sectors_normalized":    []interface{}{"fintech"},
			"raise": map[string]interface{}{
				"target_raise_usd":      1000000.0,
				"min_ticket_usd":        50000.0,
				"max_ticket_usd":        300000.0,
				"instrument_normalized": "equity",
			},
			"traction": map[string]interface{}{
				"primary_signal":       "paying_customers",
				"evidence_links_count": 1,
				"arr_usd":              100000.0,
			},
		},
	}
}

func batchInvestor(name string, typicalCheck float64) map[string]interface{} {
	return map[string]interface{}{
		"name":                          name,
		"active_status":                 "active",
		"stage_focus_normalized":        []interface{}{"seed"},
		"sector_focus_normalized":       []interface{}{"fintech"},
		"geo_focus_normalized":          []interface{}{"india"},
		"check_min_usd":                 typicalCheck / 2,
		"check_typical_usd":             typicalCheck,
		"check_max_usd":                 typicalCheck * 2,
		"lead_or_follow":                "both",
		"instrument_include_normalized": []interface{}{"equity"},
	}
}

func TestRunScoresAllCandidates(t *testing.T) {
	candidates := []store.Candidate{
		{ID: "inv-1", Name: "Alpha", Profile: batchInvestor("Alpha", 100000)},
		{ID: "inv-2", Name: "Beta", Profile: batchInvestor("Beta", 100000)},
		{ID: "inv-3", Name: "Gamma", Profile: batchInvestor("Gamma", 100000)},
	}

	m := NewMatcher(logger.NewNoOpLogger())
	results := m.Run(context.Background(), batchStartup(), candidates, Options{Concurrency: 2})

	require.Len(t, results, 3)
	for _, r := range results {
		assert.NotNil(t, r.Match)
		assert.True(t, r.Match.Eligible)
	}
}

func TestRunFailureIsolation(t *testing.T) {
	candidates := []store.Candidate{
		{ID: "inv-1", Name: "Alpha", Profile: batchInvestor("Alpha", 100000)},
		{ID: "inv-2", Name: "NoProfile", Profile: nil},
		{ID: "inv-3", Name: "Gamma", Profile: batchInvestor("Gamma", 100000)},
	}

	m := NewMatcher(logger.NewNoOpLogger())
	results := m.Run(context.Background(), batchStartup(), candidates, Options{})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "inv-2", r.InvestorID)
	}
}

func TestRunDeterministicOrdering(t *testing.T) {
	// Identical scores resolve by name; an inactive investor scores 0 and
	// sinks to the bottom.
	inactive := batchInvestor("Zeta", 100000)
	inactive["active_status"] = "inactive"

	candidates := []store.Candidate{
		{ID: "inv-3", Name: "Gamma", Profile: batchInvestor("Gamma", 100000)},
		{ID: "inv-4", Name: "Zeta", Profile: inactive},
		{ID: "inv-1", Name: "Alpha", Profile: batchInvestor("Alpha", 100000)},
		{ID: "inv-2", Name: "Beta", Profile: batchInvestor("Beta", 100000)},
	}

	m := NewMatcher(logger.NewNoOpLogger())

	first := m.Run(context.Background(), batchStartup(), candidates, Options{Concurrency: 4})
	second := m.Run(context.Background(), batchStartup(), candidates, Options{Concurrency: 1})

	require.Len(t, first, 4)
	assert.Equal(t, "Alpha", first[0].InvestorName)
	assert.Equal(t, "Beta", first[1].InvestorName)
	assert.Equal(t, "Gamma", first[2].InvestorName)
	assert.Equal(t, "Zeta", first[3].InvestorName)

	for i := range first {
		assert.Equal(t, first[i].InvestorID, second[i].InvestorID)
		assert.Equal(t, first[i].Match.FitScore, second[i].Match.FitScore)
	}
}

func TestRunProgressCallback(t *testing.T) {
	candidates := make([]store.Candidate, 5)
	for i := range candidates {
		name := fmt.Sprintf("Fund %d", i)
		candidates[i] = store.Candidate{
			ID:      fmt.Sprintf("inv-%d", i),
			Name:    name,
			Profile: batchInvestor(name, 100000),
		}
	}

	var emissions [][]Result
	m := NewMatcher(logger.NewNoOpLogger())
	m.Run(context.Background(), batchStartup(), candidates, Options{
		Concurrency: 1,
		BestN:       2,
		OnProgress: func(best []Result) {
			snapshot := make([]Result, len(best))
			copy(snapshot, best)
			emissions = append(emissions, snapshot)
		},
	})

	require.Len(t, emissions, 5)
	assert.Len(t, emissions[0], 1)
	assert.Len(t, emissions[4], 2)
	// Each emission is sorted best-first.
	for _, best := range emissions {
		for i := 1; i < len(best); i++ {
			assert.GreaterOrEqual(t, best[i-1].Match.FitScore, best[i].Match.FitScore)
		}
	}
}

func TestRunEmptyCandidates(t *testing.T) {
	m := NewMatcher(logger.NewNoOpLogger())
	results := m.Run(context.Background(), batchStartup(), nil, Options{})
	assert.Empty(t, results)
}

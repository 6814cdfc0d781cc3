package engine

import (
	"math"
	"strconv"
	"time"

	"github.com/Ayush1216/Frictionless/internal/common/metrics"
)

const MatchingVersion = "manual_deterministic_v2"

// categoryOrder fixes iteration order so output and task generation stay
// deterministic across runs.
var categoryOrder = []string{
	"deal_compatibility",
	"sector_business_model_fit",
	"traction_vs_thesis_bar",
	"founder_team_fit",
	"risk_regulatory_alignment",
	"diligence_process_fit",
}

// SubcategorySummary is a single sub-rule outcome inside a category.
type SubcategorySummary struct {
	Points           float64 `json:"points"`
	MaxPoints        float64 `json:"max_points"`
	MatchedCondition string  `json:"matched_condition"`
	Reason           string  `json:"reason"`
}

// CategorySummary aggregates a category's sub-rule results.
type CategorySummary struct {
	RawPoints            float64                       `json:"raw_points"`
	MaxPoint             float64                       `json:"max_point"`
	Percent              float64                       `json:"percent"`
	Weight               float64                       `json:"weight"`
	WeightedContribution float64                       `json:"weighted_contribution"`
	Subcategories        map[string]SubcategorySummary `json:"subcategories"`
}

// MatchResult is the full scoring output for one startup-investor pair.
type MatchResult struct {
	MatchingVersion             string                     `json:"matching_version"`
	GeneratedAtUTC              string                     `json:"generated_at_utc"`
	StartupRef                  interface{}                `json:"startup_ref"`
	InvestorRef                 interface{}                `json:"investor_ref"`
	Eligible                    bool                       `json:"eligible"`
	GateFailReasons             []string                   `json:"gate_fail_reasons"`
	RawPointsTotal              float64                    `json:"raw_points_total"`
	RawPointsMaxTotal           float64                    `json:"raw_points_max_total"`
	FitScoreIfEligible          float64                    `json:"fit_score_if_eligible_0_to_100"`
	FitScore                    float64                    `json:"fit_score_0_to_100"`
	CategoryBreakdown           map[string]CategorySummary `json:"category_breakdown"`
	Notes                       []string                   `json:"notes"`
	Tasks                       []Task                     `json:"tasks,omitempty"`
	Reasoning                   map[string]interface{}     `json:"reasoning,omitempty"`
	TaskEngineVersion           string                     `json:"task_engine_version,omitempty"`
	CompletedTaskUpdatesApplied []string                   `json:"completed_task_updates_applied,omitempty"`
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func defaultCategoryMeta() map[string]struct{ maxPoint, weight float64 } {
	return map[string]struct{ maxPoint, weight float64 }{
		"deal_compatibility":        {125.0, 35.0},
		"sector_business_model_fit": {50.0, 20.0},
		"traction_vs_thesis_bar":    {75.0, 15.0},
		"founder_team_fit":          {75.0, 20.0},
		"risk_regulatory_alignment": {75.0, 5.0},
		"diligence_process_fit":     {75.0, 5.0},
	}
}

func calcCategorySummary(ruleResults map[string]RuleResult, maxPoint, weight float64) CategorySummary {
	rawPoints := 0.0
	for _, r := range ruleResults {
		rawPoints += r.Points
	}
	percent := 0.0
	if maxPoint > 0 {
		percent = rawPoints / maxPoint
	}
	subs := make(map[string]SubcategorySummary, len(ruleResults))
	for k, v := range ruleResults {
		subs[k] = SubcategorySummary{
			Points:           round4(v.Points),
			MaxPoints:        round4(v.MaxPoints),
			MatchedCondition: v.MatchedCondition,
			Reason:           v.Reason,
		}
	}
	return CategorySummary{
		RawPoints:            round4(rawPoints),
		MaxPoint:             round4(maxPoint),
		Percent:              round4(percent * 100.0),
		Weight:               round4(weight),
		WeightedContribution: round4(percent * weight),
		Subcategories:        subs,
	}
}

// section returns the named sub-document, falling back to the document
// itself so callers can pass either the wrapped or the bare profile.
func section(doc map[string]interface{}, key string) map[string]interface{} {
	if m, ok := doc[key].(map[string]interface{}); ok {
		return m
	}
	return doc
}

// Match scores one startup profile against one investor profile. Gates run
// first but every category is still scored so the result carries the
// would-be score even when ineligible.
func Match(startupObj, investorObj, rubric map[string]interface{}) *MatchResult {
	startup := section(startupObj, "startup")
	investor := section(investorObj, "investor")

	rubricIdx := BuildRubricIndex(rubric)

	eligible, gateFails := CheckHardGates(startup, investor)

	catMeta := defaultCategoryMeta()
	for key, meta := range catMeta {
		if override, ok := rubricIdx.CategoryMeta[key]; ok {
			if override.MaxPoint != nil {
				meta.maxPoint = *override.MaxPoint
			}
			if override.Weight != nil {
				meta.weight = *override.Weight
			}
			catMeta[key] = meta
		}
	}

	categories := map[string]map[string]RuleResult{
		"deal_compatibility":        ApplyRubricPoints(scoreDealCompatibility(startup, investor), rubricIdx),
		"sector_business_model_fit": ApplyRubricPoints(scoreSectorBusinessModelFit(startup, investor), rubricIdx),
		"traction_vs_thesis_bar":    ApplyRubricPoints(scoreTractionVsThesis(startup, investor), rubricIdx),
		"founder_team_fit":          ApplyRubricPoints(scoreFounderTeamFit(startup, investor), rubricIdx),
		"risk_regulatory_alignment": ApplyRubricPoints(scoreRiskRegulatoryAlignment(startup, investor), rubricIdx),
		"diligence_process_fit":     ApplyRubricPoints(scoreDiligenceProcessFit(startup, investor), rubricIdx),
	}

	summaries := make(map[string]CategorySummary, len(categories))
	rawTotal := 0.0
	rawMaxTotal := 0.0
	fitIfEligible := 0.0
	for _, key := range categoryOrder {
		meta := catMeta[key]
		summary := calcCategorySummary(categories[key], meta.maxPoint, meta.weight)
		summaries[key] = summary
		rawTotal += summary.RawPoints
		rawMaxTotal += summary.MaxPoint
		fitIfEligible += summary.WeightedContribution
	}

	fitFinal := fitIfEligible
	if !eligible {
		fitFinal = 0.0
	}

	metrics.MatchesScored.WithLabelValues(strconv.FormatBool(eligible)).Inc()
	metrics.MatchFitScore.Observe(fitFinal)

	return &MatchResult{
		MatchingVersion:    MatchingVersion,
		GeneratedAtUTC:     time.Now().UTC().Format(time.RFC3339),
		StartupRef:         metadataRef(startupObj, "source_files"),
		InvestorRef:        metadataRef(investorObj, "source_file"),
		Eligible:           eligible,
		GateFailReasons:    gateFails,
		RawPointsTotal:     round4(rawTotal),
		RawPointsMaxTotal:  round4(rawMaxTotal),
		FitScoreIfEligible: round4(fitIfEligible),
		FitScore:           round4(fitFinal),
		CategoryBreakdown:  summaries,
		Notes: []string{
			"Startup and investor normalization are separate artifacts.",
			"Same startup_thesis_fit.json can be matched with multiple investor_thesis_fit.json files.",
			"First-match-in-order logic is preserved per subcategory.",
			"Points/weights are loaded from rubric when available.",
		},
	}
}

func metadataRef(doc map[string]interface{}, key string) interface{} {
	if meta, ok := doc["metadata"].(map[string]interface{}); ok {
		return meta[key]
	}
	return nil
}

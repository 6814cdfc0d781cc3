package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

const TaskEngineVersion = "v1"

const DefaultMaxTasks = 12

// Task is a concrete improvement action derived from a scoring gap or a
// failed hard gate. Task IDs are deterministic so re-running a match yields
// the same task list.
type Task struct {
	TaskID          string   `json:"task_id"`
	TaskTitle       string   `json:"task_title"`
	TaskDescription string   `json:"task_description"`
	TaskPoints      float64  `json:"task_points"`
	TaskDone        bool     `json:"task_done"`
	TaskValue       float64  `json:"task_value"`
	TaskType        string   `json:"task_type"`
	SubcategoryKey  string   `json:"subcategory_key,omitempty"`
	CategoryKey     string   `json:"category_key,omitempty"`
	FieldHints      []string `json:"field_hints"`
}

type taskTemplate struct {
	title       string
	description string
	fieldHints  []string
}

var taskLibrary = map[string]taskTemplate{
	"A1_stage_alignment": {
		title:       "Align stage narrative with investor mandate",
		description: "Reframe or validate current round/stage with hard evidence so it maps directly to the investor’s target stage buckets.",
		fieldHints:  []string{"startup.stage_normalized", "startup.round_normalized", "startup.traction.primary_signal"},
	},
	"A2_check_size_compatibility": {
		title:       "Restructure check-size ask",
		description: "Adjust minimum/maximum acceptable ticket or syndicate strategy so the investor’s typical check can participate cleanly.",
		fieldHints:  []string{"startup.raise.min_ticket_usd", "startup.raise.max_ticket_usd", "startup.raise.target_raise_usd"},
	},
	"A3_geography_jurisdiction_fit": {
		title:       "Improve geo fit for this investor",
		description: "Add operating footprint, GTM partners, or regulatory readiness in investor focus geographies.",
		fieldHints:  []string{"startup.hq_country", "startup.operating_geographies", "startup.target_geographies"},
	},
	"A4_deal_leadership_preference_fit": {
		title:       "Clarify lead/follow expectations",
		description: "Make lead investor need explicit and align syndicate plan to the investor’s lead/follow behavior.",
		fieldHints:  []string{"startup.deal_preferences.needs_lead", "startup.deal_preferences.only_followers"},
	},
	"A5_investment_instrument_fit": {
		title:       "Match funding instrument",
		description: "Offer a compatible instrument (SAFE, priced round, convertible) aligned with investor policy.",
		fieldHints:  []string{"startup.raise.instrument_normalized"},
	},
	"B1_sector_focus_alignment": {
		title:       "Strengthen thesis-sector overlap",
		description: "Tighten category positioning and proof points to match the investor’s sector thesis terms.",
		fieldHints:  []string{"startup.sectors_normalized", "startup.subsectors_normalized"},
	},
	"B2_business_model_fit": {
		title:       "Improve business model fit messaging",
		description: "Clarify B2B/B2C mix, pricing model, and ICP to match investor preference.",
		fieldHints:  []string{"startup.business_model.primary", "startup.business_model.is_b2b", "startup.business_model.is_b2c"},
	},
	"C1_traction_evidence_type": {
		title:       "Upgrade traction evidence quality",
		description: "Add verifiable traction artifacts (ARR, revenue, pilots, customer proofs) with source links.",
		fieldHints:  []string{"startup.traction.arr_usd", "startup.traction.revenue_ttm_usd", "startup.traction.evidence_links_count"},
	},
	"C2_traction_momentum": {
		title:       "Improve growth momentum",
		description: "Deliver measurable MoM/YoY improvements and highlight durable growth drivers.",
		fieldHints:  []string{"startup.traction.mom_growth_pct_3m_avg", "startup.traction.yoy_growth_pct"},
	},
	"C3_milestones_vs_next_stage": {
		title:       "Define quantified next-stage milestones",
		description: "Publish 3+ measurable milestones explicitly tied to next financing readiness.",
		fieldHints:  []string{"startup.milestones.quantified_count", "startup.milestones.stage_linked"},
	},
	"D1_team_completeness_vs_stage": {
		title:       "Close team gaps for current stage",
		description: "Fill missing core roles and make ownership/accountability explicit.",
		fieldHints:  []string{"startup.team.core_roles_covered_pct"},
	},
	"D2_domain_execution_evidence": {
		title:       "Increase execution credibility",
		description: "Highlight domain depth, prior outcomes, and operator references tied to current market.",
		fieldHints:  []string{"startup.team.domain_years_avg", "startup.team.prior_exit_count"},
	},
	"D3_coachability_signals": {
		title:       "Improve responsiveness and references",
		description: "Reduce response times and add trusted references to improve investor confidence.",
		fieldHints:  []string{"startup.signals.responsiveness_days", "startup.signals.reference_count", "startup.signals.negative_reference_flag"},
	},
	"E1_regulatory_exposure_vs_tolerance": {
		title:       "Reduce regulatory risk mismatch",
		description: "Add concrete compliance plan and mitigation milestones to move into investor tolerance.",
		fieldHints:  []string{"startup.risk.regulatory_risk_level", "startup.risk.mitigation_plan_present", "startup.risk.regulatory_domain"},
	},
	"E2_defensibility_vs_preference": {
		title:       "Strengthen defensibility narrative",
		description: "Increase moat clarity (IP, switching costs, data/network effects) with evidence.",
		fieldHints:  []string{"startup.moat.score", "startup.moat.types"},
	},
	"E3_time_horizon_risk_concentration": {
		title:       "Align timeline and capital intensity",
		description: "De-risk time-to-liquidity and capex profile to better fit investor constraints.",
		fieldHints:  []string{"startup.risk.time_to_liquidity_years", "startup.risk.capital_intensity_level"},
	},
	"F1_pitch_deck_availability": {
		title:       "Make deck investor-ready",
		description: "Improve deck completeness and decision-readiness (problem, traction, moat, use of funds).",
		fieldHints:  []string{"startup.artifacts.pitch_deck_uploaded", "startup.artifacts.pitch_deck_completeness_score"},
	},
	"F2_data_room_artifacts": {
		title:       "Complete data room package",
		description: "Upload cap table, financial model, KPI exports, and structured data room links.",
		fieldHints:  []string{"startup.artifacts.data_room_url", "startup.artifacts.cap_table_uploaded", "startup.artifacts.financial_model_uploaded", "startup.artifacts.customer_metrics_uploaded"},
	},
	"F3_timeline_compatibility": {
		title:       "Align fundraising timeline",
		description: "Adjust close timeline or investor process plan to avoid decision-speed mismatch.",
		fieldHints:  []string{"startup.deal_preferences.timeline_to_close_days", "investor.decision_speed_days"},
	},
}

var gateTaskTemplates = map[string][2]string{
	GateInvestorInactive:      {"Switch to active investor", "This investor is currently inactive; prioritize active investors with similar thesis."},
	GateCheckBelowMinTicket:   {"Fix minimum ticket mismatch", "Lower minimum acceptable ticket or redesign syndicate to fit this investor’s max check."},
	GateGeographyExcluded:     {"Remove geography exclusion conflict", "Target a geo-aligned investor or adapt expansion plan to avoid excluded jurisdictions."},
	GateSectorExcluded:        {"Resolve sector exclusion", "Position toward non-excluded segment or prioritize a sector-aligned investor."},
	GateBusinessModelExcluded: {"Resolve business model exclusion", "Update packaging/pricing model or target investors that back your current model."},
	GateInstrumentExcluded:    {"Use accepted investment instrument", "Switch to investor-accepted instrument or target compatible investors."},
	GateRegulatoryExcluded:    {"Address regulatory domain exclusion", "Target investor profiles that accept your regulatory domain."},
	GateHardGeoConstraint:     {"Satisfy hard geography constraint", "Establish a compliant presence/traction inside investor focus geography."},
}

func gateTask(reason, investorName string) Task {
	title := "Resolve hard-gate mismatch"
	desc := reason
	if entry, ok := gateTaskTemplates[reason]; ok {
		title = entry[0]
		desc = entry[1]
	}
	return Task{
		TaskID:          "gate_" + profile.Slugify(title),
		TaskTitle:       title,
		TaskDescription: fmt.Sprintf("For %s: %s", investorName, desc),
		TaskPoints:      100.0,
		TaskType:        "hard_gate",
		FieldHints:      []string{},
	}
}

// GenerateImprovementTasks converts gate failures and per-sub-rule scoring
// gaps into a ranked task list. Duplicate titles keep the highest-value
// instance and the list is capped at maxTasks.
func GenerateImprovementTasks(result *MatchResult, investorObj map[string]interface{}, maxTasks int) []Task {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}
	investorName := "this investor"
	if n := profile.CleanText(section(investorObj, "investor")["name"]); n != "" {
		investorName = n
	}

	var tasks []Task

	if len(result.GateFailReasons) > 0 {
		perGateUnlock := round4(result.FitScoreIfEligible / float64(len(result.GateFailReasons)))
		for _, reason := range result.GateFailReasons {
			t := gateTask(reason, investorName)
			t.TaskValue = perGateUnlock
			tasks = append(tasks, t)
		}
	}

	for _, catKey := range categoryOrder {
		catVal, ok := result.CategoryBreakdown[catKey]
		if !ok {
			continue
		}
		catMax := catVal.MaxPoint
		if catMax <= 0 {
			catMax = 1.0
		}

		subKeys := make([]string, 0, len(catVal.Subcategories))
		for k := range catVal.Subcategories {
			subKeys = append(subKeys, k)
		}
		sort.Strings(subKeys)

		for _, subKey := range subKeys {
			sv := catVal.Subcategories[subKey]
			gap := sv.MaxPoints - sv.Points
			if gap <= 0 {
				continue
			}
			weightedGap := round4((gap / math.Max(catMax, 1e-9)) * catVal.Weight)

			title := fmt.Sprintf("Improve %s", subKey)
			desc := fmt.Sprintf("Close scoring gap in %s for %s.", subKey, investorName)
			hints := []string{}
			if template, ok := taskLibrary[subKey]; ok {
				title = template.title
				desc = template.description
				hints = template.fieldHints
			}

			tasks = append(tasks, Task{
				TaskID:          subKey + "_" + profile.Slugify(title),
				TaskTitle:       title,
				TaskDescription: fmt.Sprintf("For %s: %s", investorName, desc),
				TaskPoints:      round4(gap),
				TaskValue:       weightedGap,
				TaskType:        "score_improvement",
				SubcategoryKey:  subKey,
				CategoryKey:     catKey,
				FieldHints:      hints,
			})
		}
	}

	bestByTitle := map[string]Task{}
	var titleOrder []string
	for _, t := range tasks {
		cur, seen := bestByTitle[t.TaskTitle]
		if !seen {
			titleOrder = append(titleOrder, t.TaskTitle)
			bestByTitle[t.TaskTitle] = t
			continue
		}
		if t.TaskValue > cur.TaskValue {
			bestByTitle[t.TaskTitle] = t
		}
	}

	deduped := make([]Task, 0, len(titleOrder))
	for _, title := range titleOrder {
		deduped = append(deduped, bestByTitle[title])
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].TaskValue > deduped[j].TaskValue
	})

	if len(deduped) > maxTasks {
		deduped = deduped[:maxTasks]
	}
	return deduped
}

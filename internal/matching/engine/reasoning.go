package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Ayush1216/Frictionless/internal/llm"
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// Refiner produces structured JSON from an LLM provider chain.
type Refiner interface {
	RefineJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}, providerOverride string, fallback bool) (*llm.Result, error)
}

const reasoningSystemPrompt = `
You are an investment analyst writing explainable startup-investor fit reasoning.
Write human-readable, concise, professional analysis.
Return ONLY JSON with keys:
{
  "overall_summary": "...",
  "investor_view": "...",
  "startup_view": "...",
  "key_strengths": ["..."],
  "key_risks": ["..."],
  "priority_actions": ["..."]
}
Requirements:
- Keep it practical and plain English.
- Mention hard gates if any.
- Do not mention internal rule names like A1/B2.
- Use concrete language tied to business facts.
`

// DeterministicReasoning builds an explanation from the score breakdown
// alone. Used directly when no LLM is configured and as the fallback when
// the provider chain fails.
func DeterministicReasoning(result *MatchResult, investorObj map[string]interface{}, tasks []Task) map[string]interface{} {
	invName := "the investor"
	if n := profile.CleanText(section(investorObj, "investor")["name"]); n != "" {
		invName = n
	}

	type catRank struct {
		key      string
		weighted float64
	}
	ranked := make([]catRank, 0, len(result.CategoryBreakdown))
	for k, v := range result.CategoryBreakdown {
		ranked = append(ranked, catRank{key: k, weighted: v.WeightedContribution})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].weighted != ranked[j].weighted {
			return ranked[i].weighted > ranked[j].weighted
		}
		return ranked[i].key < ranked[j].key
	})

	strongest := []string{}
	for _, r := range ranked {
		if len(strongest) == 2 {
			break
		}
		strongest = append(strongest, r.key)
	}
	weakest := []string{}
	if n := len(ranked); n > 0 {
		start := n - 2
		if start < 0 {
			start = 0
		}
		for _, r := range ranked[start:] {
			weakest = append(weakest, r.key)
		}
	}

	var summary string
	if result.Eligible {
		summary = fmt.Sprintf(
			"The startup is currently eligible for %s. Fit score is %.2f/100. Strongest areas: %s. Primary improvement opportunities: %s.",
			invName, result.FitScore, strings.Join(strongest, ", "), strings.Join(weakest, ", "),
		)
	} else {
		summary = fmt.Sprintf(
			"The startup is currently not eligible for %s due to hard-gate failures. Current score is forced to 0.00, while the estimated score after gate resolution is %.2f/100.",
			invName, result.FitScoreIfEligible,
		)
	}

	topTasks := []string{}
	for _, t := range tasks {
		if len(topTasks) == 3 {
			break
		}
		if t.TaskTitle != "" {
			topTasks = append(topTasks, t.TaskTitle)
		}
	}

	return map[string]interface{}{
		"overall_summary":  summary,
		"what_is_working":  strongest,
		"what_is_blocking": weakest,
		"priority_actions": topTasks,
		"style":            "deterministic_fallback",
	}
}

// LLMReasoning asks the provider chain for a narrative explanation and
// falls back to the deterministic summary on any failure. The fallback
// carries the provider error so callers can surface it.
func LLMReasoning(ctx context.Context, router Refiner, result *MatchResult, startupObj, investorObj map[string]interface{}, tasks []Task, provider string) map[string]interface{} {
	if router == nil {
		return DeterministicReasoning(result, investorObj, tasks)
	}

	topTasks := tasks
	if len(topTasks) > 5 {
		topTasks = topTasks[:5]
	}
	payload := map[string]interface{}{
		"match_result": result,
		"startup":      section(startupObj, "startup"),
		"investor":     section(investorObj, "investor"),
		"top_tasks":    topTasks,
	}

	res, err := router.RefineJSON(ctx, reasoningSystemPrompt, payload, provider, true)
	if err != nil {
		fallback := DeterministicReasoning(result, investorObj, tasks)
		fallback["llm_error"] = err.Error()
		return fallback
	}

	out := res.Output
	if out == nil {
		return DeterministicReasoning(result, investorObj, tasks)
	}
	out["style"] = "llm_generated"
	out["provider"] = res.Provider
	out["model"] = res.Model
	return out
}

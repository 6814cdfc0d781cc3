package profile

import (
	"context"

	"github.com/Ayush1216/Frictionless/internal/llm"
)

const startupRefineSystemPrompt = `
You are normalizing startup data for deterministic startup-investor thesis matching.
Return ONLY JSON:
{"startup": {...same keys as heuristic draft startup...}}
Do not invent facts. Unknown -> null.
Normalize:
- stage_normalized and round_normalized to [pre_seed, seed, series_a, series_b, series_c_plus]
- instrument_normalized to [equity, safe, convertible_note, debt]
- regulatory_risk_level integer 1..4
- capital_intensity_level integer 1..3
- moat.score and core_roles_covered_pct in 0..1
`

const investorRefineSystemPrompt = `
You are normalizing investor data for deterministic startup-investor thesis matching.
Return only JSON:
{"investor": {...same keys as heuristic draft investor...}}
Do not invent facts. Unknown -> null or [].
Normalize stage to [pre_seed, seed, series_a, series_b, series_c_plus].
Normalize instruments to [equity, safe, convertible_note, debt].
regulatory_tolerance_level: 1..4; capital_intensity_tolerance_level: 1..3; defensibility_preference_min_score: 0..1.
`

// Refiner is the slice of the LLM router the refinement passes need.
type Refiner interface {
	RefineJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}, providerOverride string, fallback bool) (*llm.Result, error)
}

// RefineOptions controls the LLM refinement passes.
type RefineOptions struct {
	Provider         string
	SecondPass       bool
	MissingThreshold float64
}

// RefineStartup merges an LLM normalization pass over the heuristic startup
// document. When too many decision-critical fields are still missing after
// the first pass, a single corrective Gemini pass runs, unless Gemini already
// produced the first result.
func RefineStartup(ctx context.Context, router Refiner, heuristic, apollo, startupKV, readiness map[string]interface{}, opts RefineOptions) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"heuristic_draft": heuristic,
		"apollo":          apollo,
		"startup_kv":      startupKV,
		"readiness_que":   readiness,
	}
	return refineDocument(ctx, router, heuristic, payload, refinePass{
		systemPrompt: startupRefineSystemPrompt,
		sectionKey:   "startup",
		fillDefaults: FillStartupDefaults,
		missingRatio: CriticalMissingRatioStartup,
	}, opts)
}

// RefineInvestor is the investor-side counterpart of RefineStartup.
func RefineInvestor(ctx context.Context, router Refiner, heuristic, investorData map[string]interface{}, opts RefineOptions) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"heuristic_draft": heuristic,
		"investor_data":   investorData,
	}
	return refineDocument(ctx, router, heuristic, payload, refinePass{
		systemPrompt: investorRefineSystemPrompt,
		sectionKey:   "investor",
		fillDefaults: FillInvestorDefaults,
		missingRatio: CriticalMissingRatioInvestor,
	}, opts)
}

type refinePass struct {
	systemPrompt string
	sectionKey   string
	fillDefaults func(map[string]interface{}) map[string]interface{}
	missingRatio func(map[string]interface{}) float64
}

func refineDocument(ctx context.Context, router Refiner, heuristic, payload map[string]interface{}, pass refinePass, opts RefineOptions) (map[string]interface{}, error) {
	result, err := router.RefineJSON(ctx, pass.systemPrompt, payload, opts.Provider, true)
	if err != nil {
		return nil, err
	}

	out := DeepCopy(heuristic)
	if section := extractSection(result.Output, pass.sectionKey); section != nil {
		base, _ := out[pass.sectionKey].(map[string]interface{})
		if base == nil {
			base = map[string]interface{}{}
		}
		out[pass.sectionKey] = DeepMerge(base, section)
	}
	out = pass.fillDefaults(out)

	usedProvider := result.Provider
	usedModel := result.Model
	secondPassUsed := false

	if opts.SecondPass && usedProvider != "gemini" && pass.missingRatio(out) >= opts.MissingThreshold {
		result2, err2 := router.RefineJSON(ctx, pass.systemPrompt, payload, "gemini", false)
		if err2 != nil {
			meta := ensureMap(out, "metadata")
			meta["second_pass_error"] = err2.Error()
		} else if section2 := extractSection(result2.Output, pass.sectionKey); section2 != nil {
			base, _ := out[pass.sectionKey].(map[string]interface{})
			out[pass.sectionKey] = DeepMerge(base, section2)
			out = pass.fillDefaults(out)
			secondPassUsed = true
			usedProvider = "gemini"
			usedModel = result2.Model
		}
	}

	meta := ensureMap(out, "metadata")
	meta["llm_refined"] = true
	meta["llm_provider"] = usedProvider
	meta["llm_model"] = usedModel
	meta["second_pass_used"] = secondPassUsed
	return out, nil
}

// extractSection tolerates responses that either wrap the section under its
// key or return the section object directly.
func extractSection(refined map[string]interface{}, key string) map[string]interface{} {
	if section, ok := refined[key].(map[string]interface{}); ok {
		return section
	}
	if _, exists := refined[key]; exists {
		return nil
	}
	if len(refined) > 0 {
		return refined
	}
	return nil
}

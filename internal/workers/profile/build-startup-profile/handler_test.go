package buildstartupprofile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/llm"
)

type stubRefiner struct {
	result *llm.Result
	err    error
	calls  int
}

func (s *stubRefiner) RefineJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}, providerOverride string, fallback bool) (*llm.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestHandler(t *testing.T, refiner *stubRefiner, cfg *Config) *Handler {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	if refiner != nil {
		h.refiner = refiner
	}
	return h
}

func sampleInput() *Input {
	return &Input{
		StartupID: "s-1",
		StartupKV: map[string]interface{}{
			"company_name":  "Flowmetrics",
			"current_stage": "Seed",
			"hq_country":    "India",
			"sectors":       "Fintech; SaaS",
			"target_raise":  "2,000,000",
		},
	}
}

func TestExecuteHeuristicOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseLLM = false
	h := newTestHandler(t, nil, cfg)

	output, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.False(t, output.LLMRefined)

	startup := output.Profile["startup"].(map[string]interface{})
	assert.Equal(t, "seed", startup["stage_normalized"])

	meta := output.Profile["metadata"].(map[string]interface{})
	assert.Equal(t, false, meta["llm_refined"])
}

func TestExecuteWithRefinement(t *testing.T) {
	refiner := &stubRefiner{result: &llm.Result{
		Output: map[string]interface{}{
			"startup": map[string]interface{}{
				"subsectors_normalized": []interface{}{"payments"},
			},
		},
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}}
	h := newTestHandler(t, refiner, nil)

	output, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.True(t, output.LLMRefined)
	assert.Equal(t, 1, refiner.calls)

	meta := output.Profile["metadata"].(map[string]interface{})
	assert.Equal(t, true, meta["llm_refined"])
	assert.Equal(t, "openai", meta["llm_provider"])
}

func TestExecuteRefinementFailureFallsBack(t *testing.T) {
	refiner := &stubRefiner{err: errors.NewLLMExhaustedError("all providers failed")}
	h := newTestHandler(t, refiner, nil)

	output, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.False(t, output.LLMRefined)

	meta := output.Profile["metadata"].(map[string]interface{})
	assert.Equal(t, false, meta["llm_refined"])
	assert.NotEmpty(t, meta["llm_error"])
	// Heuristic fields survive the failed refinement.
	startup := output.Profile["startup"].(map[string]interface{})
	assert.Equal(t, "seed", startup["stage_normalized"])
}

func TestExecuteInputOverridesLLMFlag(t *testing.T) {
	refiner := &stubRefiner{result: &llm.Result{Output: map[string]interface{}{}, Provider: "openai", Model: "gpt-4o-mini"}}
	h := newTestHandler(t, refiner, nil)

	input := sampleInput()
	off := false
	input.UseLLM = &off

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, output.LLMRefined)
	assert.Equal(t, 0, refiner.calls)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MissingThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxJobsActive = 0
	assert.Error(t, cfg.Validate())
}

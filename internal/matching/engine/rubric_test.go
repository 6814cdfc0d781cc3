package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRubricIndex(t *testing.T) {
	rubric := map[string]interface{}{
		"categories": map[string]interface{}{
			"deal_compatibility": map[string]interface{}{
				"maximum_point": 130,
				"weight":        40,
				"A1_stage_alignment": []interface{}{
					map[string]interface{}{
						"maximum_points": 35,
						"evaluation_order": []interface{}{
							"startup.stage_normalized  IN investor.stage_focus_normalized",
						},
						"options": map[string]interface{}{
							"startup.stage_normalized IN investor.stage_focus_normalized": 35,
							"default_non_focus_stage":                                     5,
						},
					},
				},
			},
		},
		"hard_gates": []interface{}{
			map[string]interface{}{"failure_reason": "Investor is not active."},
		},
	}

	idx := BuildRubricIndex(rubric)

	meta := idx.CategoryMeta["deal_compatibility"]
	require.NotNil(t, meta.MaxPoint)
	require.NotNil(t, meta.Weight)
	assert.Equal(t, 130.0, *meta.MaxPoint)
	assert.Equal(t, 40.0, *meta.Weight)

	sub, ok := idx.Subrules["A1_stage_alignment"]
	require.True(t, ok)
	assert.Equal(t, "deal_compatibility", sub.CategoryKey)
	require.NotNil(t, sub.MaximumPoints)
	assert.Equal(t, 35.0, *sub.MaximumPoints)
	// Condition keys are whitespace-normalized on both sides of the lookup.
	assert.Contains(t, sub.EvaluationOrder, "startup.stage_normalized IN investor.stage_focus_normalized")
	require.Contains(t, sub.Options, "startup.stage_normalized IN investor.stage_focus_normalized")
	assert.Equal(t, 35.0, *sub.Options["startup.stage_normalized IN investor.stage_focus_normalized"])

	assert.True(t, idx.HardGateFailReasons["Investor is not active."])
}

func TestBuildRubricIndexNilRubric(t *testing.T) {
	idx := BuildRubricIndex(nil)
	assert.Empty(t, idx.CategoryMeta)
	assert.Empty(t, idx.Subrules)
	assert.Empty(t, idx.HardGateFailReasons)
}

func TestApplyRubricPointsOverridesMatchedCondition(t *testing.T) {
	results := map[string]RuleResult{
		"A1_stage_alignment": rr("A1_stage_alignment", 10, 30, "default_non_focus_stage", "Stage not focused and not excluded."),
		"A2_check_size_compatibility": rr("A2_check_size_compatibility", 30, 30, "range_overlap([startup.raise.min_ticket_usd, startup.raise.max_ticket_usd], [investor.check_min_usd, investor.check_max_usd])", "Check ranges overlap."),
	}
	idx := BuildRubricIndex(map[string]interface{}{
		"categories": map[string]interface{}{
			"deal_compatibility": map[string]interface{}{
				"A1_stage_alignment": []interface{}{
					map[string]interface{}{
						"maximum_points": 35,
						"options": map[string]interface{}{
							"default_non_focus_stage": 3,
						},
					},
				},
			},
		},
	})

	out := ApplyRubricPoints(results, idx)

	assert.Equal(t, 3.0, out["A1_stage_alignment"].Points)
	assert.Equal(t, 35.0, out["A1_stage_alignment"].MaxPoints)
	// Sub-rules the rubric does not configure pass through untouched.
	assert.Equal(t, results["A2_check_size_compatibility"], out["A2_check_size_compatibility"])
}

func TestApplyRubricPointsUnlistedConditionKeepsComputed(t *testing.T) {
	results := map[string]RuleResult{
		"A1_stage_alignment": rr("A1_stage_alignment", 20, 30, "adjacent_stage(startup.stage_normalized, investor.stage_focus_normalized)", "Adjacent stage to focus."),
	}
	idx := BuildRubricIndex(map[string]interface{}{
		"categories": map[string]interface{}{
			"deal_compatibility": map[string]interface{}{
				"A1_stage_alignment": []interface{}{
					map[string]interface{}{
						"options": map[string]interface{}{
							"default_non_focus_stage": 3,
						},
					},
				},
			},
		},
	})

	out := ApplyRubricPoints(results, idx)
	assert.Equal(t, 20.0, out["A1_stage_alignment"].Points)
}

func TestWeightSum(t *testing.T) {
	t.Run("balanced", func(t *testing.T) {
		sum, ok := WeightSum(map[string]interface{}{
			"categories": map[string]interface{}{
				"a": map[string]interface{}{"weight": 60},
				"b": map[string]interface{}{"weight": 40},
			},
		})
		assert.Equal(t, 100.0, sum)
		assert.True(t, ok)
	})

	t.Run("unbalanced", func(t *testing.T) {
		sum, ok := WeightSum(map[string]interface{}{
			"categories": map[string]interface{}{
				"a": map[string]interface{}{"weight": 60},
				"b": map[string]interface{}{"weight": 30},
			},
		})
		assert.Equal(t, 90.0, sum)
		assert.False(t, ok)
	})

	t.Run("no weights declared", func(t *testing.T) {
		_, ok := WeightSum(map[string]interface{}{
			"categories": map[string]interface{}{
				"a": map[string]interface{}{},
			},
		})
		assert.True(t, ok)
	})
}

func TestLoadRubric(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		rubric, err := LoadRubric("")
		require.NoError(t, err)
		assert.Nil(t, rubric)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRubric(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rubric.json")
		body := `{"categories":{"deal_compatibility":{"maximum_point":125,"weight":35}},"hard_gates":[]}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		rubric, err := LoadRubric(path)
		require.NoError(t, err)
		assert.Contains(t, rubric, "categories")
	})

	t.Run("invalid document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rubric.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"categories": []}`), 0o644))

		_, err := LoadRubric(path)
		assert.Error(t, err)
	})
}

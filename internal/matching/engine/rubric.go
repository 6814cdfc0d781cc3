package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// RubricIndex is the pre-resolved lookup structure built from a rubric
// document. Condition strings act as stable lookup keys after whitespace
// normalization, so a rubric can re-point any sub-rule outcome without
// code changes.
type RubricIndex struct {
	CategoryMeta        map[string]CategoryMeta
	Subrules            map[string]SubruleConfig
	HardGateFailReasons map[string]bool
}

// CategoryMeta holds a category's scoring denominator and weight.
type CategoryMeta struct {
	MaxPoint *float64
	Weight   *float64
}

// SubruleConfig holds per-sub-rule point overrides keyed by normalized
// condition string.
type SubruleConfig struct {
	CategoryKey     string
	MaximumPoints   *float64
	EvaluationOrder []string
	Options         map[string]*float64
}

const rubricSchema = `{
  "type": "object",
  "properties": {
    "categories": {
      "type": "object",
      "additionalProperties": {"type": "object"}
    },
    "hard_gates": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

// LoadRubric reads and decodes a rubric JSON file. A missing path is not an
// error; scoring falls back to built-in defaults.
func LoadRubric(path string) (map[string]interface{}, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeRubricNotFound, "Rubric file could not be read", fmt.Sprintf("%s: %v", path, err), false)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(rubricSchema), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, errors.NewRubricInvalidError(fmt.Sprintf("schema validation error: %v", err))
	}
	if !result.Valid() {
		return nil, errors.NewRubricInvalidError(fmt.Sprintf("rubric document is invalid: %v", result.Errors()))
	}
	var rubric map[string]interface{}
	if err := json.Unmarshal(raw, &rubric); err != nil {
		return nil, errors.NewRubricInvalidError(fmt.Sprintf("rubric JSON decode failed: %v", err))
	}
	return rubric, nil
}

// WeightSum totals the category weights declared in a rubric. The second
// return is false when the sum deviates from 100 by more than 0.01, which
// callers log as a warning; scoring still proceeds with the declared weights.
func WeightSum(rubric map[string]interface{}) (float64, bool) {
	cats, ok := rubric["categories"].(map[string]interface{})
	if !ok {
		return 0, true
	}
	sum := 0.0
	found := false
	for _, raw := range cats {
		catCfg, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if w := profile.ToFloat(catCfg["weight"]); w != nil {
			sum += *w
			found = true
		}
	}
	if !found {
		return 0, true
	}
	return sum, math.Abs(sum-100.0) <= 0.01
}

// BuildRubricIndex flattens a rubric document into lookup maps. Sub-rule
// configs are the first element of any list-valued key inside a category.
func BuildRubricIndex(rubric map[string]interface{}) *RubricIndex {
	idx := &RubricIndex{
		CategoryMeta:        map[string]CategoryMeta{},
		Subrules:            map[string]SubruleConfig{},
		HardGateFailReasons: map[string]bool{},
	}
	if rubric == nil {
		return idx
	}

	if cats, ok := rubric["categories"].(map[string]interface{}); ok {
		for catKey, raw := range cats {
			catCfg, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			idx.CategoryMeta[catKey] = CategoryMeta{
				MaxPoint: profile.ToFloat(catCfg["maximum_point"]),
				Weight:   profile.ToFloat(catCfg["weight"]),
			}
			for subKey, arrRaw := range catCfg {
				arr, ok := arrRaw.([]interface{})
				if !ok || len(arr) == 0 {
					continue
				}
				rule, ok := arr[0].(map[string]interface{})
				if !ok {
					continue
				}
				options := map[string]*float64{}
				if opts, ok := rule["options"].(map[string]interface{}); ok {
					for k, v := range opts {
						options[profile.NormalizeConditionKey(k)] = profile.ToFloat(v)
					}
				}
				var order []string
				for _, v := range profile.ToList(rule["evaluation_order"]) {
					order = append(order, profile.NormalizeConditionKey(profile.CleanText(v)))
				}
				idx.Subrules[subKey] = SubruleConfig{
					CategoryKey:     catKey,
					MaximumPoints:   profile.ToFloat(rule["maximum_points"]),
					EvaluationOrder: order,
					Options:         options,
				}
			}
		}
	}

	if gates, ok := rubric["hard_gates"].([]interface{}); ok {
		for _, g := range gates {
			gm, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			if reason := profile.CleanText(gm["failure_reason"]); reason != "" {
				idx.HardGateFailReasons[reason] = true
			}
		}
	}
	return idx
}

// ApplyRubricPoints rewrites computed points and maximums from the rubric
// index where the matched condition has an override. Results without a
// configured sub-rule pass through untouched.
func ApplyRubricPoints(ruleResults map[string]RuleResult, idx *RubricIndex) map[string]RuleResult {
	out := make(map[string]RuleResult, len(ruleResults))
	for key, res := range ruleResults {
		sub, ok := idx.Subrules[key]
		if !ok {
			out[key] = res
			continue
		}
		points := res.Points
		if override, ok := sub.Options[profile.NormalizeConditionKey(res.MatchedCondition)]; ok && override != nil {
			points = *override
		}
		maxPoints := res.MaxPoints
		if sub.MaximumPoints != nil {
			maxPoints = *sub.MaximumPoints
		}
		out[key] = RuleResult{
			Key:              res.Key,
			Points:           points,
			MaxPoints:        maxPoints,
			MatchedCondition: res.MatchedCondition,
			Reason:           res.Reason,
		}
	}
	return out
}

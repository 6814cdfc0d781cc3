// Package engine scores a normalized startup document against a normalized
// investor document. Every sub-rule is an ordered condition cascade: the
// first condition that holds decides the points, and a default always
// matches, so scoring is total and deterministic.
package engine

import (
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// RuleResult captures the outcome of one sub-rule evaluation.
type RuleResult struct {
	Key              string  `json:"key"`
	Points           float64 `json:"points"`
	MaxPoints        float64 `json:"max_points"`
	MatchedCondition string  `json:"matched_condition"`
	Reason           string  `json:"reason"`
}

func rr(key string, pts, max float64, cond, reason string) RuleResult {
	return RuleResult{Key: key, Points: pts, MaxPoints: max, MatchedCondition: cond, Reason: reason}
}

// geoUnion collects every geography the startup claims: targets, operating
// footprint and HQ country.
func geoUnion(s map[string]interface{}) []string {
	var vals []interface{}
	vals = append(vals, profile.ToList(s["target_geographies"])...)
	vals = append(vals, profile.ToList(s["operating_geographies"])...)
	vals = append(vals, profile.ToList(s["hq_country"])...)
	return profile.UniqueNormList(vals)
}

func subMap(parent map[string]interface{}, key string) map[string]interface{} {
	if m, ok := parent[key].(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func boolIs(v interface{}, expected bool) bool {
	b, ok := v.(bool)
	return ok && b == expected
}

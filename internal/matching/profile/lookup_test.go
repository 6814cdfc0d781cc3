package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecursiveFindFirstPrefersCurrentLevel(t *testing.T) {
	obj := map[string]interface{}{
		"nested": map[string]interface{}{"stage": "seed"},
		"Stage":  "series a",
	}
	assert.Equal(t, "series a", RecursiveFindFirst(obj, []string{"stage"}))
}

func TestRecursiveFindFirstDescendsIntoListsAndMaps(t *testing.T) {
	obj := map[string]interface{}{
		"data": []interface{}{
			map[string]interface{}{"company": map[string]interface{}{"hq_country": "US"}},
		},
	}
	assert.Equal(t, "US", RecursiveFindFirst(obj, []string{"hq_country", "country"}))
	assert.Nil(t, RecursiveFindFirst(obj, []string{"absent_key"}))
}

func TestRecursiveFindFirstStableAcrossAliasCollisions(t *testing.T) {
	// Both keys alias the same field. Repeated lookups must always resolve
	// to the same one regardless of map iteration order.
	obj := map[string]interface{}{
		"industry": "fintech",
		"sectors":  []interface{}{"saas"},
	}
	aliases := []string{"sectors", "sector", "industry", "industries"}
	for i := 0; i < 200; i++ {
		assert.Equal(t, "fintech", RecursiveFindFirst(obj, aliases))
	}
}

func TestRecursiveFindFirstStableAcrossSiblingSubtrees(t *testing.T) {
	obj := map[string]interface{}{
		"apollo": map[string]interface{}{"sector": "healthtech"},
		"pitch":  map[string]interface{}{"sector": "fintech"},
	}
	for i := 0; i < 200; i++ {
		assert.Equal(t, "healthtech", RecursiveFindFirst(obj, []string{"sector"}))
	}
}

func TestRecursiveFindAll(t *testing.T) {
	obj := map[string]interface{}{
		"a": map[string]interface{}{"source_url": "https://one"},
		"b": []interface{}{
			map[string]interface{}{"source_urls": []interface{}{"https://two", "https://three"}},
		},
	}
	found := RecursiveFindAll(obj, []string{"source_url", "source_urls"})
	assert.Len(t, found, 2)
	assert.Equal(t, "https://one", found[0])
}

func TestFromSourcesFirstHonorsPriority(t *testing.T) {
	kv := map[string]interface{}{"stage": "seed"}
	apollo := map[string]interface{}{"stage": "series a"}
	got := FromSourcesFirst([]map[string]interface{}{kv, apollo}, []string{"stage"})
	assert.Equal(t, "seed", got)
}

func TestReadinessMapIndexesAnswers(t *testing.T) {
	readiness := map[string]interface{}{
		"rubric_answers": []interface{}{
			map[string]interface{}{"key": "company.current_stage", "answer": "seed"},
			map[string]interface{}{"subcategory_name": "funds.target_raise_usd", "extracted_value": 2000000.0},
			"not a map",
		},
	}
	rmap := ReadinessMap(readiness)
	assert.Equal(t, "seed", answerOf(rmap, "company.current_stage", "answer"))
	assert.Equal(t, 2000000.0, answerOf(rmap, "funds.target_raise_usd", "extracted_value"))
	assert.Nil(t, answerOf(rmap, "missing.key", "answer"))
}

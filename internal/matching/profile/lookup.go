package profile

import (
	"sort"
	"strings"
)

// RecursiveFindFirst walks a decoded JSON tree depth-first and returns the
// first value whose key matches any alias case-insensitively. Matches at the
// current level win before descending. Map keys are visited in sorted order
// so a document carrying two aliases of the same field always resolves to
// the same one.
func RecursiveFindFirst(obj interface{}, keyAliases []string) interface{} {
	aliases := aliasSet(keyAliases)
	return findFirst(obj, aliases)
}

func findFirst(obj interface{}, aliases map[string]bool) interface{} {
	switch t := obj.(type) {
	case map[string]interface{}:
		keys := sortedKeys(t)
		for _, k := range keys {
			if aliases[strings.ToLower(k)] {
				return t[k]
			}
		}
		for _, k := range keys {
			if found := findFirst(t[k], aliases); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, v := range t {
			if found := findFirst(v, aliases); found != nil {
				return found
			}
		}
	}
	return nil
}

// RecursiveFindAll collects every value under a matching key anywhere in the
// tree, in sorted-key document order.
func RecursiveFindAll(obj interface{}, keyAliases []string) []interface{} {
	aliases := aliasSet(keyAliases)
	var out []interface{}
	findAll(obj, aliases, &out)
	return out
}

func findAll(obj interface{}, aliases map[string]bool, out *[]interface{}) {
	switch t := obj.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(t) {
			if aliases[strings.ToLower(k)] {
				*out = append(*out, t[k])
			}
			findAll(t[k], aliases, out)
		}
	case []interface{}:
		for _, v := range t {
			findAll(v, aliases, out)
		}
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func aliasSet(keyAliases []string) map[string]bool {
	aliases := make(map[string]bool, len(keyAliases))
	for _, a := range keyAliases {
		aliases[strings.ToLower(a)] = true
	}
	return aliases
}

// FromSourcesFirst checks each source in priority order and returns the first
// alias hit.
func FromSourcesFirst(sources []map[string]interface{}, aliases []string) interface{} {
	for _, src := range sources {
		if v := RecursiveFindFirst(src, aliases); v != nil {
			return v
		}
	}
	return nil
}

// ReadinessMap indexes rubric answers by their question key.
func ReadinessMap(readiness map[string]interface{}) map[string]map[string]interface{} {
	out := map[string]map[string]interface{}{}
	var answers []interface{}
	if v, ok := readiness["rubric_answers"].([]interface{}); ok {
		answers = v
	} else if v, ok := readiness["answers"].([]interface{}); ok {
		answers = v
	}
	for _, a := range answers {
		m, ok := a.(map[string]interface{})
		if !ok {
			continue
		}
		k := FirstNonNull(m["key"], m["subcategory_name"], m["question_key"])
		if k != nil {
			out[CleanText(k)] = m
		}
	}
	return out
}

// answerOf pulls a field from an indexed readiness answer, nil-safe.
func answerOf(rmap map[string]map[string]interface{}, key, field string) interface{} {
	if a, ok := rmap[key]; ok {
		return a[field]
	}
	return nil
}

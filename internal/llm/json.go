package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
)

// ExtractJSON pulls the outermost JSON object out of a model response.
// Models wrap output in markdown fences or leading prose often enough that
// a plain json.Unmarshal on the raw text is not reliable.
func ExtractJSON(text string) map[string]interface{} {
	if text == "" {
		return map[string]interface{}{}
	}
	s := strings.TrimSpace(text)
	s = fenceOpenRe.ReplaceAllString(s, "")
	s = fenceCloseRe.ReplaceAllString(s, "")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		var out map[string]interface{}
		if err := json.Unmarshal([]byte(s[start:end+1]), &out); err == nil {
			return out
		}
	}
	return map[string]interface{}{}
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// chatCompletionsProvider talks to an OpenAI-compatible chat completions
// endpoint. Kimi exposes the same wire format, so both providers ride this
// single implementation.
type chatCompletionsProvider struct {
	name      string
	model     string
	baseURL   string
	apiKey    string
	maxTokens int
	client    *resty.Client
}

func newChatCompletionsProvider(name, apiKey, baseURL, model string, timeout time.Duration, maxTokens int) (*chatCompletionsProvider, error) {
	apiKey = strings.Trim(strings.TrimSpace(apiKey), `"'`)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: api key is required", name)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%s: base url is required", name)
	}

	return &chatCompletionsProvider{
		name:      name,
		model:     model,
		baseURL:   baseURL,
		apiKey:    apiKey,
		maxTokens: maxTokens,
		client:    resty.New().SetTimeout(timeout),
	}, nil
}

func (p *chatCompletionsProvider) Name() string  { return p.name }
func (p *chatCompletionsProvider) Model() string { return p.model }

func (p *chatCompletionsProvider) CompleteJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &callError{provider: p.name, cause: fmt.Errorf("marshal payload: %w", err)}
	}

	body := map[string]interface{}{
		"model":       p.model,
		"temperature": 0.1,
		"max_tokens":  p.maxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": "Return STRICT JSON only. No markdown.\n\nINPUT:\n" + string(raw)},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(p.baseURL + "/chat/completions")
	if err != nil {
		return nil, &callError{provider: p.name, retryable: true, cause: err}
	}

	if resp.StatusCode() >= 400 {
		return nil, &callError{
			provider:  p.name,
			status:    resp.StatusCode(),
			retryable: resp.StatusCode() == 429 || resp.StatusCode() >= 500,
			cause:     fmt.Errorf("HTTP %d: %s", resp.StatusCode(), truncate(resp.String(), 500)),
		}
	}

	content := gjson.GetBytes(resp.Body(), "choices.0.message.content").String()
	parsed := ExtractJSON(content)
	if len(parsed) == 0 {
		return nil, &callError{provider: p.name, cause: fmt.Errorf("returned non-JSON or empty JSON")}
	}
	return parsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

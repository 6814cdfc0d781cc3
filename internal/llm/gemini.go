package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type geminiProvider struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func newGeminiProvider(ctx context.Context, apiKey, model string, maxTokens int) (*geminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiProvider{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

func (p *geminiProvider) Name() string  { return "gemini" }
func (p *geminiProvider) Model() string { return p.model }

func (p *geminiProvider) CompleteJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &callError{provider: "gemini", cause: fmt.Errorf("marshal payload: %w", err)}
	}

	prompt := systemPrompt + "\n\nReturn STRICT JSON only. No markdown.\n\nINPUT:\n" + string(raw)

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		TopP:            genai.Ptr[float32](0.9),
		MaxOutputTokens: p.maxTokens,
	})
	if err != nil {
		return nil, &callError{provider: "gemini", retryable: true, cause: err}
	}

	parsed := ExtractJSON(resp.Text())
	if len(parsed) == 0 {
		return nil, &callError{provider: "gemini", cause: fmt.Errorf("returned non-JSON or empty JSON")}
	}
	return parsed, nil
}

// Package llm routes JSON-completion requests across the configured model
// providers with per-provider retries and ordered fallback.
package llm

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Ayush1216/Frictionless/internal/common/config"
	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/common/metrics"
)

// Provider is a single LLM backend that can answer with a JSON object.
type Provider interface {
	Name() string
	Model() string
	CompleteJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}) (map[string]interface{}, error)
}

// callError carries enough detail for the router to decide whether retrying
// the same provider is worthwhile.
type callError struct {
	provider  string
	status    int
	retryable bool
	cause     error
}

func (e *callError) Error() string {
	return fmt.Sprintf("%s: %v", e.provider, e.cause)
}

func (e *callError) Unwrap() error { return e.cause }

// Result reports which provider and model produced the completion.
type Result struct {
	Output   map[string]interface{}
	Provider string
	Model    string
}

// Router tries providers in a fixed order until one returns valid JSON.
type Router struct {
	providers       map[string]Provider
	defaultProvider string
	maxRetries      int
	logger          logger.Logger
}

// NewRouter builds a router from configuration, registering every provider
// that has credentials. Returns an error when none do; callers treat that as
// refinement disabled and fall back to heuristic-only profiles.
func NewRouter(ctx context.Context, cfg config.LLMConfig, log logger.Logger) (*Router, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	providers := make(map[string]Provider)

	if cfg.OpenAI.APIKey != "" {
		p, err := newChatCompletionsProvider("openai", cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, modelOr(cfg.Model, cfg.OpenAI.Model), timeout, cfg.MaxOutputTokens)
		if err != nil {
			log.Warn("openai provider unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			providers["openai"] = p
		}
	}
	if cfg.Kimi.APIKey != "" && cfg.Kimi.BaseURL != "" {
		p, err := newChatCompletionsProvider("kimi", cfg.Kimi.APIKey, cfg.Kimi.BaseURL, modelOr(cfg.Model, cfg.Kimi.Model), timeout, cfg.MaxOutputTokens)
		if err != nil {
			log.Warn("kimi provider unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			providers["kimi"] = p
		}
	}
	if cfg.Gemini.APIKey != "" {
		p, err := newGeminiProvider(ctx, cfg.Gemini.APIKey, modelOr(cfg.Model, cfg.Gemini.Model), cfg.MaxOutputTokens)
		if err != nil {
			log.Warn("gemini provider unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			providers["gemini"] = p
		}
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no LLM provider has credentials configured")
	}

	return &Router{
		providers:       providers,
		defaultProvider: strings.ToLower(strings.TrimSpace(cfg.Provider)),
		maxRetries:      cfg.MaxRetries,
		logger:          log,
	}, nil
}

func modelOr(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}

// providerOrder resolves a provider selection into the fallback chain.
func providerOrder(selected string, fallback bool) ([]string, error) {
	switch selected {
	case "", "auto":
		return []string{"openai", "gemini", "kimi"}, nil
	case "openai":
		if fallback {
			return []string{"openai", "gemini"}, nil
		}
		return []string{"openai"}, nil
	case "kimi":
		if fallback {
			return []string{"kimi", "gemini"}, nil
		}
		return []string{"kimi"}, nil
	case "gemini":
		if fallback {
			return []string{"gemini", "openai"}, nil
		}
		return []string{"gemini"}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", selected)
	}
}

// RefineJSON walks the fallback chain for the requested provider ("" uses the
// configured default) and returns the first valid JSON completion.
func (r *Router) RefineJSON(ctx context.Context, systemPrompt string, payload map[string]interface{}, providerOverride string, fallback bool) (*Result, error) {
	selected := strings.ToLower(strings.TrimSpace(providerOverride))
	if selected == "" {
		selected = r.defaultProvider
	}

	order, err := providerOrder(selected, fallback)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, name := range order {
		provider, ok := r.providers[name]
		if !ok {
			continue
		}

		out, err := r.callWithRetry(ctx, provider, systemPrompt, payload)
		if err != nil {
			lastErr = err
			metrics.LLMProviderCalls.WithLabelValues(name, "failure").Inc()
			r.logger.Warn("LLM provider failed", map[string]interface{}{
				"provider": name,
				"error":    err.Error(),
			})
			continue
		}

		metrics.LLMProviderCalls.WithLabelValues(name, "success").Inc()
		return &Result{Output: out, Provider: name, Model: provider.Model()}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider registered for chain %v", order)
	}
	return nil, errors.NewLLMExhaustedError(lastErr.Error())
}

// callWithRetry retries the same provider on transient failures (timeouts,
// 429, 5xx) with exponential backoff before moving down the chain.
func (r *Router) callWithRetry(ctx context.Context, provider Provider, systemPrompt string, payload map[string]interface{}) (map[string]interface{}, error) {
	var lastErr error
	attempts := r.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			select {
			case <-ctx.Done():
				return nil, errors.NewLLMTimeoutError(ctx.Err().Error())
			case <-time.After(backoff):
			}
		}

		out, err := provider.CompleteJSON(ctx, systemPrompt, payload)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var ce *callError
		if !stderrors.As(err, &ce) || !ce.retryable {
			break
		}
	}
	return nil, lastErr
}

// Providers lists the registered provider names, for startup logging.
func (r *Router) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Package sentiment enriches expressions with a sentiment score and label
// via an external model. Failures are non-blocking: the crawl proceeds and
// sentiment columns stay null.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/landscout/landscout/internal/config"
)

// Enrichment is the service output.
type Enrichment struct {
	Score      float64
	Label      string
	Confidence float64
	Model      string
	ComputedAt time.Time
}

// Enricher computes sentiment for readable content.
type Enricher interface {
	Enrich(ctx context.Context, readable, language string) (*Enrichment, error)
}

// OpenRouterEnricher asks an OpenAI-compatible endpoint for a structured
// sentiment judgment.
type OpenRouterEnricher struct {
	llmCfg config.LLMSettings
	model  string
	client *http.Client
	logger *slog.Logger
}

// NewOpenRouterEnricher reuses the validator's endpoint with the sentiment
// model override.
func NewOpenRouterEnricher(cfg *config.Settings, logger *slog.Logger) *OpenRouterEnricher {
	model := cfg.Sentiment.Model
	if model == "" {
		model = cfg.LLM.Model
	}
	llmCfg := cfg.LLM
	if llmCfg.BaseURL == "" {
		llmCfg.BaseURL = "https://openrouter.ai/api"
	}
	return &OpenRouterEnricher{
		llmCfg: llmCfg,
		model:  model,
		client: &http.Client{Timeout: llmCfg.Timeout},
		logger: logger.With("component", "sentiment"),
	}
}

const sentimentPrompt = `Rate the sentiment of the following text (language: %s).
Respond with JSON only: {"score": <float -1..1>, "label": "positive"|"neutral"|"negative", "confidence": <float 0..1>}

Text:
%s`

type sentimentPayload struct {
	Score      float64 `json:"score"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Enrich scores the readable content. The excerpt is capped to keep prompts
// small.
func (e *OpenRouterEnricher) Enrich(ctx context.Context, readable, language string) (*Enrichment, error) {
	excerpt := readable
	if len(excerpt) > 3000 {
		excerpt = excerpt[:3000]
	}

	payload := map[string]any{
		"model": e.model,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(sentimentPrompt, language, excerpt)},
		},
		"temperature": 0,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.llmCfg.BaseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.llmCfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.llmCfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sentiment API error %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("sentiment decode: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("sentiment: no choices in response")
	}

	var result sentimentPayload
	content := extractJSON(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("sentiment payload decode: %w", err)
	}

	model := parsed.Model
	if model == "" {
		model = e.model
	}
	return &Enrichment{
		Score:      result.Score,
		Label:      result.Label,
		Confidence: result.Confidence,
		Model:      model,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// extractJSON trims chat fences around a JSON object.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			return content[start : end+1]
		}
	}
	return content
}

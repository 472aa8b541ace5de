package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/store"
)

// OpenRouter validates expressions against their land through the
// OpenAI-compatible chat completions API.
type OpenRouter struct {
	cfg    config.LLMSettings
	client *http.Client
	logger *slog.Logger
}

// NewOpenRouter builds the validator from the LLM settings.
func NewOpenRouter(cfg *config.Settings, logger *slog.Logger) *OpenRouter {
	settings := cfg.LLM
	if settings.BaseURL == "" {
		settings.BaseURL = "https://openrouter.ai/api"
	}
	return &OpenRouter{
		cfg:    settings,
		client: &http.Client{Timeout: settings.Timeout},
		logger: logger.With("component", "llm_validator"),
	}
}

const validationPrompt = `You assess whether a web page is relevant to a research topic.
Topic: %s
Topic description: %s
Page title: %s
Page excerpt:
%s

Answer with a single word: OUI if the page is relevant to the topic, NON otherwise.`

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Validate asks the model for an OUI/NON verdict on the expression.
func (o *OpenRouter) Validate(ctx context.Context, expr *store.Expression, land *store.Land) (*Verdict, error) {
	title := ""
	if expr.Title != nil {
		title = *expr.Title
	}
	excerpt := ""
	if expr.Readable != nil {
		excerpt = *expr.Readable
		if len(excerpt) > 2000 {
			excerpt = excerpt[:2000]
		}
	}

	payload := chatCompletionRequest{
		Model: o.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(validationPrompt, land.Name, land.Description, title, excerpt)},
		},
		Temperature: 0,
		MaxTokens:   8,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validator request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("validator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("validator API error %d: %s", resp.StatusCode, body)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("validator decode: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("validator: no choices in response")
	}

	answer := strings.ToLower(strings.TrimSpace(parsed.Choices[0].Message.Content))
	model := parsed.Model
	if model == "" {
		model = o.cfg.Model
	}

	verdict := &Verdict{
		IsRelevant:       strings.HasPrefix(answer, "oui"),
		ModelUsed:        model,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
	}
	o.logger.Debug("validation verdict",
		"url", expr.URL, "relevant", verdict.IsRelevant, "model", model)
	return verdict, nil
}

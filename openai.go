package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/CODE-DK/nutritionist/internal/config"
)

var errAINotConfigured = errors.New("OPENAI_API_KEY not set")

// openAIMessage is a single message in a chat completions request. Content is
// a string for text turns and a []openAIContentPart for vision turns.
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any  `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// completion is the first choice's content plus billed tokens.
type completion struct {
	Content     string
	TotalTokens int
}

// aiClient calls the OpenAI chat completions API.
type aiClient struct {
	client      *resty.Client
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
}

func newAIClient(cfg config.OpenAIConfig) *aiClient {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.APIKey != "" {
		c.SetAuthToken(cfg.APIKey)
	}
	return &aiClient{
		client:      c,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// complete sends messages and returns the first choice. jsonMode asks the
// model for a JSON object response.
func (a *aiClient) complete(ctx context.Context, messages []openAIMessage, temperature float64, jsonMode bool) (completion, error) {
	if a.apiKey == "" {
		return completion{}, errAINotConfigured
	}

	body := openAIRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   a.maxTokens,
	}
	if jsonMode {
		body.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var out openAIResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(&body).
		SetResult(&out).
		Post("/v1/chat/completions")
	if err != nil {
		return completion{}, fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return completion{}, fmt.Errorf("openai returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 {
		return completion{}, fmt.Errorf("no choices in response")
	}

	return completion{Content: out.Choices[0].Message.Content, TotalTokens: out.Usage.TotalTokens}, nil
}

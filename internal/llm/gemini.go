package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash"
)

type GeminiCompleter struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewGeminiCompleter(apiKey, model, baseURL string) *GeminiCompleter {
	if model == "" {
		model = DefaultGeminiModel
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiCompleter{
		client: resty.New().SetBaseURL(baseURL),
		apiKey: apiKey,
		model:  model,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int64 `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string) (Completion, error) {
	rb := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}

	res, err := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("model", g.model).
		SetQueryParam("key", g.apiKey).
		SetBody(rb).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return Completion{}, fmt.Errorf("gemini request failed: %w", err)
	}

	if !res.IsSuccess() {
		slog.Error("gemini returned error", "status_code", res.StatusCode(), "body", res.String())
		return Completion{}, fmt.Errorf("gemini returned status %d", res.StatusCode())
	}

	var parsed geminiResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return Completion{}, fmt.Errorf("%w: error parsing gemini response: %w", ErrMalformedResponse, err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return Completion{}, fmt.Errorf("%w: gemini response has no candidate text", ErrMalformedResponse)
	}

	return Completion{
		Text:       parsed.Candidates[0].Content.Parts[0].Text,
		TokensUsed: parsed.UsageMetadata.TotalTokenCount,
	}, nil
}

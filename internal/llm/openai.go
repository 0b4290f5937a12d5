package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(apiKey, model, baseURL string) *OpenAICompleter {
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (Completion, error) {
	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("openai generation failed: %w", err)
	}

	if len(res.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: openai response has no choices", ErrMalformedResponse)
	}

	return Completion{
		Text:       res.Choices[0].Message.Content,
		TokensUsed: res.Usage.TotalTokens,
	}, nil
}

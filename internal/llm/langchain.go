package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// LangchainCompleter talks to any OpenAI-compatible endpoint through
// langchaingo.
type LangchainCompleter struct {
	model llms.Model
}

func NewLangchainCompleter(apiKey, model, baseURL string) (*LangchainCompleter, error) {
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []lcopenai.Option{lcopenai.WithToken(apiKey), lcopenai.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}

	client, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create langchain client: %w", err)
	}

	return &LangchainCompleter{model: client}, nil
}

func (l *LangchainCompleter) Complete(ctx context.Context, prompt string) (Completion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := l.model.GenerateContent(ctx, messages)
	if err != nil {
		return Completion{}, fmt.Errorf("langchain generation failed: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("%w: langchain response has no choices", ErrMalformedResponse)
	}

	choice := resp.Choices[0]
	return Completion{Text: choice.Content, TokensUsed: tokenCount(choice.GenerationInfo["TotalTokens"])}, nil
}

func tokenCount(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

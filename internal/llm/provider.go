package llm

import "fmt"

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchain"
)

type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

func NewCompleter(cfg ProviderConfig) (Completer, error) {
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGeminiCompleter(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderOpenAI:
		return NewOpenAICompleter(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderLangchain:
		completer, err := NewLangchainCompleter(cfg.APIKey, cfg.Model, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return completer, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

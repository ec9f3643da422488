package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/argmap/internal/model"
)

// NewProvider creates a provider from configuration.
// An empty provider name returns nil, nil: entailment checking is disabled.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(m model.LLMConfig) Config {
	return Config{
		Provider:   m.Provider,
		Model:      m.Model,
		APIKey:     m.APIKey,
		BaseURL:    m.BaseURL,
		Timeout:    m.Timeout,
		MaxTokens:  m.MaxTokens,
		Workers:    m.Workers,
		HTTPProxy:  m.HTTPProxy,
		HTTPSProxy: m.HTTPSProxy,
		NoProxy:    m.NoProxy,
	}
}

// ApplyEnv fills the API key and Ollama URL from the provider's
// conventional environment variables when the config leaves them empty
func ApplyEnv(cfg *Config) error {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.APIKey == "" {
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if cfg.BaseURL == "" {
			cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
	return nil
}

func timeoutOf(cfg Config, fallback time.Duration) time.Duration {
	if cfg.Timeout <= 0 {
		return fallback
	}
	return time.Duration(cfg.Timeout) * time.Second
}

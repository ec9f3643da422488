package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/argmap/internal/model"
)

// Provider checks whether an implication's premises entail its conclusion.
// Verdicts are annotations only; they never change costs.
type Provider interface {
	Name() string

	CheckEntailment(ctx context.Context, req EntailmentRequest) (*EntailmentResult, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Statement is a claim as shown to the model
type Statement struct {
	ID   string
	Text string
}

// EntailmentRequest describes one implication to check
type EntailmentRequest struct {
	ImplicationID string
	Premises      []Statement
	Conclusion    Statement
	Combinator    model.Combinator

	// Model overrides the configured model
	Model     string
	MaxTokens int
}

// EntailmentResult is the model's verdict
type EntailmentResult struct {
	Status      model.EntailmentStatus
	Explanation string
	Model       string
	TokensUsed  int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  int // seconds

	MaxTokens int
	Workers   int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		MaxTokens: 400,
		Workers:   4,
	}
}

const systemPrompt = `You judge logical entailment in argument maps. You do not judge whether statements are true.
Answer with a single JSON object and nothing else: {"status": "entailed" | "not_entailed" | "uncertain", "explanation": "<one or two sentences>"}`

// BuildPrompt renders the user message for one implication
func BuildPrompt(req EntailmentRequest) string {
	var b strings.Builder

	switch req.Combinator {
	case model.CombinatorOr:
		b.WriteString("Does ANY ONE of the following premises, taken alone, entail the conclusion?\n\n")
	default:
		b.WriteString("Do the following premises, taken TOGETHER, entail the conclusion?\n\n")
	}

	b.WriteString("Premises:\n")
	for i, p := range req.Premises {
		fmt.Fprintf(&b, "%d. %s\n", i+1, statementText(p))
	}
	fmt.Fprintf(&b, "\nConclusion: %s\n\n", statementText(req.Conclusion))
	b.WriteString("Assume the premises are true. Answer \"entailed\" only if the conclusion must follow, ")
	b.WriteString("\"not_entailed\" if it clearly does not, and \"uncertain\" otherwise.")
	return b.String()
}

func statementText(s Statement) string {
	if strings.TrimSpace(s.Text) == "" {
		return "(claim " + s.ID + " has no text)"
	}
	return s.Text
}

type verdict struct {
	Status      string `json:"status"`
	Explanation string `json:"explanation"`
}

// ParseVerdict extracts the JSON verdict from a model reply.
// Surrounding prose and code fences are tolerated.
func ParseVerdict(text string) (*EntailmentResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON verdict in reply: %q", truncate(text, 120))
	}

	var v verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}

	status, err := normalizeStatus(v.Status)
	if err != nil {
		return nil, err
	}
	return &EntailmentResult{
		Status:      status,
		Explanation: strings.TrimSpace(v.Explanation),
	}, nil
}

func normalizeStatus(s string) (model.EntailmentStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "entailed", "entails", "yes":
		return model.EntailmentEntailed, nil
	case "not_entailed", "no":
		return model.EntailmentNotEntailed, nil
	case "uncertain", "unknown", "unclear":
		return model.EntailmentUncertain, nil
	}
	return "", fmt.Errorf("unknown entailment status %q", s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// effective resolves per-request overrides against the provider config
func effective(req EntailmentRequest, cfg Config, defaultModel string) (string, int) {
	modelName := req.Model
	if modelName == "" {
		modelName = cfg.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 400
	}
	return modelName, maxTokens
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/argmap/internal/model"
)

func sampleRequest() EntailmentRequest {
	return EntailmentRequest{
		ImplicationID: "i1",
		Premises: []Statement{
			{ID: "p1", Text: "All men are mortal"},
			{ID: "p2", Text: "Socrates is a man"},
		},
		Conclusion: Statement{ID: "c", Text: "Socrates is mortal"},
		Combinator: model.CombinatorAnd,
	}
}

func TestOpenAIProvider_CheckEntailment_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
			t.Errorf("Expected JSON response format, got %+v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || !strings.Contains(req.Messages[1].Content, "Socrates is mortal") {
			t.Errorf("Expected the prompt to contain the conclusion, got %+v", req.Messages)
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: `{"status": "entailed", "explanation": "Classic syllogism."}`,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	result, err := provider.CheckEntailment(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("CheckEntailment failed: %v", err)
	}

	if result.Status != model.EntailmentEntailed {
		t.Errorf("Expected status entailed, got %q", result.Status)
	}
	if result.Explanation != "Classic syllogism." {
		t.Errorf("Unexpected explanation: %q", result.Explanation)
	}
	if result.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", result.Model)
	}
	if result.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", result.TokensUsed)
	}
}

func TestOpenAIProvider_CheckEntailment_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "bad-key", BaseURL: server.URL})

	_, err := provider.CheckEntailment(context.Background(), sampleRequest())
	if err == nil {
		t.Fatal("Expected error for unauthorized request, got nil")
	}
	if !strings.Contains(err.Error(), "OpenAI API error") {
		t.Errorf("Expected wrapped API error, got %v", err)
	}
}

func TestOpenAIProvider_CheckEntailment_BadVerdict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: `{"status": "probably"}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})

	if _, err := provider.CheckEntailment(context.Background(), sampleRequest()); err == nil {
		t.Error("Expected error for unknown status, got nil")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ModelsList{Models: []openai.Model{{ID: "gpt-4o-mini"}}})
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}
	if provider.Name() != "openai" {
		t.Errorf("Expected name openai, got %s", provider.Name())
	}
}

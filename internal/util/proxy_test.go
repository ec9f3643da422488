package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy.internal:3128", "http://secure-proxy.internal:3129", "llm.internal")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"http uses http proxy", "http://api.example.org/v1", "http://proxy.internal:3128"},
		{"https uses https proxy", "https://api.example.org/v1", "http://secure-proxy.internal:3129"},
		{"no_proxy bypasses", "https://llm.internal/v1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, tt.target, nil)
			if err != nil {
				t.Fatal(err)
			}
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy returned error: %v", err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("Expected no proxy, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, got)
			}
		})
	}
}

func TestNewProxyFunc_EnvironmentFallback(t *testing.T) {
	t.Setenv("HTTPS_PROXY", "http://env-proxy.internal:8080")
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("NO_PROXY", "")

	proxy := NewProxyFunc("http://flag-proxy.internal:3128", "", "")
	req, _ := http.NewRequest(http.MethodGet, "https://api.example.org", nil)
	got, err := proxy(req)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Host != "env-proxy.internal:8080" {
		t.Errorf("Expected https to keep the environment proxy, got %v", got)
	}
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, "", "", "")
	if c.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", c.Timeout)
	}
	if _, ok := c.Transport.(*http.Transport); !ok {
		t.Errorf("Expected *http.Transport, got %T", c.Transport)
	}
}

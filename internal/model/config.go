package model

import (
	"os"
	"path/filepath"
	"time"
)

// Base-cost blend modes for evidenceCost/experimentalCost
const (
	BaseCostMin      = "min"
	BaseCostWeighted = "weighted"
)

// Config is the complete argmap configuration
type Config struct {
	Engine      EngineConfig      `yaml:"engine" mapstructure:"engine"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Watch       WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// EngineConfig controls cost propagation
type EngineConfig struct {
	BaseCostMode   string  `yaml:"base_cost_mode" mapstructure:"base_cost_mode"`   // min or weighted
	EvidenceWeight float64 `yaml:"evidence_weight" mapstructure:"evidence_weight"` // weight of evidenceCost in weighted mode
}

// CacheConfig controls evaluation result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch evaluation
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// WatchConfig controls re-evaluation on file changes
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce" mapstructure:"debounce"`
	MaxPerSecond float64       `yaml:"max_per_second" mapstructure:"max_per_second"`
	Burst        int           `yaml:"burst" mapstructure:"burst"`
}

// ServerConfig controls the HTTP editing surface
type ServerConfig struct {
	Addr    string `yaml:"addr" mapstructure:"addr"`
	Mode    string `yaml:"mode" mapstructure:"mode"`       // gin mode: debug, release, test
	Persist bool   `yaml:"persist" mapstructure:"persist"` // save the graph file after each edit
}

// LLMConfig configures the entailment checker
type LLMConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, or empty
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"`
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Workers    int    `yaml:"workers" mapstructure:"workers"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LogConfig controls the diagnostic logger
type LogConfig struct {
	Mode  string `yaml:"mode" mapstructure:"mode"`   // dev or prod
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "argmap-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".argmap", "cache")
	}

	return &Config{
		Engine: EngineConfig{
			BaseCostMode:   BaseCostMin,
			EvidenceWeight: 0.5,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Watch: WatchConfig{
			Debounce:     250 * time.Millisecond,
			MaxPerSecond: 2,
			Burst:        1,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 400,
			Workers:   4,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Log: LogConfig{
			Mode:  "dev",
			Level: "warn",
		},
	}
}

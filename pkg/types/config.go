// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries of rate-limited or unavailable responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// IndexConfig holds settings for the bibliographic index client.
type IndexConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL overrides the index API endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MinInterval is the minimum spacing between index requests (default 3s).
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval" mapstructure:"min_interval"`

	// TitleResults bounds the fuzzy title search (default 10).
	TitleResults int `json:"title_results" yaml:"title_results" mapstructure:"title_results"`

	// AuthorResults bounds each author search (default 20).
	AuthorResults int `json:"author_results" yaml:"author_results" mapstructure:"author_results"`
}

// AIProvider identifies the generative text service.
type AIProvider string

const (
	ProviderOpenAI AIProvider = "openai"
	ProviderClaude AIProvider = "claude"
)

// AIConfig holds settings for the generative text service.
type AIConfig struct {
	// Provider selects the backend: openai or claude.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Timeout bounds a single generative call (default 2m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// PipelineConfig holds settings for the citation-candidate pipeline.
type PipelineConfig struct {
	// Concurrency bounds per-candidate validation and per-author search
	// fan-out. 1 processes units sequentially.
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// MaxKeyAuthors caps the key authors searched per validated record (default 3).
	MaxKeyAuthors int `json:"max_key_authors" yaml:"max_key_authors" mapstructure:"max_key_authors"`
}

// StageConfig holds settings for on-disk staging of phase results.
type StageConfig struct {
	// Enabled turns staging on.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// ResultsDir is the base directory for per-run phase files.
	ResultsDir string `json:"results_dir" yaml:"results_dir" mapstructure:"results_dir"`

	// Database is the SQLite run archive path. Empty disables the archive.
	Database string `json:"database,omitempty" yaml:"database,omitempty" mapstructure:"database"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Port is the listening port (default 8000).
	Port int `json:"port" yaml:"port" mapstructure:"port"`

	// APIToken is the bearer token clients must present.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty" mapstructure:"api_token"`

	// MaxTextLength bounds the accepted paragraph length in characters (default 3000).
	MaxTextLength int `json:"max_text_length" yaml:"max_text_length" mapstructure:"max_text_length"`

	// ReadTimeout bounds reading a request.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a response; pipeline runs happen inside it.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// Config groups all stage configurations.
type Config struct {
	Index    IndexConfig    `json:"index" yaml:"index" mapstructure:"index"`
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline" mapstructure:"pipeline"`
	Stage    StageConfig    `json:"stage" yaml:"stage" mapstructure:"stage"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Index: IndexConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    60 * time.Second,
				UserAgent:  "citation-engine/0.1",
				MaxRetries: 3,
			},
			MinInterval:   3 * time.Second,
			TitleResults:  10,
			AuthorResults: 20,
		},
		AI: AIConfig{
			Provider:   ProviderOpenAI,
			Model:      "gpt-4o",
			MaxRetries: 3,
			Timeout:    2 * time.Minute,
		},
		Pipeline: PipelineConfig{
			Concurrency:   1,
			MaxKeyAuthors: 3,
		},
		Stage: StageConfig{
			Enabled:    true,
			ResultsDir: "search_results",
		},
		Server: ServerConfig{
			Port:          8000,
			MaxTextLength: 3000,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  15 * time.Minute,
		},
	}
}

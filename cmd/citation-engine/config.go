// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/citation-engine/internal/secrets"
	"github.com/pdiddy/citation-engine/pkg/types"
)

const envPrefix = "CITATION_ENGINE"

// configureViper registers defaults for every key and the environment
// bindings, including the unprefixed names deployments commonly set.
func configureViper(v *viper.Viper) {
	d := types.DefaultConfig()
	defaults := map[string]any{
		"index.timeout":        d.Index.Timeout,
		"index.user_agent":     d.Index.UserAgent,
		"index.max_retries":    d.Index.MaxRetries,
		"index.base_url":       d.Index.BaseURL,
		"index.min_interval":   d.Index.MinInterval,
		"index.title_results":  d.Index.TitleResults,
		"index.author_results": d.Index.AuthorResults,

		"ai.provider":    string(d.AI.Provider),
		"ai.model":       d.AI.Model,
		"ai.api_key":     d.AI.APIKey,
		"ai.base_url":    d.AI.BaseURL,
		"ai.max_retries": d.AI.MaxRetries,
		"ai.timeout":     d.AI.Timeout,

		"pipeline.concurrency":     d.Pipeline.Concurrency,
		"pipeline.max_key_authors": d.Pipeline.MaxKeyAuthors,

		"stage.enabled":     d.Stage.Enabled,
		"stage.results_dir": d.Stage.ResultsDir,
		"stage.database":    d.Stage.Database,

		"server.port":            d.Server.Port,
		"server.api_token":       d.Server.APIToken,
		"server.max_text_length": d.Server.MaxTextLength,
		"server.read_timeout":    d.Server.ReadTimeout,
		"server.write_timeout":   d.Server.WriteTimeout,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.api_token", envPrefix+"_SERVER_API_TOKEN", "API_TOKEN")
}

// loadConfig decodes the configuration held by v.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	switch c.AI.Provider {
	case types.ProviderOpenAI, types.ProviderClaude:
	default:
		return types.Config{}, fmt.Errorf("unknown ai.provider %q (want openai or claude)", c.AI.Provider)
	}
	return c, nil
}

// resolveCredentials fills the AI key and API token from the environment
// or the secrets directory when the config leaves them empty.
func resolveCredentials(c types.Config, s map[string]string) types.Config {
	switch c.AI.Provider {
	case types.ProviderClaude:
		c.AI.APIKey = secrets.Resolve(c.AI.APIKey, s, secrets.AnthropicKey, "ANTHROPIC_API_KEY")
	default:
		c.AI.APIKey = secrets.Resolve(c.AI.APIKey, s, secrets.OpenAIKey, "OPENAI_API_KEY")
	}
	c.Server.APIToken = secrets.Resolve(c.Server.APIToken, s, secrets.APIToken)
	return c
}

// newLogger builds a JSON production logger for long-running services and
// a console logger for one-shot commands.
func newLogger(level string, production bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	if production {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

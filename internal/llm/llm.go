// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm calls the generative text service that suggests candidate
// papers, picks key authors, ranks the candidate pool, and places citation
// markers. Each call is a role-scoped system instruction plus a user
// payload, answered with free text.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// ErrEmptyResponse indicates the service answered without any text.
var ErrEmptyResponse = errors.New("generative service returned empty content")

// Backend abstracts the generative text service so tests can supply a fake.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Prompt pairs a system instruction with a template for the user payload.
type Prompt struct {
	Name   string
	System string
	User   *template.Template
}

// Render executes the user template with data.
func (p Prompt) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := p.User.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", p.Name, err)
	}
	return buf.String(), nil
}

// Ask renders p with data and sends it to b.
func Ask(ctx context.Context, b Backend, p Prompt, data any) (string, error) {
	user, err := p.Render(data)
	if err != nil {
		return "", err
	}
	out, err := b.Complete(ctx, p.System, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Name, err)
	}
	return out, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

type retrying struct {
	next       Backend
	maxRetries int
	timeout    time.Duration
}

// WithRetry wraps b so each call runs under timeout (when positive) and is
// retried up to maxRetries times with exponential backoff. Empty responses
// count as failures.
func WithRetry(b Backend, maxRetries int, timeout time.Duration) Backend {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retrying{next: b, maxRetries: maxRetries, timeout: timeout}
}

func (r *retrying) Complete(ctx context.Context, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := r.once(ctx, system, user)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", r.maxRetries, lastErr)
}

func (r *retrying) once(ctx context.Context, system, user string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	out, err := r.next.Complete(ctx, system, user)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// New builds the backend selected by cfg, wrapped with retries and the
// per-call timeout.
func New(cfg types.AIConfig, client *http.Client) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for %s", cfg.Provider)
	}
	var b Backend
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		b = NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, client)
	case types.ProviderClaude:
		b = &Claude{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL, Client: client}
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return WithRetry(b, maxRetries, cfg.Timeout), nil
}

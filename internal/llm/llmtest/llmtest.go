// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted llm.Backend for tests.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pdiddy/citation-engine/internal/llm"
)

// Call is one recorded Complete invocation.
type Call struct {
	Prompt string
	System string
	User   string
}

// Reply answers a call. Returning an error fails the call.
type Reply func(user string) (string, error)

// Backend answers each call by looking up the prompt whose system
// instruction matches. Prompts without a script fail the call.
type Backend struct {
	mu      sync.Mutex
	scripts map[string]Reply
	names   map[string]string
	calls   []Call
}

// New returns an empty scripted backend.
func New() *Backend {
	return &Backend{scripts: make(map[string]Reply), names: make(map[string]string)}
}

// On scripts the reply for prompt p.
func (b *Backend) On(p llm.Prompt, r Reply) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[p.System] = r
	b.names[p.System] = p.Name
	return b
}

// Text scripts a fixed reply for prompt p.
func (b *Backend) Text(p llm.Prompt, reply string) *Backend {
	return b.On(p, func(string) (string, error) { return reply, nil })
}

// Fail scripts an error for prompt p.
func (b *Backend) Fail(p llm.Prompt, err error) *Backend {
	return b.On(p, func(string) (string, error) { return "", err })
}

// Complete implements llm.Backend.
func (b *Backend) Complete(ctx context.Context, system, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	r, ok := b.scripts[system]
	name := b.names[system]
	b.calls = append(b.calls, Call{Prompt: name, System: system, User: user})
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("llmtest: no script for system prompt %.40q", system)
	}
	return r(user)
}

// Calls returns the recorded calls in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the recorded calls to prompt p.
func (b *Backend) CallsTo(p llm.Prompt) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.System == p.System {
			out = append(out, c)
		}
	}
	return out
}

// ReplyFor returns a Reply that picks the answer from the first key found
// in the user payload, falling back to def.
func ReplyFor(answers map[string]string, def string) Reply {
	return func(user string) (string, error) {
		for k, v := range answers {
			if strings.Contains(user, k) {
				return v, nil
			}
		}
		return def, nil
	}
}

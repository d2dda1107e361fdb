// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

// failNTimes fails the first N calls, then answers with response.
type failNTimes struct {
	failures  int
	calls     int
	response  string
	gotSystem string
	gotUser   string
}

func (f *failNTimes) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.gotSystem, f.gotUser = system, user
	if f.calls <= f.failures {
		return "", fmt.Errorf("transient error (call %d)", f.calls)
	}
	return f.response, nil
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	f := &failNTimes{failures: 2, response: "  ok \n"}
	out, err := WithRetry(f, 3, 0).Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, f.calls)
}

func TestWithRetryExhausts(t *testing.T) {
	f := &failNTimes{failures: 10}
	_, err := WithRetry(f, 2, 0).Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, 3, f.calls)
}

func TestWithRetryEmptyResponseIsFailure(t *testing.T) {
	f := &failNTimes{response: "   "}
	_, err := WithRetry(f, 1, 0).Complete(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, 2, f.calls)
}

type blockingBackend struct{}

func (blockingBackend) Complete(ctx context.Context, _, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestWithRetryTimeout(t *testing.T) {
	_, err := WithRetry(blockingBackend{}, 1, 5*time.Millisecond).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WithRetry(blockingBackend{}, 3, 0).Complete(ctx, "s", "u")
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAskRendersPrompt(t *testing.T) {
	f := &failNTimes{response: "Ashish Vaswani"}
	rec := types.ValidatedRecord{CandidateRecord: types.CandidateRecord{
		Title:   "Attention Is All You Need",
		Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
	}}
	out, err := Ask(context.Background(), f, KeyAuthors, rec)
	require.NoError(t, err)
	assert.Equal(t, "Ashish Vaswani", out)
	assert.Equal(t, KeyAuthors.System, f.gotSystem)
	assert.Equal(t, "Paper: Attention Is All You Need\nAuthors: Ashish Vaswani, Noam Shazeer", f.gotUser)
}

func TestAskWrapsError(t *testing.T) {
	f := &failNTimes{failures: 1}
	_, err := Ask(context.Background(), f, SuggestPapers, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggest papers")
}

func TestPromptRendering(t *testing.T) {
	rec := types.ValidatedRecord{
		CandidateRecord: types.CandidateRecord{Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}},
		CanonicalID:     "1706.03762",
		Abstract:        "Transformers.",
		PublishedYear:   2017,
	}
	noYear := types.ValidatedRecord{
		CandidateRecord: types.CandidateRecord{Title: "Undated"},
		CanonicalID:     "2001.00001",
	}

	t.Run("key authors unknown", func(t *testing.T) {
		out, err := KeyAuthors.Render(types.ValidatedRecord{CandidateRecord: types.CandidateRecord{Title: "T"}})
		require.NoError(t, err)
		assert.Contains(t, out, "Authors: Unknown")
	})

	t.Run("rank", func(t *testing.T) {
		out, err := RankPapers.Render(RankData{Text: "Some prose.", Records: []types.ValidatedRecord{rec, noYear}})
		require.NoError(t, err)
		assert.Contains(t, out, "Original Text:\nSome prose.")
		assert.Contains(t, out, "ID: 1706.03762\nTitle: Attention Is All You Need")
		assert.Contains(t, out, "Year: 2017")
		assert.Contains(t, out, "ID: 2001.00001")
		assert.Contains(t, out, "Year: N/A")
	})

	t.Run("place", func(t *testing.T) {
		out, err := PlaceCitations.Render(PlaceData{Text: "Some prose.", Entries: []types.CitationEntry{
			{Key: "Vaswani2017", Record: rec, RelevanceNote: "Introduces transformers."},
			{Key: "Unknown", Record: noYear},
		}})
		require.NoError(t, err)
		assert.Contains(t, out, "- Key: Vaswani2017")
		assert.Contains(t, out, "Relevance: Introduces transformers.")
		assert.Contains(t, out, "- Key: Unknown")
		assert.Equal(t, 1, countSubstr(out, "Relevance:"))
	})

	t.Run("claim", func(t *testing.T) {
		out, err := PapersForClaim.Render(types.CitationTarget{Claim: "C", IdealPapers: "P"})
		require.NoError(t, err)
		assert.Equal(t, "Claim: C\nIdeal papers would be: P", out)
	})
}

func countSubstr(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}

func TestNew(t *testing.T) {
	_, err := New(types.AIConfig{Provider: types.ProviderOpenAI}, nil)
	assert.Error(t, err, "missing key")

	_, err = New(types.AIConfig{Provider: "bard", APIKey: "k"}, nil)
	assert.Error(t, err)

	b, err := New(types.AIConfig{Provider: types.ProviderClaude, APIKey: "k"}, nil)
	require.NoError(t, err)
	r, ok := b.(*retrying)
	require.True(t, ok)
	assert.IsType(t, &Claude{}, r.next)
	assert.Equal(t, 3, r.maxRetries)

	b, err = New(types.AIConfig{APIKey: "k", MaxRetries: 1}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, b.(*retrying).next)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-engine/internal/httputil"
	"github.com/pdiddy/citation-engine/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const defaultUserAgent = "citation-engine/0.1"

// Arxiv queries the arXiv Atom API. All requests made through one Arxiv
// share its rate limiter, including concurrent ones.
type Arxiv struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	maxRetries int
}

// Option configures an Arxiv client.
type Option func(*Arxiv)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Arxiv) { a.client = hc }
}

// WithBaseURL sets a custom endpoint.
func WithBaseURL(u string) Option {
	return func(a *Arxiv) { a.baseURL = u }
}

// WithLimiter replaces the request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(a *Arxiv) { a.limiter = l }
}

// NewArxiv creates an arXiv client from cfg. A zero MinInterval disables
// rate limiting.
func NewArxiv(cfg types.IndexConfig, opts ...Option) *Arxiv {
	a := &Arxiv{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		baseURL:    arxivAPIBase,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
	if cfg.MinInterval > 0 {
		a.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	if cfg.BaseURL != "" {
		a.baseURL = cfg.BaseURL
	}
	if a.userAgent == "" {
		a.userAgent = defaultUserAgent
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LookupID fetches the record stored under an arXiv identifier.
func (a *Arxiv) LookupID(ctx context.Context, id string) ([]types.IndexRecord, error) {
	return a.query(ctx, "lookup", url.Values{"id_list": {id}})
}

// SearchTitle runs a ti:"..." phrase query ranked by relevance.
func (a *Arxiv) SearchTitle(ctx context.Context, title string, limit int) ([]types.IndexRecord, error) {
	phrase := TitlePhrase(title)
	if phrase == "" {
		return nil, fmt.Errorf("empty title query")
	}
	return a.query(ctx, "title", searchParams(`ti:"`+phrase+`"`, limit))
}

// SearchAuthor runs an au:"..." query ranked by relevance.
func (a *Arxiv) SearchAuthor(ctx context.Context, author string, limit int) ([]types.IndexRecord, error) {
	author = strings.Join(strings.Fields(strings.ReplaceAll(author, `"`, "")), " ")
	if author == "" {
		return nil, fmt.Errorf("empty author query")
	}
	return a.query(ctx, "author", searchParams(`au:"`+author+`"`, limit))
}

func searchParams(q string, limit int) url.Values {
	if limit <= 0 {
		limit = 10
	}
	return url.Values{
		"search_query": {q},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(limit)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}
}

func (a *Arxiv) query(ctx context.Context, op string, params url.Values) ([]types.IndexRecord, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := httputil.DoWithRetry(ctx, a.client, req, a.maxRetries)
	if err != nil {
		observe(op, "error")
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observe(op, strconv.Itoa(resp.StatusCode))
		return nil, &APIError{StatusCode: resp.StatusCode, Op: op}
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		observe(op, "invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	observe(op, "ok")

	records := make([]types.IndexRecord, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if r, ok := e.record(); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string        `xml:"id"`
	Title           string        `xml:"title"`
	Summary         string        `xml:"summary"`
	Published       string        `xml:"published"`
	Authors         []arxivAuthor `xml:"author"`
	Links           []arxivLink   `xml:"link"`
	PrimaryCategory arxivCategory `xml:"http://arxiv.org/schemas/atom primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// record converts a feed entry. Error entries, which carry no /abs/ id,
// are rejected.
func (e arxivEntry) record() (types.IndexRecord, bool) {
	id := extractArxivID(e.ID)
	if id == "" {
		return types.IndexRecord{}, false
	}
	r := types.IndexRecord{
		CanonicalID:     id,
		Title:           collapse(e.Title),
		Abstract:        collapse(e.Summary),
		AbsLocator:      strings.TrimSpace(e.ID),
		PrimaryCategory: e.PrimaryCategory.Term,
	}
	for _, a := range e.Authors {
		if name := collapse(a.Name); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	for _, l := range e.Links {
		switch {
		case l.Title == "pdf":
			r.PDFLocator = l.Href
		case l.Rel == "alternate":
			r.AbsLocator = l.Href
		}
	}
	if r.PDFLocator == "" {
		r.PDFLocator = "https://arxiv.org/pdf/" + id
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		r.Published = t
	}
	return r, true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

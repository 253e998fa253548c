package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

func init() {
	Register("http", NewHTTPProvider)
}

// httpSearchResponse is the wire shape returned by a generic HTTP search
// provider: a flat list of hits.
type httpSearchResponse struct {
	Results []struct {
		Title           string          `json:"title"`
		URL             string          `json:"url"`
		PublicationDate *time.Time      `json:"publication_date"`
		Metadata        json.RawMessage `json:"metadata"`
	} `json:"results"`
}

// HTTPProvider is a resty-backed SearchProvider for any periodical
// index exposing a `GET /search?q=` JSON endpoint. One instance is
// constructed per configured provider (spec §6.1).
type HTTPProvider struct {
	name    string
	client  *resty.Client
	limiter *rate.Limiter
}

// NewHTTPProvider builds an HTTPProvider pointed at baseURL, sending
// apiKey (if non-empty) as a bearer token. Rate-limited to 2 requests
// per second to stay a good citizen against external indexes.
func NewHTTPProvider(baseURL, apiKey string) SearchProvider {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &HTTPProvider{
		name:    baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

func (p *HTTPProvider) Name() string { return p.name }

// Search queries the provider's /search endpoint. Any network, decode,
// or non-2xx failure is returned to the caller (Transient external per
// spec §7) rather than panicking.
func (p *HTTPProvider) Search(ctx context.Context, query string) ([]SearchHit, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var body httpSearchResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&body).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", p.name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provider %s: status %d", p.name, resp.StatusCode())
	}

	hits := make([]SearchHit, 0, len(body.Results))
	for _, r := range body.Results {
		hits = append(hits, SearchHit{
			Title:           r.Title,
			URL:             r.URL,
			ProviderName:    p.name,
			PublicationDate: r.PublicationDate,
			RawMetadata:     r.Metadata,
		})
	}
	return hits, nil
}

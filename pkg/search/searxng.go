package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

var searxngSafeSearch = map[SafeSearch]string{
	SafeSearchOff:      "0",
	SafeSearchModerate: "1",
	SafeSearchOn:       "2",
}

var searxngTimeRange = map[string]string{
	"d":           "day",
	TimeLimitWeek: "week",
	"m":           "month",
	"y":           "year",
}

type searxngResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Engine        string  `json:"engine"`
		PublishedDate *string `json:"publishedDate"`
	} `json:"results"`
}

// SearXNG queries a self-hosted SearXNG instance through its JSON API.
type SearXNG struct {
	hc          *http.Client
	instanceURL string
}

func NewSearXNG(hc *http.Client, instanceURL string) *SearXNG {
	return &SearXNG{
		hc:          hc,
		instanceURL: strings.TrimRight(instanceURL, "/"),
	}
}

func (s *SearXNG) Name() string { return "searxng" }

func (s *SearXNG) News(ctx context.Context, q Query) ([]domain.SearchHit, error) {
	resp, err := s.search(ctx, q, "news")
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(hits) >= q.MaxResults {
			break
		}
		hit := domain.SearchHit{Title: r.Title, URL: r.URL, Body: r.Content, Source: r.Engine}
		if r.PublishedDate != nil {
			hit.Date = *r.PublishedDate
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *SearXNG) Text(ctx context.Context, q Query) ([]domain.SearchHit, error) {
	resp, err := s.search(ctx, q, "general")
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(hits) >= q.MaxResults {
			break
		}
		hits = append(hits, domain.SearchHit{Title: r.Title, Href: r.URL, Body: r.Content, Source: r.Engine})
	}
	return hits, nil
}

func (s *SearXNG) search(ctx context.Context, q Query, category string) (*searxngResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.instanceURL+"/search", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	params := req.URL.Query()
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("pageno", "1")
	params.Set("categories", category)
	params.Set("language", searxngLanguage(q.Region))
	params.Set("safesearch", searxngSafeSearch[q.SafeSearch])
	if tr, ok := searxngTimeRange[q.TimeLimit]; ok {
		params.Set("time_range", tr)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, response: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out searxngResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &out, nil
}

// searxngLanguage turns a DuckDuckGo style region ("fr-fr") into a locale ("fr-FR").
func searxngLanguage(region string) string {
	lang, country, ok := strings.Cut(region, "-")
	if !ok {
		return region
	}
	return lang + "-" + strings.ToUpper(country)
}

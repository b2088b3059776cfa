package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

const fallbackSuffix = " past week"

type newsSearcher struct {
	backend    Backend
	region     string
	safeSearch SafeSearch
	now        func() time.Time
}

func NewNewsSearcher(backend Backend, region string, safeSearch SafeSearch) *newsSearcher {
	return &newsSearcher{
		backend:    backend,
		region:     region,
		safeSearch: safeSearch,
		now:        time.Now,
	}
}

// Search returns at most maxResults recent hits for query. News hits must be dated within
// FreshnessWindow. When none survive, a general text search for query + " past week"
// is used instead and its hits are kept without any date check.
func (n *newsSearcher) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	slog.InfoContext(ctx, "Querying news", "backend", n.backend.Name(), "query", query, "maxResults", maxResults)

	hits, err := n.backend.News(ctx, Query{
		Text:       query,
		Region:     n.region,
		SafeSearch: n.safeSearch,
		TimeLimit:  TimeLimitWeek,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("searching news: %w", err)
	}

	now := n.now()
	fresh := lo.Filter(hits, func(h domain.SearchHit, _ int) bool {
		return IsFresh(h.Date, now)
	})

	slog.InfoContext(ctx, "News search finished", "hits", len(hits), "fresh", len(fresh))

	if len(fresh) == 0 {
		slog.WarnContext(ctx, "No fresh news, falling back to text search", "query", query)

		textHits, err := n.backend.Text(ctx, Query{
			Text:       query + fallbackSuffix,
			Region:     n.region,
			SafeSearch: n.safeSearch,
			MaxResults: maxResults,
		})
		if err != nil {
			return nil, fmt.Errorf("searching text: %w", err)
		}
		fresh = append(fresh, textHits...)

		slog.InfoContext(ctx, "Fallback text search finished", "hits", len(fresh))
	}

	for i, h := range fresh {
		slog.DebugContext(ctx, "Search result", "n", i+1, "title", h.Title, "href", h.Href, "url", h.URL, "date", h.Date)
	}

	if len(fresh) > maxResults {
		fresh = fresh[:maxResults]
	}
	return fresh, nil
}

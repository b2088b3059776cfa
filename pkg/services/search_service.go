package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

type NewsSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error)
}

type searchService struct {
	searcher   NewsSearcher
	maxResults int
	locale     domain.Locale
}

func NewSearchService(searcher NewsSearcher, maxResults int, locale domain.Locale) *searchService {
	return &searchService{
		searcher:   searcher,
		maxResults: maxResults,
		locale:     locale,
	}
}

func (s *searchService) Name() string { return "search" }

// Run searches for the latest user message and appends the findings as a system message.
// Running it twice appends two blocks.
func (s *searchService) Run(ctx context.Context, state *domain.ChatState) error {
	last, ok := state.LastUserMessage()
	if !ok {
		slog.WarnContext(ctx, "No user message found; skipping search")
		return nil
	}

	hits, err := s.searcher.Search(ctx, last.Content, s.maxResults)
	if err != nil {
		return fmt.Errorf("searching recent news: %w", err)
	}

	state.Append(domain.RoleSystem, s.locale.ContextHeader+FormatHits(hits, s.locale))

	return nil
}

package services

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

const dateDisplayLen = 10

// FormatHits renders hits as one "- title (link) – date" line each.
// An empty list renders as the locale's no-results sentence.
func FormatHits(hits []domain.SearchHit, locale domain.Locale) string {
	if len(hits) == 0 {
		return locale.NoResults
	}

	lines := lo.Map(hits, func(h domain.SearchHit, _ int) string {
		line := fmt.Sprintf("- %s (%s)", h.Title, h.Link(locale.LinkUnavailable))
		if h.Date != "" {
			line += " – " + prefix(h.Date, dateDisplayLen)
		}
		return line
	})

	return strings.Join(lines, "\n")
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

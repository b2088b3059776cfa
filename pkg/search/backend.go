package search

import (
	"context"
	"fmt"

	"github.com/dskvich/webchat-backend/pkg/domain"
)

type SafeSearch string

const (
	SafeSearchOn       SafeSearch = "on"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchOff      SafeSearch = "off"
)

func ParseSafeSearch(s string) (SafeSearch, error) {
	switch v := SafeSearch(s); v {
	case SafeSearchOn, SafeSearchModerate, SafeSearchOff:
		return v, nil
	}
	return "", fmt.Errorf("unsupported safesearch level %q", s)
}

// TimeLimitWeek restricts provider results to the past week.
const TimeLimitWeek = "w"

type Query struct {
	Text       string
	Region     string
	SafeSearch SafeSearch
	TimeLimit  string
	MaxResults int
}

// Backend is a search aggregator offering a news mode and a general text mode.
type Backend interface {
	Name() string
	News(ctx context.Context, q Query) ([]domain.SearchHit, error)
	Text(ctx context.Context, q Query) ([]domain.SearchHit, error)
}

package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	tavilyx "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/tavily"
)

type Searcher interface {
	Search(ctx context.Context, req tavilyx.SearchRequest) (*tavilyx.SearchResponse, error)
}

var _ contractx.MarketData = (*MarketSearch)(nil)

// MarketSearch serves market-data lookups from a web search backend.
type MarketSearch struct {
	searcher Searcher
}

func NewMarketSearch(searcher Searcher) (*MarketSearch, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	return &MarketSearch{searcher: searcher}, nil
}

func (m *MarketSearch) Search(ctx context.Context, query string, maxResults int) ([]contractx.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", contractx.ErrValidation)
	}
	if maxResults <= 0 {
		maxResults = 3
	}

	resp, err := m.searcher.Search(ctx, tavilyx.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrSearch, err)
	}
	if resp == nil {
		return nil, nil
	}

	out := make([]contractx.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(out) == maxResults {
			break
		}
		out = append(out, contractx.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return out, nil
}

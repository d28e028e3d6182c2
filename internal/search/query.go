package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a book search.
type SearchParams struct {
	Query    string // Free text matched against title, author, publisher and tags
	Tag      string // Optional tag slug filter
	Language string // Optional exact language filter

	Limit  int
	Offset int
}

// DefaultLimit caps results when the caller does not.
const DefaultLimit = 20

// SearchResult holds matching book ids in relevance order.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is a single match.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// IDs returns the hit ids in order.
func (r *SearchResult) IDs() []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

// Search executes a query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	if params.Query == "" {
		req.SortBy([]string{"-created_at"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
	}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")
	req.Fields = []string{"title", "author"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["title"].(string); ok {
			h.Title = v
		}
		if v, ok := hit.Fields["author"].(string); ok {
			h.Author = v
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery ORs the text matches together and ANDs the filters onto them.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(q)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)

		publisherMatch := bleve.NewMatchQuery(q)
		publisherMatch.SetField("publisher")

		tagMatch := bleve.NewTermQuery(strings.ToLower(q))
		tagMatch.SetField("tags")
		tagMatch.SetBoost(1.5)

		// Typo tolerance on titles.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, authorMatch, publisherMatch, tagMatch, fuzzy}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Tag != "" {
		tq := bleve.NewTermQuery(params.Tag)
		tq.SetField("tags")
		queries = append(queries, tq)
	}

	if params.Language != "" {
		lq := bleve.NewTermQuery(params.Language)
		lq.SetField("language")
		queries = append(queries, lq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

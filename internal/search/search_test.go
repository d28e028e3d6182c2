package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly-server/internal/domain"
)

// setupTestIndex creates a temporary on-disk search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testBook(uid, title, author string, created time.Time) *domain.Book {
	return &domain.Book{
		Timestamps:    domain.Timestamps{CreatedAt: created, UpdatedAt: created},
		UID:           uid,
		Title:         title,
		Author:        author,
		Publisher:     "Chilton Books",
		Language:      "en",
		PublishedDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func seedIndex(t *testing.T, index *SearchIndex) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := []*BookDocument{
		NewBookDocument(testBook("b-dune", "Dune", "Frank Herbert", base), []*domain.Tag{{Slug: "sci-fi"}, {Slug: "classic"}}),
		NewBookDocument(testBook("b-hobbit", "The Hobbit", "J.R.R. Tolkien", base.Add(time.Hour)), []*domain.Tag{{Slug: "fantasy"}}),
		NewBookDocument(testBook("b-messiah", "Dune Messiah", "Frank Herbert", base.Add(2*time.Hour)), []*domain.Tag{{Slug: "sci-fi"}}),
	}
	docs[1].Language = "fr"
	require.NoError(t, index.IndexBooks(docs))
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_InMemory(t *testing.T) {
	index, err := NewSearchIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	require.NoError(t, index.IndexBook(NewBookDocument(testBook("b-1", "Emma", "Jane Austen", time.Now()), nil)))
	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, index.Rebuild())
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_Reopen(t *testing.T) {
	dir := t.TempDir()

	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, index.IndexBook(NewBookDocument(testBook("b-1", "Emma", "Jane Austen", time.Now()), nil)))
	require.NoError(t, index.Close())

	index, err = NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_ByTitle(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "hobbit"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "b-hobbit", res.Hits[0].ID)
	assert.Equal(t, "The Hobbit", res.Hits[0].Title)
}

func TestSearch_ByAuthor(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "herbert"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b-dune", "b-messiah"}, res.IDs())
}

func TestSearch_ByTagSlug(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "classic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-dune"}, res.IDs())

	res, err = index.Search(context.Background(), SearchParams{Tag: "sci-fi"})
	require.NoError(t, err)
	// No text query: newest first.
	assert.Equal(t, []string{"b-messiah", "b-dune"}, res.IDs())
}

func TestSearch_FuzzyTitle(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Query: "hobit"})
	require.NoError(t, err)
	assert.Contains(t, res.IDs(), "b-hobbit")
}

func TestSearch_LanguageFilter(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Language: "fr"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-hobbit"}, res.IDs())
}

func TestSearch_DeleteBook(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	require.NoError(t, index.DeleteBook("b-dune"))

	res, err := index.Search(context.Background(), SearchParams{Query: "herbert"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-messiah"}, res.IDs())
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	res, err := index.Search(context.Background(), SearchParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Total)
	assert.Len(t, res.Hits, 2)

	res, err = index.Search(context.Background(), SearchParams{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)
}

func TestNewBookDocument(t *testing.T) {
	b := testBook("b-1", "Dune", "Frank Herbert", time.UnixMilli(1700000000000))
	doc := NewBookDocument(b, []*domain.Tag{{Slug: "sci-fi"}})

	assert.Equal(t, 1965, doc.PublishYear)
	assert.Equal(t, []string{"sci-fi"}, doc.Tags)

	m := doc.ToMap()
	assert.Equal(t, "Dune", m["title"])
	assert.Equal(t, float64(1700000000000), m["created_at"])
	assert.Equal(t, float64(1965), m["publish_year"])
}

package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookly/bookly-server/internal/config"
	"github.com/bookly/bookly-server/internal/logger"
	"github.com/bookly/bookly-server/internal/search"
	"github.com/bookly/bookly-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.App.DataPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ReindexSearch rebuilds the book index from the database in the background.
// The database is the source of truth, so this also repairs any drift from
// index writes that failed while the server was last running.
func ReindexSearch(i do.Injector) {
	books := do.MustInvoke[*service.BookService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	go func() {
		if err := books.Reindex(context.Background()); err != nil {
			log.Error("Search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Search reindex completed", "documents", count)
	}()
}

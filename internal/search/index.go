package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchIndex wraps a Bleve index of books.
//
// All public methods are safe for concurrent use. The mutex guards the
// index handle, which Rebuild swaps out.
type SearchIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is bumped whenever the mapping changes, forcing a rebuild on startup.
const mappingVersion = "1"

// NewSearchIndex opens the index under opts.DataPath, creating it if missing.
// A corrupt index or one built with an older mapping is removed and recreated.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	if opts.DataPath == "" {
		index, err := newIndex("", buildIndexMapping())
		if err != nil {
			return nil, err
		}
		return &SearchIndex{index: index, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	needsRebuild := false

	if _, statErr := os.Stat(indexPath); statErr == nil {
		existingVersion, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil:
			logger.Info("search index has no version file, will rebuild", "new_version", mappingVersion)
			needsRebuild = true
		case string(existingVersion) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		default:
			var err error
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
				needsRebuild = true
			}
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
	}

	if index == nil {
		var err error
		index, err = newIndex(indexPath, buildIndexMapping())
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{index: index, path: indexPath, logger: logger}, nil
}

func newIndex(path string, m mapping.IndexMapping) (bleve.Index, error) {
	var (
		index bleve.Index
		err   error
	)
	if path == "" {
		index, err = bleve.NewMemOnly(m)
	} else {
		index, err = bleve.New(path, m)
	}
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces one book.
func (s *SearchIndex) IndexBook(doc *BookDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexBooks indexes many books in batches of 500.
func (s *SearchIndex) IndexBooks(docs []*BookDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteBook removes a book from the index.
func (s *SearchIndex) DeleteBook(uid string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(uid)
}

// DocumentCount returns the total number of indexed books.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops every document by replacing the index with an empty one.
// It holds the write lock, so searches block until it returns.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	if s.path != "" {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
	}

	index, err := newIndex(s.path, buildIndexMapping())
	if err != nil {
		return err
	}

	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)

	return nil
}

package page

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Store owns a single page sitemap's page list on disk. It is created once
// with the full, already-parsed list and thereafter reloads from the
// scratch file on every access (spec.md §4.2), keeping the entity itself
// free of a resident copy.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore persists pages to a fresh scratch file in the OS temp directory
// and returns a Store bound to it.
func NewStore(pages []Page, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.CreateTemp("", "sitemap-pages-*.json")
	if err != nil {
		return nil, fmt.Errorf("page store: create scratch file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(pages); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("page store: write scratch file: %w", err)
	}

	return &Store{path: f.Name(), logger: logger}, nil
}

// Pages reloads the page list from the scratch file. Every call re-reads
// and re-decodes; the store never caches a resident copy.
func (s *Store) Pages() ([]Page, error) {
	if s == nil {
		return nil, nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("page store: reopen scratch file: %w", err)
	}
	defer f.Close()

	var pages []Page
	if err := json.NewDecoder(f).Decode(&pages); err != nil {
		return nil, fmt.Errorf("page store: decode scratch file: %w", err)
	}
	return pages, nil
}

// Close releases the scratch file. A missing file is logged at warning
// level and otherwise ignored — release is idempotent (spec.md §4.2).
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if err := os.Remove(s.path); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		s.logger.Warn("page store scratch file already gone", zap.String("path", s.path), zap.Error(err))
	}
	return nil
}

// Path exposes the scratch file location. Whole-tree persistence does not
// read it: internal/store inlines page data through entity.Sitemap.ToDict.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

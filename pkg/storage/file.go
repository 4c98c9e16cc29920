package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	errs "github.com/matzehuels/metromap/pkg/errors"
)

// FileStore is a file-based map store for CLI use.
// Documents are stored as JSON files named by ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, defaults to ~/.config/metromap/maps/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "metromap", "maps")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create map dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

func (s *FileStore) docPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing *Document
	if doc.ID != "" && errs.ValidateMapID(doc.ID) == nil {
		if prev, err := s.read(doc.ID); err == nil {
			existing = &prev
		}
	}
	doc, err := Prepare(doc, existing, s.now())
	if err != nil {
		return Document{}, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("marshal map: %w", err)
	}
	tmp := s.docPath(doc.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeStorage, err, "write map file")
	}
	if err := os.Rename(tmp, s.docPath(doc.ID)); err != nil {
		os.Remove(tmp)
		return Document{}, errs.Wrap(errs.ErrCodeStorage, err, "write map file")
	}
	return doc, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (Document, error) {
	if err := errs.ValidateMapID(id); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(id)
}

func (s *FileStore) read(id string) (Document, error) {
	data, err := os.ReadFile(s.docPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, NotFound(id)
		}
		return Document{}, errs.Wrap(errs.ErrCodeStorage, err, "read map file")
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeStorage, err, "parse map file %s", id)
	}
	return doc, nil
}

func (s *FileStore) List(ctx context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "read map dir")
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		doc, err := s.read(id)
		if err != nil {
			// Skip unreadable files rather than failing the listing.
			continue
		}
		docs = append(docs, doc)
	}
	SortByUpdated(docs)
	return docs, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errs.ValidateMapID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.docPath(id)); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeStorage, err, "remove map file")
	}
	return nil
}

func (s *FileStore) Close(ctx context.Context) error { return nil }

// Path returns the base directory for map files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)

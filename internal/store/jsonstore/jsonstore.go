package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Makepad-fr/shoplist/internal/model"
	"github.com/Makepad-fr/shoplist/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every mutation rewrites the whole file; fine at shopping-list scale.

type document struct {
	NextID int64        `json:"next_id"`
	Items  []model.Item `json:"items"`
}

// Store keeps items in one JSON file. A mutex serializes access.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store backed by path. The file is created on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonstore: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	s := &Store{path: path}
	// surface a corrupt file at open rather than on first use
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) ListAll(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	items := make([]model.Item, len(doc.Items))
	copy(items, doc.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	return items, nil
}

func (s *Store) Insert(ctx context.Context, name string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	doc.NextID++
	it := model.Item{ID: doc.NextID, Name: name}
	doc.Items = append(doc.Items, it)
	if err := s.save(doc); err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return it, nil
}

func (s *Store) Update(ctx context.Context, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	for i := range doc.Items {
		if doc.Items[i].ID == item.ID {
			doc.Items[i] = item
			if err := s.save(doc); err != nil {
				return fmt.Errorf("update item %d: %w", item.ID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("update item %d: %w", item.ID, store.ErrNotFound)
}

func (s *Store) Delete(ctx context.Context, item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return fmt.Errorf("delete item %d: %w", item.ID, err)
	}
	for i := range doc.Items {
		if doc.Items[i].ID == item.ID {
			doc.Items = append(doc.Items[:i], doc.Items[i+1:]...)
			if err := s.save(doc); err != nil {
				return fmt.Errorf("delete item %d: %w", item.ID, err)
			}
			return nil
		}
	}
	return nil
}

func (s *Store) load() (document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{Items: []model.Item{}}, nil
		}
		return document{}, fmt.Errorf("read file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return document{}, fmt.Errorf("json unmarshal: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []model.Item{}
	}
	// next_id may be missing or stale in a hand-edited file
	for _, it := range doc.Items {
		if it.ID > doc.NextID {
			doc.NextID = it.ID
		}
	}
	return doc, nil
}

// save writes to a temp file and renames it so a crash never leaves half a document.
func (s *Store) save(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

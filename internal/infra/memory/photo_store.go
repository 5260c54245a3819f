package memory

import (
	"context"
	"strings"
	"sync"
)

// PhotoStore keeps uploaded photos in memory (local runs and tests).
type PhotoStore struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]StoredPhoto
}

// StoredPhoto is one object held by PhotoStore.
type StoredPhoto struct {
	Data        []byte
	ContentType string
}

func NewPhotoStore(baseURL string) *PhotoStore {
	return &PhotoStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]StoredPhoto),
	}
}

// Upload overwrites any existing object at path.
func (s *PhotoStore) Upload(_ context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = StoredPhoto{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (s *PhotoStore) PublicURL(path string) string {
	return s.baseURL + "/" + path
}

func (s *PhotoStore) Remove(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

// Object returns the stored photo at path.
func (s *PhotoStore) Object(path string) (StoredPhoto, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	return obj, ok
}

// Len reports how many objects are stored.
func (s *PhotoStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

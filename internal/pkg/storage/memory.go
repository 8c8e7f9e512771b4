package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

type memoryFile struct {
	data        []byte
	contentType string
}

// MemoryStorage is an in-process FileStorage for tests and ephemeral runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	files   map[string]memoryFile
	baseURL string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{files: make(map[string]memoryFile), baseURL: baseURL}
}

func (s *MemoryStorage) Upload(ctx context.Context, file io.Reader, p string, contentType string) (string, error) {
	key, err := cleanKey(p)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = memoryFile{data: data, contentType: contentType}
	return key, nil
}

func (s *MemoryStorage) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	key, err := cleanKey(p)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, p string) error {
	key, err := cleanKey(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *MemoryStorage) GetURL(ctx context.Context, p string, expiry time.Duration) (string, error) {
	key, err := cleanKey(p)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + key, nil
}

func (s *MemoryStorage) Exists(ctx context.Context, p string) (bool, error) {
	key, err := cleanKey(p)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[key]
	return ok, nil
}

// ContentType returns the content type recorded at upload.
func (s *MemoryStorage) ContentType(p string) string {
	key, err := cleanKey(p)
	if err != nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files[key].contentType
}

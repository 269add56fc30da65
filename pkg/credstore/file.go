package credstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileStore persists credentials as a JSON object in a single file, the way
// CLI tools keep a credential cache under the user's config directory. The
// file is created with 0600 permissions.
//
// Failures to read or write the file degrade to the in-memory view; callers
// never observe storage errors, only absence.
type FileStore struct {
	path string

	mu     sync.RWMutex
	values map[string]string
}

// NewFileStore creates a file-backed store at path, loading any existing
// contents. The parent directory is created if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}
	s.load()
	return s, nil
}

// Get returns the value for key and whether it was present.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key and flushes to disk.
func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.flush()
}

// Remove deletes key and flushes to disk.
func (s *FileStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.flush()
}

// Watch reports external modifications to the credential file, such as
// another process logging out and truncating it. The returned channel
// receives one signal per observed change and is closed when ctx ends or
// the watcher fails. Writes performed through this store also surface as
// events; callers are expected to reconcile against store contents rather
// than count signals.
func (s *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors and atomic writers replace
	// the file node, which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, err
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != s.path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				s.reload()
				select {
				case events <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return events, nil
}

// load populates the in-memory map from disk. Missing or corrupt files
// leave the store empty.
func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
}

// reload refreshes the in-memory map from disk, dropping entries for a
// removed or truncated file.
func (s *FileStore) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.mu.Lock()
		s.values = make(map[string]string)
		s.mu.Unlock()
		return
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
}

// flush writes the current map to disk. Callers hold the write lock.
func (s *FileStore) flush() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}

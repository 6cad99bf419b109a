package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"construct-hq/loom/pkg/chat"
)

// FileStore serves records from a YAML or TOML file. Reload swaps in a new
// snapshot atomically; readers never see a partially loaded file. A failed
// reload keeps the previous snapshot.
type FileStore struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[MemoryStore]

	mu      sync.Mutex
	watcher *FileWatcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewFileStore loads path. The file must exist and parse.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:   path,
		logger: logger.With("component", "store.file"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the records file.
func (s *FileStore) Reload() error {
	records, err := ReadRecordsFile(s.path)
	if err != nil {
		return err
	}
	snapshot, err := NewMemoryStore(records)
	if err != nil {
		return fmt.Errorf("records file %q: %w", s.path, err)
	}

	s.current.Store(snapshot)

	chars, conns, settings := snapshot.Len()
	s.logger.Info("records loaded",
		"path", s.path,
		"characters", chars,
		"connections", conns,
		"settings", settings,
	)
	return nil
}

// Watch reloads the file whenever it changes until Close is called.
func (s *FileStore) Watch(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return fmt.Errorf("records file %q is already watched", s.path)
	}

	fw, err := NewFileWatcher(s.path, interval, s.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.watcher = fw
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fw.Watch(ctx, s.Reload); err != nil {
			s.logger.Error("records watcher exited", "error", err)
		}
	}()
	return nil
}

func (s *FileStore) snapshot() *MemoryStore {
	return s.current.Load()
}

// Character returns the character with id.
func (s *FileStore) Character(ctx context.Context, id string) (*chat.Character, error) {
	return s.snapshot().Character(ctx, id)
}

// Connection returns the connection with id.
func (s *FileStore) Connection(ctx context.Context, id string) (*chat.Connection, error) {
	return s.snapshot().Connection(ctx, id)
}

// Settings returns the settings preset with id.
func (s *FileStore) Settings(ctx context.Context, id string) (*chat.Settings, error) {
	return s.snapshot().Settings(ctx, id)
}

// Defaults returns the default ids of the current snapshot.
func (s *FileStore) Defaults(ctx context.Context) (Defaults, error) {
	return s.snapshot().Defaults(ctx)
}

// Close stops the watcher, if any.
func (s *FileStore) Close() error {
	s.mu.Lock()
	fw, cancel := s.watcher, s.cancel
	s.watcher, s.cancel = nil, nil
	s.mu.Unlock()

	if fw == nil {
		return nil
	}
	cancel()
	err := fw.Stop()
	s.wg.Wait()
	return err
}

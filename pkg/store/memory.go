package store

import (
	"context"
	"fmt"

	"construct-hq/loom/pkg/chat"
)

// MemoryStore is an immutable in-memory store. A FileStore swaps in a new
// MemoryStore on every reload.
type MemoryStore struct {
	characters  map[string]chat.Character
	connections map[string]chat.Connection
	settings    map[string]chat.Settings
	defaults    Defaults
}

// NewMemoryStore indexes records. Records without an id get one; duplicate
// ids are an error.
func NewMemoryStore(records Records) (*MemoryStore, error) {
	records = records.clone()
	records.AssignIDs()

	if err := records.Validate(); err != nil {
		return nil, fmt.Errorf("invalid records: %w", err)
	}

	s := &MemoryStore{
		characters:  make(map[string]chat.Character, len(records.Characters)),
		connections: make(map[string]chat.Connection, len(records.Connections)),
		settings:    make(map[string]chat.Settings, len(records.Settings)),
		defaults:    records.Defaults,
	}
	for _, c := range records.Characters {
		s.characters[c.ID] = c
	}
	for _, c := range records.Connections {
		s.connections[c.ID] = c
	}
	for _, st := range records.Settings {
		s.settings[st.ID] = st
	}
	return s, nil
}

// Character returns a copy of the character with id.
func (s *MemoryStore) Character(_ context.Context, id string) (*chat.Character, error) {
	c, ok := s.characters[id]
	if !ok {
		return nil, fmt.Errorf("character %q: %w", id, ErrNotFound)
	}
	return &c, nil
}

// Connection returns a copy of the connection with id.
func (s *MemoryStore) Connection(_ context.Context, id string) (*chat.Connection, error) {
	c, ok := s.connections[id]
	if !ok {
		return nil, fmt.Errorf("connection %q: %w", id, ErrNotFound)
	}
	return &c, nil
}

// Settings returns a copy of the settings preset with id.
func (s *MemoryStore) Settings(_ context.Context, id string) (*chat.Settings, error) {
	st, ok := s.settings[id]
	if !ok {
		return nil, fmt.Errorf("settings %q: %w", id, ErrNotFound)
	}
	return &st, nil
}

// Defaults returns the default ids.
func (s *MemoryStore) Defaults(context.Context) (Defaults, error) {
	return s.defaults, nil
}

// Len returns the number of characters, connections and settings.
func (s *MemoryStore) Len() (characters, connections, settings int) {
	return len(s.characters), len(s.connections), len(s.settings)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

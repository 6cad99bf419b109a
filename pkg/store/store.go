// Package store holds the records Loom reads while serving a request:
// characters, connections, settings presets and the default ids.
//
// Three backends are provided. MemoryStore keeps records in maps,
// FileStore loads a YAML or TOML records file (optionally reloading it on
// change) and SQLiteStore keeps records in a SQLite database. All of them
// are safe for concurrent reads.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"construct-hq/loom/pkg/chat"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Store reads records by id.
type Store interface {
	Character(ctx context.Context, id string) (*chat.Character, error)
	Connection(ctx context.Context, id string) (*chat.Connection, error)
	Settings(ctx context.Context, id string) (*chat.Settings, error)

	// Defaults returns the default connection and settings ids.
	Defaults(ctx context.Context) (Defaults, error)

	Close() error
}

// Defaults names the records used when a request does not.
type Defaults struct {
	Connection string `json:"defaultConnection" yaml:"connection" toml:"connection"`
	Settings   string `json:"defaultSettings" yaml:"settings" toml:"settings"`
}

// Records is the full content of a store, as read from a records file.
type Records struct {
	Defaults    Defaults          `yaml:"defaults" toml:"defaults"`
	Characters  []chat.Character  `yaml:"characters" toml:"characters"`
	Connections []chat.Connection `yaml:"connections" toml:"connections"`
	Settings    []chat.Settings   `yaml:"settings" toml:"settings"`
}

// clone copies the record slices so AssignIDs does not write through to
// the caller.
func (r Records) clone() Records {
	r.Characters = append([]chat.Character(nil), r.Characters...)
	r.Connections = append([]chat.Connection(nil), r.Connections...)
	r.Settings = append([]chat.Settings(nil), r.Settings...)
	return r
}

// AssignIDs gives every record without an id a fresh UUID.
func (r *Records) AssignIDs() {
	for i := range r.Characters {
		if r.Characters[i].ID == "" {
			r.Characters[i].ID = uuid.NewString()
		}
	}
	for i := range r.Connections {
		if r.Connections[i].ID == "" {
			r.Connections[i].ID = uuid.NewString()
		}
	}
	for i := range r.Settings {
		if r.Settings[i].ID == "" {
			r.Settings[i].ID = uuid.NewString()
		}
	}
}

// Validate reports duplicate ids and defaults that name missing records.
func (r *Records) Validate() error {
	var errs []error

	check := func(kind string, ids []string) map[string]bool {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if id == "" {
				continue
			}
			if seen[id] {
				errs = append(errs, fmt.Errorf("duplicate %s id %q", kind, id))
			}
			seen[id] = true
		}
		return seen
	}

	check("character", collect(r.Characters, func(c chat.Character) string { return c.ID }))
	conns := check("connection", collect(r.Connections, func(c chat.Connection) string { return c.ID }))
	settings := check("settings", collect(r.Settings, func(s chat.Settings) string { return s.ID }))

	if id := r.Defaults.Connection; id != "" && !conns[id] {
		errs = append(errs, fmt.Errorf("default connection %q does not exist", id))
	}
	if id := r.Defaults.Settings; id != "" && !settings[id] {
		errs = append(errs, fmt.Errorf("default settings %q does not exist", id))
	}

	return errors.Join(errs...)
}

func collect[T any](items []T, id func(T) string) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = id(item)
	}
	return ids
}

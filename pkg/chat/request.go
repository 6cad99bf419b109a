package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// CompletionRequest is the inbound request consumed by the dispatcher.
type CompletionRequest struct {
	// Character is either a stored character id or an inline record
	Character CharacterRef `json:"character"`

	// Messages is the full chat log, oldest first
	Messages []Message `json:"messages"`

	// ConnectionID selects the backend connection; empty means default
	ConnectionID string `json:"connectionid,omitempty"`

	// SettingsID selects the generation preset; empty means default
	SettingsID string `json:"settingsid,omitempty"`

	// Persona is the optional user identity
	Persona *Persona `json:"persona,omitempty"`
}

// Validate checks every message in the log and reports all failures.
func (r *CompletionRequest) Validate() error {
	var errs []error
	for i, m := range r.Messages {
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("message %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// CharacterRef references a character by id or carries it inline.
// Exactly one of ID and Inline is set after decoding a non-null value.
type CharacterRef struct {
	ID     string
	Inline *Character
}

// CharacterByID returns a reference to a stored character.
func CharacterByID(id string) CharacterRef {
	return CharacterRef{ID: id}
}

// InlineCharacter returns a reference carrying the record itself.
func InlineCharacter(c Character) CharacterRef {
	return CharacterRef{Inline: &c}
}

// IsZero reports whether the reference names no character at all.
func (r CharacterRef) IsZero() bool {
	return r.ID == "" && r.Inline == nil
}

// UnmarshalJSON accepts a JSON string (an id), an object (an inline
// character) or null.
func (r *CharacterRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = CharacterRef{}
		return nil
	}

	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("invalid character id: %w", err)
		}
		*r = CharacterRef{ID: id}
		return nil
	case '{':
		var c Character
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("invalid inline character: %w", err)
		}
		*r = CharacterRef{Inline: &c}
		return nil
	default:
		return fmt.Errorf("character must be an id string or an object")
	}
}

// MarshalJSON writes the id form when set, otherwise the inline record.
func (r CharacterRef) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	if r.ID != "" {
		return json.Marshal(r.ID)
	}
	return []byte("null"), nil
}

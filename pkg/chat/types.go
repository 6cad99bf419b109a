package chat

import (
	"fmt"
	"strings"
)

// Role identifies who produced a message in a chat log.
type Role string

// Message role constants. The wire values are capitalized as stored by the
// chat frontends.
const (
	RoleSystem    Role = "System"
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"
)

// InstructMode selects the templating grammar used to delimit turns.
type InstructMode string

// Instruct mode constants. Unknown values behave as ModeNone.
const (
	ModeNone     InstructMode = "None"
	ModeAlpaca   InstructMode = "Alpaca"
	ModeVicuna   InstructMode = "Vicuna"
	ModeMetharme InstructMode = "Metharme"
)

// Importance controls where persona text is placed in the prompt.
type Importance string

// Persona importance constants.
const (
	ImportanceLow  Importance = "low"
	ImportanceHigh Importance = "high"
)

// Message is a single turn in a chat log.
type Message struct {
	// Role identifies the sender (System, User, Assistant)
	Role Role `json:"role" yaml:"role"`

	// Swipes holds the alternative text variants for this turn
	Swipes []string `json:"swipes" yaml:"swipes"`

	// CurrentIndex selects the active swipe
	CurrentIndex int `json:"currentIndex" yaml:"current_index"`

	// Thought marks the text as an internal-thought variant
	Thought bool `json:"thought,omitempty" yaml:"thought,omitempty"`

	// FallbackName is the display name used for the speaker
	FallbackName string `json:"fallbackName" yaml:"fallback_name"`
}

// Text returns the active swipe. An out-of-range CurrentIndex yields "".
func (m Message) Text() string {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Swipes) {
		return ""
	}
	return m.Swipes[m.CurrentIndex]
}

// Validate reports whether CurrentIndex points at an existing swipe.
func (m Message) Validate() error {
	if m.CurrentIndex < 0 || m.CurrentIndex >= len(m.Swipes) {
		return fmt.Errorf("current index %d out of range for %d swipes", m.CurrentIndex, len(m.Swipes))
	}
	return nil
}

// Character is a construct the model plays.
type Character struct {
	ID           string `json:"_id,omitempty" yaml:"id" toml:"id"`
	Name         string `json:"name" yaml:"name" toml:"name"`
	Description  string `json:"description" yaml:"description" toml:"description"`
	Personality  string `json:"personality" yaml:"personality" toml:"personality"`
	MesExample   string `json:"mes_example" yaml:"mes_example" toml:"mes_example"`
	Scenario     string `json:"scenario" yaml:"scenario" toml:"scenario"`
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt" toml:"system_prompt"`
}

// Persona describes the human side of the conversation.
type Persona struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Importance  Importance `json:"importance" yaml:"importance"`
}

// HasDescription reports whether the persona carries non-blank text at the
// given importance.
func (p *Persona) HasDescription(importance Importance) bool {
	if p == nil || p.Importance != importance {
		return false
	}
	return strings.TrimSpace(p.Description) != ""
}

// Connection describes a completion backend endpoint.
type Connection struct {
	ID    string `json:"_id,omitempty" yaml:"id" toml:"id"`
	Name  string `json:"name,omitempty" yaml:"name" toml:"name"`
	Type  string `json:"type" yaml:"type" toml:"type"`
	Model string `json:"model" yaml:"model" toml:"model"`
	URL   string `json:"url,omitempty" yaml:"url" toml:"url"`
	Key   string `json:"key,omitempty" yaml:"key" toml:"key"`

	// Extra holds provider-specific fields the core does not interpret
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty" toml:"extra,omitempty"`
}

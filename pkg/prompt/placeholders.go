package prompt

import (
	"strings"

	"construct-hq/loom/pkg/chat"
)

// Placeholder tokens recognized in prompts.
const (
	UserPlaceholder = "{{user}}"
	CharPlaceholder = "{{char}}"
)

// Names used when the persona or character is absent or unnamed.
const (
	DefaultUserName = "You"
	DefaultCharName = "Bot"
)

// Substitute replaces every {{user}} with the persona name and every
// {{char}} with the character name.
func Substitute(text string, persona *chat.Persona, character *chat.Character) string {
	r := strings.NewReplacer(
		UserPlaceholder, UserName(persona),
		CharPlaceholder, CharName(character),
	)
	return r.Replace(text)
}

// UserName returns the persona name, or DefaultUserName.
func UserName(p *chat.Persona) string {
	if p == nil || p.Name == "" {
		return DefaultUserName
	}
	return p.Name
}

// CharName returns the character name, or DefaultCharName.
func CharName(c *chat.Character) string {
	if c == nil || c.Name == "" {
		return DefaultCharName
	}
	return c.Name
}

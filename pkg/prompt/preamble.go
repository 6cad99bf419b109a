package prompt

import (
	"strings"

	"construct-hq/loom/pkg/chat"
)

// Preamble concatenates the non-blank description, personality, example
// messages and scenario of c, in that order and without separators. The
// fields are expected to carry their own formatting.
func Preamble(c *chat.Character) string {
	if c == nil {
		return ""
	}

	var sb strings.Builder
	for _, field := range []string{c.Description, c.Personality, c.MesExample, c.Scenario} {
		if strings.TrimSpace(field) != "" {
			sb.WriteString(field)
		}
	}
	return sb.String()
}

// LowImportancePersona returns the bracketed persona description that is
// appended to the preamble, or "" when p is not a low-importance persona
// with a description.
func LowImportancePersona(p *chat.Persona) string {
	if !p.HasDescription(chat.ImportanceLow) {
		return ""
	}
	return "[" + strings.TrimSpace(p.Description) + "]"
}

package prompt

import (
	"slices"
	"strings"

	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/prompt/instruct"
)

// Insertion offsets, counted from the end of the transcript.
const (
	systemPromptOffset = 3
	personaOffset      = 4
)

// RenderOptions carries everything besides the messages that shapes the
// rendered transcript.
type RenderOptions struct {
	Template instruct.Template

	// ConstructName is the speaker name used in the trailing cue.
	ConstructName string

	// SystemPrompt is inserted near the end when non-blank.
	SystemPrompt string

	// Persona is inserted near the end when it has a high-importance
	// description.
	Persona *chat.Persona
}

// Render formats fitted into the transcript part of a prompt.
//
// The system prompt lands three positions from the end and a high-importance
// persona description, wrapped in brackets, four positions from the end.
// For SpliceLines templates a position is a line of the rendered text; for
// AfterMessage templates it is a fitted message. Neither is inserted when
// the transcript is too short for its offset.
func Render(fitted []chat.Message, opts RenderOptions) string {
	tmpl := opts.Template
	n := len(fitted)

	systemPrompt := ""
	if strings.TrimSpace(opts.SystemPrompt) != "" && n >= systemPromptOffset {
		systemPrompt = opts.SystemPrompt
	}
	persona := ""
	if opts.Persona.HasDescription(chat.ImportanceHigh) && n >= personaOffset {
		persona = "[" + strings.TrimSpace(opts.Persona.Description) + "]"
	}

	var sb strings.Builder
	for i, m := range fitted {
		sb.WriteString(tmpl.RenderFragment(m))
		sb.WriteString(tmpl.Separator)

		if tmpl.Insertion != instruct.AfterMessage {
			continue
		}
		if persona != "" && i == n-personaOffset {
			sb.WriteString(tmpl.SideFragment(persona))
		}
		if systemPrompt != "" && i == n-systemPromptOffset {
			sb.WriteString(tmpl.SideFragment(systemPrompt))
		}
	}
	out := sb.String()

	if tmpl.Insertion == instruct.SpliceLines && (systemPrompt != "" || persona != "") {
		lines := strings.Split(out, "\n")
		if systemPrompt != "" {
			lines = spliceLine(lines, systemPromptOffset, systemPrompt)
		}
		if persona != "" {
			lines = spliceLine(lines, personaOffset, persona)
		}
		out = strings.Join(lines, "\n")
	}

	if n > 0 {
		if cue, ok := tmpl.Cue(opts.ConstructName, fitted[n-1].Role); ok {
			out += cue
		}
	}
	return out
}

// spliceLine inserts line offset positions before the end of lines.
func spliceLine(lines []string, offset int, line string) []string {
	idx := len(lines) - offset
	if idx < 0 {
		return lines
	}
	return slices.Insert(lines, idx, line)
}

// Package instruct holds the instruct-format grammars used to delimit chat
// turns in a completion prompt.
//
// Each supported mode is one Template value. Formatting is table-driven: the
// renderer, fitter and cue logic read prefixes from the template and never
// branch on the mode themselves.
package instruct

import (
	"strings"

	"construct-hq/loom/pkg/chat"
)

// Insertion is how side-channel text (system prompt, persona) is placed
// into the rendered transcript.
type Insertion int

const (
	// SpliceLines splits the rendered transcript on newlines and inserts
	// the text as a new line.
	SpliceLines Insertion = iota

	// AfterMessage emits the text right after a given fitted message.
	AfterMessage
)

// Template describes one instruct format.
type Template struct {
	Mode chat.InstructMode

	// System is the rendered prefix of a System message.
	System string

	// TokenSystem is the prefix used when measuring a System message.
	// It differs from System only where the grammar tokenizes the system
	// role as another role.
	TokenSystem string

	// Thought prefixes an internal-thought message, before the speaker name.
	Thought string

	// User and Assistant prefix the respective turns, before the speaker name.
	User      string
	Assistant string

	// Separator follows every rendered message.
	Separator string

	// CuePrefix precedes "<name>:" in the trailing generation cue.
	CuePrefix string

	// CueOnlyAfterUser restricts the cue to logs ending with a User turn.
	// Otherwise the cue follows any non-Assistant turn.
	CueOnlyAfterUser bool

	Insertion Insertion

	// SidePrefix and SideSuffix wrap side-channel text in AfterMessage
	// insertion.
	SidePrefix string
	SideSuffix string
}

var templates = map[chat.InstructMode]Template{
	chat.ModeNone: {
		Mode:      chat.ModeNone,
		Separator: "\n",
		Insertion: SpliceLines,
	},
	chat.ModeAlpaca: {
		Mode:        chat.ModeAlpaca,
		System:      "### Instruction:\n",
		TokenSystem: "### Instruction:\n",
		Thought:     "### Response:\n",
		User:        "### Instruction:\n",
		Assistant:   "### Response:\n",
		Separator:   "\n",
		CuePrefix:   "### Response:\n",
		Insertion:   AfterMessage,
		SideSuffix:  "\n",
	},
	chat.ModeVicuna: {
		Mode:        chat.ModeVicuna,
		System:      "SYSTEM: ",
		TokenSystem: "SYSTEM: ",
		Thought:     "ASSISTANT: ",
		User:        "USER: ",
		Assistant:   "ASSISTANT: ",
		Separator:   "\n",
		CuePrefix:   "ASSISTANT: ",
		Insertion:   SpliceLines,
	},
	chat.ModeMetharme: {
		Mode:             chat.ModeMetharme,
		System:           "<|system|>",
		TokenSystem:      "<|user|>",
		Thought:          "<|model|>",
		User:             "<|user|>",
		Assistant:        "<|model|>",
		CuePrefix:        "<|model|>",
		CueOnlyAfterUser: true,
		Insertion:        AfterMessage,
		SidePrefix:       "<|system|>",
	},
}

// ForMode returns the template for mode. Unknown modes use ModeNone.
func ForMode(mode chat.InstructMode) Template {
	if t, ok := templates[mode]; ok {
		return t
	}
	return templates[chat.ModeNone]
}

// Modes returns the supported instruct modes.
func Modes() []chat.InstructMode {
	return []chat.InstructMode{chat.ModeNone, chat.ModeAlpaca, chat.ModeVicuna, chat.ModeMetharme}
}

// TokenFragment returns the text of m as it is measured by the fitter.
// The message text is used untrimmed.
func (t Template) TokenFragment(m chat.Message) string {
	return t.fragment(m, m.Text(), t.TokenSystem)
}

// RenderFragment returns the text of m as it appears in the prompt.
// The message text is trimmed.
func (t Template) RenderFragment(m chat.Message) string {
	return t.fragment(m, strings.TrimSpace(m.Text()), t.System)
}

func (t Template) fragment(m chat.Message, text, systemPrefix string) string {
	switch {
	case m.Role != chat.RoleUser && m.Role != chat.RoleAssistant:
		// System and any role outside the closed set.
		return systemPrefix + text
	case m.Thought:
		return t.Thought + m.FallbackName + "'s Thoughts: " + text
	case m.Role == chat.RoleUser:
		return t.User + m.FallbackName + ": " + text
	default:
		return t.Assistant + m.FallbackName + ": " + text
	}
}

// Cue returns the trailing generation cue for a transcript whose last
// message has role last. The boolean is false when no cue is emitted.
func (t Template) Cue(name string, last chat.Role) (string, bool) {
	if last == chat.RoleAssistant {
		return "", false
	}
	if t.CueOnlyAfterUser && last != chat.RoleUser {
		return "", false
	}
	return t.CuePrefix + name + ":", true
}

// SideFragment wraps side-channel text for AfterMessage insertion.
func (t Template) SideFragment(text string) string {
	return t.SidePrefix + text + t.SideSuffix
}

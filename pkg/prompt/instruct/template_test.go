package instruct

import (
	"testing"

	"construct-hq/loom/pkg/chat"
)

func msg(role chat.Role, name, text string, thought bool) chat.Message {
	return chat.Message{Role: role, Swipes: []string{text}, FallbackName: name, Thought: thought}
}

func TestRenderFragment(t *testing.T) {
	system := msg(chat.RoleSystem, "", " Be terse ", false)
	user := msg(chat.RoleUser, "Alice", "Hi ", false)
	assistant := msg(chat.RoleAssistant, "Bot", "Hello", false)
	thought := msg(chat.RoleAssistant, "Bot", "hmm", true)

	tests := []struct {
		mode chat.InstructMode
		want [4]string
	}{
		{chat.ModeNone, [4]string{"Be terse", "Alice: Hi", "Bot: Hello", "Bot's Thoughts: hmm"}},
		{chat.ModeAlpaca, [4]string{
			"### Instruction:\nBe terse",
			"### Instruction:\nAlice: Hi",
			"### Response:\nBot: Hello",
			"### Response:\nBot's Thoughts: hmm",
		}},
		{chat.ModeVicuna, [4]string{"SYSTEM: Be terse", "USER: Alice: Hi", "ASSISTANT: Bot: Hello", "ASSISTANT: Bot's Thoughts: hmm"}},
		{chat.ModeMetharme, [4]string{"<|system|>Be terse", "<|user|>Alice: Hi", "<|model|>Bot: Hello", "<|model|>Bot's Thoughts: hmm"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			tmpl := ForMode(tt.mode)
			for i, m := range []chat.Message{system, user, assistant, thought} {
				if got := tmpl.RenderFragment(m); got != tt.want[i] {
					t.Errorf("message %d: got %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestTokenFragment(t *testing.T) {
	system := msg(chat.RoleSystem, "", " Be terse ", false)

	if got := ForMode(chat.ModeMetharme).TokenFragment(system); got != "<|user|> Be terse " {
		t.Errorf("Metharme system token fragment = %q", got)
	}
	if got := ForMode(chat.ModeVicuna).TokenFragment(system); got != "SYSTEM:  Be terse " {
		t.Errorf("Vicuna system token fragment = %q", got)
	}
}

func TestPrecedence(t *testing.T) {
	tmpl := ForMode(chat.ModeVicuna)

	// System wins over the thought flag.
	if got := tmpl.RenderFragment(msg(chat.RoleSystem, "Bot", "x", true)); got != "SYSTEM: x" {
		t.Errorf("system thought = %q", got)
	}
	// Thought wins over the User role.
	if got := tmpl.RenderFragment(msg(chat.RoleUser, "Alice", "x", true)); got != "ASSISTANT: Alice's Thoughts: x" {
		t.Errorf("user thought = %q", got)
	}
	// Unknown roles format as System.
	if got := tmpl.RenderFragment(msg(chat.Role("Narrator"), "N", "x", false)); got != "SYSTEM: x" {
		t.Errorf("unknown role = %q", got)
	}
}

func TestForMode_Unknown(t *testing.T) {
	for _, mode := range []chat.InstructMode{"", "ChatML"} {
		if got := ForMode(mode); got.Mode != chat.ModeNone {
			t.Errorf("ForMode(%q).Mode = %q, want None", mode, got.Mode)
		}
	}
}

func TestCue(t *testing.T) {
	tests := []struct {
		mode   chat.InstructMode
		last   chat.Role
		want   string
		wantOK bool
	}{
		{chat.ModeNone, chat.RoleUser, "Bot:", true},
		{chat.ModeNone, chat.RoleSystem, "Bot:", true},
		{chat.ModeNone, chat.RoleAssistant, "", false},
		{chat.ModeAlpaca, chat.RoleUser, "### Response:\nBot:", true},
		{chat.ModeVicuna, chat.RoleUser, "ASSISTANT: Bot:", true},
		{chat.ModeMetharme, chat.RoleUser, "<|model|>Bot:", true},
		{chat.ModeMetharme, chat.RoleSystem, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+string(tt.last), func(t *testing.T) {
			got, ok := ForMode(tt.mode).Cue("Bot", tt.last)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Cue = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSideFragment(t *testing.T) {
	if got := ForMode(chat.ModeAlpaca).SideFragment("sp"); got != "sp\n" {
		t.Errorf("Alpaca = %q", got)
	}
	if got := ForMode(chat.ModeMetharme).SideFragment("sp"); got != "<|system|>sp" {
		t.Errorf("Metharme = %q", got)
	}
}

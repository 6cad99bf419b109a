package prompt

import (
	"reflect"
	"strings"
	"testing"

	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/prompt/instruct"
)

// lenCounter counts one token per byte.
type lenCounter struct{}

func (lenCounter) CountTokens(text string) int { return len(text) }

func user(name, text string) chat.Message {
	return chat.Message{Role: chat.RoleUser, Swipes: []string{text}, FallbackName: name}
}

func bot(name, text string) chat.Message {
	return chat.Message{Role: chat.RoleAssistant, Swipes: []string{text}, FallbackName: name}
}

func system(text string) chat.Message {
	return chat.Message{Role: chat.RoleSystem, Swipes: []string{text}}
}

func TestFit(t *testing.T) {
	none := instruct.ForMode(chat.ModeNone)
	// Token fragments: "A: 1111" (7), "A: 22" (5), "A: 333" (6)
	log := []chat.Message{user("A", "1111"), user("A", "22"), user("A", "333")}

	tests := []struct {
		name   string
		budget int
		want   int
	}{
		{"zero budget", 0, 0},
		{"negative budget", -5, 0},
		{"too small for newest", 5, 0},
		{"newest only", 6, 1},
		{"two newest", 11, 2},
		{"one short of all", 17, 2},
		{"everything", 18, 3},
		{"large budget", 1000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fitted := Fit(log, tt.budget, none, lenCounter{})
			if len(fitted) != tt.want {
				t.Fatalf("fitted %d messages, want %d", len(fitted), tt.want)
			}
			if !reflect.DeepEqual(fitted, log[len(log)-tt.want:]) && tt.want > 0 {
				t.Errorf("fitted set is not the trailing suffix: %+v", fitted)
			}
		})
	}
}

func TestFit_SuffixMaximality(t *testing.T) {
	none := instruct.ForMode(chat.ModeNone)
	log := []chat.Message{
		user("Alice", "first message here"),
		bot("Bot", "a reply"),
		user("Alice", "another one"),
		bot("Bot", "ok"),
	}

	for budget := 0; budget <= 80; budget++ {
		fitted := Fit(log, budget, none, lenCounter{})

		total := 0
		for _, m := range fitted {
			total += len(none.TokenFragment(m))
		}
		if total > budget {
			t.Fatalf("budget %d: fitted cost %d exceeds budget", budget, total)
		}

		k := len(fitted)
		if k < len(log) && budget > 0 {
			next := len(none.TokenFragment(log[len(log)-k-1]))
			if total+next <= budget {
				t.Fatalf("budget %d: suffix of %d is not maximal", budget, k)
			}
		}
	}
}

func TestFit_StopsAtFirstOverflow(t *testing.T) {
	none := instruct.ForMode(chat.ModeNone)
	log := []chat.Message{
		user("A", "x"),
		user("A", strings.Repeat("y", 100)),
		user("A", "z"),
	}

	fitted := Fit(log, 20, none, lenCounter{})
	if len(fitted) != 1 || fitted[0].Text() != "z" {
		t.Errorf("older messages must be dropped after an overflow, got %+v", fitted)
	}
}

func TestFit_EmptyLog(t *testing.T) {
	if got := Fit(nil, 100, instruct.ForMode(chat.ModeNone), lenCounter{}); len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestRender_Scenarios(t *testing.T) {
	log := []chat.Message{system("Be terse"), user("Alice", "Hi"), bot("Bot", "Hello")}
	none := instruct.ForMode(chat.ModeNone)

	t.Run("ends on assistant", func(t *testing.T) {
		fitted := Fit(log, 1000, none, lenCounter{})
		if len(fitted) != 3 {
			t.Fatalf("fitted %d, want 3", len(fitted))
		}
		got := Render(fitted, RenderOptions{Template: none, ConstructName: "Bot"})
		want := "Be terse\nAlice: Hi\nBot: Hello\n"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("ends on user", func(t *testing.T) {
		fitted := Fit(log[:2], 1000, none, lenCounter{})
		got := Render(fitted, RenderOptions{Template: none, ConstructName: "Bot"})
		if !strings.HasSuffix(got, "\nBot:") {
			t.Errorf("expected trailing cue, got %q", got)
		}
	})

	t.Run("alpaca single user", func(t *testing.T) {
		alpaca := instruct.ForMode(chat.ModeAlpaca)
		fitted := Fit([]chat.Message{user("Alice", "Hi")}, 1000, alpaca, lenCounter{})
		got := Render(fitted, RenderOptions{Template: alpaca, ConstructName: "Bot"})
		if !strings.HasPrefix(got, "### Instruction:\nAlice: Hi\n") {
			t.Errorf("unexpected prefix: %q", got)
		}
		if !strings.HasSuffix(got, "### Response:\nBot:") {
			t.Errorf("unexpected suffix: %q", got)
		}
	})

	t.Run("empty fitted set", func(t *testing.T) {
		if got := Render(nil, RenderOptions{Template: none, ConstructName: "Bot", SystemPrompt: "sp"}); got != "" {
			t.Errorf("expected empty render, got %q", got)
		}
	})
}

// TestRender_InsertionOffsets locks the positions of the system prompt and
// the high-importance persona for every template.
func TestRender_InsertionOffsets(t *testing.T) {
	fitted := []chat.Message{user("Alice", "1"), user("Alice", "2"), user("Alice", "3"), user("Alice", "4")}
	persona := &chat.Persona{Name: "Alice", Description: " tall ", Importance: chat.ImportanceHigh}

	tests := []struct {
		mode chat.InstructMode
		want string
	}{
		{
			mode: chat.ModeNone,
			want: "Alice: 1\nAlice: 2\n[tall]\nBe kind\nAlice: 3\nAlice: 4\nBot:",
		},
		{
			mode: chat.ModeVicuna,
			want: "USER: Alice: 1\nUSER: Alice: 2\n[tall]\nBe kind\nUSER: Alice: 3\nUSER: Alice: 4\nASSISTANT: Bot:",
		},
		{
			mode: chat.ModeAlpaca,
			want: "### Instruction:\nAlice: 1\n[tall]\n" +
				"### Instruction:\nAlice: 2\nBe kind\n" +
				"### Instruction:\nAlice: 3\n" +
				"### Instruction:\nAlice: 4\n" +
				"### Response:\nBot:",
		},
		{
			mode: chat.ModeMetharme,
			want: "<|user|>Alice: 1<|system|>[tall]" +
				"<|user|>Alice: 2<|system|>Be kind" +
				"<|user|>Alice: 3" +
				"<|user|>Alice: 4" +
				"<|model|>Bot:",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := Render(fitted, RenderOptions{
				Template:      instruct.ForMode(tt.mode),
				ConstructName: "Bot",
				SystemPrompt:  "Be kind",
				Persona:       persona,
			})
			if got != tt.want {
				t.Errorf("got\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRender_PersonaOnly(t *testing.T) {
	fitted := []chat.Message{user("Alice", "1"), user("Alice", "2"), user("Alice", "3"), user("Alice", "4")}
	persona := &chat.Persona{Name: "Alice", Description: "tall", Importance: chat.ImportanceHigh}

	tests := []struct {
		mode chat.InstructMode
		want string
	}{
		{
			mode: chat.ModeAlpaca,
			want: "### Instruction:\nAlice: 1\n[tall]\n" +
				"### Instruction:\nAlice: 2\n" +
				"### Instruction:\nAlice: 3\n" +
				"### Instruction:\nAlice: 4\n" +
				"### Response:\nBot:",
		},
		{
			mode: chat.ModeMetharme,
			want: "<|user|>Alice: 1<|system|>[tall]<|user|>Alice: 2<|user|>Alice: 3<|user|>Alice: 4<|model|>Bot:",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := Render(fitted, RenderOptions{
				Template:      instruct.ForMode(tt.mode),
				ConstructName: "Bot",
				Persona:       persona,
			})
			if got != tt.want {
				t.Errorf("got\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRender_InsertionGuards(t *testing.T) {
	none := instruct.ForMode(chat.ModeNone)
	persona := &chat.Persona{Description: "tall", Importance: chat.ImportanceHigh}

	two := []chat.Message{user("A", "1"), bot("B", "2")}
	got := Render(two, RenderOptions{Template: none, ConstructName: "B", SystemPrompt: "sp", Persona: persona})
	if got != "A: 1\nB: 2\n" {
		t.Errorf("short transcript should get no insertions, got %q", got)
	}

	three := []chat.Message{user("A", "1"), bot("B", "2"), user("A", "3")}
	got = Render(three, RenderOptions{Template: none, ConstructName: "B", SystemPrompt: "sp", Persona: persona})
	if strings.Contains(got, "[tall]") {
		t.Errorf("persona needs four messages, got %q", got)
	}
	if !strings.Contains(got, "sp\n") {
		t.Errorf("system prompt should be inserted with three messages, got %q", got)
	}

	blank := Render(three, RenderOptions{Template: none, ConstructName: "B", SystemPrompt: "   "})
	if blank != "A: 1\nB: 2\nA: 3\nB:" {
		t.Errorf("blank system prompt should be ignored, got %q", blank)
	}

	low := &chat.Persona{Description: "tall", Importance: chat.ImportanceLow}
	four := append(three, bot("B", "4"))
	if got := Render(four, RenderOptions{Template: none, ConstructName: "B", Persona: low}); strings.Contains(got, "[tall]") {
		t.Errorf("low-importance persona must not be inserted in the transcript, got %q", got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	fitted := []chat.Message{system("s"), user("A", "1"), bot("B", "2"), user("A", "3"), bot("B", "4")}
	persona := &chat.Persona{Description: "tall", Importance: chat.ImportanceHigh}

	for _, mode := range instruct.Modes() {
		opts := RenderOptions{Template: instruct.ForMode(mode), ConstructName: "B", SystemPrompt: "sp", Persona: persona}
		first := Render(fitted, opts)
		second := Render(fitted, opts)
		if first != second {
			t.Errorf("%s: render is not deterministic", mode)
		}
	}
}

func TestRender_MetharmeCue(t *testing.T) {
	metharme := instruct.ForMode(chat.ModeMetharme)
	got := Render([]chat.Message{user("A", "1"), system("note")}, RenderOptions{Template: metharme, ConstructName: "B"})
	if strings.HasSuffix(got, "B:") {
		t.Errorf("Metharme cue only follows a User turn, got %q", got)
	}
}

func TestPreamble(t *testing.T) {
	c := &chat.Character{
		Name:        "Bot",
		Description: "D.",
		Personality: "  ",
		MesExample:  "E.",
		Scenario:    "S.",
	}
	if got := Preamble(c); got != "D.E.S." {
		t.Errorf("Preamble = %q, want %q", got, "D.E.S.")
	}
	if got := Preamble(nil); got != "" {
		t.Errorf("Preamble(nil) = %q", got)
	}
}

func TestLowImportancePersona(t *testing.T) {
	tests := []struct {
		name    string
		persona *chat.Persona
		want    string
	}{
		{"nil", nil, ""},
		{"low", &chat.Persona{Description: " short ", Importance: chat.ImportanceLow}, "[short]"},
		{"high", &chat.Persona{Description: "short", Importance: chat.ImportanceHigh}, ""},
		{"blank", &chat.Persona{Description: " ", Importance: chat.ImportanceLow}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LowImportancePersona(tt.persona); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	text := "{{char}} greets {{user}}. {{user}}? {{char}}!"

	got := Substitute(text, &chat.Persona{Name: "Alice"}, &chat.Character{Name: "Ava"})
	if got != "Ava greets Alice. Alice? Ava!" {
		t.Errorf("got %q", got)
	}

	got = Substitute(text, nil, nil)
	if got != "Bot greets You. You? Bot!" {
		t.Errorf("defaults: got %q", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("placeholders remain: %q", got)
	}
}

func TestStopSequences(t *testing.T) {
	log := []chat.Message{
		user("Alice", "1"),
		bot("Bot", "2"),
		user("Alice", "3"),
		user("alice", "4"),
		bot("Bot", "5"),
	}

	got := StopSequences(log)
	want := []string{"Alice:", "Bot:", "alice:"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := StopSequences(nil); len(got) != 0 {
		t.Errorf("expected no stops, got %v", got)
	}
}

func TestCleanPlatformMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello <:wave:123456>", "hello"},
		{"<a:spin:42> spinning", "spinning"},
		{"hey <@123> and <@!456>", "hey  and"},
		{"ping <@&789> in <#1011>", "ping  in"},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := CleanPlatformMarkup(tt.in); got != tt.want {
			t.Errorf("CleanPlatformMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

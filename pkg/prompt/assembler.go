package prompt

import (
	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/prompt/instruct"
)

// AssembleInput is everything needed to build one prompt.
type AssembleInput struct {
	// Character may be nil; the prompt then has no preamble and the
	// construct speaks as DefaultCharName.
	Character *chat.Character
	Persona   *chat.Persona
	Messages  []chat.Message
	Settings  *chat.Settings
}

// Assembly is an assembled prompt and the numbers that produced it.
type Assembly struct {
	Prompt string

	// Fitted is the run of messages that made it into the prompt
	Fitted []chat.Message

	// Budget is the transcript budget left after the preamble
	Budget int

	PreambleTokens int
	PromptTokens   int
}

// Assembler builds prompts with one token counter.
type Assembler struct {
	counter     Counter
	cleanMarkup bool
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithPlatformMarkupCleanup strips chat-platform markup from messages
// before they are fitted.
func WithPlatformMarkupCleanup(enabled bool) AssemblerOption {
	return func(a *Assembler) {
		a.cleanMarkup = enabled
	}
}

// NewAssembler creates an Assembler that measures text with counter.
func NewAssembler(counter Counter, opts ...AssemblerOption) *Assembler {
	a := &Assembler{counter: counter}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the prompt for in. The transcript budget is the settings
// context length minus the preamble tokens; a negative budget fits nothing.
func (a *Assembler) Assemble(in AssembleInput) Assembly {
	var (
		contextLength int
		mode          chat.InstructMode
	)
	if in.Settings != nil {
		contextLength = in.Settings.ContextLength
		mode = in.Settings.InstructMode
	}
	tmpl := instruct.ForMode(mode)

	preamble := Preamble(in.Character) + LowImportancePersona(in.Persona)
	preambleTokens := a.counter.CountTokens(preamble)
	budget := contextLength - preambleTokens

	messages := in.Messages
	if a.cleanMarkup {
		messages = cleanLog(messages)
	}
	fitted := Fit(messages, budget, tmpl, a.counter)

	systemPrompt := ""
	if in.Character != nil {
		systemPrompt = in.Character.SystemPrompt
	}
	transcript := Render(fitted, RenderOptions{
		Template:      tmpl,
		ConstructName: CharName(in.Character),
		SystemPrompt:  systemPrompt,
		Persona:       in.Persona,
	})

	text := Substitute(preamble+transcript, in.Persona, in.Character)
	return Assembly{
		Prompt:         text,
		Fitted:         fitted,
		Budget:         budget,
		PreambleTokens: preambleTokens,
		PromptTokens:   a.counter.CountTokens(text),
	}
}

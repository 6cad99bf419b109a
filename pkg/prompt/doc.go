// Package prompt assembles a text-completion prompt from a chat log.
//
// Assembly runs in four steps:
//
//  1. Preamble builds the character preamble (plus a low-importance persona).
//  2. Fit selects the newest messages that fit the remaining token budget.
//  3. Render formats the fitted messages with an instruct template, splices
//     in the system prompt and a high-importance persona, and appends the
//     trailing speaker cue.
//  4. Substitute replaces {{user}} and {{char}} in the whole prompt.
//
// Assembler runs all four. StopSequences derives the speaker stop markers
// sent alongside the prompt. Nothing in this package performs I/O, and
// every function is deterministic.
package prompt

// Package chat defines the records the prompt engine works on: chat log
// messages, characters, personas, generation settings, backend connections
// and the inbound completion request.
//
// Records are plain values. The prompt engine never mutates them; a message
// fitted into a render pass is read-only for the duration of that pass.
//
// A CompletionRequest names its character either by id or inline:
//
//	{"character": "char-123", "messages": [...]}
//	{"character": {"name": "Bot", "description": "..."}, "messages": [...]}
package chat

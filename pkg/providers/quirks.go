package providers

// ModelStops lists extra stop tokens for models whose instruct markers
// leak into completions.
var ModelStops = map[string][]string{
	"weaver-alpha": {"###"},
	"mythomax":     {"###"},
	"synthia-70b":  {"USER:", "ASSISTANT:"},
	"goliath-120b": {"USER:", "ASSISTANT:"},
	"mythalion":    {"<|user|>", "<|model|>"},
}

// WithModelStops returns stops followed by the extra stop tokens for model.
// The model name must match exactly. stops is not modified.
func WithModelStops(stops []string, model string) []string {
	extra := ModelStops[model]
	out := make([]string, 0, len(stops)+len(extra))
	out = append(out, stops...)
	return append(out, extra...)
}

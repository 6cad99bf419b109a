package prompt

import (
	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/prompt/instruct"
)

// Counter counts tokens in a text fragment.
type Counter interface {
	CountTokens(text string) int
}

// Fit returns the longest run of newest messages whose token cost fits in
// budget, in their original order. Messages are measured with the
// template's token fragment. Accumulation stops at the first message that
// would overflow; older messages are dropped.
func Fit(log []chat.Message, budget int, tmpl instruct.Template, counter Counter) []chat.Message {
	if budget <= 0 || len(log) == 0 {
		return nil
	}

	total := 0
	start := len(log)
	for i := len(log) - 1; i >= 0; i-- {
		n := counter.CountTokens(tmpl.TokenFragment(log[i]))
		if total+n > budget {
			break
		}
		total += n
		start = i
	}

	if start == len(log) {
		return nil
	}
	fitted := make([]chat.Message, len(log)-start)
	copy(fitted, log[start:])
	return fitted
}

package prompt

import "construct-hq/loom/pkg/chat"

// StopSequences returns "<name>:" for each distinct speaker name in log, in
// first-seen order.
func StopSequences(log []chat.Message) []string {
	seen := make(map[string]struct{}, len(log))
	stops := make([]string, 0, len(log))
	for _, m := range log {
		if _, ok := seen[m.FallbackName]; ok {
			continue
		}
		seen[m.FallbackName] = struct{}{}
		stops = append(stops, m.FallbackName+":")
	}
	return stops
}

package prompt

import (
	"regexp"
	"strings"

	"construct-hq/loom/pkg/chat"
)

var (
	customEmojiPattern = regexp.MustCompile(`<a?:\w+:\d+>`)
	mentionPattern     = regexp.MustCompile(`<@[!&]?\d+>`)
	channelPattern     = regexp.MustCompile(`<#\d+>`)
)

// CleanPlatformMarkup strips chat-platform custom emoji, user and role
// mentions and channel links from text.
func CleanPlatformMarkup(text string) string {
	text = customEmojiPattern.ReplaceAllString(text, "")
	text = mentionPattern.ReplaceAllString(text, "")
	text = channelPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// cleanLog returns a copy of log with markup removed from every swipe.
func cleanLog(log []chat.Message) []chat.Message {
	out := make([]chat.Message, len(log))
	for i, m := range log {
		swipes := make([]string, len(m.Swipes))
		for j, s := range m.Swipes {
			swipes[j] = CleanPlatformMarkup(s)
		}
		m.Swipes = swipes
		out[i] = m
	}
	return out
}

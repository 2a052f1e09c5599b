package service

import (
	"regexp"
)

// mentionPattern matches the platform's inline mention marker, e.g.
// <@U12345ABC>
var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// ExtractMentions parses raw message text into the mentioned user IDs
// and the residual text with all mention markers removed. Repeated
// mentions of the same user are deduplicated, keeping first-appearance
// order. Pure; non-matching input yields no mentions and the unchanged
// text.
func ExtractMentions(text string) (mentions []string, residual string) {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)

	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		userID := match[1]
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		mentions = append(mentions, userID)
	}

	residual = mentionPattern.ReplaceAllString(text, "")
	return mentions, residual
}

package aggregate

import (
	"regexp"
	"strings"
)

// minCleanedLength is the shortest cleaned text still worth classifying.
// Anything at or under this is reaction noise ("ok", "+1", "lol").
const minCleanedLength = 3

var (
	mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)
	linkPattern    = regexp.MustCompile(`<https?://[^>]*>`)
	anglePattern   = regexp.MustCompile(`<[^>]+>`)
	entityPattern  = regexp.MustCompile(`&(amp|lt|gt|nbsp);`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Normalize strips Slack markup from message text: user mentions, raw
// URLs, any remaining angle-bracket tokens, and HTML entity escapes,
// then collapses whitespace. Emoji codes (:name:) pass through verbatim;
// they are signal for the classifier. Normalize is idempotent.
func Normalize(text string) string {
	s := mentionPattern.ReplaceAllString(text, " ")
	s = linkPattern.ReplaceAllString(s, " ")
	s = anglePattern.ReplaceAllString(s, " ")
	s = entityPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

package domain

import (
	"html"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^<>]*>`)

var quoteReplacer = strings.NewReplacer(
	"\u201e", `"`,
	"\u201c", `"`,
	"\u201a", "'",
	"\u2018", "'",
	"\n", "",
	"\r", "",
)

// RawText converts editor markup to the plain text used by LOGIC and UPDATE
// nodes: tags are dropped, entities decoded and line breaks removed.
func RawText(markup string) string {
	text := strings.ReplaceAll(markup, "&nbsp;", " ")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	return quoteReplacer.Replace(text)
}

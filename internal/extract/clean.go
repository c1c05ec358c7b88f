package extract

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var spaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs into single spaces and trims the ends.
func CleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Truncate caps s at max runes, appending an ellipsis when it was cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// skipPhrases marks boilerplate fragments excluded from paragraph collection
// (consent banners, account chrome, newsletter prompts).
var skipPhrases = []string{
	"cookie", "privacy", "terms", "subscribe", "newsletter", "login", "register",
}

// boilerplate reports whether the text is site chrome rather than content.
func boilerplate(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range skipPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// skippedElements are subtrees that never contribute visible text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
	"template": true,
	"svg":      true,
}

// VisibleText streams an HTML document through the tokenizer and returns its
// visible text. The tokenizer recovers from malformed markup instead of
// failing, so this always produces something for the quality gate to judge.
func VisibleText(r io.Reader) string {
	z := html.NewTokenizer(r)

	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or unrecoverable garbage; either way we keep what we have.
			return CleanText(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedElements[string(name)] {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedElements[string(name)] && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			b.WriteString(text)
			b.WriteByte(' ')
		}
	}
}

package extract

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// mainContentSelectors are likely main-content containers, tried in order;
// the first match wins.
var mainContentSelectors = []string{
	"article", "main", ".content", ".post-content",
	".entry-content", ".article-content", "#content",
	".main-content", ".page-content", ".site-content",
}

// compiled once; a bad entry in the list above is a programming error.
var mainContentMatchers = func() []cascadia.Matcher {
	sels := make([]cascadia.Matcher, 0, len(mainContentSelectors))
	for _, s := range mainContentSelectors {
		sels = append(sels, cascadia.MustCompile(s))
	}
	return sels
}()

// NarrowToContent cuts rawHTML down to the outer HTML of its main-content
// container. When no container matches, the input is returned unchanged so
// downstream conversion still has something to work with.
func NarrowToContent(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, sel := range mainContentMatchers {
		node := cascadia.Query(doc, sel)
		if node == nil {
			continue
		}
		var buf bytes.Buffer
		if err := html.Render(&buf, node); err != nil {
			return rawHTML
		}
		// Tiny containers are navigation shells, not content.
		if buf.Len() < 200 {
			continue
		}
		return buf.String()
	}
	return rawHTML
}

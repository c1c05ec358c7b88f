package fetch

import (
	"regexp"
	"strings"
)

// emptyRoots are SPA mount points that are empty until scripts run.
var emptyRoots = []string{
	`<div id="root"></div>`,
	`<div id="app"></div>`,
	`<div id="__next"></div>`,
}

var noscriptJSRe = regexp.MustCompile(`<noscript[^>]*>[^<]*(enable|activate|turn on|requires?)\s+javascript`)

// needsRender reports whether the page is likely a script-driven shell whose
// content only exists after JavaScript runs. visibleChars is the length of
// the text already extracted from the raw HTML.
func needsRender(rawHTML string, visibleChars int) bool {
	if visibleChars < 200 {
		return true
	}

	lower := strings.ToLower(rawHTML)
	for _, root := range emptyRoots {
		if strings.Contains(lower, root) {
			return true
		}
	}
	if noscriptJSRe.MatchString(lower) {
		return true
	}
	if strings.Count(lower, "<script") > 10 && visibleChars < 500 {
		return true
	}
	return false
}

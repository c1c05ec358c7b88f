package extract

import (
	"strings"

	"github.com/trawlhq/trawl/internal/model"
)

// kindRules map URL substrings to page kinds, matched against the full
// lowercase URL. First match wins; anything unmatched is generic.
var kindRules = []struct {
	match string
	kind  model.PageKind
}{
	{"amazon.", model.KindProduct},
	{"reddit.com", model.KindForum},
	{"stackoverflow.com", model.KindForum},
	{"github.com", model.KindForum},
	{"wikipedia.org", model.KindEncyclopedia},
	{"britannica.com", model.KindEncyclopedia},
	{"youtube.com", model.KindVideo},
	{"vimeo.com", model.KindVideo},
}

// DetectKind classifies a page URL so the matching payload extractor runs.
func DetectKind(pageURL string) model.PageKind {
	lower := strings.ToLower(pageURL)
	for _, rule := range kindRules {
		if strings.Contains(lower, rule.match) {
			return rule.kind
		}
	}
	return model.KindGeneric
}

package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trawlhq/trawl/internal/model"
)

// sectionSkips name encyclopedia sections that carry no substance.
var sectionSkips = []string{"reference", "external", "see also", "further reading", "notes"}

// Encyclopedia extracts article summary, section outline, and infobox facts
// from Wikipedia-style pages.
func Encyclopedia(doc *goquery.Document) *model.EncyclopediaPayload {
	p := &model.EncyclopediaPayload{}

	// Summary: first substantial paragraph. Wikipedia precedes the lede with
	// empty coordinate/hatnote paragraphs, so skip the short ones.
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := CleanText(s.Text())
		if len(text) < 40 {
			return true
		}
		p.Summary = Truncate(text, 600)
		return false
	})

	doc.Find("h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := CleanText(s.Text())
		if title == "" || skippedSection(title) {
			return true
		}
		p.Sections = append(p.Sections, title)
		return len(p.Sections) < 3
	})

	p.Facts = infoboxFacts(doc)
	return p
}

func skippedSection(title string) bool {
	lower := strings.ToLower(title)
	for _, skip := range sectionSkips {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}

// infoboxFacts reads the sidebar infobox's label/value rows.
func infoboxFacts(doc *goquery.Document) map[string]string {
	facts := make(map[string]string)
	doc.Find(".infobox tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		label := CleanText(row.Find("th").First().Text())
		value := CleanText(row.Find("td").First().Text())
		if label != "" && value != "" {
			facts[label] = Truncate(value, 200)
		}
		return len(facts) < 8
	})
	if len(facts) == 0 {
		return nil
	}
	return facts
}

package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trawlhq/trawl/internal/model"
)

const (
	maxParagraphs = 10
	maxHeadings   = 6
	paragraphMin  = 20
	// Below this much prose, tables get a chance to fill the payload.
	proseFloor = 200
)

// chromeSelector matches navigation shells whose text is never content.
const chromeSelector = "nav, footer, aside, .nav, .footer, .sidebar, .menu, .header, .advertisement, .ads"

// detailRules pull spec-like figures (price, mileage, power) out of prose.
var detailRules = []struct {
	label string
	re    *regexp.Regexp
}{
	{"price", regexp.MustCompile(`(?i)(?:price|cost|₹|rs\.?|usd|\$)\s*:?\s*([0-9,]+(?:\.[0-9]+)?)`)},
	{"mileage", regexp.MustCompile(`(?i)(?:mileage|efficiency|mpg|kmpl)\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)},
	{"power", regexp.MustCompile(`(?i)(?:power|hp|bhp|kw)\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)},
	{"engine", regexp.MustCompile(`(?i)(?:engine|displacement|cc)\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)},
	{"weight", regexp.MustCompile(`(?i)(?:weight|mass|kg|pounds)\s*:?\s*([0-9]+(?:\.[0-9]+)?)`)},
}

// Generic extracts the kind-agnostic payload: meta description, heading
// outline, main-content paragraphs, highlighted details, and a table
// fallback for prose-poor pages.
func Generic(doc *goquery.Document) *model.GenericPayload {
	p := &model.GenericPayload{}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		p.Description = CleanText(desc)
	}

	p.Paragraphs = mainParagraphs(doc)
	p.Headings = pageHeadings(doc)
	p.Details = proseDetails(strings.Join(p.Paragraphs, " "))

	if totalLen(p.Paragraphs) < proseFloor {
		p.Table = tableFallback(doc)
	}
	return p
}

// mainParagraphs prefers paragraphs inside a recognized content container and
// falls back to a chrome-filtered sweep of the whole page.
func mainParagraphs(doc *goquery.Document) []string {
	for _, sel := range mainContentSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if paras := collectParagraphs(container.Find("p, li")); len(paras) > 0 {
			return paras
		}
		// A container without <p> still counts if its text is substantial.
		if text := CleanText(container.Text()); len(text) > 100 {
			return []string{Truncate(text, 1500)}
		}
	}

	var paras []string
	doc.Find("p, li, div.description, div.summary, .info, .details").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if s.Closest(chromeSelector).Length() > 0 {
				return true
			}
			text := CleanText(s.Text())
			if len(text) < paragraphMin || boilerplate(text) {
				return true
			}
			paras = append(paras, Truncate(text, 300))
			return len(paras) < maxParagraphs
		})
	return paras
}

func collectParagraphs(sel *goquery.Selection) []string {
	var paras []string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := CleanText(s.Text())
		if len(text) < paragraphMin || boilerplate(text) {
			return true
		}
		paras = append(paras, Truncate(text, 300))
		return len(paras) < maxParagraphs
	})
	return paras
}

func pageHeadings(doc *goquery.Document) []string {
	var out []string
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := CleanText(s.Text()); len(text) > 3 {
			out = append(out, text)
		}
		return len(out) < maxHeadings
	})
	return out
}

func proseDetails(prose string) []string {
	var out []string
	for _, rule := range detailRules {
		if m := rule.re.FindStringSubmatch(prose); m != nil {
			out = append(out, rule.label+": "+m[1])
		}
	}
	return out
}

// tableFallback mines up to two tables for key/value rows. Spec sheets and
// price lists often carry their substance here rather than in prose.
func tableFallback(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	doc.Find("table").EachWithBreak(func(ti int, table *goquery.Selection) bool {
		table.Find("tr").EachWithBreak(func(ri int, row *goquery.Selection) bool {
			if ri >= 5 {
				return false
			}
			cells := row.Find("td, th")
			if cells.Length() < 2 {
				return true
			}
			key := CleanText(cells.First().Text())
			var vals []string
			cells.Slice(1, cells.Length()).Each(func(_ int, c *goquery.Selection) {
				if v := CleanText(c.Text()); v != "" {
					vals = append(vals, v)
				}
			})
			if key != "" && len(vals) > 0 {
				out[key] = strings.Join(vals, " | ")
			}
			return len(out) < 10
		})
		return ti < 1 && len(out) < 10
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func totalLen(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}

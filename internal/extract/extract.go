// Package extract turns fetched HTML into structured page content: a title,
// cleaned prose, Markdown, and a payload variant chosen by the page's domain.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/model"
)

// Content is the structured output of a page extraction.
type Content struct {
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Markdown string        `json:"markdown,omitempty"`
	Payload  model.Payload `json:"payload"`
}

// FromHTML runs the direct extraction over raw page HTML. The parser
// tolerates malformed markup, so sparse output is possible but errors are
// not expected outside of truly unreadable input.
func FromHTML(rawHTML, pageURL string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}

	c := &Content{
		Title:   DocumentTitle(doc),
		Text:    mainText(doc, rawHTML),
		Payload: BuildPayload(doc, DetectKind(pageURL)),
	}

	md, err := ToMarkdown(NarrowToContent(rawHTML), model.NormalizeDomain(pageURL))
	if err != nil {
		zap.L().Debug("markdown conversion failed",
			zap.String("url", pageURL), zap.Error(err))
	} else {
		c.Markdown = md
	}
	return c, nil
}

// BuildPayload dispatches to the kind-specific extractor.
func BuildPayload(doc *goquery.Document, kind model.PageKind) model.Payload {
	switch kind {
	case model.KindProduct:
		return model.Payload{Kind: kind, Product: Product(doc)}
	case model.KindEncyclopedia:
		return model.Payload{Kind: kind, Encyclopedia: Encyclopedia(doc)}
	case model.KindForum:
		return model.Payload{Kind: kind, Forum: Forum(doc)}
	case model.KindVideo:
		return model.Payload{Kind: kind, Video: Video(doc)}
	default:
		return model.Payload{Kind: model.KindGeneric, Generic: Generic(doc)}
	}
}

// DocumentTitle returns the page title: <title>, else og:title, else the
// first h1.
func DocumentTitle(doc *goquery.Document) string {
	if t := CleanText(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t = CleanText(t); t != "" {
			return t
		}
	}
	return CleanText(doc.Find("h1").First().Text())
}

// mainText produces the prose the fetch quality gate judges:
// container-scoped when a content container exists, whole-page visible text
// otherwise.
func mainText(doc *goquery.Document, rawHTML string) string {
	for _, sel := range mainContentSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if text := CleanText(container.Text()); len(text) > 100 {
			return text
		}
	}
	return VisibleText(strings.NewReader(rawHTML))
}

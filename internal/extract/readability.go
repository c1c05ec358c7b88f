package extract

import (
	nurl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/model"
)

// minArticleChars is the floor below which a readability pass is considered
// to have missed the main content.
const minArticleChars = 50

// ReadableArticle runs the Mozilla readability algorithm over the page and
// rebuilds Content from the isolated article. Returns false when the
// algorithm fails or finds too little, so the caller can escalate to a
// heavier tier instead of keeping junk.
func ReadableArticle(rawHTML, pageURL string) (*Content, bool) {
	parsed, err := nurl.Parse(pageURL)
	if err != nil {
		zap.L().Debug("readability skipped: bad url",
			zap.String("url", pageURL), zap.Error(err))
		return nil, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		zap.L().Debug("readability failed",
			zap.String("url", pageURL), zap.Error(err))
		return nil, false
	}

	text := CleanText(article.TextContent)
	if len(text) < minArticleChars {
		zap.L().Debug("readability content too short",
			zap.String("url", pageURL), zap.Int("chars", len(text)))
		return nil, false
	}

	c := &Content{
		Title: CleanText(article.Title),
		Text:  text,
	}

	// Payload selectors key on ids and classes that readability strips, so
	// the payload is built from the original markup.
	if doc, derr := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); derr == nil {
		c.Payload = BuildPayload(doc, DetectKind(pageURL))
		if c.Title == "" {
			c.Title = DocumentTitle(doc)
		}
	} else {
		c.Payload = model.Payload{Kind: model.KindGeneric, Generic: &model.GenericPayload{}}
	}

	if md, merr := ToMarkdown(article.Content, model.NormalizeDomain(pageURL)); merr == nil {
		c.Markdown = md
	}
	return c, true
}

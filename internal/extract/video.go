package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/trawlhq/trawl/internal/model"
)

// Video extracts video metadata. Video sites render almost everything with
// scripts, so this leans on meta tags, which survive in the static HTML.
func Video(doc *goquery.Document) *model.VideoPayload {
	p := &model.VideoPayload{}

	if title, ok := doc.Find(`meta[name="title"]`).Attr("content"); ok {
		p.VideoTitle = CleanText(title)
	}
	if p.VideoTitle == "" {
		if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			p.VideoTitle = CleanText(title)
		}
	}
	if p.VideoTitle == "" {
		p.VideoTitle = CleanText(doc.Find("h1").First().Text())
	}

	if channel, ok := doc.Find(`span[itemprop="author"] link[itemprop="name"]`).Attr("content"); ok {
		p.Channel = CleanText(channel)
	}
	if p.Channel == "" {
		p.Channel = CleanText(doc.Find(".owner-name a").First().Text())
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		p.Description = Truncate(CleanText(desc), 300)
	}
	if p.Description == "" {
		p.Description = Truncate(CleanText(doc.Find(".description").First().Text()), 300)
	}

	if views, ok := doc.Find(`meta[itemprop="interactionCount"]`).Attr("content"); ok {
		p.Views = CleanText(views)
	}

	return p
}

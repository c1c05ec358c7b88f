package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trawlhq/trawl/internal/model"
)

// priceSelectors are tried in order; first non-empty match wins.
var priceSelectors = []string{
	".a-price .a-offscreen",
	".a-price-whole",
	"#priceblock_dealprice",
	"#priceblock_ourprice",
}

// importantSpecs filter the spec table down to fields worth keeping.
var importantSpecs = []string{
	"Brand", "Model", "Color", "Size", "Weight", "Material", "Dimensions",
}

var specTableIDs = []string{
	"#productDetails_techSpec_section_1",
	"#productDetails_detailBullets_sections1",
}

// Product extracts product-page fields using Amazon's markup conventions.
func Product(doc *goquery.Document) *model.ProductPayload {
	p := &model.ProductPayload{}

	p.Name = CleanText(doc.Find("#productTitle").First().Text())

	for _, sel := range priceSelectors {
		if price := CleanText(doc.Find(sel).First().Text()); price != "" {
			p.Price = price
			break
		}
	}

	p.Rating = CleanText(doc.Find(`[data-hook="average-star-rating"] .a-icon-alt`).First().Text())
	if p.Rating == "" {
		p.Rating = CleanText(doc.Find("#acrPopover .a-icon-alt").First().Text())
	}

	p.Availability = CleanText(doc.Find("#availability span").First().Text())

	doc.Find("#feature-bullets ul li span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := CleanText(s.Text()); text != "" {
			p.Features = append(p.Features, text)
		}
		return len(p.Features) < 5
	})

	p.Specs = specTable(doc)
	return p
}

// specTable reads the tech-spec tables, keeping only the important rows.
func specTable(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)
	for _, tableID := range specTableIDs {
		doc.Find(tableID + " tr").Each(func(_ int, row *goquery.Selection) {
			name := CleanText(row.Find("th").First().Text())
			value := CleanText(row.Find("td").First().Text())
			if name == "" || value == "" {
				return
			}
			for _, important := range importantSpecs {
				if strings.Contains(strings.ToLower(name), strings.ToLower(important)) {
					specs[name] = value
					return
				}
			}
		})
	}
	if len(specs) == 0 {
		return nil
	}
	return specs
}

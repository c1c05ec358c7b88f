package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/trawlhq/trawl/internal/model"
)

// questionSelectors cover Stack Overflow and old/new Reddit markup; tried in
// order, first match wins.
var questionSelectors = []string{
	".question .js-post-body",
	".post-text",
	`[data-testid="post-content"] div`,
	".usertext-body",
}

var answerSelectors = []string{
	".answer .js-post-body",
	".answer .post-text",
	".comment-body",
	".reply .usertext-body",
}

// Forum extracts the question and top answers from discussion pages.
func Forum(doc *goquery.Document) *model.ForumPayload {
	p := &model.ForumPayload{}

	for _, sel := range questionSelectors {
		if text := CleanText(doc.Find(sel).First().Text()); text != "" {
			p.Question = Truncate(text, 800)
			break
		}
	}

	for _, sel := range answerSelectors {
		answers := doc.Find(sel)
		if answers.Length() == 0 {
			continue
		}
		answers.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := CleanText(s.Text()); text != "" {
				p.TopAnswers = append(p.TopAnswers, Truncate(text, 400))
			}
			return len(p.TopAnswers) < 2
		})
		break
	}

	return p
}

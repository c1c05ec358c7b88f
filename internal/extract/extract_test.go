package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trawlhq/trawl/internal/model"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const amazonHTML = `<html><head><title>SoundCore Headphones : Amazon.com</title></head><body>
<span id="productTitle"> SoundCore Wireless Headphones, 40h Playtime </span>
<div class="a-price"><span class="a-offscreen">$49.99</span></div>
<span data-hook="average-star-rating"><span class="a-icon-alt">4.5 out of 5 stars</span></span>
<div id="availability"><span> In Stock </span></div>
<div id="feature-bullets"><ul>
  <li><span>Bullet one feature text</span></li>
  <li><span>Bullet two feature text</span></li>
  <li><span>Bullet three feature text</span></li>
  <li><span>Bullet four feature text</span></li>
  <li><span>Bullet five feature text</span></li>
  <li><span>Bullet six feature text</span></li>
</ul></div>
<table id="productDetails_techSpec_section_1">
  <tr><th>Brand Name</th><td>SoundCore</td></tr>
  <tr><th>Item Weight</th><td>250 grams</td></tr>
  <tr><th>Batteries Required</th><td>No</td></tr>
</table>
</body></html>`

func TestProductExtraction(t *testing.T) {
	t.Parallel()

	p := Product(parseDoc(t, amazonHTML))

	assert.Equal(t, "SoundCore Wireless Headphones, 40h Playtime", p.Name)
	assert.Equal(t, "$49.99", p.Price)
	assert.Equal(t, "4.5 out of 5 stars", p.Rating)
	assert.Equal(t, "In Stock", p.Availability)
	assert.Len(t, p.Features, 5, "features capped at five")
	assert.Equal(t, "Bullet one feature text", p.Features[0])

	require.NotNil(t, p.Specs)
	assert.Equal(t, "SoundCore", p.Specs["Brand Name"])
	assert.Equal(t, "250 grams", p.Specs["Item Weight"])
	assert.NotContains(t, p.Specs, "Batteries Required", "unimportant specs dropped")
}

const wikiHTML = `<html><head><title>Gopher - Wikipedia</title></head><body>
<h1 id="firstHeading">Gopher</h1>
<table class="infobox">
  <tr><th>Kingdom</th><td>Animalia</td></tr>
  <tr><th>Family</th><td>Geomyidae</td></tr>
</table>
<p><span></span></p>
<p>Gophers are burrowing rodents of the family Geomyidae, endemic to North and Central America. They are commonly known for their extensive tunneling activities and their ability to destroy farms and gardens.</p>
<h2>Description</h2>
<p>More text about description.</p>
<h2>References</h2>
<h2>Habitat</h2>
<h2>External links</h2>
<h2>Diet</h2>
</body></html>`

func TestEncyclopediaExtraction(t *testing.T) {
	t.Parallel()

	p := Encyclopedia(parseDoc(t, wikiHTML))

	assert.True(t, strings.HasPrefix(p.Summary, "Gophers are burrowing rodents"))
	assert.Equal(t, []string{"Description", "Habitat", "Diet"}, p.Sections)

	require.NotNil(t, p.Facts)
	assert.Equal(t, "Animalia", p.Facts["Kingdom"])
	assert.Equal(t, "Geomyidae", p.Facts["Family"])
}

const forumHTML = `<html><body>
<div class="question"><div class="js-post-body">
How do I cancel a goroutine that is blocked on a channel receive? I have tried closing the channel but I am not sure that is idiomatic.
</div></div>
<div class="answer"><div class="js-post-body">Use a context and select on ctx.Done() alongside the receive.</div></div>
<div class="answer"><div class="js-post-body">Closing the channel works when the sender owns it; otherwise prefer context cancellation.</div></div>
<div class="answer"><div class="js-post-body">A third answer that should not be included.</div></div>
</body></html>`

func TestForumExtraction(t *testing.T) {
	t.Parallel()

	p := Forum(parseDoc(t, forumHTML))

	assert.Contains(t, p.Question, "cancel a goroutine")
	require.Len(t, p.TopAnswers, 2, "answers capped at two")
	assert.Contains(t, p.TopAnswers[0], "context")
	assert.NotContains(t, strings.Join(p.TopAnswers, " "), "third answer")
}

const videoHTML = `<html><head>
<meta name="title" content="Learning Go in 10 Minutes">
<meta name="description" content="A quick tour of the Go programming language covering syntax, tooling and concurrency.">
<meta itemprop="interactionCount" content="1204593">
</head><body>
<span itemprop="author"><link itemprop="name" content="GopherAcademy"></span>
<h1>Fallback heading</h1>
</body></html>`

func TestVideoExtraction(t *testing.T) {
	t.Parallel()

	p := Video(parseDoc(t, videoHTML))

	assert.Equal(t, "Learning Go in 10 Minutes", p.VideoTitle)
	assert.Equal(t, "GopherAcademy", p.Channel)
	assert.Contains(t, p.Description, "quick tour")
	assert.Equal(t, "1204593", p.Views)
}

const genericHTML = `<html><head><title>City Guide</title>
<meta name="description" content="Everything to know about the city.">
</head><body>
<nav><ul><li>Home</li><li>About</li></ul></nav>
<h1>City Guide</h1>
<h2>Getting Around</h2>
<h2>Where to Stay</h2>
<article>
<p>The city has an extensive metro network that runs from five in the morning until midnight every day.</p>
<p>Accommodation price: 4,500 per night is typical in the old town district during the high season months.</p>
<p>We use cookies on this website.</p>
<p>short</p>
</article>
<footer><p>Copyright notice text that is long enough to count.</p></footer>
</body></html>`

func TestGenericExtraction(t *testing.T) {
	t.Parallel()

	p := Generic(parseDoc(t, genericHTML))

	assert.Equal(t, "Everything to know about the city.", p.Description)

	require.NotEmpty(t, p.Paragraphs)
	joined := strings.Join(p.Paragraphs, " ")
	assert.Contains(t, joined, "metro network")
	assert.NotContains(t, joined, "cookies", "boilerplate filtered")
	assert.NotContains(t, joined, "short", "tiny fragments filtered")

	assert.Contains(t, p.Headings, "City Guide")
	assert.Contains(t, p.Headings, "Getting Around")

	assert.Contains(t, p.Details, "price: 4,500")
}

const sparseTableHTML = `<html><body>
<p>Spec sheet below.</p>
<table>
  <tr><th>Engine</th><td>1497 cc</td></tr>
  <tr><th>Power</th><td>103 hp</td></tr>
  <tr><td>single cell row</td></tr>
</table>
</body></html>`

func TestGenericTableFallback(t *testing.T) {
	t.Parallel()

	p := Generic(parseDoc(t, sparseTableHTML))

	require.NotNil(t, p.Table, "sparse prose should trigger the table fallback")
	assert.Equal(t, "1497 cc", p.Table["Engine"])
	assert.Equal(t, "103 hp", p.Table["Power"])
}

func TestBuildPayloadSelectsVariant(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, genericHTML)

	product := BuildPayload(parseDoc(t, amazonHTML), model.KindProduct)
	assert.Equal(t, model.KindProduct, product.Kind)
	assert.NotNil(t, product.Product)
	assert.Nil(t, product.Generic)

	generic := BuildPayload(doc, model.KindGeneric)
	assert.Equal(t, model.KindGeneric, generic.Kind)
	assert.NotNil(t, generic.Generic)
	assert.Nil(t, generic.Product)
}

func TestFromHTML(t *testing.T) {
	t.Parallel()

	c, err := FromHTML(genericHTML, "https://travel.example.com/city-guide")
	require.NoError(t, err)

	assert.Equal(t, "City Guide", c.Title)
	assert.Contains(t, c.Text, "metro network")
	assert.Equal(t, model.KindGeneric, c.Payload.Kind)
	assert.Contains(t, c.Markdown, "metro network")
	assert.NotContains(t, c.Markdown, "Copyright", "markdown narrowed to the content container")
}

func TestFromHTMLMalformedMarkup(t *testing.T) {
	t.Parallel()

	malformed := `<html><body><div class=broken><p>Recoverable paragraph content that keeps going for a while so it counts as prose.<p>Another line <b>unclosed`

	c, err := FromHTML(malformed, "https://example.com/broken")
	require.NoError(t, err, "malformed markup degrades, never errors")
	assert.Contains(t, c.Text, "Recoverable paragraph content")
	assert.Equal(t, model.KindGeneric, c.Payload.Kind)
}

func TestDocumentTitleFallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "From Title Tag",
		DocumentTitle(parseDoc(t, `<html><head><title>From Title Tag</title></head><body><h1>H1</h1></body></html>`)))

	assert.Equal(t, "From OG",
		DocumentTitle(parseDoc(t, `<html><head><meta property="og:title" content="From OG"></head><body><h1>H1</h1></body></html>`)))

	assert.Equal(t, "From H1",
		DocumentTitle(parseDoc(t, `<html><body><h1>From H1</h1></body></html>`)))
}

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "collapses runs", in: "a  b\t\tc\n\nd", want: "a b c d"},
		{name: "trims ends", in: "  hello world \n", want: "hello world"},
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \n\t ", want: ""},
		{name: "already clean", in: "hello", want: "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hello", Truncate("hello", 0), "non-positive max disables truncation")
	assert.Equal(t, "héllo wörl...", Truncate("héllo wörld today", 11), "counts runes not bytes")
}

func TestBoilerplate(t *testing.T) {
	t.Parallel()

	assert.True(t, boilerplate("We use cookies to improve your experience"))
	assert.True(t, boilerplate("Subscribe to our Newsletter"))
	assert.False(t, boilerplate("The quick brown fox"))
}

func TestVisibleTextSkipsScriptsAndStyles(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>t</title><style>body{color:red}</style></head>
	<body><script>var x = "hidden";</script><p>Visible paragraph.</p>
	<noscript>fallback</noscript><div>More text</div></body></html>`

	got := VisibleText(strings.NewReader(html))
	assert.Contains(t, got, "Visible paragraph.")
	assert.Contains(t, got, "More text")
	assert.NotContains(t, got, "hidden")
	assert.NotContains(t, got, "color:red")
	assert.NotContains(t, got, "fallback")
}

func TestVisibleTextToleratesMalformedMarkup(t *testing.T) {
	t.Parallel()

	html := `<div class=unquoted><p>First part <b>bold never closed
	<p>Second part</i> stray close <span>third`

	got := VisibleText(strings.NewReader(html))
	assert.Contains(t, got, "First part")
	assert.Contains(t, got, "Second part")
	assert.Contains(t, got, "third")
}

func TestNarrowToContent(t *testing.T) {
	t.Parallel()

	padding := strings.Repeat("Real article content about the subject matter here. ", 6)
	page := `<html><body><nav>Home | About</nav><article><h1>Title</h1><p>` +
		padding + `</p></article><footer>Copyright</footer></body></html>`

	narrowed := NarrowToContent(page)
	assert.Contains(t, narrowed, "Real article content")
	assert.NotContains(t, narrowed, "Copyright")
	assert.NotContains(t, narrowed, "Home | About")
}

func TestNarrowToContentFallsBackWhenNoContainer(t *testing.T) {
	t.Parallel()

	page := `<html><body><p>Plain page without containers.</p></body></html>`
	assert.Equal(t, page, NarrowToContent(page))
}

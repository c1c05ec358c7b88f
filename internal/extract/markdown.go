package extract

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/rotisserie/eris"
)

// mdConverter is goroutine-safe and shared across all conversions.
//
// base strips script/style/head noise; commonmark renders standard Markdown;
// the table plugin keeps tabular data readable with minimal cell padding.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(
			table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
		),
	),
)

// ToMarkdown converts an HTML fragment to Markdown. domain resolves relative
// links in <a> and <img> tags so the output is self-contained.
func ToMarkdown(rawHTML, domain string) (string, error) {
	md, err := mdConverter.ConvertString(rawHTML, converter.WithDomain(domain))
	if err != nil {
		return "", eris.Wrap(err, "extract: markdown conversion")
	}
	return md, nil
}

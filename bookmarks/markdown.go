package bookmarks

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/use-agent/bookmarksort/models"
)

// mdConverter is goroutine-safe and reused across exports.
var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
	),
)

// WriteMarkdown writes the grouped bookmarks as a Markdown document: one
// second-level heading per category and a link list under each.
func WriteMarkdown(w io.Writer, bookmarks []models.Bookmark, title string) error {
	if title == "" {
		title = DefaultTitle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", textPolicy.Sanitize(title))
	for _, g := range GroupByCategory(bookmarks) {
		fmt.Fprintf(&b, "<h2>%s</h2>\n<ul>\n", textPolicy.Sanitize(g.Category))
		for _, bm := range g.Bookmarks {
			label := textPolicy.Sanitize(bm.Title)
			if strings.TrimSpace(label) == "" {
				label = html.EscapeString(bm.URL)
			}
			fmt.Fprintf(&b, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(bm.URL), label)
		}
		b.WriteString("</ul>\n")
	}

	md, err := mdConverter.ConvertString(b.String())
	if err != nil {
		return fmt.Errorf("bookmarks: convert markdown: %w", err)
	}
	if _, err := io.WriteString(w, md+"\n"); err != nil {
		return fmt.Errorf("bookmarks: write markdown: %w", err)
	}
	return nil
}

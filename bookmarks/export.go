package bookmarks

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/microcosm-cc/bluemonday"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/models"
)

// DefaultTitle heads exported documents.
const DefaultTitle = "Classified Bookmarks"

// Group is one category section of an export.
type Group struct {
	Category  string
	Bookmarks []models.Bookmark
}

// GroupByCategory buckets bookmarks by label. Groups appear in order of the
// first bookmark carrying each label; bookmarks keep input order. An empty
// label is grouped as uncategorized.
func GroupByCategory(bookmarks []models.Bookmark) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, b := range bookmarks {
		label := b.Category
		if label == "" {
			label = category.Uncategorized
		}
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Category: label})
		}
		groups[i].Bookmarks = append(groups[i].Bookmarks, b)
	}
	return groups
}

// textPolicy strips every tag, leaving escaped text safe for element content.
var textPolicy = bluemonday.StrictPolicy()

// escapeText escapes s before sanitizing so angle brackets in labels and
// titles survive as text.
func escapeText(s string) string {
	return textPolicy.Sanitize(html.EscapeString(s))
}

// WriteHTML writes a Netscape bookmark file with one folder per category.
// Browsers re-import it as a folder tree.
func WriteHTML(w io.Writer, bookmarks []models.Bookmark, title string) error {
	if title == "" {
		title = DefaultTitle
	}
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	fmt.Fprint(bw, "<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	fmt.Fprintf(bw, "<TITLE>%s</TITLE>\n", escapeText(title))
	fmt.Fprintf(bw, "<H1>%s</H1>\n", escapeText(title))
	fmt.Fprint(bw, "<DL><p>\n")

	for _, g := range GroupByCategory(bookmarks) {
		fmt.Fprintf(bw, "    <DT><H3>%s</H3>\n", escapeText(g.Category))
		fmt.Fprint(bw, "    <DL><p>\n")
		for _, b := range g.Bookmarks {
			fmt.Fprintf(bw, "        <DT><A HREF=\"%s\" ADD_DATE=\"%s\">%s</A>\n",
				html.EscapeString(b.URL), html.EscapeString(b.AddDate), escapeText(b.Title))
		}
		fmt.Fprint(bw, "    </DL><p>\n")
	}

	fmt.Fprint(bw, "</DL><p>\n")
	return bw.Flush()
}

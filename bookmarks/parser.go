// Package bookmarks reads and writes the Netscape bookmark file format that
// every major browser exports.
package bookmarks

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/use-agent/bookmarksort/charsets"
	"github.com/use-agent/bookmarksort/models"
)

var firstList = cascadia.MustCompile("dl")

// Decode turns the raw bytes of an uploaded export into text. It returns the
// name of the encoding used.
func Decode(raw []byte) (string, string) {
	return charsets.DecodeDocument(raw)
}

// ParseBytes decodes raw and parses it.
func ParseBytes(raw []byte) ([]models.Bookmark, error) {
	text, _ := Decode(raw)
	return Parse(strings.NewReader(text))
}

// Parse walks the first <dl> of a bookmark export in document order and
// returns one record per <a>. A <h3> names the folder for the <dl> that
// follows it among its siblings. Documents without a <dl> yield an empty,
// non-nil slice.
func Parse(r io.Reader) ([]models.Bookmark, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: parse html: %w", err)
	}

	p := &parser{out: []models.Bookmark{}}
	if root := cascadia.Query(doc, firstList); root != nil {
		p.walk(root, nil)
	}
	return p.out, nil
}

type parser struct {
	out []models.Bookmark
}

// walk visits the element children of n. A <dl> claimed by a preceding <h3>
// is visited once, under the folder, and skipped when the loop reaches it.
func (p *parser) walk(n *html.Node, folders []string) {
	claimed := make(map[*html.Node]bool)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || claimed[c] {
			continue
		}
		switch c.DataAtom {
		case atom.A:
			p.out = append(p.out, models.Bookmark{
				Title:   leadingText(c),
				URL:     attr(c, "href"),
				AddDate: attr(c, "add_date"),
				Folder:  last(folders),
				Folders: append([]string{}, folders...),
			})
		case atom.H3:
			if dl := nextList(c); dl != nil {
				claimed[dl] = true
				p.walk(dl, appendPath(folders, leadingText(c)))
			}
		default:
			p.walk(c, folders)
		}
	}
}

// nextList returns the first <dl> among the following siblings of n.
func nextList(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.DataAtom == atom.Dl {
			return s
		}
	}
	return nil
}

// leadingText is the text of n before its first child element.
func leadingText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil && c.Type == html.TextNode; c = c.NextSibling {
		b.WriteString(c.Data)
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func last(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func appendPath(path []string, folder string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, folder)
}

package crawl

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/bookmarksort/charsets"
)

// TitleResult is what a fetched document says about itself.
type TitleResult struct {
	// Found is false when the document has no <title> element at all.
	Found bool

	// Title is the trimmed text of the first <title>; "" when the element
	// exists but is blank.
	Title string

	// Encoding is the charset the body was decoded with.
	Encoding string
}

// ExtractTitle decodes body using the response Content-Type, BOM, <meta>
// declaration or content sniffing, then returns the text of the first
// <title> element anywhere in the document.
func ExtractTitle(body []byte, contentType string) (*TitleResult, error) {
	enc, name := charsets.ForResponse(body, contentType)
	text := charsets.Decode(body, enc)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("crawl: parse document: %w", err)
	}

	res := &TitleResult{Encoding: name}
	sel := doc.Find("title").First()
	if sel.Length() == 0 {
		return res, nil
	}
	res.Found = true
	res.Title = strings.TrimSpace(sel.Text())
	return res, nil
}

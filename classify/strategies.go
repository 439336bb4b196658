package classify

import (
	"context"
	"regexp"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/models"
)

// otherPrefix labels records the keyword table missed but TF-IDF could place.
const otherPrefix = "other-"

// tfidfFallbackMin is the number of unmatched records above which the
// keyword strategy falls back to TF-IDF. Below it the corpus is too small
// for term weights to mean anything.
const tfidfFallbackMin = 2

func document(b models.Bookmark) string {
	return b.Title + " " + b.URL
}

// keywordStrategy matches stored titles and URLs against the table, then
// labels leftovers by their dominant TF-IDF term.
type keywordStrategy struct{}

func (keywordStrategy) sealed()        {}
func (keywordStrategy) Method() Method { return MethodKeyword }

func (keywordStrategy) Classify(ctx context.Context, bookmarks []models.Bookmark, table category.Table) (*Outcome, error) {
	out := models.CloneBookmarks(bookmarks)
	matcher := category.NewMatcher(table)

	var unmatched []int
	for i := range out {
		out[i].Category = matcher.Resolve(out[i].Category, out[i].Title, out[i].URL)
		if out[i].Category == category.Uncategorized {
			unmatched = append(unmatched, i)
		}
	}

	if len(unmatched) > tfidfFallbackMin {
		docs := make([]string, len(unmatched))
		for k, i := range unmatched {
			docs[k] = document(out[i])
		}
		for k, term := range dominantTerms(docs) {
			if term != "" {
				out[unmatched[k]].Category = otherPrefix + term
			}
		}
	}
	return &Outcome{Bookmarks: out}, nil
}

// tfidfStrategy labels every record with its dominant term in the batch.
type tfidfStrategy struct{}

func (tfidfStrategy) sealed()        {}
func (tfidfStrategy) Method() Method { return MethodTFIDF }

func (tfidfStrategy) Classify(ctx context.Context, bookmarks []models.Bookmark, table category.Table) (*Outcome, error) {
	out := models.CloneBookmarks(bookmarks)
	docs := make([]string, len(out))
	for i := range out {
		docs[i] = document(out[i])
	}
	for i, term := range dominantTerms(docs) {
		if term == "" {
			term = category.Uncategorized
		}
		out[i].Category = term
	}
	return &Outcome{Bookmarks: out}, nil
}

// folderStrategy uses the innermost bookmark folder as the label.
type folderStrategy struct{}

func (folderStrategy) sealed()        {}
func (folderStrategy) Method() Method { return MethodFolder }

func (folderStrategy) Classify(ctx context.Context, bookmarks []models.Bookmark, table category.Table) (*Outcome, error) {
	out := models.CloneBookmarks(bookmarks)
	for i := range out {
		if out[i].Folder != "" {
			out[i].Category = out[i].Folder
		} else {
			out[i].Category = category.Uncategorized
		}
	}
	return &Outcome{Bookmarks: out}, nil
}

// hostPattern captures the authority of an http(s) URL.
var hostPattern = regexp.MustCompile(`^https?://([^/]+)`)

// domainStrategy labels by URL authority, port included.
type domainStrategy struct{}

func (domainStrategy) sealed()        {}
func (domainStrategy) Method() Method { return MethodDomain }

func (domainStrategy) Classify(ctx context.Context, bookmarks []models.Bookmark, table category.Table) (*Outcome, error) {
	out := models.CloneBookmarks(bookmarks)
	for i := range out {
		out[i].Category = domainOf(out[i].URL)
	}
	return &Outcome{Bookmarks: out}, nil
}

func domainOf(url string) string {
	if m := hostPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return category.NoDomain
}

// smartKeywordStrategy fetches every page for its live title before
// keyword matching.
type smartKeywordStrategy struct {
	crawler *crawl.Crawler
}

func (smartKeywordStrategy) sealed()        {}
func (smartKeywordStrategy) Method() Method { return MethodSmartKeyword }

func (s smartKeywordStrategy) Classify(ctx context.Context, bookmarks []models.Bookmark, table category.Table) (*Outcome, error) {
	result, logs, err := s.crawler.Collect(ctx, bookmarks, table)
	if err != nil {
		return nil, err
	}
	return &Outcome{Bookmarks: result, Logs: logs}, nil
}

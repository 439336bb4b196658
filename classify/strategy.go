// Package classify labels a batch of bookmarks with one of five strategies.
//
// Every strategy receives the batch and the merged category table, works on
// a private copy, and returns the batch in input order with Category set on
// every record.
package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/models"
)

// Method names a classification strategy.
type Method string

const (
	MethodKeyword      Method = "keyword"
	MethodTFIDF        Method = "tfidf"
	MethodFolder       Method = "folder"
	MethodDomain       Method = "domain"
	MethodSmartKeyword Method = "smart_keyword"
)

// Methods lists every supported method in documentation order.
var Methods = []Method{MethodKeyword, MethodTFIDF, MethodFolder, MethodDomain, MethodSmartKeyword}

// ErrUnknownMethod is returned for a method name outside Methods.
var ErrUnknownMethod = errors.New("unknown classification method")

// ParseMethod validates s. An empty string selects MethodKeyword.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return MethodKeyword, nil
	}
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Outcome is a classified batch.
type Outcome struct {
	Bookmarks []models.Bookmark

	// Logs holds crawl progress messages; only the live-fetch strategy
	// produces any.
	Logs []string
}

// Strategy is the closed set of classifiers. Implementations live in this
// package only.
type Strategy interface {
	Method() Method
	Classify(ctx context.Context, bookmarks []models.Bookmark, table category.Table) (*Outcome, error)

	sealed()
}

// New returns the strategy for m. The crawler is only used by
// MethodSmartKeyword and may be nil otherwise.
func New(m Method, crawler *crawl.Crawler) (Strategy, error) {
	switch m {
	case MethodKeyword:
		return keywordStrategy{}, nil
	case MethodTFIDF:
		return tfidfStrategy{}, nil
	case MethodFolder:
		return folderStrategy{}, nil
	case MethodDomain:
		return domainStrategy{}, nil
	case MethodSmartKeyword:
		if crawler == nil {
			return nil, fmt.Errorf("%w: smart_keyword requires a crawler", ErrNoCrawler)
		}
		return smartKeywordStrategy{crawler: crawler}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
}

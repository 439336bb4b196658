package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bookmarksort/category"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/engine"
	"github.com/use-agent/bookmarksort/metrics"
	"github.com/use-agent/bookmarksort/models"
)

type titleEngine map[string]string

func (titleEngine) Name() string { return "fake" }

func (e titleEngine) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	body, ok := e[req.URL]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &engine.FetchResult{Body: []byte(body), ContentType: "text/html"}, nil
}

func run(t *testing.T, m Method, in []models.Bookmark) []models.Bookmark {
	t.Helper()
	s, err := New(m, nil)
	require.NoError(t, err)
	out, err := s.Classify(context.Background(), in, category.Default())
	require.NoError(t, err)
	require.Len(t, out.Bookmarks, len(in))
	return out.Bookmarks
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodKeyword, m)

	for _, want := range Methods {
		got, err := ParseMethod(string(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParseMethod("magic")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNew_SmartKeywordNeedsCrawler(t *testing.T) {
	_, err := New(MethodSmartKeyword, nil)
	assert.Error(t, err)

	_, err = New(Method("nope"), nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestKeyword(t *testing.T) {
	out := run(t, MethodKeyword, []models.Bookmark{
		{Title: "GitHub", URL: "https://github.com"},
		{Title: "Random", URL: "https://example.org"},
	})
	assert.Equal(t, "tech", out[0].Category)
	assert.Equal(t, category.Uncategorized, out[1].Category)
}

func TestKeyword_FallbackNeedsMoreThanTwo(t *testing.T) {
	two := run(t, MethodKeyword, []models.Bookmark{
		{Title: "Alpha page", URL: "http://one.test"},
		{Title: "Beta page", URL: "http://two.test"},
	})
	for _, b := range two {
		assert.Equal(t, category.Uncategorized, b.Category)
	}

	three := run(t, MethodKeyword, []models.Bookmark{
		{Title: "GitHub", URL: "https://github.com"},
		{Title: "recipes recipes", URL: "http://one.test"},
		{Title: "garden garden", URL: "http://two.test"},
		{Title: "!!", URL: "?"},
		{Title: "gardening garden", URL: "http://three.test"},
	})
	assert.Equal(t, "tech", three[0].Category)
	assert.Equal(t, "other-recipes", three[1].Category)
	assert.Equal(t, "other-garden", three[2].Category)
	assert.Equal(t, category.Uncategorized, three[3].Category)
	assert.Equal(t, "other-gardening", three[4].Category)
}

func TestKeyword_KeepsSticky(t *testing.T) {
	out := run(t, MethodKeyword, []models.Bookmark{
		{Title: "GitHub", URL: "https://github.com", Category: category.NoTitleFound},
	})
	assert.Equal(t, category.NoTitleFound, out[0].Category)
}

func TestKeyword_CustomTable(t *testing.T) {
	s, err := New(MethodKeyword, nil)
	require.NoError(t, err)
	table := category.Default().Merge(category.Table{{Name: "recipes", Keywords: []string{"菜谱"}}})

	out, err := s.Classify(context.Background(), []models.Bookmark{{Title: "家常菜谱", URL: "http://x.test"}}, table)
	require.NoError(t, err)
	assert.Equal(t, "recipes", out.Bookmarks[0].Category)
}

func TestTFIDF(t *testing.T) {
	out := run(t, MethodTFIDF, []models.Bookmark{
		{Title: "golang golang", URL: ""},
		{Title: "", URL: ""},
	})
	assert.Equal(t, "golang", out[0].Category)
	assert.Equal(t, category.Uncategorized, out[1].Category)
}

func TestFolder(t *testing.T) {
	out := run(t, MethodFolder, []models.Bookmark{
		{Title: "Go", URL: "https://go.dev", Folder: "Dev", Folders: []string{"Work", "Dev"}},
		{Title: "Top", URL: "https://top.test"},
	})
	assert.Equal(t, "Dev", out[0].Category)
	assert.Equal(t, category.Uncategorized, out[1].Category)
}

func TestDomain(t *testing.T) {
	out := run(t, MethodDomain, []models.Bookmark{
		{URL: "https://news.ycombinator.com/item?id=1"},
		{URL: "http://localhost:8080/x"},
		{URL: "ftp://files.test/"},
		{URL: "javascript:void(0)"},
		{URL: "file:///tmp/redirect?to=http://evil.com/x"},
		{URL: "javascript:location='https://a.example/'"},
	})
	assert.Equal(t, "news.ycombinator.com", out[0].Category)
	assert.Equal(t, "localhost:8080", out[1].Category)
	assert.Equal(t, category.NoDomain, out[2].Category)
	assert.Equal(t, category.NoDomain, out[3].Category)
	assert.Equal(t, category.NoDomain, out[4].Category)
	assert.Equal(t, category.NoDomain, out[5].Category)
}

func TestStrategies_DoNotMutateInput(t *testing.T) {
	in := []models.Bookmark{{Title: "GitHub", URL: "https://github.com", Folders: []string{"a"}}}
	for _, m := range []Method{MethodKeyword, MethodTFIDF, MethodFolder, MethodDomain} {
		run(t, m, in)
		assert.Empty(t, in[0].Category, m)
	}
}

func TestSmartKeyword(t *testing.T) {
	crawler := crawl.New(titleEngine{
		"https://a.test": "<title>Python 教程</title>",
	})
	s, err := New(MethodSmartKeyword, crawler)
	require.NoError(t, err)

	out, err := s.Classify(context.Background(), []models.Bookmark{
		{Title: "stale", URL: "https://a.test"},
		{Title: "dead", URL: "https://b.test"},
	}, category.Default())
	require.NoError(t, err)

	assert.Equal(t, "Python 教程", out.Bookmarks[0].Title)
	assert.Equal(t, "tech", out.Bookmarks[0].Category)
	assert.Equal(t, category.FetchFailed, out.Bookmarks[1].Category)
	assert.Len(t, out.Logs, 4)
}

func TestClassifier_Run(t *testing.T) {
	m := metrics.New()
	c := NewClassifier(category.Default(), crawl.New(titleEngine{}), m)

	out, err := c.Run(context.Background(), "", []models.Bookmark{{Title: "知乎", URL: "https://zhihu.com"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "learning", out.Bookmarks[0].Category)

	_, err = c.Run(context.Background(), "bogus", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestClassifier_WithoutCrawler(t *testing.T) {
	c := NewClassifier(category.Default(), nil, nil)

	_, err := c.Run(context.Background(), string(MethodSmartKeyword), []models.Bookmark{{URL: "https://a.test"}}, nil)
	assert.ErrorIs(t, err, ErrNoCrawler)

	_, err = c.Stream(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoCrawler)

	_, err = New(MethodSmartKeyword, nil)
	assert.ErrorIs(t, err, ErrNoCrawler)
}

func TestClassifier_TableMergesOverrides(t *testing.T) {
	c := NewClassifier(category.Default(), nil, nil)
	table := c.Table(category.Table{{Name: "tech", Keywords: []string{"golang"}}, {Name: "extra", Keywords: []string{"x"}}})

	assert.Equal(t, []string{"golang"}, table[0].Keywords)
	assert.Equal(t, "extra", table[len(table)-1].Name)
	assert.Equal(t, "github", c.Table(nil)[0].Keywords[0])
}

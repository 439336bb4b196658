package bookmarks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/bookmarksort/models"
)

func TestGroupByCategory(t *testing.T) {
	groups := GroupByCategory([]models.Bookmark{
		{Title: "a", Category: "news"},
		{Title: "b", Category: ""},
		{Title: "c", Category: "tech"},
		{Title: "d", Category: "news"},
	})

	require.Len(t, groups, 3)
	assert.Equal(t, "news", groups[0].Category)
	assert.Equal(t, "uncategorized", groups[1].Category)
	assert.Equal(t, "tech", groups[2].Category)
	assert.Equal(t, "a", groups[0].Bookmarks[0].Title)
	assert.Equal(t, "d", groups[0].Bookmarks[1].Title)
}

func TestWriteHTML(t *testing.T) {
	var buf strings.Builder
	err := WriteHTML(&buf, []models.Bookmark{
		{Title: "GitHub", URL: "https://github.com", AddDate: "1700000000", Category: "tech"},
	}, "")
	require.NoError(t, err)

	want := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Classified Bookmarks</TITLE>
<H1>Classified Bookmarks</H1>
<DL><p>
    <DT><H3>tech</H3>
    <DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1700000000">GitHub</A>
    </DL><p>
</DL><p>
`
	assert.Equal(t, want, buf.String())
}

func TestWriteHTML_Escapes(t *testing.T) {
	var buf strings.Builder
	err := WriteHTML(&buf, []models.Bookmark{{
		Title:    `<script>alert(1)</script>Tom & Jerry`,
		URL:      `https://x.test/?a=1&b="2"`,
		Category: "<b>bold</b>",
	}}, "My <i>list</i>")
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>")
	assert.NotContains(t, out, "<i>")
	assert.Contains(t, out, "Tom &amp; Jerry")
	assert.Contains(t, out, `HREF="https://x.test/?a=1&amp;b=&#34;2&#34;"`)
	assert.Contains(t, out, "<H3>&lt;b&gt;bold&lt;/b&gt;</H3>")
	assert.Contains(t, out, "<TITLE>My &lt;i&gt;list&lt;/i&gt;</TITLE>")
}

func TestWriteHTML_RoundTripKeepsAngleBrackets(t *testing.T) {
	var buf strings.Builder
	err := WriteHTML(&buf, []models.Bookmark{
		{Title: "std::vector<int> reference", URL: "https://cppreference.com", Category: "<script>x</script>"},
		{Title: "a < b && c > d", URL: "https://math.test", Category: "c++ <templates>"},
	}, "")
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "<H3></H3>")

	reparsed, err := ParseBytes([]byte(buf.String()))
	require.NoError(t, err)
	require.Len(t, reparsed, 2)
	assert.Equal(t, "std::vector<int> reference", reparsed[0].Title)
	assert.Equal(t, "<script>x</script>", reparsed[0].Folder)
	assert.Equal(t, "a < b && c > d", reparsed[1].Title)
	assert.Equal(t, "c++ <templates>", reparsed[1].Folder)
}

func TestWriteMarkdown(t *testing.T) {
	var buf strings.Builder
	err := WriteMarkdown(&buf, []models.Bookmark{
		{Title: "GitHub", URL: "https://github.com", Category: "tech"},
		{Title: "", URL: "https://news.test", Category: "news"},
	}, "Mine")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Mine")
	assert.Contains(t, out, "tech")
	assert.Contains(t, out, "[GitHub](https://github.com)")
	assert.Contains(t, out, "https://news.test")
	assert.Less(t, strings.Index(out, "tech"), strings.Index(out, "news"))
}

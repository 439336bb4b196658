package charsets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func gbk(t *testing.T, s string) []byte {
	t.Helper()
	out, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestForResponse_HeaderDeclared(t *testing.T) {
	body := gbk(t, "<title>新闻中心</title>")
	enc, name := ForResponse(body, "text/html; charset=gbk")

	assert.Equal(t, "gbk", name)
	assert.Equal(t, "<title>新闻中心</title>", Decode(body, enc))
}

func TestForResponse_MetaDeclared(t *testing.T) {
	body := gbk(t, `<html><head><meta charset="gb2312"><title>新闻中心</title></head></html>`)
	enc, _ := ForResponse(body, "text/html")

	assert.Contains(t, Decode(body, enc), "<title>新闻中心</title>")
}

func TestForResponse_UTF8(t *testing.T) {
	body := []byte("<title>日本語</title>")
	enc, _ := ForResponse(body, "")
	assert.Equal(t, "<title>日本語</title>", Decode(body, enc))
}

func TestLookup(t *testing.T) {
	_, name, ok := Lookup("GB-18030")
	require.True(t, ok)
	assert.Equal(t, "gb18030", name)

	_, _, ok = Lookup("no-such-charset")
	assert.False(t, ok)
}

func TestDecodeDocument_UTF8(t *testing.T) {
	text, name := DecodeDocument([]byte("plain ascii"))
	assert.Equal(t, "plain ascii", text)
	assert.Equal(t, "utf-8", name)
}

func TestDecodeDocument_NonUTF8(t *testing.T) {
	src := strings.Repeat("<DT><A HREF=\"http://a\">我们的中国是一个很大的国家，这是我的书签</A>\n", 20)
	text, _ := DecodeDocument(gbk(t, src))
	assert.Contains(t, text, "这是我的书签")
}

func TestDecode_InvalidBytesReplaced(t *testing.T) {
	out := Decode([]byte{'a', 0xff, 'b'}, nil)
	assert.Equal(t, "a�b", out)
}

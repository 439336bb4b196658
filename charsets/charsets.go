// Package charsets turns raw document bytes into UTF-8 text.
//
// Declared encodings (Content-Type header, BOM, <meta charset>) are trusted
// first. When nothing is declared the bytes are sniffed with a statistical
// detector, which is what makes GBK and Big5 pages without a meta tag
// readable.
package charsets

import (
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// minConfidence is the chardet score below which a guess is ignored.
const minConfidence = 30

// aliases maps chardet result names that htmlindex does not know.
var aliases = map[string]string{
	"gb-18030": "gb18030",
}

// Lookup resolves an encoding label. ok is false for unknown labels.
func Lookup(label string) (enc encoding.Encoding, name string, ok bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if a, found := aliases[label]; found {
		label = a
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, "", false
	}
	name, err = htmlindex.Name(enc)
	if err != nil {
		name = label
	}
	return enc, name, true
}

// Detect guesses the encoding of body by content alone. Valid UTF-8 is
// always reported as UTF-8.
func Detect(body []byte) (encoding.Encoding, string, bool) {
	if utf8.Valid(body) {
		return unicode.UTF8, "utf-8", true
	}
	res, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || res == nil || res.Confidence < minConfidence {
		return nil, "", false
	}
	return Lookup(res.Charset)
}

// ForResponse picks the encoding for an HTTP response body. A BOM, the
// header or a <meta> declaration wins; only the windows-1252 fallback is
// second-guessed by sniffing.
func ForResponse(body []byte, contentType string) (encoding.Encoding, string) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if certain || name != "windows-1252" {
		return enc, name
	}
	if detected, detectedName, ok := Detect(body); ok {
		return detected, detectedName
	}
	return enc, name
}

// Decode converts body to UTF-8 using enc. Undecodable bytes become U+FFFD.
func Decode(body []byte, enc encoding.Encoding) string {
	if enc == nil || enc == unicode.UTF8 || enc == encoding.Nop {
		return strings.ToValidUTF8(string(body), "�")
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "�")
	}
	return string(out)
}

// DecodeDocument decodes an uploaded file: UTF-8 when valid, otherwise the
// detected encoding, otherwise UTF-8 with replacement characters.
func DecodeDocument(body []byte) (string, string) {
	enc, name, ok := Detect(body)
	if !ok {
		return strings.ToValidUTF8(string(body), "�"), "utf-8"
	}
	return Decode(body, enc), name
}

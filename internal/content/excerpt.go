package content

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const excerptRadius = 50

var excerptPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Excerpt returns the readable text around doc[start:end]: up to 50
// characters either side, markup stripped, entities decoded and
// whitespace collapsed. An ellipsis marks each side that stops short of
// the document bounds. It is for display only.
func Excerpt(doc string, start, end int) string {
	if end > len(doc) {
		end = len(doc)
	}
	if end < 0 {
		end = 0
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}

	from := runesBack(doc, start, excerptRadius)
	to := runesForward(doc, end, excerptRadius)

	before := doc[from:start]
	if gt := strings.IndexByte(before, '>'); gt >= 0 {
		if lt := strings.IndexByte(before, '<'); lt < 0 || lt > gt {
			before = before[gt+1:]
		}
	}
	after := doc[end:to]
	if lt := strings.LastIndexByte(after, '<'); lt >= 0 && strings.LastIndexByte(after, '>') < lt {
		after = after[:lt]
	}

	text := excerptPolicy.Sanitize(before + doc[start:end] + after)
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")

	if from > 0 {
		text = "..." + text
	}
	if to < len(doc) {
		text += "..."
	}
	return text
}

func runesBack(s string, off, n int) int {
	for ; n > 0 && off > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:off])
		off -= size
	}
	return off
}

func runesForward(s string, off, n int) int {
	for ; n > 0 && off < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[off:])
		off += size
	}
	return off
}

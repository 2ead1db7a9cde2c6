package content

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

type span struct {
	start, end int
}

type spans []span

// commentSpans returns the byte ranges of every HTML comment in doc, in
// order. The tokenizer is only used to find where comments begin and end;
// it tolerates the same broken markup browsers do, so an unterminated
// comment swallows the rest of the document exactly as it would when
// rendered. Bogus comments such as `</ x>` and `<?x>` count too.
func commentSpans(doc string) spans {
	if !strings.Contains(doc, "<") {
		return nil
	}

	z := html.NewTokenizer(strings.NewReader(doc))
	var out spans
	off := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		n := len(z.Raw())
		if tt == html.CommentToken {
			out = append(out, span{start: off, end: off + n})
		}
		off += n
	}
}

func (s spans) contains(off int) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i].end > off })
	return i < len(s) && s[i].start <= off
}

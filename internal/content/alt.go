package content

import (
	"sort"
	"strings"
)

// ApplyAltUpdates sets the alt text of every image whose src is a key of
// updates. Blank values are ignored.
//
// Matches are spliced from the highest offset down: every offset was
// taken from the original string, and rewriting a later tag first leaves
// the offsets of all earlier tags valid.
func ApplyAltUpdates(doc string, updates map[string]string) AltResult {
	res := AltResult{HTML: doc}
	if doc == "" || len(updates) == 0 {
		return res
	}

	var targets []ElementMatch
	for _, m := range ScanImages(doc) {
		if alt, ok := updates[m.Source]; ok && strings.TrimSpace(alt) != "" {
			targets = append(targets, m)
		}
	}
	if len(targets) == 0 {
		return res
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Start > targets[j].Start })

	out := doc
	for _, m := range targets {
		tag := rewriteAlt(m, updates[m.Source])
		out = out[:m.Start] + tag + out[m.End:]
		res.Updated++
	}
	res.HTML = out
	return res
}

// rewriteAlt returns m.RawTag with its alt attribute set to text. A new
// attribute goes directly after "<img" so it is well-formed whatever
// follows; an existing one, empty or not, is replaced in place.
func rewriteAlt(m ElementMatch, text string) string {
	attr := `alt="` + EscapeAttr(text) + `"`
	tag := m.RawTag

	if m.Alt.Present {
		if a, ok := findAttr(lexAttrs(tag), "alt"); ok {
			return tag[:a.start] + attr + tag[a.end:]
		}
	}

	// "<img" is four bytes; the grammar guarantees whitespace after it.
	i := 4
	for i < len(tag) && isSpaceByte(tag[i]) {
		i++
	}
	return tag[:i] + attr + " " + tag[i:]
}

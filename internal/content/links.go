package content

import (
	"regexp"
	"strings"
)

const defaultProtocol = "https://"

var protocolRe = regexp.MustCompile(`(?i)^https?://`)

// linkPattern matches an optional http(s):// prefix, the literal pattern,
// and the rest of the URL up to whitespace, a quote or an angle bracket.
// Group 1 is the protocol, group 2 the suffix.
func linkPattern(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(https?://)?` + regexp.QuoteMeta(pattern) + `([^"'\s<>]*)`)
}

// RewriteLinks replaces every URL in doc that starts with spec.Pattern.
// Unlike ScanLinks, repeated URLs are rewritten and reported once per
// occurrence. The pass reads the original string left to right and
// writes a new one, so match offsets never go stale. URLs inside HTML
// comments are left alone.
func RewriteLinks(doc string, spec LinkReplacementSpec) (LinkRewrite, error) {
	out := LinkRewrite{HTML: doc}
	if err := spec.Validate(); err != nil {
		return out, err
	}
	if doc == "" {
		return out, nil
	}

	locs := linkPattern(spec.Pattern).FindAllStringSubmatchIndex(doc, -1)
	if len(locs) == 0 {
		return out, nil
	}

	comments := commentSpans(doc)
	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if comments.contains(start) {
			continue
		}

		var protocol string
		if loc[2] >= 0 {
			protocol = doc[loc[2]:loc[3]]
		}
		suffix := doc[loc[4]:loc[5]]
		original := doc[start:end]
		replacement := rewriteURL(original, protocol, suffix, spec)

		b.WriteString(doc[last:start])
		b.WriteString(replacement)
		last = end

		out.Replacements = append(out.Replacements, LinkMatch{
			Original:    original,
			Replacement: replacement,
			Context:     Excerpt(doc, start, end),
			Start:       start,
			End:         end,
		})
	}
	if len(out.Replacements) == 0 {
		return out, nil
	}
	b.WriteString(doc[last:])
	out.HTML = b.String()
	return out, nil
}

// rewriteURL builds the new URL for one match. A replacement that carries
// its own protocol is used as is; otherwise the matched URL's protocol is
// kept in front of it.
func rewriteURL(matched, protocol, suffix string, spec LinkReplacementSpec) string {
	if !spec.PreservePath {
		return spec.Replacement
	}
	if protocolRe.MatchString(spec.Replacement) {
		return spec.Replacement + suffix
	}
	if protocolRe.MatchString(matched) {
		if protocol == "" {
			// The pattern itself starts with a protocol.
			protocol = defaultProtocol
		}
		return protocol + spec.Replacement + suffix
	}
	return spec.Replacement + suffix
}

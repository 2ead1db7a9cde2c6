package content

import "regexp"

// imgTagRe matches an <img> start tag. Attributes may span lines, and a
// '>' inside a quoted value does not end the tag. A tag with an
// unbalanced quote falls back to ending at the first '>'.
var imgTagRe = regexp.MustCompile(`(?i)<img\s(?:(?:[^>"']|"[^"]*"|'[^']*')*>|[^>]*>)`)

// ScanImages returns every <img> tag in doc that has a non-empty src, in
// document order. Tags inside HTML comments are ignored.
func ScanImages(doc string) []ElementMatch {
	if doc == "" {
		return nil
	}

	comments := commentSpans(doc)
	var matches []ElementMatch
	for _, loc := range imgTagRe.FindAllStringIndex(doc, -1) {
		start, end := loc[0], loc[1]
		if comments.contains(start) {
			continue
		}

		tag := doc[start:end]
		attrs := lexAttrs(tag)
		src, ok := findAttr(attrs, "src")
		if !ok || src.value == "" {
			continue
		}

		var alt AltValue
		if a, ok := findAttr(attrs, "alt"); ok {
			alt = AltValue{Value: a.value, Present: true}
		}

		matches = append(matches, ElementMatch{
			Source:  src.value,
			Alt:     alt,
			RawTag:  tag,
			Start:   start,
			End:     end,
			Context: Excerpt(doc, start, end),
		})
	}
	return matches
}

// ScanImagesMissingAlt returns the images whose alt attribute is absent
// or blank.
func ScanImagesMissingAlt(doc string) []ElementMatch {
	var out []ElementMatch
	for _, m := range ScanImages(doc) {
		if m.Alt.Missing() {
			out = append(out, m)
		}
	}
	return out
}

// ScanLinks returns the distinct URLs in doc that start with pattern,
// optionally preceded by http:// or https://. Each distinct URL is
// reported once, at its first occurrence.
func ScanLinks(doc, pattern string) []LinkMatch {
	if doc == "" || pattern == "" {
		return nil
	}

	re := linkPattern(pattern)
	comments := commentSpans(doc)
	seen := make(map[string]bool)
	var matches []LinkMatch
	for _, loc := range re.FindAllStringIndex(doc, -1) {
		start, end := loc[0], loc[1]
		if comments.contains(start) {
			continue
		}
		url := doc[start:end]
		if seen[url] {
			continue
		}
		seen[url] = true
		matches = append(matches, LinkMatch{
			Original: url,
			Context:  Excerpt(doc, start, end),
			Start:    start,
			End:      end,
		})
	}
	return matches
}

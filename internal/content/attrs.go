package content

import "strings"

// attr is one attribute lexed from a raw start tag. start and end are
// byte offsets into the tag and span the name through the end of the
// value, quotes included.
type attr struct {
	name     string
	value    string
	hasValue bool
	start    int
	end      int
}

// lexAttrs splits the attributes out of a start tag such as
// `<img src="a.png" alt>`. Attribute order, quoting style and whitespace
// (newlines included) are free. An unterminated quote runs to the end of
// the tag. Names are lower-cased; values are returned raw.
func lexAttrs(tag string) []attr {
	limit := len(tag)
	if strings.HasSuffix(tag, ">") {
		limit--
	}

	i := strings.IndexFunc(tag, isSpace)
	if i < 0 {
		return nil
	}

	var attrs []attr
	for i < limit {
		for i < limit && (isSpaceByte(tag[i]) || tag[i] == '/') {
			i++
		}
		if i >= limit {
			break
		}

		start := i
		j := i
		if tag[j] == '=' {
			j++
		}
		for j < limit && !isSpaceByte(tag[j]) && tag[j] != '/' && tag[j] != '=' {
			j++
		}
		a := attr{name: strings.ToLower(tag[start:j]), start: start, end: j}

		k := j
		for k < limit && isSpaceByte(tag[k]) {
			k++
		}
		if k < limit && tag[k] == '=' {
			k++
			for k < limit && isSpaceByte(tag[k]) {
				k++
			}
			a.hasValue = true
			switch {
			case k < limit && (tag[k] == '"' || tag[k] == '\''):
				q := tag[k]
				closing := strings.IndexByte(tag[k+1:limit], q)
				if closing < 0 {
					a.value = tag[k+1 : limit]
					a.end = limit
				} else {
					a.value = tag[k+1 : k+1+closing]
					a.end = k + closing + 2
				}
			default:
				v := k
				for v < limit && !isSpaceByte(tag[v]) {
					v++
				}
				a.value = tag[k:v]
				a.end = v
			}
		}

		attrs = append(attrs, a)
		i = a.end
	}
	return attrs
}

// findAttr returns the first attribute with the given lower-case name.
// Browsers ignore later duplicates, so the first one is authoritative.
func findAttr(attrs []attr, name string) (attr, bool) {
	for _, a := range attrs {
		if a.name == name {
			return a, true
		}
	}
	return attr{}, false
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func isSpace(r rune) bool {
	return r < 0x80 && isSpaceByte(byte(r))
}

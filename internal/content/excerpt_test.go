package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt_Truncates(t *testing.T) {
	tag := `<img src="x.png">`
	doc := strings.Repeat("a", 100) + tag + strings.Repeat("b", 100)
	start := 100
	end := start + len(tag)

	got := Excerpt(doc, start, end)
	assert.Equal(t, "..."+strings.Repeat("a", 50)+" "+strings.Repeat("b", 50)+"...", got)
}

func TestExcerpt_WholeDocument(t *testing.T) {
	doc := "<p>Hello\n\n   <strong>world</strong></p><a href=\"https://old.com\">link</a>"
	start := strings.Index(doc, "https://old.com")
	got := Excerpt(doc, start, start+len("https://old.com"))
	assert.Equal(t, "Hello world link", got)
}

func TestExcerpt_DecodesEntities(t *testing.T) {
	doc := `<p>Fish &amp; chips</p><img src="a.png">`
	start := strings.Index(doc, "<img")
	assert.Equal(t, "Fish & chips", Excerpt(doc, start, len(doc)))
}

func TestExcerpt_DropsPartialTags(t *testing.T) {
	doc := strings.Repeat("x", 10) +
		`<span class="very-long-class-name-goes-here-and-on">text</span>` +
		`<img src="a.png">` +
		`<em class="trailing-attribute-value-that-is-quite-long-indeed">after</em> and more`
	start := strings.Index(doc, "<img")
	end := start + len(`<img src="a.png">`)

	got := Excerpt(doc, start, end)
	assert.NotContains(t, got, "class")
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, ">")
	assert.Equal(t, "...text...", got)
}

func TestExcerpt_CountsRunes(t *testing.T) {
	doc := strings.Repeat("é", 60) + `<img src="a.png">`
	got := Excerpt(doc, 120, len(doc))
	assert.Equal(t, "..."+strings.Repeat("é", 50), got)
}

func TestExcerpt_OutOfRange(t *testing.T) {
	assert.NotPanics(t, func() {
		Excerpt("short", -5, 100)
		Excerpt("short", 4, 2)
		Excerpt("", 0, 0)
		Excerpt("short", -3, -1)
	})
	assert.Equal(t, "short", Excerpt("short", -5, 100))
}

package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanImages_EmptyInput(t *testing.T) {
	assert.Empty(t, ScanImages(""))
	assert.Empty(t, ScanImagesMissingAlt(""))
	assert.Empty(t, ScanLinks("", "example.com"))
}

func TestScanImages_AttributeOrderAndWhitespace(t *testing.T) {
	doc := "<p>one</p><IMG class=\"wide\"\n\tsrc=\"/content/a.png\"\n  alt=\"A chart\"><img alt='' src='b.png' /><img src=c.png>"

	got := ScanImages(doc)
	require.Len(t, got, 3)

	assert.Equal(t, "/content/a.png", got[0].Source)
	assert.Equal(t, AltValue{Value: "A chart", Present: true}, got[0].Alt)
	assert.Equal(t, "b.png", got[1].Source)
	assert.Equal(t, AltValue{Value: "", Present: true}, got[1].Alt)
	assert.Equal(t, "c.png", got[2].Source)
	assert.False(t, got[2].Alt.Present)

	for i, m := range got {
		assert.Greater(t, m.End, m.Start, "match %d", i)
		assert.Equal(t, doc[m.Start:m.End], m.RawTag, "match %d", i)
		if i > 0 {
			assert.Greater(t, m.Start, got[i-1].Start)
		}
	}
}

func TestScanImages_SkipsImagesWithoutSource(t *testing.T) {
	doc := `<img alt="no src"><img src="" alt="empty"><img src="ok.png">`
	got := ScanImages(doc)
	require.Len(t, got, 1)
	assert.Equal(t, "ok.png", got[0].Source)
}

func TestScanImages_AbsentVersusEmptyAlt(t *testing.T) {
	tests := []struct {
		name        string
		tag         string
		want        AltValue
		wantMissing bool
	}{
		{"absent", `<img src="a.png">`, AltValue{}, true},
		{"empty double quoted", `<img src="a.png" alt="">`, AltValue{Present: true}, true},
		{"empty single quoted", `<img src="a.png" alt=''>`, AltValue{Present: true}, true},
		{"valueless", `<img alt src="a.png">`, AltValue{Present: true}, true},
		{"upper case name", `<img src="a.png" ALT="x">`, AltValue{Value: "x", Present: true}, false},
		{"spaced equals", `<img src="a.png" alt = "x">`, AltValue{Value: "x", Present: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanImages(tt.tag)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Alt)
			assert.Equal(t, tt.wantMissing, got[0].Alt.Missing())
		})
	}
}

func TestScanImages_IgnoresLookalikeAttributes(t *testing.T) {
	doc := `<img data-src="lazy.png" title="has alt text" src="real.png" data-alt="x">`
	got := ScanImages(doc)
	require.Len(t, got, 1)
	assert.Equal(t, "real.png", got[0].Source)
	assert.False(t, got[0].Alt.Present)
}

func TestScanImages_IgnoresComments(t *testing.T) {
	doc := `<!-- <img src="old.png"> --><img src="live.png">`
	got := ScanImages(doc)
	require.Len(t, got, 1)
	assert.Equal(t, "live.png", got[0].Source)
}

func TestScanImages_BogusCommentsIgnoredWithoutDoctype(t *testing.T) {
	for _, doc := range []string{
		`</ <img src="a.png">`,
		`<!DOCTYPE html></ <img src="a.png">`,
		`<?php <img src="a.png"> ?>`,
	} {
		assert.Empty(t, ScanImages(doc), doc)
	}
}

func TestScanImages_QuotedGreaterThan(t *testing.T) {
	doc := `<img src="a.png" alt="x > y"><p>after</p>`
	got := ScanImages(doc)
	require.Len(t, got, 1)
	assert.Equal(t, `<img src="a.png" alt="x > y">`, got[0].RawTag)
	assert.Equal(t, "x > y", got[0].Alt.Value)
}

func TestScanImages_UnbalancedQuoteEndsAtFirstBracket(t *testing.T) {
	got := ScanImages(`<img src="a.png><p>text</p>`)
	require.Len(t, got, 1)
	assert.Equal(t, `<img src="a.png>`, got[0].RawTag)
}

func TestScanImages_Context(t *testing.T) {
	doc := `<p>Intro text</p><img src="a.png"><p>After</p>`
	got := ScanImages(doc)
	require.Len(t, got, 1)
	assert.Equal(t, "Intro text After", got[0].Context)
}

func TestScanImagesMissingAlt(t *testing.T) {
	doc := `<img src="a.png" alt="fine"><img src="b.png"><img src="c.png" alt=""><img src="d.png" alt="  ">`
	got := ScanImagesMissingAlt(doc)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b.png", "c.png", "d.png"}, []string{got[0].Source, got[1].Source, got[2].Source})
}

func TestScanLinks_DeduplicatesByText(t *testing.T) {
	doc := `<a href="https://old.example.com/a">A</a> <a href="https://old.example.com/a">again</a> see old.example.com/b`
	got := ScanLinks(doc, "old.example.com")
	require.Len(t, got, 2)
	assert.Equal(t, "https://old.example.com/a", got[0].Original)
	assert.Equal(t, "old.example.com/b", got[1].Original)
	assert.Equal(t, strings.Index(doc, "https://old.example.com/a"), got[0].Start)
}

func TestScanLinks_PatternIsLiteral(t *testing.T) {
	doc := `<a href="https://exampleXcom/a">x</a>`
	assert.Empty(t, ScanLinks(doc, "example.com"))
}

func TestScanLinks_CaseInsensitive(t *testing.T) {
	got := ScanLinks(`<a href="HTTPS://Old.Example.com/Page">x</a>`, "old.example.com")
	require.Len(t, got, 1)
	assert.Equal(t, "HTTPS://Old.Example.com/Page", got[0].Original)
}

func TestScanLinks_StopsAtDelimiters(t *testing.T) {
	doc := `<a href='https://old.com/x?y=1'>old.com/z</a> old.com/w next`
	got := ScanLinks(doc, "old.com")
	require.Len(t, got, 3)
	assert.Equal(t, "https://old.com/x?y=1", got[0].Original)
	assert.Equal(t, "old.com/z", got[1].Original)
	assert.Equal(t, "old.com/w", got[2].Original)
}

func TestScanLinks_EmptyPattern(t *testing.T) {
	assert.Empty(t, ScanLinks(`<a href="https://old.com">x</a>`, ""))
}

func TestLexAttrs_UnterminatedQuote(t *testing.T) {
	attrs := lexAttrs(`<img src="a.png alt=x>`)
	require.Len(t, attrs, 1)
	assert.Equal(t, "src", attrs[0].name)
	assert.Equal(t, "a.png alt=x", attrs[0].value)
}

func TestLexAttrs_Spans(t *testing.T) {
	tag := `<img  src="a.png"   alt='x' hidden>`
	attrs := lexAttrs(tag)
	require.Len(t, attrs, 3)
	assert.Equal(t, `src="a.png"`, tag[attrs[0].start:attrs[0].end])
	assert.Equal(t, `alt='x'`, tag[attrs[1].start:attrs[1].end])
	assert.Equal(t, "hidden", tag[attrs[2].start:attrs[2].end])
	assert.False(t, attrs[2].hasValue)
}

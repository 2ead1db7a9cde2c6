// Package content implements the HTML transformations applied to post
// bodies: scanning for images and links, rewriting link targets, and
// injecting image alt text. Everything here works on raw markup strings
// and never builds a document tree, so partial or broken fragments are
// handled the same as well-formed ones.
package content

import (
	"errors"
	"strings"
)

var (
	ErrEmptyPattern     = errors.New("pattern is required")
	ErrEmptyReplacement = errors.New("replacement is required")
	ErrEmptyAltText     = errors.New("alt text is required")
	ErrEmptySource      = errors.New("image source is required")
	ErrEmptyDocumentID  = errors.New("document id is required")
)

// AltValue is the alt attribute of an image as found in the markup.
// Present is false when the tag has no alt attribute at all; a present
// attribute may still carry an empty Value.
type AltValue struct {
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// Missing reports whether the image lacks usable alt text.
func (a AltValue) Missing() bool {
	return !a.Present || strings.TrimSpace(a.Value) == ""
}

// ElementMatch is one <img> tag located in a document.
type ElementMatch struct {
	Source  string   `json:"src"`
	Alt     AltValue `json:"alt"`
	RawTag  string   `json:"full_tag"`
	Start   int      `json:"start"` // byte offset into the scanned string
	End     int      `json:"end"`
	Context string   `json:"context"`
}

// LinkMatch is one URL occurrence, either found by a scan or produced by
// a rewrite.
type LinkMatch struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Context     string `json:"context,omitempty"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// LinkReplacementSpec describes a link rewrite.
type LinkReplacementSpec struct {
	Pattern      string `json:"pattern" yaml:"pattern"`
	Replacement  string `json:"replacement" yaml:"replacement"`
	PreservePath bool   `json:"preserve_path" yaml:"preserve_path"`
}

func (s LinkReplacementSpec) Validate() error {
	if s.Pattern == "" {
		return ErrEmptyPattern
	}
	if s.Replacement == "" {
		return ErrEmptyReplacement
	}
	return nil
}

// AltUpdateRequest sets the alt text of every image with ImageSource in
// one document.
type AltUpdateRequest struct {
	DocumentID  string `json:"postId" yaml:"post_id"`
	ImageSource string `json:"src" yaml:"src"`
	NewAltText  string `json:"newAlt" yaml:"alt"`
}

func (r AltUpdateRequest) Validate() error {
	if r.DocumentID == "" {
		return ErrEmptyDocumentID
	}
	if r.ImageSource == "" {
		return ErrEmptySource
	}
	if strings.TrimSpace(r.NewAltText) == "" {
		return ErrEmptyAltText
	}
	return nil
}

// LinkRewrite is the result of RewriteLinks.
type LinkRewrite struct {
	HTML         string
	Replacements []LinkMatch
}

// AltResult is the result of ApplyAltUpdates.
type AltResult struct {
	HTML    string
	Updated int
}

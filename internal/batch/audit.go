package batch

import (
	"fmt"

	"github.com/nishantmodak/ghost-admin/internal/content"
)

// LinkReport lists the matching links of one document. UpdatedHTML is
// only set by PreviewLinks.
type LinkReport struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	URL         string              `json:"url"`
	Status      string              `json:"status"`
	Links       []content.LinkMatch `json:"links"`
	UpdatedHTML string              `json:"updatedHtml,omitempty"`
}

// ImageReport lists the images of one document. UpdatedHTML is only set
// by PreviewAltText.
type ImageReport struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Slug        string                 `json:"slug"`
	URL         string                 `json:"url"`
	Status      string                 `json:"status"`
	Images      []content.ElementMatch `json:"images"`
	UpdatedHTML string                 `json:"updatedHtml,omitempty"`
}

// AuditLinks reports the distinct links matching pattern in each
// document. Documents without a match are left out.
func AuditLinks(docs []Document, pattern string) []LinkReport {
	var out []LinkReport
	for _, d := range docs {
		links := content.ScanLinks(d.HTML, pattern)
		if len(links) == 0 {
			continue
		}
		out = append(out, newLinkReport(d, links))
	}
	return out
}

// PreviewLinks computes the rewrite for each document without writing
// anything, reporting every replacement and the resulting HTML.
func PreviewLinks(docs []Document, spec content.LinkReplacementSpec) ([]LinkReport, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("link replacement: %w", err)
	}
	var out []LinkReport
	for _, d := range docs {
		res, err := content.RewriteLinks(d.HTML, spec)
		if err != nil {
			return nil, err
		}
		if len(res.Replacements) == 0 {
			continue
		}
		r := newLinkReport(d, res.Replacements)
		r.UpdatedHTML = res.HTML
		out = append(out, r)
	}
	return out, nil
}

// AuditImages reports the images missing alt text in each document.
func AuditImages(docs []Document) []ImageReport {
	var out []ImageReport
	for _, d := range docs {
		images := content.ScanImagesMissingAlt(d.HTML)
		if len(images) == 0 {
			continue
		}
		out = append(out, newImageReport(d, images))
	}
	return out
}

// PreviewAltText applies reqs in memory and reports the targeted images
// as they were before the edit, along with the resulting HTML.
func PreviewAltText(docs []Document, reqs []content.AltUpdateRequest) ([]ImageReport, error) {
	for i, r := range reqs {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("alt update %d: %w", i, err)
		}
	}

	groups := GroupAltUpdates(reqs)
	var out []ImageReport
	for _, d := range docs {
		updates := groups[d.ID]
		if len(updates) == 0 {
			continue
		}
		res := content.ApplyAltUpdates(d.HTML, updates)
		if res.Updated == 0 {
			continue
		}

		var images []content.ElementMatch
		for _, m := range content.ScanImages(d.HTML) {
			if _, ok := updates[m.Source]; ok {
				images = append(images, m)
			}
		}
		r := newImageReport(d, images)
		r.UpdatedHTML = res.HTML
		out = append(out, r)
	}
	return out, nil
}

func newLinkReport(d Document, links []content.LinkMatch) LinkReport {
	return LinkReport{ID: d.ID, Title: d.Title, Slug: d.Slug, URL: d.URL, Status: d.Status, Links: links}
}

func newImageReport(d Document, images []content.ElementMatch) ImageReport {
	return ImageReport{ID: d.ID, Title: d.Title, Slug: d.Slug, URL: d.URL, Status: d.Status, Images: images}
}

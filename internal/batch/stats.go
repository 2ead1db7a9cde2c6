package batch

import (
	"strings"

	"github.com/nishantmodak/ghost-admin/internal/content"
)

// ImageStats summarises alt text coverage across a set of documents.
type ImageStats struct {
	TotalPosts      int `json:"totalPosts"`
	PostsWithIssues int `json:"postsWithIssues"`
	TotalImages     int `json:"totalImages"`
	TotalMissing    int `json:"totalMissing"`

	Inline struct {
		HasAlt     int `json:"hasAlt"`
		MissingAlt int `json:"missingAlt"`
		NoImages   int `json:"noImages"`
	} `json:"inlineImageStats"`

	Feature struct {
		HasAlt         int `json:"hasAlt"`
		MissingAlt     int `json:"missingAlt"`
		NoFeatureImage int `json:"noFeatureImage"`
	} `json:"featureImageStats"`

	Status struct {
		Published int `json:"published"`
		Draft     int `json:"draft"`
		Scheduled int `json:"scheduled"`
	} `json:"statusCounts"`
}

func CollectImageStats(docs []Document) ImageStats {
	var s ImageStats
	s.TotalPosts = len(docs)

	for _, d := range docs {
		images := content.ScanImages(d.HTML)
		if len(images) == 0 {
			s.Inline.NoImages++
		}
		missing := 0
		for _, img := range images {
			if img.Alt.Missing() {
				missing++
			}
		}
		s.Inline.MissingAlt += missing
		s.Inline.HasAlt += len(images) - missing
		if missing > 0 {
			s.PostsWithIssues++
		}

		switch {
		case d.FeatureImage == "":
			s.Feature.NoFeatureImage++
		case strings.TrimSpace(d.FeatureImageAlt) != "":
			s.Feature.HasAlt++
		default:
			s.Feature.MissingAlt++
		}

		switch d.Status {
		case "published":
			s.Status.Published++
		case "draft":
			s.Status.Draft++
		case "scheduled":
			s.Status.Scheduled++
		}
	}

	s.TotalImages = s.Inline.HasAlt + s.Inline.MissingAlt
	s.TotalMissing = s.Inline.MissingAlt
	return s
}

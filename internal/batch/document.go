package batch

import "context"

// Document is one post as read from the content store.
type Document struct {
	ID              string `json:"id"`
	UUID            string `json:"uuid,omitempty"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	URL             string `json:"url"`
	Status          string `json:"status"`
	HTML            string `json:"html"`
	UpdatedAt       string `json:"updated_at"` // version token for optimistic writes
	PublishedAt     string `json:"published_at,omitempty"`
	FeatureImage    string `json:"feature_image,omitempty"`
	FeatureImageAlt string `json:"feature_image_alt,omitempty"`
}

// Store reads and writes documents. Paging, retries and conflict handling
// belong to the implementation.
type Store interface {
	FetchAll(ctx context.Context) ([]Document, error)
	Write(ctx context.Context, id, html, version string) (Document, error)
}

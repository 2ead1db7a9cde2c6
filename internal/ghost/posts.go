package ghost

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nishantmodak/ghost-admin/internal/batch"
)

const postFields = "id,uuid,title,slug,html,status,updated_at,published_at,url,feature_image,feature_image_alt"

var _ batch.Store = (*Client)(nil)

// post is the Admin API representation. Nullable fields are pointers.
type post struct {
	ID              string  `json:"id"`
	UUID            string  `json:"uuid"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	HTML            *string `json:"html"`
	Status          string  `json:"status"`
	UpdatedAt       string  `json:"updated_at"`
	PublishedAt     *string `json:"published_at"`
	URL             string  `json:"url"`
	FeatureImage    *string `json:"feature_image"`
	FeatureImageAlt *string `json:"feature_image_alt"`
}

type postsEnvelope struct {
	Posts []post `json:"posts"`
	Meta  struct {
		Pagination struct {
			Page  int  `json:"page"`
			Pages int  `json:"pages"`
			Total int  `json:"total"`
			Next  *int `json:"next"`
		} `json:"pagination"`
	} `json:"meta"`
}

type postEdit struct {
	HTML      string `json:"html"`
	UpdatedAt string `json:"updated_at"`
}

func (p post) document() batch.Document {
	return batch.Document{
		ID:              p.ID,
		UUID:            p.UUID,
		Title:           p.Title,
		Slug:            p.Slug,
		URL:             p.URL,
		Status:          p.Status,
		HTML:            deref(p.HTML),
		UpdatedAt:       p.UpdatedAt,
		PublishedAt:     deref(p.PublishedAt),
		FeatureImage:    deref(p.FeatureImage),
		FeatureImageAlt: deref(p.FeatureImageAlt),
	}
}

// FetchAll pages through every post, drafts and scheduled posts included.
func (c *Client) FetchAll(ctx context.Context) ([]batch.Document, error) {
	var docs []batch.Document
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("page", strconv.Itoa(page))
		q.Set("formats", "html")
		q.Set("fields", postFields)
		q.Set("filter", "status:[published,draft,scheduled]")

		var env postsEnvelope
		if err := c.do(ctx, "GET", "posts/", q, nil, &env); err != nil {
			return nil, fmt.Errorf("fetch posts page %d: %w", page, err)
		}
		for _, p := range env.Posts {
			docs = append(docs, p.document())
		}
		if len(env.Posts) < c.pageSize || env.Meta.Pagination.Next == nil {
			return docs, nil
		}
	}
}

// Write replaces the HTML of post id. version must be the updated_at
// value the edit was based on; Ghost rejects the write with an
// UpdateCollisionError if the post changed since.
func (c *Client) Write(ctx context.Context, id, html, version string) (batch.Document, error) {
	body, err := json.Marshal(map[string][]postEdit{
		"posts": {{HTML: html, UpdatedAt: version}},
	})
	if err != nil {
		return batch.Document{}, fmt.Errorf("marshal post: %w", err)
	}

	q := url.Values{}
	q.Set("source", "html")
	q.Set("formats", "html")

	var env postsEnvelope
	if err := c.do(ctx, "PUT", "posts/"+url.PathEscape(id)+"/", q, body, &env); err != nil {
		return batch.Document{}, fmt.Errorf("update post %s: %w", id, err)
	}
	if len(env.Posts) == 0 {
		return batch.Document{}, fmt.Errorf("update post %s: empty response", id)
	}
	return env.Posts[0].document(), nil
}

// Ping checks the credentials and returns the number of posts on the site.
func (c *Client) Ping(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("limit", "1")
	q.Set("fields", "id")

	var env postsEnvelope
	if err := c.do(ctx, "GET", "posts/", q, nil, &env); err != nil {
		return 0, fmt.Errorf("ping: %w", err)
	}
	return env.Meta.Pagination.Total, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

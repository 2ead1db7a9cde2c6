package ghost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "6489a1b2c3d4e5f6a7b8c9d0:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]Option{WithRateLimit(1000, 1000)}, opts...)
	c, err := NewClient(srv.URL+"/", testKey, opts...)
	require.NoError(t, err)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestNewClient_InvalidKey(t *testing.T) {
	for _, key := range []string{"", "no-colon", "id:", ":abcd", "id:not-hex"} {
		_, err := NewClient("https://example.com", key)
		assert.ErrorIs(t, err, ErrInvalidAdminKey, key)
	}
}

func TestAdminKey_Token(t *testing.T) {
	key, err := parseAdminKey(testKey)
	require.NoError(t, err)

	signed, err := key.token(time.Now())
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		return key.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("/admin/"))
	require.NoError(t, err)
	assert.Equal(t, "6489a1b2c3d4e5f6a7b8c9d0", parsed.Header["kid"])
}

func TestFetchAll_Pages(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/ghost/api/admin/posts/", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Ghost "))
		assert.Equal(t, DefaultAPIVersion, r.Header.Get("Accept-Version"))
		assert.Equal(t, "html", r.URL.Query().Get("formats"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, `{"posts":[
				{"id":"a","title":"A","html":"<p>a</p>","status":"published","updated_at":"t1","feature_image":null},
				{"id":"b","title":"B","html":null,"status":"draft","updated_at":"t2","feature_image":"f.png","feature_image_alt":"F"}
			],"meta":{"pagination":{"page":1,"pages":2,"total":3,"next":2}}}`)
		case 2:
			fmt.Fprint(w, `{"posts":[{"id":"c","title":"C","html":"<p>c</p>","status":"scheduled","updated_at":"t3"}],
				"meta":{"pagination":{"page":2,"pages":2,"total":3,"next":null}}}`)
		default:
			t.Errorf("unexpected page %d", page)
		}
	}, WithPageSize(2))

	docs, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "<p>a</p>", docs[0].HTML)
	assert.Equal(t, "t1", docs[0].UpdatedAt)
	assert.Equal(t, "", docs[1].HTML)
	assert.Equal(t, "f.png", docs[1].FeatureImage)
	assert.Equal(t, "F", docs[1].FeatureImageAlt)
	assert.Equal(t, "scheduled", docs[2].Status)
}

func TestWrite_SendsHTMLSource(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/ghost/api/admin/posts/abc/", r.URL.Path)
		assert.Equal(t, "html", r.URL.Query().Get("source"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Posts []postEdit `json:"posts"`
		}
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) && assert.Len(t, body.Posts, 1) {
			assert.Equal(t, `<img alt="x" src="a.png">`, body.Posts[0].HTML)
			assert.Equal(t, "2024-01-01T00:00:00.000Z", body.Posts[0].UpdatedAt)
		}

		fmt.Fprint(w, `{"posts":[{"id":"abc","html":"<img alt=\"x\" src=\"a.png\">","updated_at":"2024-01-02T00:00:00.000Z"}]}`)
	})

	doc, err := c.Write(context.Background(), "abc", `<img alt="x" src="a.png">`, "2024-01-01T00:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, "abc", doc.ID)
	assert.Equal(t, "2024-01-02T00:00:00.000Z", doc.UpdatedAt)
}

func TestWrite_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "new html")
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"posts":[{"id":"abc"}]}`)
	})

	_, err := c.Write(context.Background(), "abc", "new html", "v1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWrite_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Write(context.Background(), "abc", "x", "v1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int32(MaxRetries), calls.Load())
}

func TestWrite_CollisionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"errors":[{"message":"Saving failed! Someone else is editing this post.","type":"UpdateCollisionError"}]}`)
	})

	_, err := c.Write(context.Background(), "abc", "x", "stale")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "UpdateCollisionError", apiErr.Type)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `{"posts":[{"id":"a"}],"meta":{"pagination":{"total":42}}}`)
	})

	n, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		assert.GreaterOrEqual(t, d, base)
		assert.Less(t, d, base+base/2)
	}
}

func TestRateLimiter_Pause(t *testing.T) {
	rl := NewRateLimiter(1000, 1000)
	rl.Pause(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, rl.Wait(ctx), context.DeadlineExceeded)
}

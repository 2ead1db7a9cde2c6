package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/config"
)

type fakeSite struct {
	mu      sync.Mutex
	docs    []batch.Document
	written map[string]string
	fail    map[string]bool
	closed  bool
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		written: make(map[string]string),
		fail:    make(map[string]bool),
		docs: []batch.Document{
			{ID: "p1", Title: "First", Status: "published", HTML: `<a href="https://old.com/x">x</a><img src="/a.png">`, UpdatedAt: "v1"},
			{ID: "p2", Title: "Second", Status: "draft", HTML: `<a href="http://old.com/y?z=1">y</a>`, UpdatedAt: "v1"},
			{ID: "p3", Title: "Third", Status: "published", HTML: `<p>plain</p>`, UpdatedAt: "v1"},
		},
	}
}

func (f *fakeSite) FetchAll(context.Context) ([]batch.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	docs := make([]batch.Document, len(f.docs))
	copy(docs, f.docs)
	return docs, nil
}

func (f *fakeSite) Write(_ context.Context, id, html, _ string) (batch.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[id] {
		return batch.Document{}, errors.New("UpdateCollisionError")
	}
	f.written[id] = html
	for i := range f.docs {
		if f.docs[i].ID == id {
			f.docs[i].HTML = html
		}
	}
	return batch.Document{ID: id, HTML: html}, nil
}

func (f *fakeSite) Ping(context.Context) (int, error) { return len(f.docs), nil }

func (f *fakeSite) Close() { f.closed = true }

func run(t *testing.T, site *fakeSite, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GHOST_URL", "https://blog.test")
	t.Setenv("HISTORY_DB", filepath.Join(t.TempDir(), "history.db"))
	t.Setenv("DRY_RUN", "")

	root := NewRootCmd(func(config.Config) (Site, error) { return site, nil })
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestScanLinks(t *testing.T) {
	out, err := run(t, newFakeSite(), "scan", "links", "old.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 3 posts: 2 with matching links, 2 links")
	assert.Contains(t, out, "https://old.com/x\n")
}

func TestScanLinks_Preview(t *testing.T) {
	site := newFakeSite()
	out, err := run(t, site, "scan", "links", "old.com", "--replacement", "new.com")
	require.NoError(t, err)
	assert.Contains(t, out, "https://old.com/x -> https://new.com/x")
	assert.Contains(t, out, "http://old.com/y?z=1 -> http://new.com/y?z=1")
	assert.Empty(t, site.written)
}

func TestScanImages(t *testing.T) {
	out, err := run(t, newFakeSite(), "scan", "images")
	require.NoError(t, err)
	assert.Contains(t, out, "1 images, 1 missing alt text in 1 posts")
	assert.Contains(t, out, "/a.png")
}

func TestReplaceLinks(t *testing.T) {
	site := newFakeSite()
	out, err := run(t, site, "replace-links", "old.com", "new.com", "--post", "p2")
	require.NoError(t, err)
	assert.Equal(t, `<a href="http://new.com/y?z=1">y</a>`, site.written["p2"])
	assert.NotContains(t, site.written, "p1")
	assert.Contains(t, out, "3 posts scanned, 1 updated, 0 failed, 1 changes")
	assert.Contains(t, out, "Run recorded as")
	assert.True(t, site.closed)
}

func TestReplaceLinks_DryRun(t *testing.T) {
	site := newFakeSite()
	out, err := run(t, site, "replace-links", "old.com", "new.com", "--dry-run", "--no-history")
	require.NoError(t, err)
	assert.Empty(t, site.written)
	assert.Contains(t, out, "2 would update")
	assert.NotContains(t, out, "Run recorded as")
}

func TestReplaceLinks_FailureIsError(t *testing.T) {
	site := newFakeSite()
	site.fail["p1"] = true
	out, err := run(t, site, "replace-links", "old.com", "new.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 posts failed")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, site.written, "p2")
}

func TestReplaceLinks_BadArgs(t *testing.T) {
	_, err := run(t, newFakeSite(), "replace-links", "old.com")
	assert.Error(t, err)
}

func TestFixAlt(t *testing.T) {
	site := newFakeSite()
	_, err := run(t, site, "fix-alt", "p1", "/a.png", `A "quoted" cat`)
	require.NoError(t, err)
	assert.Equal(t, `<a href="https://old.com/x">x</a><img alt="A &quot;quoted&quot; cat" src="/a.png">`, site.written["p1"])

	_, err = run(t, site, "fix-alt", "p1", "/a.png", "  ")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	site := newFakeSite()
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(`
links:
  - pattern: old.com
    replacement: mid.com
  - pattern: mid.com
    replacement: new.com
alt_text:
  - post_id: p1
    src: /a.png
    alt: Diagram
`), 0o644))

	out, err := run(t, site, "apply", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "Rule 2: mid.com -> new.com")
	assert.Equal(t, `<a href="https://new.com/x">x</a><img alt="Diagram" src="/a.png">`, site.written["p1"])
	assert.Equal(t, `<a href="http://new.com/y?z=1">y</a>`, site.written["p2"])
}

func TestPing(t *testing.T) {
	out, err := run(t, newFakeSite(), "ping")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected to https://blog.test (3 posts)")
}

func TestRuns(t *testing.T) {
	site := newFakeSite()
	t.Setenv("GHOST_URL", "https://blog.test")
	db := filepath.Join(t.TempDir(), "history.db")

	exec := func(args ...string) string {
		t.Setenv("HISTORY_DB", db)
		root := NewRootCmd(func(config.Config) (Site, error) { return site, nil })
		buf := new(bytes.Buffer)
		root.SetOut(buf)
		root.SetArgs(args)
		require.NoError(t, root.Execute())
		return buf.String()
	}

	exec("replace-links", "old.com", "new.com")
	out := exec("runs")
	assert.Contains(t, out, "links")
	assert.Contains(t, out, "2 updated, 0 failed, 2 changes")
}

func TestSession_ClosesSiteWhenHistoryFails(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	t.Setenv("GHOST_URL", "https://blog.test")
	t.Setenv("HISTORY_DB", filepath.Join(blocker, "history.db"))

	site := newFakeSite()
	root := NewRootCmd(func(config.Config) (Site, error) { return site, nil })
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs([]string{"ping"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "history")
	assert.True(t, site.closed)
}

func TestConnectGhost_RequiresURL(t *testing.T) {
	_, err := ConnectGhost(config.Config{GhostAdminKey: "id:00"})
	assert.ErrorContains(t, err, "GHOST_URL")
}

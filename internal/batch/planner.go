// Package batch applies content edits across many documents and writes
// the results back through a Store. A failed write is recorded against
// its document and never stops the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nishantmodak/ghost-admin/internal/content"
)

// DocumentEditOutcome is the result of editing one document.
// Success is false only when the write failed, and then ChangeCount is 0.
type DocumentEditOutcome struct {
	DocumentID  string `json:"id"`
	Title       string `json:"title"`
	Success     bool   `json:"success"`
	ChangeCount int    `json:"changes"`
	Error       string `json:"error,omitempty"`
}

// Options controls how a batch runs.
type Options struct {
	Concurrency int  // documents edited at once; values below 1 mean 1
	DryRun      bool // compute outcomes without writing
}

// Planner edits documents and writes them back.
type Planner struct {
	store Store
	log   *slog.Logger
	opts  Options
}

func NewPlanner(store Store, log *slog.Logger, opts Options) *Planner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Planner{store: store, log: log, opts: opts}
}

// editFunc transforms one document and reports how many changes it made.
type editFunc func(doc Document) (string, int)

// ApplyAltText applies alt text requests to the documents they name.
// Every request is validated before any document is touched.
func (p *Planner) ApplyAltText(ctx context.Context, docs []Document, reqs []content.AltUpdateRequest) ([]DocumentEditOutcome, error) {
	for i, r := range reqs {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("alt update %d: %w", i, err)
		}
	}

	groups := GroupAltUpdates(reqs)
	var targets []Document
	for _, d := range docs {
		if len(groups[d.ID]) > 0 {
			targets = append(targets, d)
		}
	}

	return p.run(ctx, targets, func(doc Document) (string, int) {
		res := content.ApplyAltUpdates(doc.HTML, groups[doc.ID])
		return res.HTML, res.Updated
	})
}

// ReplaceLinks rewrites links in every document when ids is nil, or only
// in those whose id is listed in ids. A non-nil empty ids edits nothing.
func (p *Planner) ReplaceLinks(ctx context.Context, docs []Document, spec content.LinkReplacementSpec, ids []string) ([]DocumentEditOutcome, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("link replacement: %w", err)
	}

	targets := docs
	if ids != nil {
		want := make(map[string]bool, len(ids))
		for _, id := range ids {
			want[id] = true
		}
		targets = nil
		for _, d := range docs {
			if want[d.ID] {
				targets = append(targets, d)
			}
		}
	}

	return p.run(ctx, targets, func(doc Document) (string, int) {
		res, err := content.RewriteLinks(doc.HTML, spec)
		if err != nil {
			return doc.HTML, 0
		}
		return res.HTML, len(res.Replacements)
	})
}

// GroupAltUpdates groups requests by document id, then image source.
// A later request for the same image replaces an earlier one.
func GroupAltUpdates(reqs []content.AltUpdateRequest) map[string]map[string]string {
	groups := make(map[string]map[string]string)
	for _, r := range reqs {
		g, ok := groups[r.DocumentID]
		if !ok {
			g = make(map[string]string)
			groups[r.DocumentID] = g
		}
		g[r.ImageSource] = r.NewAltText
	}
	return groups
}

// run edits docs with bounded concurrency. Outcomes keep the order of
// docs; documents left unchanged are omitted. Cancellation is checked
// before each document, and the outcomes gathered so far are returned
// with the context error.
func (p *Planner) run(ctx context.Context, docs []Document, edit editFunc) ([]DocumentEditOutcome, error) {
	slots := make([]*DocumentEditOutcome, len(docs))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[i] = p.apply(ctx, doc, edit)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	var outcomes []DocumentEditOutcome
	for _, o := range slots {
		if o != nil {
			outcomes = append(outcomes, *o)
		}
	}
	return outcomes, err
}

func (p *Planner) apply(ctx context.Context, doc Document, edit editFunc) *DocumentEditOutcome {
	newHTML, changes := edit(doc)
	if changes == 0 {
		return nil
	}

	log := p.log.With("doc_id", doc.ID)
	out := &DocumentEditOutcome{DocumentID: doc.ID, Title: doc.Title}
	if p.opts.DryRun {
		log.Info("dry run, skipping write", "changes", changes)
		out.Success = true
		out.ChangeCount = changes
		return out
	}

	if err := p.write(ctx, doc, newHTML); err != nil {
		log.Error("write failed", "error", err)
		out.Error = err.Error()
		return out
	}
	log.Info("document updated", "changes", changes)
	out.Success = true
	out.ChangeCount = changes
	return out
}

// write calls the store, turning a panic into an error so one bad
// document cannot take the batch down.
func (p *Planner) write(ctx context.Context, doc Document, html string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write panicked: %v", r)
		}
	}()
	_, err = p.store.Write(ctx, doc.ID, html, doc.UpdatedAt)
	return err
}

// Summary totals a batch.
type Summary struct {
	Updated int `json:"postsUpdated"`
	Failed  int `json:"postsFailed"`
	Changes int `json:"totalChanges"`
}

func Summarize(outcomes []DocumentEditOutcome) Summary {
	var s Summary
	for _, o := range outcomes {
		if o.Success {
			s.Updated++
			s.Changes += o.ChangeCount
		} else {
			s.Failed++
		}
	}
	return s
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/content"
	"github.com/nishantmodak/ghost-admin/internal/history"
)

// Worker processes a single batch job.
type Worker struct {
	store       batch.Store
	recorder    Recorder
	log         *slog.Logger
	concurrency int
}

func NewWorker(store batch.Store, recorder Recorder, log *slog.Logger, concurrency int) *Worker {
	return &Worker{
		store:       store,
		recorder:    recorder,
		log:         log,
		concurrency: concurrency,
	}
}

// Process fetches every document, applies the job's edits and records
// the run.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind, "dry_run", job.DryRun)
	started := time.Now()

	// Phase 1: Fetch
	job.SetStatus(StatusFetching, "fetching posts")
	docs, err := w.store.FetchAll(ctx)
	if err != nil {
		log.Error("fetch failed", "error", err)
		job.AddError(fmt.Sprintf("fetch: %s", err))
		job.SetStatus(StatusFailed, "fetching posts")
		return
	}
	job.SetDocumentsTotal(len(docs))
	log.Info("fetched posts", "count", len(docs))

	// Phase 2: Apply
	job.SetStatus(StatusApplying, "applying edits")
	planner := batch.NewPlanner(w.store, log, batch.Options{
		Concurrency: w.concurrency,
		DryRun:      job.DryRun,
	})

	var (
		outcomes []batch.DocumentEditOutcome
		params   any
	)
	switch job.Kind {
	case history.KindLinks:
		params = struct {
			Spec    content.LinkReplacementSpec `json:"spec"`
			PostIDs []string                    `json:"post_ids,omitempty"`
		}{job.links, job.postIDs}
		outcomes, err = planner.ReplaceLinks(ctx, docs, job.links, job.postIDs)
	case history.KindAlt:
		params = job.altReqs
		outcomes, err = planner.ApplyAltText(ctx, docs, job.altReqs)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	job.SetOutcomes(outcomes)
	if err != nil {
		log.Error("batch stopped", "error", err)
		job.AddError(err.Error())
	}

	sum := batch.Summarize(outcomes)
	log.Info("batch complete", "updated", sum.Updated, "failed", sum.Failed, "changes", sum.Changes)

	// Phase 3: Record
	if w.recorder != nil {
		job.SetStatus(StatusRecording, "recording run")
		run := history.Run{
			ID:         job.ID,
			Kind:       job.Kind,
			DryRun:     job.DryRun,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Summary:    sum,
			Outcomes:   outcomes,
		}
		if b, mErr := json.Marshal(params); mErr == nil {
			run.Params = b
		}
		if err != nil {
			run.Error = err.Error()
		}
		// Record even if the job was cancelled.
		id, recErr := w.recorder.Record(context.WithoutCancel(ctx), run)
		if recErr != nil {
			log.Warn("history write failed", "error", recErr)
		} else {
			job.SetRunID(id)
		}
	}

	switch {
	case err != nil && len(outcomes) == 0:
		job.SetStatus(StatusFailed, "applying edits")
	case err != nil || sum.Failed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

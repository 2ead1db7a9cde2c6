package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/content"
	"github.com/nishantmodak/ghost-admin/internal/pipeline"
)

const maxBodyBytes = 1 << 20

type linksRequest struct {
	Pattern      string   `json:"pattern"`
	Replacement  string   `json:"replacement"`
	PreservePath *bool    `json:"preservePath"` // default true
	PostIDs      []string `json:"postIds"`
	DryRun       *bool    `json:"dryRun"`
}

func (l linksRequest) spec() content.LinkReplacementSpec {
	preserve := true
	if l.PreservePath != nil {
		preserve = *l.PreservePath
	}
	return content.LinkReplacementSpec{
		Pattern:      l.Pattern,
		Replacement:  l.Replacement,
		PreservePath: preserve,
	}
}

func (s *Server) dryRun(v *bool) bool {
	if v != nil {
		return *v
	}
	return s.cfg.DryRun
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// handleLinksScan lists matching links per post. With a replacement it
// also previews the rewritten HTML.
func (s *Server) handleLinksScan(w http.ResponseWriter, r *http.Request) {
	var req linksRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Pattern == "" {
		jsonError(w, "missing search pattern", http.StatusBadRequest)
		return
	}

	docs, err := s.orchestrator.Store().FetchAll(r.Context())
	if err != nil {
		s.log.Error("fetch posts failed", "error", err)
		jsonError(w, "failed to fetch posts: "+err.Error(), http.StatusBadGateway)
		return
	}

	var reports []batch.LinkReport
	if req.Replacement != "" {
		reports, err = batch.PreviewLinks(docs, req.spec())
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		reports = batch.AuditLinks(docs, req.Pattern)
	}

	total := 0
	for _, rep := range reports {
		total += len(rep.Links)
	}
	if reports == nil {
		reports = []batch.LinkReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalPosts":    len(docs),
		"matchingPosts": len(reports),
		"totalLinks":    total,
		"posts":         reports,
	})
}

// handleLinksUpdate queues a link replacement job.
func (s *Server) handleLinksUpdate(w http.ResponseWriter, r *http.Request) {
	var req linksRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	spec := req.spec()
	if err := spec.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.submit(w, pipeline.NewLinksJob(spec, req.PostIDs, s.dryRun(req.DryRun)))
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("job queued", "job_id", job.ID, "kind", job.Kind, "dry_run", job.DryRun)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"dry_run":  job.DryRun,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

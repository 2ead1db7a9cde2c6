package api

import (
	"net/http"

	"github.com/nishantmodak/ghost-admin/internal/batch"
	"github.com/nishantmodak/ghost-admin/internal/content"
	"github.com/nishantmodak/ghost-admin/internal/pipeline"
)

// handleImagesScan reports images missing alt text along with coverage
// stats for the whole site.
func (s *Server) handleImagesScan(w http.ResponseWriter, r *http.Request) {
	docs, err := s.orchestrator.Store().FetchAll(r.Context())
	if err != nil {
		s.log.Error("fetch posts failed", "error", err)
		jsonError(w, "failed to fetch posts: "+err.Error(), http.StatusBadGateway)
		return
	}

	reports := batch.AuditImages(docs)
	if reports == nil {
		reports = []batch.ImageReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": batch.CollectImageStats(docs),
		"posts": reports,
	})
}

type imagesRequest struct {
	Updates []content.AltUpdateRequest `json:"updates"`
	DryRun  *bool                      `json:"dryRun"`
}

// handleImagesUpdate queues an alt text job.
func (s *Server) handleImagesUpdate(w http.ResponseWriter, r *http.Request) {
	var req imagesRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Updates) == 0 {
		jsonError(w, "no updates provided", http.StatusBadRequest)
		return
	}
	for _, u := range req.Updates {
		if err := u.Validate(); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	s.submit(w, pipeline.NewAltJob(req.Updates, s.dryRun(req.DryRun)))
}

// handleImagesPreview shows the HTML each post would have after the
// updates, without writing anything.
func (s *Server) handleImagesPreview(w http.ResponseWriter, r *http.Request) {
	var req imagesRequest
	if err := decodeBody(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	docs, err := s.orchestrator.Store().FetchAll(r.Context())
	if err != nil {
		s.log.Error("fetch posts failed", "error", err)
		jsonError(w, "failed to fetch posts: "+err.Error(), http.StatusBadGateway)
		return
	}
	reports, err := batch.PreviewAltText(docs, req.Updates)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if reports == nil {
		reports = []batch.ImageReport{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": reports})
}

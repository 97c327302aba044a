package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/causalchain/internal/service"
)

type GraphHandler struct {
	svc *service.CausalService
}

func NewGraphHandler(svc *service.CausalService) *GraphHandler {
	return &GraphHandler{svc: svc}
}

func (h *GraphHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Metadata(r.Context()))
}

// Statistics serves the last snapshot from the background worker, computing
// one on demand if the worker has not run yet.
func (h *GraphHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.Statistics()
	if stats == nil {
		stats = h.svc.ComputeStatistics(r.Context())
	}
	writeJSON(w, http.StatusOK, stats)
}

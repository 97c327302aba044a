package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/service"
)

type EdgeHandler struct {
	svc *service.CausalService
}

func NewEdgeHandler(svc *service.CausalService) *EdgeHandler {
	return &EdgeHandler{svc: svc}
}

type createEdgeRequest struct {
	SourceID   string              `json:"source_id" validate:"required"`
	TargetID   string              `json:"target_id" validate:"required"`
	Relation   domain.RelationType `json:"relation" validate:"omitempty,oneof=causes enables prevents amplifies dampens correlates conflicts requires excludes"`
	Strength   *float64            `json:"strength" validate:"omitempty,min=0,max=1"`
	DelayMS    int64               `json:"delay_ms" validate:"min=0"`
	Conditions map[string]any      `json:"conditions"`
	Reasoning  string              `json:"reasoning"`
}

type listEdgesResponse struct {
	Edges []*domain.CausalEdge `json:"edges"`
	Count int                  `json:"count"`
}

// Create adds an edge. Both endpoints must already exist; a dangling
// reference is rejected with 422.
func (h *EdgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if msg, ok := decodeJSON(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	edge, err := h.svc.AddEdge(r.Context(), domain.NewEdge{
		SourceID:   req.SourceID,
		TargetID:   req.TargetID,
		Relation:   req.Relation,
		Strength:   req.Strength,
		DelayMS:    req.DelayMS,
		Conditions: req.Conditions,
		Reasoning:  req.Reasoning,
	})
	if err != nil {
		writeServiceError(w, err, "failed to add edge")
		return
	}

	writeJSON(w, http.StatusCreated, edge)
}

func (h *EdgeHandler) List(w http.ResponseWriter, r *http.Request) {
	edges := h.svc.ListEdges(r.Context())
	writeJSON(w, http.StatusOK, listEdgesResponse{Edges: edges, Count: len(edges)})
}

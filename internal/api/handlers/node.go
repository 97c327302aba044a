package handlers

import (
	"net/http"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"github.com/go-chi/chi/v5"
)

type NodeHandler struct {
	svc *service.CausalService
}

func NewNodeHandler(svc *service.CausalService) *NodeHandler {
	return &NodeHandler{svc: svc}
}

type createNodeRequest struct {
	Type          domain.NodeType      `json:"type" validate:"omitempty,oneof=decision event state constraint risk opportunity resource actor"`
	Timestamp     time.Time            `json:"timestamp"`
	Scale         int                  `json:"scale" validate:"omitempty,min=1,max=10"`
	Description   string               `json:"description" validate:"required"`
	DescriptionKo string               `json:"description_ko"`
	State         domain.NodeState     `json:"state" validate:"omitempty,oneof=potential imminent active completed prevented failed"`
	Probability   *float64             `json:"probability" validate:"omitempty,min=0,max=1"`
	Confidence    *float64             `json:"confidence" validate:"omitempty,min=0,max=1"`
	Impact        domain.ImpactMetrics `json:"impact"`
	Source        string               `json:"source"`
}

type listNodesResponse struct {
	Nodes []*domain.CausalNode `json:"nodes"`
	Count int                  `json:"count"`
}

func (h *NodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if msg, ok := decodeJSON(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	node, err := h.svc.AddNode(r.Context(), domain.NewNode{
		Type:          req.Type,
		Timestamp:     req.Timestamp,
		Scale:         req.Scale,
		Description:   req.Description,
		DescriptionKo: req.DescriptionKo,
		State:         req.State,
		Probability:   req.Probability,
		Confidence:    req.Confidence,
		Impact:        req.Impact,
		Source:        req.Source,
	})
	if err != nil {
		writeServiceError(w, err, "failed to add node")
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	nodes := h.svc.ListNodes(r.Context())
	writeJSON(w, http.StatusOK, listNodesResponse{Nodes: nodes, Count: len(nodes)})
}

func (h *NodeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, "failed to get node")
		return
	}
	writeJSON(w, http.StatusOK, node)
}

type updateNodeRequest struct {
	State         *domain.NodeState     `json:"state" validate:"omitempty,oneof=potential imminent active completed prevented failed"`
	Description   *string               `json:"description"`
	DescriptionKo *string               `json:"description_ko"`
	Probability   *float64              `json:"probability" validate:"omitempty,min=0,max=1"`
	Confidence    *float64              `json:"confidence" validate:"omitempty,min=0,max=1"`
	Scale         *int                  `json:"scale" validate:"omitempty,min=1,max=10"`
	Impact        *domain.ImpactMetrics `json:"impact"`
}

// Update patches node attributes. Adjacency cannot be changed here; add
// edges instead.
func (h *NodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateNodeRequest
	if msg, ok := decodeJSON(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	node, err := h.svc.UpdateNode(r.Context(), chi.URLParam(r, "id"), domain.NodeUpdate{
		State:         req.State,
		Description:   req.Description,
		DescriptionKo: req.DescriptionKo,
		Probability:   req.Probability,
		Confidence:    req.Confidence,
		Scale:         req.Scale,
		Impact:        req.Impact,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update node")
		return
	}

	writeJSON(w, http.StatusOK, node)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/causalchain/internal/cache"
	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxTraceDepth = 20

// ReasoningHandler serves the read-side analyses rooted at a node: chains,
// what-if, risk explanations, visualization data and typed queries.
type ReasoningHandler struct {
	svc    *service.CausalService
	chains *cache.Cache[*domain.CausalChain]
	viz    *cache.Cache[*domain.VisualizationData]
	logger *zap.Logger
}

func NewReasoningHandler(
	svc *service.CausalService,
	chains *cache.Cache[*domain.CausalChain],
	viz *cache.Cache[*domain.VisualizationData],
	logger *zap.Logger,
) *ReasoningHandler {
	return &ReasoningHandler{svc: svc, chains: chains, viz: viz, logger: logger}
}

// requireNode writes a 404 and returns false when the path node is unknown.
func (h *ReasoningHandler) requireNode(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := h.svc.GetNode(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to get node")
		return "", false
	}
	return id, true
}

func (h *ReasoningHandler) Trace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireNode(w, r)
	if !ok {
		return
	}

	dir := domain.DirectionForward
	if d := r.URL.Query().Get("direction"); d != "" {
		if !domain.ValidDirection(d) {
			writeError(w, http.StatusBadRequest, "direction must be forward or backward")
			return
		}
		dir = domain.Direction(d)
	}

	depth := service.DefaultMaxDepth
	if ds := r.URL.Query().Get("depth"); ds != "" {
		d, err := strconv.Atoi(ds)
		if err != nil || d < 1 || d > maxTraceDepth {
			writeError(w, http.StatusBadRequest, "depth must be between 1 and 20")
			return
		}
		depth = d
	}

	key := cache.TraceKey(id, dir, depth)
	if chain, ok := h.chains.Get(key); ok {
		writeJSON(w, http.StatusOK, chain)
		return
	}

	gen := h.chains.Generation()
	chain := h.svc.TraceChain(r.Context(), id, dir, depth)
	h.chains.PutAt(gen, key, chain)
	writeJSON(w, http.StatusOK, chain)
}

type whatIfRequest struct {
	Probability     *float64          `json:"probability" validate:"omitempty,min=0"`
	Confidence      *float64          `json:"confidence" validate:"omitempty,min=0,max=1"`
	State           *domain.NodeState `json:"state" validate:"omitempty,oneof=potential imminent active completed prevented failed"`
	Irreversibility *float64          `json:"irreversibility" validate:"omitempty,min=0,max=1"`
}

func (h *ReasoningHandler) WhatIf(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireNode(w, r)
	if !ok {
		return
	}

	var req whatIfRequest
	if msg, ok := decodeJSON(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res := h.svc.WhatIf(r.Context(), id, domain.HypotheticalChanges{
		Probability:     req.Probability,
		Confidence:      req.Confidence,
		State:           req.State,
		Irreversibility: req.Irreversibility,
	})
	writeJSON(w, http.StatusOK, res)
}

func (h *ReasoningHandler) Risk(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireNode(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, h.svc.ExplainRisk(r.Context(), id))
}

func (h *ReasoningHandler) Visualization(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireNode(w, r)
	if !ok {
		return
	}

	key := cache.VisualizationKey(id)
	if data, ok := h.viz.Get(key); ok {
		writeJSON(w, http.StatusOK, data)
		return
	}

	gen := h.viz.Generation()
	data := h.svc.GetVisualizationData(r.Context(), id)
	h.viz.PutAt(gen, key, data)
	writeJSON(w, http.StatusOK, data)
}

type queryRequest struct {
	ID       string              `json:"id"`
	Type     domain.QueryType    `json:"type" validate:"required"`
	Question string              `json:"question"`
	Context  domain.QueryContext `json:"context"`
	Options  domain.QueryOptions `json:"options"`
}

// Query runs a typed reasoning query. Unknown query types are not rejected
// here; they come back as a single "not recognized" observation.
func (h *ReasoningHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if msg, ok := decodeJSON(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Options.MaxDepth < 0 || req.Options.MaxDepth > maxTraceDepth {
		writeError(w, http.StatusBadRequest, "options.max_depth must be between 0 and 20")
		return
	}

	out, err := h.svc.Query(r.Context(), domain.CausalQuery{
		ID:       req.ID,
		Type:     req.Type,
		Question: req.Question,
		Context:  req.Context,
		Options:  req.Options,
	})
	if err != nil {
		h.logger.Debug("query rejected", zap.String("type", string(req.Type)), zap.Error(err))
		writeServiceError(w, err, "failed to run query")
		return
	}

	writeJSON(w, http.StatusOK, out)
}

package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/service"
)

type TaskHandler struct {
	svc *service.CausalService
}

func NewTaskHandler(svc *service.CausalService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type syncTaskRequest struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Scale     int    `json:"scale" validate:"min=0,max=10"`
	Domain    string `json:"domain"`
	Execution struct {
		Status domain.TaskStatus `json:"status"`
	} `json:"execution"`
	Irreversibility struct {
		Omega float64 `json:"omega" validate:"min=0,max=1"`
	} `json:"irreversibility"`
}

type syncTaskResponse struct {
	Node    *domain.CausalNode `json:"node"`
	Created bool               `json:"created"`
}

// Sync creates the node for a task, or refreshes it if the task id is
// already linked.
func (h *TaskHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncTaskRequest
	if msg, ok := decodeJSON(r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	node, created, err := h.svc.SyncTask(r.Context(), domain.TaskRecord{
		ID:              req.ID,
		Name:            req.Name,
		Scale:           req.Scale,
		Domain:          req.Domain,
		Execution:       domain.TaskExecution{Status: req.Execution.Status},
		Irreversibility: domain.TaskIrreversibility{Omega: req.Irreversibility.Omega},
	})
	if err != nil {
		writeServiceError(w, err, "failed to sync task")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, syncTaskResponse{Node: node, Created: created})
}

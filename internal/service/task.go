package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"go.uber.org/zap"
)

const (
	taskNodeConfidence = 0.9
	shortTermFalloff   = 0.7
)

// TaskToNode maps a task record onto node creation input. Impact is
// derived from the task's scale, domain and irreversibility omega.
func TaskToNode(task domain.TaskRecord) domain.NewNode {
	probability := 1.0
	confidence := taskNodeConfidence
	omega := clampUnit(task.Irreversibility.Omega)
	weight := clampUnit(float64(task.Scale) / maxScale)

	impact := domain.ImpactMetrics{
		Irreversibility: omega,
		Temporal: domain.TemporalImpact{
			Immediate: weight,
			ShortTerm: weight * shortTermFalloff,
			LongTerm:  omega,
		},
	}
	if task.Domain != "" {
		impact.Domains = map[string]float64{task.Domain: weight}
	}

	return domain.NewNode{
		Type:          domain.NodeTypeDecision,
		Scale:         task.Scale,
		Description:   task.Name,
		DescriptionKo: task.Name,
		State:         domain.MapTaskStatus(task.Execution.Status),
		Probability:   &probability,
		Confidence:    &confidence,
		Impact:        impact,
		TaskID:        task.ID,
	}
}

// SyncTask adds a node for task, or updates the node already linked to the
// task id. The bool reports whether a node was created. Two concurrent
// calls for the same new task id can both create a node; callers syncing
// from several goroutines must serialize per task.
func (s *CausalService) SyncTask(ctx context.Context, task domain.TaskRecord) (*domain.CausalNode, bool, error) {
	if task.ID == "" {
		return nil, false, fmt.Errorf("%w: task id is required", ErrInvalidNode)
	}

	s.mu.RLock()
	existing, found := s.store.NodeByTaskID(task.ID)
	var existingID string
	if found {
		existingID = existing.ID
	}
	s.mu.RUnlock()

	in := TaskToNode(task)
	if !found {
		node, err := s.AddNode(ctx, in)
		if err != nil {
			return nil, false, err
		}
		s.logger.Info("task linked to new node", zap.String("task_id", task.ID), zap.String("node_id", node.ID))
		return node, true, nil
	}

	upd := domain.NodeUpdate{
		State:         &in.State,
		Description:   &in.Description,
		DescriptionKo: &in.DescriptionKo,
		Impact:        &in.Impact,
	}
	if in.Scale != 0 {
		upd.Scale = &in.Scale
	}
	node, err := s.UpdateNode(ctx, existingID, upd)
	if err != nil {
		return nil, false, err
	}
	return node, false, nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

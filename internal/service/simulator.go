package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	whatIfTraceDepth = 10
	notFoundMessage  = "node not found"
)

// WhatIf estimates how a hypothetical change to nodeID shifts the aggregate
// risk of its forward chain. The graph is never modified: the existing
// chain's cumulative risk is scaled by the hypothetical probability.
func (s *CausalService) WhatIf(ctx context.Context, nodeID string, changes domain.HypotheticalChanges) *domain.WhatIfResult {
	_, span := s.tracer.Start(ctx, "CausalService.WhatIf", trace.WithAttributes(attribute.String("node_id", nodeID)))
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, _ := s.whatIf(nodeID, changes)
	span.SetAttributes(
		attribute.Int("affected_nodes", len(result.AffectedNodes)),
		attribute.Float64("risk_change", result.RiskChange),
	)
	return result
}

// whatIf must be called with s.mu held. The chain is nil when the node does
// not exist.
func (s *CausalService) whatIf(nodeID string, changes domain.HypotheticalChanges) (*domain.WhatIfResult, *domain.CausalChain) {
	node, ok := s.store.Node(nodeID)
	if !ok {
		return &domain.WhatIfResult{
			AffectedNodes: []string{},
			RiskChange:    0,
			Explanation:   notFoundMessage,
		}, nil
	}

	chain := s.buildChain(nodeID, s.trace(nodeID, whatIfTraceDepth, domain.DirectionForward), domain.DirectionForward)

	affected := []string{}
	seen := make(map[string]bool)
	for _, p := range chain.Paths {
		for _, id := range p.NodeIDs {
			if !seen[id] {
				seen[id] = true
				affected = append(affected, id)
			}
		}
	}

	factor := 1.0
	if changes.Probability != nil {
		factor = *changes.Probability
	}
	originalRisk := chain.CumulativeRisk
	newRisk := originalRisk * factor
	riskChange := newRisk - originalRisk

	return &domain.WhatIfResult{
		AffectedNodes: affected,
		RiskChange:    riskChange,
		Explanation:   describeRiskChange(node.Description, len(affected), riskChange),
	}, chain
}

func describeRiskChange(description string, affected int, delta float64) string {
	direction := "is unchanged"
	switch {
	case delta > 0:
		direction = "increases"
	case delta < 0:
		direction = "decreases"
	}
	return fmt.Sprintf("Hypothetical change to %q affects %d nodes; aggregate risk %s by %.1f%%",
		description, affected, direction, math.Abs(delta)*100)
}

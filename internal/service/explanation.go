package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Harshitk-cp/causalchain/internal/domain"
)

const (
	explainTraceDepth       = 3
	visualizationTraceDepth = 5

	// Nodes above this irreversibility need sign-off one scale level up.
	escalationThreshold = 0.7

	baseVisualNodeSize = 10
	visualSizeSpread   = 30
)

// ExplainRisk renders a fixed-format risk report for a single node. A
// missing node yields the literal "node not found".
func (s *CausalService) ExplainRisk(ctx context.Context, nodeID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.store.Node(nodeID)
	if !ok {
		return notFoundMessage
	}

	var causes, effects []string
	seen := make(map[string]bool)
	for _, p := range s.trace(nodeID, explainTraceDepth, domain.DirectionBackward) {
		if first := p[0]; first != nodeID && !seen[first] {
			seen[first] = true
			causes = append(causes, s.describe(first))
		}
	}
	seen = make(map[string]bool)
	for _, p := range s.trace(nodeID, explainTraceDepth, domain.DirectionForward) {
		if last := p[len(p)-1]; last != nodeID && !seen[last] {
			seen[last] = true
			effects = append(effects, s.describe(last))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Risk analysis: %s\n", node.Description)
	fmt.Fprintf(&b, "Risk level: %d%%\n", int(math.Round(node.Impact.Irreversibility*100)))
	b.WriteString("\nCauses:\n")
	writeNumbered(&b, causes)
	b.WriteString("Effects:\n")
	writeNumbered(&b, effects)
	b.WriteString("\n")
	b.WriteString(recommendation(node))
	return b.String()
}

func recommendation(node *domain.CausalNode) string {
	if node.Impact.Irreversibility > escalationThreshold {
		return fmt.Sprintf("Recommendation: escalation required to scale %d (irreversibility above %.2f)",
			node.Scale+1, escalationThreshold)
	}
	return "Recommendation: may proceed"
}

func writeNumbered(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("- none identified\n")
		return
	}
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

func (s *CausalService) describe(id string) string {
	if node, ok := s.store.Node(id); ok {
		return node.Description
	}
	return id
}

// GetVisualizationData returns the nodes and edges reachable forward from
// rootID within five hops, shaped for a graph renderer.
func (s *CausalService) GetVisualizationData(ctx context.Context, rootID string) *domain.VisualizationData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &domain.VisualizationData{
		Nodes: []domain.VisualNode{},
		Edges: []domain.VisualEdge{},
	}

	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)
	for _, p := range s.trace(rootID, visualizationTraceDepth, domain.DirectionForward) {
		for _, id := range p {
			if seenNodes[id] {
				continue
			}
			seenNodes[id] = true
			node, ok := s.store.Node(id)
			if !ok {
				continue
			}
			data.Nodes = append(data.Nodes, domain.VisualNode{
				ID:    node.ID,
				Label: node.Description,
				Color: scaleColor(node.Scale),
				Size:  baseVisualNodeSize + node.Impact.Irreversibility*visualSizeSpread,
			})
		}
		for _, id := range s.edgeIDs(p) {
			if seenEdges[id] {
				continue
			}
			seenEdges[id] = true
			edge, ok := s.store.Edge(id)
			if !ok {
				continue
			}
			data.Edges = append(data.Edges, domain.VisualEdge{
				Source:   edge.SourceID,
				Target:   edge.TargetID,
				Label:    edge.Reasoning,
				Strength: edge.Strength,
			})
		}
	}
	return data
}

func scaleColor(scale int) string {
	switch {
	case scale >= 8:
		return "#dc2626"
	case scale >= 5:
		return "#f59e0b"
	case scale >= 3:
		return "#3b82f6"
	default:
		return "#10b981"
	}
}

package service

import (
	"context"
	"strings"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const pathLabelSeparator = " -> "

// BuildChain aggregates raw traversal paths into a CausalChain.
func (s *CausalService) BuildChain(rootID string, paths [][]string, dir domain.Direction) *domain.CausalChain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildChain(rootID, paths, dir)
}

// TraceChain traces from id in the given direction, builds the chain and
// emits chain_generated.
func (s *CausalService) TraceChain(ctx context.Context, id string, dir domain.Direction, maxDepth int) *domain.CausalChain {
	_, span := s.tracer.Start(ctx, "CausalService.TraceChain", trace.WithAttributes(
		attribute.String("node_id", id),
		attribute.String("direction", string(dir)),
		attribute.Int("max_depth", maxDepth),
	))
	defer span.End()

	s.mu.RLock()
	chain := s.buildChain(id, s.trace(id, maxDepth, dir), dir)
	s.mu.RUnlock()

	span.SetAttributes(attribute.Int("paths", len(chain.Paths)))
	s.emit(domain.EventChainGenerated, chain)
	return chain
}

// buildChain must be called with s.mu held.
func (s *CausalService) buildChain(rootID string, paths [][]string, dir domain.Direction) *domain.CausalChain {
	chain := &domain.CausalChain{
		RootNodeID:      rootID,
		TerminalNodeIDs: []string{},
		Paths:           make([]domain.CausalPath, 0, len(paths)),
		BranchPoints:    []domain.BranchPoint{},
		Direction:       dir,
		GeneratedAt:     s.now(),
	}

	seenTerminal := make(map[string]bool)
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}

		terminal := p[len(p)-1]
		if dir == domain.DirectionBackward {
			terminal = p[0]
		}
		if !seenTerminal[terminal] {
			seenTerminal[terminal] = true
			chain.TerminalNodeIDs = append(chain.TerminalNodeIDs, terminal)
		}

		cp := s.buildPath(p)
		if len(p) > chain.Length {
			chain.Length = len(p)
		}
		if cp.Risk > chain.CumulativeRisk {
			chain.CumulativeRisk = cp.Risk
		}
		chain.Paths = append(chain.Paths, cp)
	}

	chain.BranchPoints = s.findBranchPoints(paths)
	return chain
}

// buildPath computes per-path metrics: probability is the product of node
// probabilities and risk is the worst irreversibility on the path.
func (s *CausalService) buildPath(ids []string) domain.CausalPath {
	cp := domain.CausalPath{
		NodeIDs:     append([]string{}, ids...),
		EdgeIDs:     s.edgeIDs(ids),
		Probability: 1,
	}

	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		node, ok := s.store.Node(id)
		if !ok {
			continue
		}
		cp.Probability *= node.Probability
		if node.Impact.Irreversibility > cp.Risk {
			cp.Risk = node.Impact.Irreversibility
		}
		labels = append(labels, node.Description)
	}
	cp.Label = strings.Join(labels, pathLabelSeparator)
	return cp
}

// edgeIDs resolves the edge for each consecutive pair by scanning the edge
// list in insertion order. Linear per pair; an adjacency index keyed by
// (source, target) would replace this for large graphs.
func (s *CausalService) edgeIDs(ids []string) []string {
	out := []string{}
	for i := 0; i+1 < len(ids); i++ {
		if id, ok := s.findEdge(ids[i], ids[i+1]); ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *CausalService) findEdge(sourceID, targetID string) (string, bool) {
	for _, e := range s.store.Edges() {
		if e.SourceID == sourceID && e.TargetID == targetID {
			return e.ID, true
		}
	}
	return "", false
}

// findBranchPoints reports nodes that occur in more than one path and have
// more than one effect. With no conditional model every branch gets the
// same probability.
func (s *CausalService) findBranchPoints(paths [][]string) []domain.BranchPoint {
	counts := make(map[string]int)
	var order []string
	for _, p := range paths {
		inPath := make(map[string]bool, len(p))
		for _, id := range p {
			if inPath[id] {
				continue
			}
			inPath[id] = true
			if counts[id] == 0 {
				order = append(order, id)
			}
			counts[id]++
		}
	}

	points := []domain.BranchPoint{}
	for _, id := range order {
		if counts[id] <= 1 {
			continue
		}
		node, ok := s.store.Node(id)
		if !ok || len(node.Effects) <= 1 {
			continue
		}

		p := 1 / float64(len(node.Effects))
		bp := domain.BranchPoint{NodeID: id, Branches: make([]domain.Branch, 0, len(node.Effects))}
		for _, target := range node.Effects {
			edgeID, _ := s.findEdge(id, target)
			bp.Branches = append(bp.Branches, domain.Branch{
				TargetID:    target,
				EdgeID:      edgeID,
				Probability: p,
			})
		}
		points = append(points, bp)
	}
	return points
}

package service

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/events"
	"github.com/Harshitk-cp/causalchain/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *CausalService {
	t.Helper()
	logger := zap.NewNop()
	return NewCausalService(store.NewGraphStore(), events.NewBus(logger), logger)
}

type nodeOpt func(*domain.NewNode)

func withIrreversibility(v float64) nodeOpt {
	return func(n *domain.NewNode) { n.Impact.Irreversibility = v }
}

func withProbability(v float64) nodeOpt {
	return func(n *domain.NewNode) { n.Probability = &v }
}

func withConfidence(v float64) nodeOpt {
	return func(n *domain.NewNode) { n.Confidence = &v }
}

func withScale(v int) nodeOpt {
	return func(n *domain.NewNode) { n.Scale = v }
}

func withType(t domain.NodeType) nodeOpt {
	return func(n *domain.NewNode) { n.Type = t }
}

func mustAddNode(t *testing.T, s *CausalService, description string, opts ...nodeOpt) *domain.CausalNode {
	t.Helper()
	in := domain.NewNode{Description: description}
	for _, opt := range opts {
		opt(&in)
	}
	n, err := s.AddNode(context.Background(), in)
	require.NoError(t, err)
	return n
}

func mustAddEdge(t *testing.T, s *CausalService, from, to *domain.CausalNode) *domain.CausalEdge {
	t.Helper()
	e, err := s.AddEdge(context.Background(), domain.NewEdge{
		SourceID:  from.ID,
		TargetID:  to.ID,
		Reasoning: from.Description + " leads to " + to.Description,
	})
	require.NoError(t, err)
	return e
}

// linearGraph builds D1 -> E1 -> E2 where D1 is a highly irreversible
// decision and E2 has no further effects.
type linearGraph struct {
	s          *CausalService
	d1, e1, e2 *domain.CausalNode
	d1e1, e1e2 *domain.CausalEdge
}

func newLinearGraph(t *testing.T) *linearGraph {
	t.Helper()
	s := newTestService(t)
	g := &linearGraph{s: s}
	g.d1 = mustAddNode(t, s, "D1", withType(domain.NodeTypeDecision), withIrreversibility(0.9), withScale(6), withConfidence(0.9))
	g.e1 = mustAddNode(t, s, "E1", withType(domain.NodeTypeEvent), withIrreversibility(0.2), withConfidence(0.8))
	g.e2 = mustAddNode(t, s, "E2", withType(domain.NodeTypeEvent), withIrreversibility(0.4), withConfidence(0.7))
	g.d1e1 = mustAddEdge(t, s, g.d1, g.e1)
	g.e1e2 = mustAddEdge(t, s, g.e1, g.e2)
	return g
}

// diamondGraph builds A -> B -> D and A -> C -> D.
type diamondGraph struct {
	s          *CausalService
	a, b, c, d *domain.CausalNode
}

func newDiamondGraph(t *testing.T) *diamondGraph {
	t.Helper()
	s := newTestService(t)
	g := &diamondGraph{s: s}
	g.a = mustAddNode(t, s, "A", withIrreversibility(0.1), withProbability(0.5))
	g.b = mustAddNode(t, s, "B", withIrreversibility(0.8), withProbability(0.5))
	g.c = mustAddNode(t, s, "C", withIrreversibility(0.3), withProbability(0.4))
	g.d = mustAddNode(t, s, "D", withIrreversibility(0.2))
	mustAddEdge(t, s, g.a, g.b)
	mustAddEdge(t, s, g.a, g.c)
	mustAddEdge(t, s, g.b, g.d)
	mustAddEdge(t, s, g.c, g.d)
	return g
}

func ids(nodes ...*domain.CausalNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

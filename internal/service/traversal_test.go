package service

import (
	"testing"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceForward_LinearChain(t *testing.T) {
	g := newLinearGraph(t)

	paths := g.s.TraceForward(g.d1.ID, 5)

	require.Len(t, paths, 1)
	assert.Equal(t, ids(g.d1, g.e1, g.e2), paths[0])
}

func TestTraceBackward_ReturnsCausalOrder(t *testing.T) {
	g := newLinearGraph(t)

	paths := g.s.TraceBackward(g.e2.ID, 5)

	require.Len(t, paths, 1)
	assert.Equal(t, ids(g.d1, g.e1, g.e2), paths[0])
}

func TestTrace_UnknownNodeYieldsNoPaths(t *testing.T) {
	g := newLinearGraph(t)

	assert.Empty(t, g.s.TraceForward("missing", 5))
	assert.Empty(t, g.s.TraceBackward("missing", 5))
	assert.NotNil(t, g.s.TraceForward("missing", 5))
}

func TestTrace_IsolatedNodeIsItsOwnPath(t *testing.T) {
	s := newTestService(t)
	n := mustAddNode(t, s, "alone")

	assert.Equal(t, [][]string{{n.ID}}, s.TraceForward(n.ID, 5))
	assert.Equal(t, [][]string{{n.ID}}, s.TraceBackward(n.ID, 5))
}

func TestTraceForward_CycleTerminates(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")
	b := mustAddNode(t, s, "B")
	c := mustAddNode(t, s, "C")
	mustAddEdge(t, s, a, b)
	mustAddEdge(t, s, b, c)
	mustAddEdge(t, s, c, a)

	paths := s.TraceForward(a.ID, 5)

	require.NotEmpty(t, paths)
	for _, p := range paths {
		seen := make(map[string]bool)
		for _, id := range p {
			if seen[id] {
				t.Fatalf("path %v repeats node %s", p, id)
			}
			seen[id] = true
		}
	}
	assert.Equal(t, [][]string{ids(a, b, c)}, paths)
}

func TestTraceForward_SelfLoop(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")
	mustAddEdge(t, s, a, a)

	assert.Equal(t, [][]string{{a.ID}}, s.TraceForward(a.ID, 5))
}

func TestTraceForward_SiblingBranchesMayRevisit(t *testing.T) {
	g := newDiamondGraph(t)

	paths := g.s.TraceForward(g.a.ID, 5)

	assert.Equal(t, [][]string{
		ids(g.a, g.b, g.d),
		ids(g.a, g.c, g.d),
	}, paths)
}

func TestTraceBackward_Diamond(t *testing.T) {
	g := newDiamondGraph(t)

	paths := g.s.TraceBackward(g.d.ID, 5)

	assert.Equal(t, [][]string{
		ids(g.a, g.b, g.d),
		ids(g.a, g.c, g.d),
	}, paths)
}

func TestTraceForward_DepthBound(t *testing.T) {
	s := newTestService(t)
	var nodes []*domain.CausalNode
	for i := 0; i < 8; i++ {
		nodes = append(nodes, mustAddNode(t, s, "n"))
		if i > 0 {
			mustAddEdge(t, s, nodes[i-1], nodes[i])
		}
	}

	paths := s.TraceForward(nodes[0].ID, 2)
	assert.Equal(t, [][]string{ids(nodes[0], nodes[1], nodes[2])}, paths)

	paths = s.TraceForward(nodes[0].ID, 0)
	require.Len(t, paths, 1)
	assert.Len(t, paths[0], DefaultMaxDepth+1)
}

func TestTraceForward_Deterministic(t *testing.T) {
	g := newDiamondGraph(t)
	e := mustAddNode(t, g.s, "E")
	mustAddEdge(t, g.s, g.b, e)

	first := g.s.TraceForward(g.a.ID, 5)
	second := g.s.TraceForward(g.a.ID, 5)

	assert.Equal(t, first, second)
	assert.Len(t, first, 3)
}

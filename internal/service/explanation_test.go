package service

import (
	"context"
	"testing"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainRisk_HighIrreversibilityEscalates(t *testing.T) {
	g := newLinearGraph(t)

	got := g.s.ExplainRisk(context.Background(), g.d1.ID)

	want := "Risk analysis: D1\n" +
		"Risk level: 90%\n" +
		"\n" +
		"Causes:\n" +
		"- none identified\n" +
		"Effects:\n" +
		"1. E2\n" +
		"\n" +
		"Recommendation: escalation required to scale 7 (irreversibility above 0.70)"
	assert.Equal(t, want, got)
}

func TestExplainRisk_IntermediateNode(t *testing.T) {
	g := newLinearGraph(t)

	got := g.s.ExplainRisk(context.Background(), g.e1.ID)

	assert.Contains(t, got, "Risk level: 20%\n")
	assert.Contains(t, got, "Causes:\n1. D1\n")
	assert.Contains(t, got, "Effects:\n1. E2\n")
	assert.Contains(t, got, "Recommendation: may proceed")
}

func TestExplainRisk_ThresholdIsExclusive(t *testing.T) {
	s := newTestService(t)
	n := mustAddNode(t, s, "borderline", withIrreversibility(0.7))
	low := mustAddNode(t, s, "low", withIrreversibility(0.3))
	high := mustAddNode(t, s, "high", withIrreversibility(0.85), withScale(10))

	assert.Contains(t, s.ExplainRisk(context.Background(), n.ID), "Recommendation: may proceed")
	assert.Contains(t, s.ExplainRisk(context.Background(), low.ID), "Recommendation: may proceed")
	assert.Contains(t, s.ExplainRisk(context.Background(), high.ID), "escalation required to scale 11")
}

func TestExplainRisk_DeduplicatesCauses(t *testing.T) {
	g := newDiamondGraph(t)

	got := g.s.ExplainRisk(context.Background(), g.d.ID)

	assert.Contains(t, got, "Causes:\n1. A\nEffects:\n")
}

func TestExplainRisk_NodeNotFound(t *testing.T) {
	s := newTestService(t)

	assert.Equal(t, "node not found", s.ExplainRisk(context.Background(), "ghost"))
}

func TestGetVisualizationData_LinearChain(t *testing.T) {
	g := newLinearGraph(t)

	data := g.s.GetVisualizationData(context.Background(), g.d1.ID)

	require.Len(t, data.Nodes, 3)
	require.Len(t, data.Edges, 2)

	root := data.Nodes[0]
	assert.Equal(t, g.d1.ID, root.ID)
	assert.Equal(t, "D1", root.Label)
	assert.Equal(t, "#f59e0b", root.Color)
	assert.InDelta(t, 37.0, root.Size, 1e-9)
	assert.InDelta(t, 16.0, data.Nodes[1].Size, 1e-9)

	edge := data.Edges[0]
	assert.Equal(t, g.d1.ID, edge.Source)
	assert.Equal(t, g.e1.ID, edge.Target)
	assert.Equal(t, "D1 leads to E1", edge.Label)
	assert.Equal(t, 1.0, edge.Strength)
}

func TestGetVisualizationData_DiamondDeduplicates(t *testing.T) {
	g := newDiamondGraph(t)

	data := g.s.GetVisualizationData(context.Background(), g.a.ID)

	assert.Len(t, data.Nodes, 4)
	assert.Len(t, data.Edges, 4)
}

func TestGetVisualizationData_MissingRoot(t *testing.T) {
	s := newTestService(t)

	data := s.GetVisualizationData(context.Background(), "ghost")

	assert.NotNil(t, data.Nodes)
	assert.NotNil(t, data.Edges)
	assert.Empty(t, data.Nodes)
	assert.Empty(t, data.Edges)
}

func TestScaleColor(t *testing.T) {
	tests := []struct {
		scale int
		want  string
	}{
		{10, "#dc2626"},
		{8, "#dc2626"},
		{7, "#f59e0b"},
		{5, "#f59e0b"},
		{4, "#3b82f6"},
		{3, "#3b82f6"},
		{2, "#10b981"},
		{1, "#10b981"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scaleColor(tt.scale), "scale %d", tt.scale)
	}
}

func TestExplainRisk_DoesNotEmitEvents(t *testing.T) {
	g := newLinearGraph(t)
	var got []domain.EventType
	g.s.Subscribe(func(e domain.GraphEvent) error {
		got = append(got, e.Type)
		return nil
	})

	g.s.ExplainRisk(context.Background(), g.d1.ID)
	g.s.GetVisualizationData(context.Background(), g.d1.ID)

	assert.Empty(t, got)
}

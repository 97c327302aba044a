package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCausalService_AddNodeDefaults(t *testing.T) {
	s := newTestService(t)

	n, err := s.AddNode(context.Background(), domain.NewNode{Description: "Ship v2"})
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, domain.NodeTypeDecision, n.Type)
	assert.Equal(t, domain.StatePotential, n.State)
	assert.Equal(t, 5, n.Scale)
	assert.Equal(t, 1.0, n.Probability)
	assert.Equal(t, 0.5, n.Confidence)
	assert.False(t, n.Timestamp.IsZero())
	assert.Empty(t, n.Causes)
	assert.Empty(t, n.Effects)
}

func TestCausalService_AddNodeAssignsUniqueIDs(t *testing.T) {
	s := newTestService(t)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		n := mustAddNode(t, s, "n")
		if seen[n.ID] {
			t.Fatalf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestCausalService_AddNodeValidation(t *testing.T) {
	bad := 1.5
	tests := []struct {
		name string
		in   domain.NewNode
	}{
		{"unknown type", domain.NewNode{Type: "meteor"}},
		{"unknown state", domain.NewNode{State: "melting"}},
		{"scale too high", domain.NewNode{Scale: 11}},
		{"negative scale", domain.NewNode{Scale: -1}},
		{"probability out of range", domain.NewNode{Probability: &bad}},
		{"confidence out of range", domain.NewNode{Confidence: &bad}},
		{"irreversibility out of range", domain.NewNode{Impact: domain.ImpactMetrics{Irreversibility: 2}}},
		{"temporal out of range", domain.NewNode{Impact: domain.ImpactMetrics{Temporal: domain.TemporalImpact{LongTerm: -0.1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t)
			_, err := s.AddNode(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidNode) {
				t.Fatalf("expected ErrInvalidNode, got %v", err)
			}
			assert.Equal(t, 0, s.Metadata(context.Background()).NodeCount)
		})
	}
}

func TestCausalService_AddEdgeMaintainsAdjacency(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")
	b := mustAddNode(t, s, "B")
	c := mustAddNode(t, s, "C")

	edges := []*domain.CausalEdge{
		mustAddEdge(t, s, a, b),
		mustAddEdge(t, s, a, c),
		mustAddEdge(t, s, b, c),
	}

	for _, e := range edges {
		src, err := s.GetNode(context.Background(), e.SourceID)
		require.NoError(t, err)
		dst, err := s.GetNode(context.Background(), e.TargetID)
		require.NoError(t, err)

		assert.Contains(t, src.Effects, dst.ID)
		assert.Contains(t, dst.Causes, src.ID)
	}

	gotA, _ := s.GetNode(context.Background(), a.ID)
	assert.Equal(t, []string{b.ID, c.ID}, gotA.Effects)
	gotC, _ := s.GetNode(context.Background(), c.ID)
	assert.Equal(t, []string{a.ID, b.ID}, gotC.Causes)
}

func TestCausalService_AddEdgeDefaults(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")
	b := mustAddNode(t, s, "B")

	e, err := s.AddEdge(context.Background(), domain.NewEdge{SourceID: a.ID, TargetID: b.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, domain.RelationCauses, e.Relation)
	assert.Equal(t, 1.0, e.Strength)
}

func TestCausalService_AddEdgeRejectsDanglingEndpoints(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")

	_, err := s.AddEdge(context.Background(), domain.NewEdge{SourceID: a.ID, TargetID: "ghost"})
	assert.ErrorIs(t, err, ErrDanglingEdge)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = s.AddEdge(context.Background(), domain.NewEdge{SourceID: "ghost", TargetID: a.ID})
	assert.ErrorIs(t, err, ErrDanglingEdge)

	got, _ := s.GetNode(context.Background(), a.ID)
	assert.Empty(t, got.Effects)
	assert.Empty(t, got.Causes)
	assert.Equal(t, 0, s.Metadata(context.Background()).EdgeCount)
}

func TestCausalService_AddEdgeValidation(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")
	b := mustAddNode(t, s, "B")
	strong := 1.2

	tests := []struct {
		name string
		in   domain.NewEdge
	}{
		{"missing source", domain.NewEdge{TargetID: b.ID}},
		{"unknown relation", domain.NewEdge{SourceID: a.ID, TargetID: b.ID, Relation: "teleports"}},
		{"strength out of range", domain.NewEdge{SourceID: a.ID, TargetID: b.ID, Strength: &strong}},
		{"negative delay", domain.NewEdge{SourceID: a.ID, TargetID: b.ID, DelayMS: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddEdge(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidEdge)
		})
	}
}

func TestCausalService_Metadata(t *testing.T) {
	g := newLinearGraph(t)

	md := g.s.Metadata(context.Background())
	assert.Equal(t, 3, md.NodeCount)
	assert.Equal(t, 2, md.EdgeCount)
	assert.Equal(t, 3, md.MaxDepth)
	assert.InDelta(t, 2.0/3.0, md.AvgBranching, 1e-9)
	assert.False(t, md.LastUpdated.IsZero())
}

func TestCausalService_MetadataOnCycleHasNoRoots(t *testing.T) {
	s := newTestService(t)
	a := mustAddNode(t, s, "A")
	b := mustAddNode(t, s, "B")
	mustAddEdge(t, s, a, b)
	mustAddEdge(t, s, b, a)

	md := s.Metadata(context.Background())
	assert.Equal(t, 0, md.MaxDepth)
	assert.Equal(t, 1.0, md.AvgBranching)
}

func TestCausalService_UpdateNode(t *testing.T) {
	g := newLinearGraph(t)
	state := domain.StateActive
	prob := 0.25

	got, err := g.s.UpdateNode(context.Background(), g.e1.ID, domain.NodeUpdate{State: &state, Probability: &prob})
	require.NoError(t, err)
	assert.Equal(t, domain.StateActive, got.State)
	assert.Equal(t, 0.25, got.Probability)
	assert.Equal(t, []string{g.d1.ID}, got.Causes)
	assert.Equal(t, []string{g.e2.ID}, got.Effects)
}

func TestCausalService_UpdateNodeErrors(t *testing.T) {
	g := newLinearGraph(t)

	_, err := g.s.UpdateNode(context.Background(), "missing", domain.NodeUpdate{})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	bad := -0.5
	_, err = g.s.UpdateNode(context.Background(), g.e1.ID, domain.NodeUpdate{Confidence: &bad})
	assert.ErrorIs(t, err, ErrInvalidNode)

	got, _ := g.s.GetNode(context.Background(), g.e1.ID)
	assert.Equal(t, 0.8, got.Confidence)
}

func TestCausalService_ReturnedNodesAreCopies(t *testing.T) {
	g := newLinearGraph(t)

	got, _ := g.s.GetNode(context.Background(), g.d1.ID)
	got.Effects = append(got.Effects, "tampered")
	got.Description = "tampered"

	again, _ := g.s.GetNode(context.Background(), g.d1.ID)
	assert.Equal(t, []string{g.e1.ID}, again.Effects)
	assert.Equal(t, "D1", again.Description)
}

func TestCausalService_UpdateNodeDetachesImpactDomains(t *testing.T) {
	g := newLinearGraph(t)

	impact := domain.ImpactMetrics{Irreversibility: 0.4, Domains: map[string]float64{"ops": 0.2}}
	_, err := g.s.UpdateNode(context.Background(), g.d1.ID, domain.NodeUpdate{Impact: &impact})
	require.NoError(t, err)

	impact.Domains["ops"] = 0.99
	impact.Domains["sales"] = 0.5

	got, err := g.s.GetNode(context.Background(), g.d1.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"ops": 0.2}, got.Impact.Domains)
}

func TestCausalService_GetEdge(t *testing.T) {
	g := newLinearGraph(t)

	e, err := g.s.GetEdge(context.Background(), g.d1e1.ID)
	require.NoError(t, err)
	assert.Equal(t, g.d1.ID, e.SourceID)

	_, err = g.s.GetEdge(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEdgeNotFound)

	assert.Len(t, g.s.ListEdges(context.Background()), 2)
	assert.Len(t, g.s.ListNodes(context.Background()), 3)
}

func TestCausalService_EmitsMutationEvents(t *testing.T) {
	s := newTestService(t)
	var got []domain.EventType
	s.Subscribe(func(e domain.GraphEvent) error {
		got = append(got, e.Type)
		return nil
	})

	a := mustAddNode(t, s, "A")
	b := mustAddNode(t, s, "B")
	mustAddEdge(t, s, a, b)
	state := domain.StateCompleted
	_, err := s.UpdateNode(context.Background(), a.ID, domain.NodeUpdate{State: &state})
	require.NoError(t, err)

	assert.Equal(t, []domain.EventType{
		domain.EventNodeAdded,
		domain.EventNodeAdded,
		domain.EventEdgeAdded,
		domain.EventNodeUpdated,
	}, got)
}

func TestCausalService_ListenerCanReadGraph(t *testing.T) {
	s := newTestService(t)
	var seenCount int
	s.Subscribe(func(e domain.GraphEvent) error {
		seenCount = s.Metadata(context.Background()).NodeCount
		return nil
	})

	mustAddNode(t, s, "A")
	assert.Equal(t, 1, seenCount)
}

func TestCausalService_FailingListenerDoesNotAbortMutation(t *testing.T) {
	s := newTestService(t)
	s.Subscribe(func(domain.GraphEvent) error { panic("listener bug") })
	s.Subscribe(func(domain.GraphEvent) error { return errors.New("listener error") })

	n := mustAddNode(t, s, "A")
	_, err := s.GetNode(context.Background(), n.ID)
	assert.NoError(t, err)
}

package store

import (
	"fmt"

	"github.com/Harshitk-cp/causalchain/internal/domain"
)

// GraphStore is an in-memory domain.GraphStore. Maps give id lookup and
// the parallel slices preserve insertion order for deterministic scans.
type GraphStore struct {
	nodes     map[string]*domain.CausalNode
	edges     map[string]*domain.CausalEdge
	nodeOrder []string
	edgeOrder []string
	byTask    map[string]string
	metadata  domain.GraphMetadata
}

func NewGraphStore() *GraphStore {
	return &GraphStore{
		nodes:  make(map[string]*domain.CausalNode),
		edges:  make(map[string]*domain.CausalEdge),
		byTask: make(map[string]string),
	}
}

func (s *GraphStore) InsertNode(n *domain.CausalNode) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("insert node: empty id: %w", ErrConflict)
	}
	if _, exists := s.nodes[n.ID]; exists {
		return fmt.Errorf("insert node %s: %w", n.ID, ErrConflict)
	}
	s.nodes[n.ID] = n
	s.nodeOrder = append(s.nodeOrder, n.ID)
	if n.TaskID != "" {
		s.byTask[n.TaskID] = n.ID
	}
	return nil
}

func (s *GraphStore) InsertEdge(e *domain.CausalEdge) error {
	if e == nil || e.ID == "" {
		return fmt.Errorf("insert edge: empty id: %w", ErrConflict)
	}
	if _, exists := s.edges[e.ID]; exists {
		return fmt.Errorf("insert edge %s: %w", e.ID, ErrConflict)
	}
	s.edges[e.ID] = e
	s.edgeOrder = append(s.edgeOrder, e.ID)
	return nil
}

func (s *GraphStore) Node(id string) (*domain.CausalNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s *GraphStore) Edge(id string) (*domain.CausalEdge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

func (s *GraphStore) NodeByTaskID(taskID string) (*domain.CausalNode, bool) {
	id, ok := s.byTask[taskID]
	if !ok {
		return nil, false
	}
	return s.Node(id)
}

func (s *GraphStore) Nodes() []*domain.CausalNode {
	out := make([]*domain.CausalNode, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id])
	}
	return out
}

func (s *GraphStore) Edges() []*domain.CausalEdge {
	out := make([]*domain.CausalEdge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, s.edges[id])
	}
	return out
}

func (s *GraphStore) NodeCount() int {
	return len(s.nodes)
}

func (s *GraphStore) EdgeCount() int {
	return len(s.edges)
}

func (s *GraphStore) Metadata() domain.GraphMetadata {
	return s.metadata
}

func (s *GraphStore) SetMetadata(m domain.GraphMetadata) {
	s.metadata = m
}

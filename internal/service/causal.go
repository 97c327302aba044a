package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/events"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultMaxDepth    = 5
	metadataTraceDepth = 20

	defaultNodeScale      = 5
	defaultNodeConfidence = 0.5
	minScale              = 1
	maxScale              = 10
)

var (
	ErrNodeNotFound   = errors.New("node not found")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrDanglingEdge   = errors.New("edge references a node that does not exist")
	ErrInvalidNode    = errors.New("invalid node")
	ErrInvalidEdge    = errors.New("invalid edge")
	ErrMissingContext = errors.New("query context has no node ids")
)

// CausalService owns the causal graph. All mutations go through it so the
// adjacency invariant (for A->B, A.Effects has B and B.Causes has A) holds.
// One RWMutex serializes writers; readers may run concurrently with each
// other. Events are emitted after the lock is released, on the caller's
// goroutine.
type CausalService struct {
	mu     sync.RWMutex
	store  domain.GraphStore
	bus    *events.Bus
	tracer trace.Tracer
	logger *zap.Logger
	now    func() time.Time

	statsMu sync.RWMutex
	stats   *domain.GraphStatistics
}

func NewCausalService(store domain.GraphStore, bus *events.Bus, logger *zap.Logger) *CausalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bus == nil {
		bus = events.NewBus(logger)
	}
	return &CausalService{
		store:  store,
		bus:    bus,
		tracer: otel.Tracer("github.com/Harshitk-cp/causalchain/internal/service"),
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe registers a listener on the service's event bus.
func (s *CausalService) Subscribe(l events.Listener) func() {
	return s.bus.Subscribe(l)
}

func (s *CausalService) AddNode(ctx context.Context, in domain.NewNode) (*domain.CausalNode, error) {
	node, err := s.buildNode(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.store.InsertNode(node); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("add node: %w", err)
	}
	s.recomputeMetadata()
	out := node.Clone()
	s.mu.Unlock()

	s.logger.Debug("node added",
		zap.String("node_id", out.ID),
		zap.String("type", string(out.Type)),
		zap.Int("scale", out.Scale))
	s.emit(domain.EventNodeAdded, out.Clone())
	return out, nil
}

func (s *CausalService) AddEdge(ctx context.Context, in domain.NewEdge) (*domain.CausalEdge, error) {
	edge, err := buildEdge(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	source, ok := s.store.Node(edge.SourceID)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: source %s: %w", ErrDanglingEdge, edge.SourceID, ErrNodeNotFound)
	}
	target, ok := s.store.Node(edge.TargetID)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: target %s: %w", ErrDanglingEdge, edge.TargetID, ErrNodeNotFound)
	}
	if err := s.store.InsertEdge(edge); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("add edge: %w", err)
	}
	source.Effects = append(source.Effects, target.ID)
	target.Causes = append(target.Causes, source.ID)
	s.recomputeMetadata()
	out := cloneEdge(edge)
	s.mu.Unlock()

	s.logger.Debug("edge added",
		zap.String("edge_id", out.ID),
		zap.String("source_id", out.SourceID),
		zap.String("target_id", out.TargetID),
		zap.String("relation", string(out.Relation)))
	s.emit(domain.EventEdgeAdded, cloneEdge(out))
	return out, nil
}

func (s *CausalService) UpdateNode(ctx context.Context, id string, upd domain.NodeUpdate) (*domain.CausalNode, error) {
	s.mu.Lock()
	node, ok := s.store.Node(id)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("update node %s: %w", id, ErrNodeNotFound)
	}

	patched := node.Clone()
	applyUpdate(patched, upd)
	if err := validateNode(patched); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	// Adjacency is owned by the mutator, never by the patch.
	patched.Causes, patched.Effects = node.Causes, node.Effects
	*node = *patched
	s.recomputeMetadata()
	out := node.Clone()
	s.mu.Unlock()

	s.logger.Debug("node updated", zap.String("node_id", id), zap.String("state", string(out.State)))
	s.emit(domain.EventNodeUpdated, out.Clone())
	return out, nil
}

func (s *CausalService) GetNode(ctx context.Context, id string) (*domain.CausalNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.store.Node(id)
	if !ok {
		return nil, ErrNodeNotFound
	}
	return node.Clone(), nil
}

func (s *CausalService) GetEdge(ctx context.Context, id string) (*domain.CausalEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.store.Edge(id)
	if !ok {
		return nil, ErrEdgeNotFound
	}
	return cloneEdge(edge), nil
}

func (s *CausalService) ListNodes(ctx context.Context) []*domain.CausalNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := s.store.Nodes()
	out := make([]*domain.CausalNode, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func (s *CausalService) ListEdges(ctx context.Context) []*domain.CausalEdge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.store.Edges()
	out := make([]*domain.CausalEdge, len(edges))
	for i, e := range edges {
		out[i] = cloneEdge(e)
	}
	return out
}

func (s *CausalService) Metadata(ctx context.Context) domain.GraphMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Metadata()
}

// recomputeMetadata must be called with the write lock held. MaxDepth runs a
// bounded forward trace from every root, which is fine for decision-sized
// graphs but grows with roots x paths.
func (s *CausalService) recomputeMetadata() {
	nodes := s.store.Nodes()
	maxDepth := 0
	totalEffects := 0

	for _, n := range nodes {
		totalEffects += len(n.Effects)
		if len(n.Causes) > 0 {
			continue
		}
		if l := maxPathLength(s.trace(n.ID, metadataTraceDepth, domain.DirectionForward)); l > maxDepth {
			maxDepth = l
		}
	}

	avg := 0.0
	if len(nodes) > 0 {
		avg = float64(totalEffects) / float64(len(nodes))
	}

	s.store.SetMetadata(domain.GraphMetadata{
		NodeCount:    s.store.NodeCount(),
		EdgeCount:    s.store.EdgeCount(),
		MaxDepth:     maxDepth,
		AvgBranching: avg,
		LastUpdated:  s.now(),
	})
}

func (s *CausalService) emit(t domain.EventType, payload any) {
	s.bus.Emit(domain.GraphEvent{Type: t, Timestamp: s.now(), Payload: payload})
}

func (s *CausalService) buildNode(in domain.NewNode) (*domain.CausalNode, error) {
	node := &domain.CausalNode{
		ID:            uuid.NewString(),
		Type:          in.Type,
		Timestamp:     in.Timestamp,
		Scale:         in.Scale,
		Description:   in.Description,
		DescriptionKo: in.DescriptionKo,
		State:         in.State,
		Probability:   1,
		Confidence:    defaultNodeConfidence,
		Impact:        in.Impact,
		Causes:        []string{},
		Effects:       []string{},
		Source:        in.Source,
		TaskID:        in.TaskID,
	}
	if node.Type == "" {
		node.Type = domain.NodeTypeDecision
	}
	if node.State == "" {
		node.State = domain.StatePotential
	}
	if node.Scale == 0 {
		node.Scale = defaultNodeScale
	}
	if node.Timestamp.IsZero() {
		node.Timestamp = s.now()
	}
	if in.Probability != nil {
		node.Probability = *in.Probability
	}
	if in.Confidence != nil {
		node.Confidence = *in.Confidence
	}
	if err := validateNode(node); err != nil {
		return nil, err
	}
	// Detach from the caller's Domains map.
	return node.Clone(), nil
}

func buildEdge(in domain.NewEdge) (*domain.CausalEdge, error) {
	edge := &domain.CausalEdge{
		ID:         uuid.NewString(),
		SourceID:   in.SourceID,
		TargetID:   in.TargetID,
		Relation:   in.Relation,
		Strength:   1,
		DelayMS:    in.DelayMS,
		Conditions: in.Conditions,
		Reasoning:  in.Reasoning,
	}
	if edge.Relation == "" {
		edge.Relation = domain.RelationCauses
	}
	if in.Strength != nil {
		edge.Strength = *in.Strength
	}

	switch {
	case edge.SourceID == "" || edge.TargetID == "":
		return nil, fmt.Errorf("%w: source_id and target_id are required", ErrInvalidEdge)
	case !domain.ValidRelationType(string(edge.Relation)):
		return nil, fmt.Errorf("%w: unknown relation %q", ErrInvalidEdge, edge.Relation)
	case !inUnitRange(edge.Strength):
		return nil, fmt.Errorf("%w: strength %v outside [0,1]", ErrInvalidEdge, edge.Strength)
	case edge.DelayMS < 0:
		return nil, fmt.Errorf("%w: negative delay", ErrInvalidEdge)
	}
	return cloneEdge(edge), nil
}

func validateNode(n *domain.CausalNode) error {
	switch {
	case !domain.ValidNodeType(string(n.Type)):
		return fmt.Errorf("%w: unknown type %q", ErrInvalidNode, n.Type)
	case !domain.ValidNodeState(string(n.State)):
		return fmt.Errorf("%w: unknown state %q", ErrInvalidNode, n.State)
	case n.Scale < minScale || n.Scale > maxScale:
		return fmt.Errorf("%w: scale %d outside [%d,%d]", ErrInvalidNode, n.Scale, minScale, maxScale)
	case !inUnitRange(n.Probability):
		return fmt.Errorf("%w: probability %v outside [0,1]", ErrInvalidNode, n.Probability)
	case !inUnitRange(n.Confidence):
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidNode, n.Confidence)
	case !inUnitRange(n.Impact.Irreversibility):
		return fmt.Errorf("%w: irreversibility %v outside [0,1]", ErrInvalidNode, n.Impact.Irreversibility)
	case !inUnitRange(n.Impact.Temporal.Immediate) ||
		!inUnitRange(n.Impact.Temporal.ShortTerm) ||
		!inUnitRange(n.Impact.Temporal.LongTerm):
		return fmt.Errorf("%w: temporal impact outside [0,1]", ErrInvalidNode)
	}
	return nil
}

func applyUpdate(n *domain.CausalNode, upd domain.NodeUpdate) {
	if upd.State != nil {
		n.State = *upd.State
	}
	if upd.Description != nil {
		n.Description = *upd.Description
	}
	if upd.DescriptionKo != nil {
		n.DescriptionKo = *upd.DescriptionKo
	}
	if upd.Probability != nil {
		n.Probability = *upd.Probability
	}
	if upd.Confidence != nil {
		n.Confidence = *upd.Confidence
	}
	if upd.Scale != nil {
		n.Scale = *upd.Scale
	}
	if upd.Impact != nil {
		n.Impact = *upd.Impact
		n.Impact.Domains = nil
		if upd.Impact.Domains != nil {
			n.Impact.Domains = make(map[string]float64, len(upd.Impact.Domains))
			for k, v := range upd.Impact.Domains {
				n.Impact.Domains[k] = v
			}
		}
	}
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}

func cloneEdge(e *domain.CausalEdge) *domain.CausalEdge {
	c := *e
	if e.Conditions != nil {
		c.Conditions = make(map[string]any, len(e.Conditions))
		for k, v := range e.Conditions {
			c.Conditions[k] = v
		}
	}
	return &c
}

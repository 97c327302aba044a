package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// The query context has no field for a hypothetical probability, so
	// what_if queries always halve the node's likelihood.
	defaultWhatIfProbability = 0.5

	placeholderConfidence  = 0.3
	unrecognizedConfidence = 0.5
	fallbackConfidence     = 0.5
	fallbackConclusion     = "cannot determine conclusion"

	evidenceTypeData   = "data"
	evidenceSourceName = "causal_graph"
)

// queryResult is what a handler hands back to the output assembler.
type queryResult struct {
	steps  []domain.ReasoningStep
	chains []*domain.CausalChain
}

// queryHandler runs with s.mu read-locked.
type queryHandler func(s *CausalService, q domain.CausalQuery) (*queryResult, error)

var queryHandlers = map[domain.QueryType]queryHandler{
	domain.QueryWhy:          (*CausalService).handleWhy,
	domain.QueryImpact:       (*CausalService).handleImpact,
	domain.QueryWhatIf:       (*CausalService).handleWhatIf,
	domain.QueryRisk:         (*CausalService).handlePlaceholder,
	domain.QueryAlternatives: (*CausalService).handlePlaceholder,
	domain.QueryOptimal:      (*CausalService).handlePlaceholder,
}

// Query answers a typed causal question with an ordered reasoning trace.
// It runs synchronously; ctx is only checked before dispatch since the
// traversal itself has no cancellation points. Handler failures are
// returned as errors for every query type.
func (s *CausalService) Query(ctx context.Context, q domain.CausalQuery) (*domain.ReasoningOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	_, span := s.tracer.Start(ctx, "CausalService.Query", trace.WithAttributes(
		attribute.String("query.id", q.ID),
		attribute.String("query.type", string(q.Type)),
	))
	defer span.End()

	start := time.Now()

	handler, ok := queryHandlers[q.Type]
	if !ok {
		handler = (*CausalService).handleUnrecognized
	}

	s.mu.RLock()
	res, err := handler(s, q)
	s.mu.RUnlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("query failed",
			zap.String("query_id", q.ID),
			zap.String("type", string(q.Type)),
			zap.Error(err))
		return nil, fmt.Errorf("%s query: %w", q.Type, err)
	}

	out := assembleOutput(q, res)
	out.ProcessingTimeMS = time.Since(start).Milliseconds()

	span.SetAttributes(attribute.Int("steps", len(out.Steps)))
	s.logger.Debug("query completed",
		zap.String("query_id", q.ID),
		zap.String("type", string(q.Type)),
		zap.Int("steps", len(out.Steps)),
		zap.Int64("processing_ms", out.ProcessingTimeMS))
	s.emit(domain.EventQueryCompleted, out)
	return out, nil
}

func (s *CausalService) handleWhy(q domain.CausalQuery) (*queryResult, error) {
	return s.tracedSteps(q, domain.DirectionBackward)
}

func (s *CausalService) handleImpact(q domain.CausalQuery) (*queryResult, error) {
	return s.tracedSteps(q, domain.DirectionForward)
}

func (s *CausalService) tracedSteps(q domain.CausalQuery, dir domain.Direction) (*queryResult, error) {
	nodeID, err := firstContextNode(q)
	if err != nil {
		return nil, err
	}

	paths := s.trace(nodeID, q.Options.MaxDepth, dir)
	chain := s.buildChain(nodeID, paths, dir)

	var steps []domain.ReasoningStep
	for _, p := range paths {
		for i, id := range p {
			node, ok := s.store.Node(id)
			if !ok {
				continue
			}
			steps = append(steps, domain.ReasoningStep{
				Order:           len(steps) + 1,
				Type:            stepTypeAt(i, len(p)),
				Content:         node.Description,
				Confidence:      node.Confidence,
				SupportingNodes: []string{id},
			})
		}
	}

	return &queryResult{steps: steps, chains: []*domain.CausalChain{chain}}, nil
}

// stepTypeAt types a node by its position on a path. A single-node path is
// an observation only: nothing was inferred from it.
func stepTypeAt(i, n int) domain.StepType {
	switch {
	case i == 0:
		return domain.StepObservation
	case i == n-1:
		return domain.StepConclusion
	default:
		return domain.StepInference
	}
}

func (s *CausalService) handleWhatIf(q domain.CausalQuery) (*queryResult, error) {
	nodeID, err := firstContextNode(q)
	if err != nil {
		return nil, err
	}

	p := defaultWhatIfProbability
	result, chain := s.whatIf(nodeID, domain.HypotheticalChanges{Probability: &p})

	confidence := fallbackConfidence
	conclusionNodes := []string{}
	if node, ok := s.store.Node(nodeID); ok {
		confidence = node.Confidence
		conclusionNodes = []string{nodeID}
	}

	res := &queryResult{
		steps: []domain.ReasoningStep{
			{
				Order:           1,
				Type:            domain.StepHypothesis,
				Content:         result.Explanation,
				Confidence:      confidence,
				SupportingNodes: append([]string{}, result.AffectedNodes...),
			},
			{
				Order:           2,
				Type:            domain.StepConclusion,
				Content:         fmt.Sprintf("Risk change: %+.1f%%", result.RiskChange*100),
				Confidence:      confidence,
				SupportingNodes: conclusionNodes,
			},
		},
	}
	if chain != nil {
		res.chains = []*domain.CausalChain{chain}
	}
	return res, nil
}

// handlePlaceholder backs the risk, alternatives and optimal query types,
// which have no analysis behind them yet.
func (s *CausalService) handlePlaceholder(q domain.CausalQuery) (*queryResult, error) {
	return &queryResult{
		steps: []domain.ReasoningStep{{
			Order:           1,
			Type:            domain.StepObservation,
			Content:         fmt.Sprintf("%s analysis in progress", q.Type),
			Confidence:      placeholderConfidence,
			SupportingNodes: append([]string{}, q.Context.NodeIDs...),
		}},
	}, nil
}

func (s *CausalService) handleUnrecognized(q domain.CausalQuery) (*queryResult, error) {
	return &queryResult{
		steps: []domain.ReasoningStep{{
			Order:           1,
			Type:            domain.StepObservation,
			Content:         fmt.Sprintf("query type %q is not recognized", q.Type),
			Confidence:      unrecognizedConfidence,
			SupportingNodes: []string{},
		}},
	}, nil
}

func firstContextNode(q domain.CausalQuery) (string, error) {
	if len(q.Context.NodeIDs) == 0 || q.Context.NodeIDs[0] == "" {
		return "", ErrMissingContext
	}
	return q.Context.NodeIDs[0], nil
}

func assembleOutput(q domain.CausalQuery, res *queryResult) *domain.ReasoningOutput {
	steps := res.steps
	if steps == nil {
		steps = []domain.ReasoningStep{}
	}

	out := &domain.ReasoningOutput{
		ID:      uuid.NewString(),
		QueryID: q.ID,
		Steps:   steps,
		Conclusion: domain.Conclusion{
			Decision:     fallbackConclusion,
			Confidence:   fallbackConfidence,
			Alternatives: []string{},
		},
		Evidence: []domain.Evidence{},
		Visualization: domain.VisualizationHints{
			HighlightedNodes: []string{},
			HighlightedEdges: []string{},
			Annotations:      []domain.Annotation{},
		},
	}

	seenNodes := make(map[string]bool)
	for _, step := range steps {
		switch step.Type {
		case domain.StepConclusion:
			out.Conclusion.Decision = step.Content
			out.Conclusion.Confidence = step.Confidence
		case domain.StepObservation:
			out.Evidence = append(out.Evidence, domain.Evidence{
				Type:        evidenceTypeData,
				Source:      evidenceSourceName,
				Content:     step.Content,
				Reliability: step.Confidence,
			})
		}
		for _, id := range step.SupportingNodes {
			if !seenNodes[id] {
				seenNodes[id] = true
				out.Visualization.HighlightedNodes = append(out.Visualization.HighlightedNodes, id)
			}
		}
	}

	seenEdges := make(map[string]bool)
	for _, chain := range res.chains {
		for _, id := range chain.EdgeIDs() {
			if !seenEdges[id] {
				seenEdges[id] = true
				out.Visualization.HighlightedEdges = append(out.Visualization.HighlightedEdges, id)
			}
		}
		for _, bp := range chain.BranchPoints {
			out.Visualization.Annotations = append(out.Visualization.Annotations, domain.Annotation{
				NodeID: bp.NodeID,
				Text:   fmt.Sprintf("branch point: %d possible effects", len(bp.Branches)),
			})
		}
	}

	return out
}

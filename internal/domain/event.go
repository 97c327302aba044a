package domain

import "time"

type EventType string

const (
	EventNodeAdded      EventType = "node_added"
	EventEdgeAdded      EventType = "edge_added"
	EventNodeUpdated    EventType = "node_updated"
	EventChainGenerated EventType = "chain_generated"
	EventQueryCompleted EventType = "query_completed"
)

// GraphEvent is delivered to bus subscribers. Payload holds a copy of the
// affected entity: *CausalNode, *CausalEdge, *CausalChain or *ReasoningOutput.
type GraphEvent struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

package domain

// GraphStore owns the node and edge collections and the derived metadata.
// It holds no traversal logic and no locking; the causal service serializes
// access. Node and Edge return the stored values so the mutator can maintain
// adjacency; callers outside the service must treat them as read-only.
type GraphStore interface {
	InsertNode(n *CausalNode) error
	InsertEdge(e *CausalEdge) error
	Node(id string) (*CausalNode, bool)
	Edge(id string) (*CausalEdge, bool)
	NodeByTaskID(taskID string) (*CausalNode, bool)
	// Nodes and Edges return values in insertion order.
	Nodes() []*CausalNode
	Edges() []*CausalEdge
	NodeCount() int
	EdgeCount() int
	Metadata() GraphMetadata
	SetMetadata(m GraphMetadata)
}

package domain

import (
	"time"
)

type NodeType string

const (
	NodeTypeDecision    NodeType = "decision"
	NodeTypeEvent       NodeType = "event"
	NodeTypeState       NodeType = "state"
	NodeTypeConstraint  NodeType = "constraint"
	NodeTypeRisk        NodeType = "risk"
	NodeTypeOpportunity NodeType = "opportunity"
	NodeTypeResource    NodeType = "resource"
	NodeTypeActor       NodeType = "actor"
)

func ValidNodeType(t string) bool {
	switch NodeType(t) {
	case NodeTypeDecision, NodeTypeEvent, NodeTypeState, NodeTypeConstraint,
		NodeTypeRisk, NodeTypeOpportunity, NodeTypeResource, NodeTypeActor:
		return true
	}
	return false
}

// NodeState is the conceptual progression of a node. The graph stores
// whatever value it is given and never enforces transitions.
type NodeState string

const (
	StatePotential NodeState = "potential"
	StateImminent  NodeState = "imminent"
	StateActive    NodeState = "active"
	StateCompleted NodeState = "completed"
	StatePrevented NodeState = "prevented"
	StateFailed    NodeState = "failed"
)

func ValidNodeState(s string) bool {
	switch NodeState(s) {
	case StatePotential, StateImminent, StateActive, StateCompleted, StatePrevented, StateFailed:
		return true
	}
	return false
}

type RelationType string

const (
	RelationCauses     RelationType = "causes"
	RelationEnables    RelationType = "enables"
	RelationPrevents   RelationType = "prevents"
	RelationAmplifies  RelationType = "amplifies"
	RelationDampens    RelationType = "dampens"
	RelationCorrelates RelationType = "correlates"
	RelationConflicts  RelationType = "conflicts"
	RelationRequires   RelationType = "requires"
	RelationExcludes   RelationType = "excludes"
)

func ValidRelationType(r string) bool {
	switch RelationType(r) {
	case RelationCauses, RelationEnables, RelationPrevents, RelationAmplifies, RelationDampens,
		RelationCorrelates, RelationConflicts, RelationRequires, RelationExcludes:
		return true
	}
	return false
}

// TemporalImpact splits a node's impact across time horizons, each in [0,1].
type TemporalImpact struct {
	Immediate float64 `json:"immediate" yaml:"immediate"`
	ShortTerm float64 `json:"short_term" yaml:"short_term"`
	LongTerm  float64 `json:"long_term" yaml:"long_term"`
}

type ImpactMetrics struct {
	Irreversibility float64            `json:"irreversibility" yaml:"irreversibility"`
	Temporal        TemporalImpact     `json:"temporal" yaml:"temporal"`
	Domains         map[string]float64 `json:"domains,omitempty" yaml:"domains,omitempty"`
}

// CausalNode is a decision, event or state unit in the causal graph.
// Causes and Effects keep insertion order so traversal output is deterministic.
type CausalNode struct {
	ID            string        `json:"id"`
	Type          NodeType      `json:"type"`
	Timestamp     time.Time     `json:"timestamp"`
	Scale         int           `json:"scale"`
	Description   string        `json:"description"`
	DescriptionKo string        `json:"description_ko,omitempty"`
	State         NodeState     `json:"state"`
	Probability   float64       `json:"probability"`
	Confidence    float64       `json:"confidence"`
	Impact        ImpactMetrics `json:"impact"`
	Causes        []string      `json:"causes"`
	Effects       []string      `json:"effects"`
	Source        string        `json:"source,omitempty"`
	TaskID        string        `json:"task_id,omitempty"`
}

// Clone returns a copy that shares no slices or maps with n.
func (n *CausalNode) Clone() *CausalNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Causes = append([]string{}, n.Causes...)
	c.Effects = append([]string{}, n.Effects...)
	if n.Impact.Domains != nil {
		c.Impact.Domains = make(map[string]float64, len(n.Impact.Domains))
		for k, v := range n.Impact.Domains {
			c.Impact.Domains[k] = v
		}
	}
	return &c
}

// NewNode is the input for creating a node. Nil pointers and zero values
// take the documented defaults applied by the mutator.
type NewNode struct {
	Type          NodeType
	Timestamp     time.Time
	Scale         int
	Description   string
	DescriptionKo string
	State         NodeState
	Probability   *float64
	Confidence    *float64
	Impact        ImpactMetrics
	Source        string
	TaskID        string
}

// NodeUpdate patches an existing node. Nil fields are left unchanged.
type NodeUpdate struct {
	State         *NodeState
	Description   *string
	DescriptionKo *string
	Probability   *float64
	Confidence    *float64
	Scale         *int
	Impact        *ImpactMetrics
}

type CausalEdge struct {
	ID         string         `json:"id"`
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Relation   RelationType   `json:"relation"`
	Strength   float64        `json:"strength"`
	DelayMS    int64          `json:"delay_ms"`
	Conditions map[string]any `json:"conditions,omitempty"`
	Reasoning  string         `json:"reasoning,omitempty"`
}

type NewEdge struct {
	SourceID   string
	TargetID   string
	Relation   RelationType
	Strength   *float64
	DelayMS    int64
	Conditions map[string]any
	Reasoning  string
}

type GraphMetadata struct {
	NodeCount    int       `json:"node_count"`
	EdgeCount    int       `json:"edge_count"`
	MaxDepth     int       `json:"max_depth"`
	AvgBranching float64   `json:"avg_branching"`
	LastUpdated  time.Time `json:"last_updated"`
}

type RiskHotspot struct {
	NodeID          string  `json:"node_id"`
	Description     string  `json:"description"`
	Irreversibility float64 `json:"irreversibility"`
}

type CriticalPath struct {
	RootID  string   `json:"root_id"`
	NodeIDs []string `json:"node_ids"`
	Risk    float64  `json:"risk"`
}

// GraphStatistics is a snapshot; it is only as fresh as ComputedAt.
type GraphStatistics struct {
	RiskHotspots  []RiskHotspot  `json:"risk_hotspots"`
	CriticalPaths []CriticalPath `json:"critical_paths"`
	Bottlenecks   []string       `json:"bottlenecks"`
	IsolatedNodes []string       `json:"isolated_nodes"`
	ComputedAt    time.Time      `json:"computed_at"`
}

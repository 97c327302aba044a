package domain

import "time"

type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

func ValidDirection(d string) bool {
	return Direction(d) == DirectionForward || Direction(d) == DirectionBackward
}

// CausalPath is one traversal path. NodeIDs are always in causal order
// (cause before effect), regardless of traversal direction.
type CausalPath struct {
	NodeIDs     []string `json:"node_ids"`
	EdgeIDs     []string `json:"edge_ids"`
	Probability float64  `json:"probability"`
	Risk        float64  `json:"risk"`
	Label       string   `json:"label"`
}

type Branch struct {
	TargetID    string  `json:"target_id"`
	EdgeID      string  `json:"edge_id,omitempty"`
	Probability float64 `json:"probability"`
}

type BranchPoint struct {
	NodeID   string   `json:"node_id"`
	Branches []Branch `json:"branches"`
}

// CausalChain is computed per call and never stored in the graph.
type CausalChain struct {
	RootNodeID      string        `json:"root_node_id"`
	TerminalNodeIDs []string      `json:"terminal_node_ids"`
	Length          int           `json:"length"`
	CumulativeRisk  float64       `json:"cumulative_risk"`
	Paths           []CausalPath  `json:"paths"`
	BranchPoints    []BranchPoint `json:"branch_points"`
	Direction       Direction     `json:"direction"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// EdgeIDs returns the union of edge ids across all paths, in first-seen order.
func (c *CausalChain) EdgeIDs() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool)
	ids := []string{}
	for _, p := range c.Paths {
		for _, id := range p.EdgeIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// HypotheticalChanges describes a what-if. Only Probability feeds the
// risk estimate; the remaining fields are carried for callers.
type HypotheticalChanges struct {
	Probability     *float64   `json:"probability,omitempty"`
	Confidence      *float64   `json:"confidence,omitempty"`
	State           *NodeState `json:"state,omitempty"`
	Irreversibility *float64   `json:"irreversibility,omitempty"`
}

type WhatIfResult struct {
	AffectedNodes []string `json:"affected_nodes"`
	RiskChange    float64  `json:"risk_change"`
	Explanation   string   `json:"explanation"`
}

type VisualNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
}

type VisualEdge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label"`
	Strength float64 `json:"strength"`
}

type VisualizationData struct {
	Nodes []VisualNode `json:"nodes"`
	Edges []VisualEdge `json:"edges"`
}

// Package fixture loads causal graphs described in YAML. Nodes are named
// by a file-local key that edges refer to; the graph assigns real ids on
// apply.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"gopkg.in/yaml.v3"
)

var ErrInvalidFixture = errors.New("invalid fixture")

type Node struct {
	Key           string               `yaml:"key"`
	Type          domain.NodeType      `yaml:"type"`
	Timestamp     time.Time            `yaml:"timestamp"`
	Scale         int                  `yaml:"scale"`
	Description   string               `yaml:"description"`
	DescriptionKo string               `yaml:"description_ko"`
	State         domain.NodeState     `yaml:"state"`
	Probability   *float64             `yaml:"probability"`
	Confidence    *float64             `yaml:"confidence"`
	Impact        domain.ImpactMetrics `yaml:"impact"`
}

type Edge struct {
	From       string              `yaml:"from"`
	To         string              `yaml:"to"`
	Relation   domain.RelationType `yaml:"relation"`
	Strength   *float64            `yaml:"strength"`
	DelayMS    int64               `yaml:"delay_ms"`
	Conditions map[string]any      `yaml:"conditions"`
	Reasoning  string              `yaml:"reasoning"`
}

// Graph is a parsed fixture file.
type Graph struct {
	Nodes []Node              `yaml:"nodes"`
	Edges []Edge              `yaml:"edges"`
	Tasks []domain.TaskRecord `yaml:"tasks"`
}

func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks that node keys are unique and every edge endpoint names
// a node key or a task id.
func (g *Graph) Validate() error {
	keys := make(map[string]bool, len(g.Nodes)+len(g.Tasks))
	for i, n := range g.Nodes {
		if n.Key == "" {
			return fmt.Errorf("%w: node %d has no key", ErrInvalidFixture, i)
		}
		if keys[n.Key] {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidFixture, n.Key)
		}
		keys[n.Key] = true
	}
	for i, t := range g.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task %d has no id", ErrInvalidFixture, i)
		}
		if keys[t.ID] {
			return fmt.Errorf("%w: duplicate key %q", ErrInvalidFixture, t.ID)
		}
		keys[t.ID] = true
	}
	for i, e := range g.Edges {
		if !keys[e.From] {
			return fmt.Errorf("%w: edge %d: unknown source %q", ErrInvalidFixture, i, e.From)
		}
		if !keys[e.To] {
			return fmt.Errorf("%w: edge %d: unknown target %q", ErrInvalidFixture, i, e.To)
		}
	}
	return nil
}

// NewNode converts a fixture node into creation input.
func (n Node) NewNode() domain.NewNode {
	return domain.NewNode{
		Type:          n.Type,
		Timestamp:     n.Timestamp,
		Scale:         n.Scale,
		Description:   n.Description,
		DescriptionKo: n.DescriptionKo,
		State:         n.State,
		Probability:   n.Probability,
		Confidence:    n.Confidence,
		Impact:        n.Impact,
		Source:        "fixture",
	}
}

// NewEdge converts a fixture edge into creation input, resolving keys
// through ids.
func (e Edge) NewEdge(ids map[string]string) domain.NewEdge {
	return domain.NewEdge{
		SourceID:   ids[e.From],
		TargetID:   ids[e.To],
		Relation:   e.Relation,
		Strength:   e.Strength,
		DelayMS:    e.DelayMS,
		Conditions: e.Conditions,
		Reasoning:  e.Reasoning,
	}
}

// Apply adds the fixture to svc in file order: nodes, then tasks, then
// edges. It returns the assigned node id for every key. A failure leaves
// whatever was added before it in place.
func Apply(ctx context.Context, svc *service.CausalService, g *Graph) (map[string]string, error) {
	ids := make(map[string]string, len(g.Nodes)+len(g.Tasks))

	for _, n := range g.Nodes {
		node, err := svc.AddNode(ctx, n.NewNode())
		if err != nil {
			return ids, fmt.Errorf("node %q: %w", n.Key, err)
		}
		ids[n.Key] = node.ID
	}
	for _, t := range g.Tasks {
		node, _, err := svc.SyncTask(ctx, t)
		if err != nil {
			return ids, fmt.Errorf("task %q: %w", t.ID, err)
		}
		ids[t.ID] = node.ID
	}
	for i, e := range g.Edges {
		if _, err := svc.AddEdge(ctx, e.NewEdge(ids)); err != nil {
			return ids, fmt.Errorf("edge %d (%s -> %s): %w", i, e.From, e.To, err)
		}
	}
	return ids, nil
}

package domain

import "time"

type QueryType string

const (
	QueryWhy          QueryType = "why"
	QueryWhatIf       QueryType = "what_if"
	QueryHow          QueryType = "how"
	QueryImpact       QueryType = "impact"
	QueryRisk         QueryType = "risk"
	QueryAlternatives QueryType = "alternatives"
	QueryOptimal      QueryType = "optimal"
)

func ValidQueryType(q string) bool {
	switch QueryType(q) {
	case QueryWhy, QueryWhatIf, QueryHow, QueryImpact, QueryRisk, QueryAlternatives, QueryOptimal:
		return true
	}
	return false
}

type ExplanationLevel string

const (
	ExplanationBrief    ExplanationLevel = "brief"
	ExplanationDetailed ExplanationLevel = "detailed"
	ExplanationExpert   ExplanationLevel = "expert"
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ScaleRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type QueryContext struct {
	NodeIDs    []string    `json:"node_ids,omitempty"`
	TaskIDs    []string    `json:"task_ids,omitempty"`
	TimeRange  *TimeRange  `json:"time_range,omitempty"`
	ScaleRange *ScaleRange `json:"scale_range,omitempty"`
}

type QueryOptions struct {
	MaxDepth            int              `json:"max_depth,omitempty"`
	IncludeAlternatives bool             `json:"include_alternatives,omitempty"`
	ExplanationLevel    ExplanationLevel `json:"explanation_level,omitempty"`
}

type CausalQuery struct {
	ID       string       `json:"id"`
	Type     QueryType    `json:"type"`
	Question string       `json:"question"`
	Context  QueryContext `json:"context"`
	Options  QueryOptions `json:"options"`
}

type StepType string

const (
	StepObservation StepType = "observation"
	StepInference   StepType = "inference"
	StepHypothesis  StepType = "hypothesis"
	StepConclusion  StepType = "conclusion"
)

type ReasoningStep struct {
	Order           int      `json:"order"`
	Type            StepType `json:"type"`
	Content         string   `json:"content"`
	Confidence      float64  `json:"confidence"`
	SupportingNodes []string `json:"supporting_nodes"`
}

type Conclusion struct {
	Decision     string   `json:"decision"`
	Confidence   float64  `json:"confidence"`
	Alternatives []string `json:"alternatives"`
}

type Evidence struct {
	Type        string  `json:"type"`
	Source      string  `json:"source"`
	Content     string  `json:"content"`
	Reliability float64 `json:"reliability"`
}

type Annotation struct {
	NodeID string `json:"node_id"`
	Text   string `json:"text"`
}

type VisualizationHints struct {
	HighlightedNodes []string     `json:"highlighted_nodes"`
	HighlightedEdges []string     `json:"highlighted_edges"`
	Annotations      []Annotation `json:"annotations"`
}

type ReasoningOutput struct {
	ID               string             `json:"id"`
	QueryID          string             `json:"query_id"`
	Steps            []ReasoningStep    `json:"steps"`
	Conclusion       Conclusion         `json:"conclusion"`
	Evidence         []Evidence         `json:"evidence"`
	Visualization    VisualizationHints `json:"visualization"`
	ProcessingTimeMS int64              `json:"processing_time_ms"`
}

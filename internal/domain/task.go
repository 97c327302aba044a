package domain

// TaskStatus is the execution status reported by the decision/task layer.
type TaskStatus string

const (
	TaskDraft      TaskStatus = "draft"
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
	TaskFailed     TaskStatus = "failed"
)

type TaskExecution struct {
	Status TaskStatus `json:"status" yaml:"status"`
}

type TaskIrreversibility struct {
	Omega float64 `json:"omega" yaml:"omega"`
}

// TaskRecord is the subset of a task the causal graph consumes.
type TaskRecord struct {
	ID              string              `json:"id" yaml:"id"`
	Name            string              `json:"name" yaml:"name"`
	Scale           int                 `json:"scale" yaml:"scale"`
	Execution       TaskExecution       `json:"execution" yaml:"execution"`
	Irreversibility TaskIrreversibility `json:"irreversibility" yaml:"irreversibility"`
	Domain          string              `json:"domain" yaml:"domain"`
}

var taskStatusToNodeState = map[TaskStatus]NodeState{
	TaskDraft:      StatePotential,
	TaskPending:    StateImminent,
	TaskInProgress: StateActive,
	TaskCompleted:  StateCompleted,
	TaskCancelled:  StatePrevented,
	TaskFailed:     StateFailed,
}

// MapTaskStatus converts a task status to a node state. Unknown values map
// to potential.
func MapTaskStatus(s TaskStatus) NodeState {
	if st, ok := taskStatusToNodeState[s]; ok {
		return st
	}
	return StatePotential
}

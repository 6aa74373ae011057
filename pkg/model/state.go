package model

// TaskState represents the lifecycle state of a Task.
type TaskState string

const (
	TaskStateNotScheduled TaskState = "NOT_SCHEDULED"
	TaskStateSchedulable  TaskState = "SCHEDULABLE"
	TaskStateScheduled    TaskState = "SCHEDULED"
	TaskStateRunning      TaskState = "RUNNING"
	TaskStateDone         TaskState = "DONE"
	TaskStateFailed       TaskState = "FAILED"
)

// String returns the string representation of the task state.
func (s TaskState) String() string {
	return string(s)
}

// IsTerminal returns true if the task is in a final state.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateDone, TaskStateFailed:
		return true
	}
	return false
}

// ValidTaskTransitions defines the allowed state transitions. The
// ordinary path is monotone; FAILED is reachable from any non-terminal
// state. A NOT_SCHEDULED task may be scheduled directly (static
// schedulers assign the whole graph before anything is schedulable).
var ValidTaskTransitions = map[TaskState][]TaskState{
	TaskStateNotScheduled: {TaskStateSchedulable, TaskStateScheduled, TaskStateFailed},
	TaskStateSchedulable:  {TaskStateScheduled, TaskStateFailed},
	TaskStateScheduled:    {TaskStateRunning, TaskStateFailed},
	TaskStateRunning:      {TaskStateDone, TaskStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	for _, allowed := range ValidTaskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

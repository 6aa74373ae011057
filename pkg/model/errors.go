package model

import "fmt"

// ConfigError reports an invalid or unknown configuration value
// (unknown algorithm, bad strategy, out-of-range numeric option).
// All configuration errors are fatal before the simulation starts.
type ConfigError struct {
	Option  string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid option %q: %s", e.Option, e.Message)
}

// NewConfigError creates a ConfigError for the given option.
func NewConfigError(option, format string, args ...any) *ConfigError {
	return &ConfigError{Option: option, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup for an absent task or host.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}

// MalformedGraphError reports a structurally invalid task graph:
// a COMM_E2E task with parent or child count != 1, a missing root/end
// anchor, or a dependency cycle.
type MalformedGraphError struct {
	Task    string
	Message string
}

func (e *MalformedGraphError) Error() string {
	if e.Task == "" {
		return fmt.Sprintf("malformed task graph: %s", e.Message)
	}
	return fmt.Sprintf("malformed task graph: task %q: %s", e.Task, e.Message)
}

// StateViolationError is returned when an operation is not legal in the
// entity's current state, e.g. scheduling an already-scheduled task or
// running the same scheduler instance twice.
type StateViolationError struct {
	Entity  string
	State   string
	Message string
}

func (e *StateViolationError) Error() string {
	if e.State == "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Message)
	}
	return fmt.Sprintf("%s (state %s): %s", e.Entity, e.State, e.Message)
}

// SimulationError reports a failure inside the event simulator itself,
// e.g. a run that drained with unfinished tasks.
type SimulationError struct {
	Message string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %s", e.Message)
}

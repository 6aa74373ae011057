package model

import (
	"fmt"
	"strings"
)

// TaskKind distinguishes computation tasks from end-to-end transfers.
type TaskKind string

const (
	// KindCompSeq is a sequential computation task. Amount is in flops.
	KindCompSeq TaskKind = "COMP_SEQ"
	// KindCommE2E is an end-to-end data transfer between exactly one
	// producer and one consumer. Amount is in bytes.
	KindCommE2E TaskKind = "COMM_E2E"
)

// String returns the string representation of the task kind.
func (k TaskKind) String() string {
	return string(k)
}

// Short returns the compact kind tag used in result dumps.
func (k TaskKind) Short() string {
	if k == KindCommE2E {
		return "comm"
	}
	return "comp"
}

// ParseKind converts a task kind tag from a graph file. Accepted
// spellings are "comp"/"comp_seq" and "comm"/"comm_e2e" (any case);
// an empty tag defaults to COMP_SEQ.
func ParseKind(s string) (TaskKind, error) {
	switch strings.ToLower(s) {
	case "", "comp", "comp_seq":
		return KindCompSeq, nil
	case "comm", "comm_e2e":
		return KindCommE2E, nil
	}
	return "", fmt.Errorf("unknown task kind %q", s)
}

// Well-known names of the synthetic tasks anchoring the DAG. Both are
// zero-amount COMP_SEQ tasks executed on the submission node.
const (
	RootTask = "root"
	EndTask  = "end"
)

// Task is a node of the dependency graph. Tasks are owned by the
// platform for the whole simulation lifetime; schedulers read them and
// assign hosts through the platform only.
type Task struct {
	Name   string
	Kind   TaskKind
	Amount float64
	State  TaskState

	// Parents and Children are in graph load order.
	Parents  []*Task
	Children []*Task

	// Hosts is set on schedule. A COMP_SEQ task has one entry; a
	// COMM_E2E task has the producer and consumer hosts.
	Hosts []*Host

	StartTime  float64
	FinishTime float64
}

// Host returns the execution host assigned to the task, or nil if the
// task is not scheduled yet.
func (t *Task) Host() *Host {
	if len(t.Hosts) == 0 {
		return nil
	}
	return t.Hosts[0]
}

// Scheduled reports whether a host has been assigned.
func (t *Task) Scheduled() bool {
	return len(t.Hosts) > 0
}

// Host is an execution resource. Hosts are owned by the platform.
type Host struct {
	Name  string
	Power float64 // flops per second
	Cores int

	// Submission marks the host that runs the synthetic root and end
	// tasks (initial data submission and result retrieval).
	Submission bool
}

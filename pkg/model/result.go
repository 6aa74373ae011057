package model

import "time"

// TaskResult is the per-task slice of a result dump. Start and End are
// relative to the beginning of the scheduling run.
type TaskResult struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"` // "comp" or "comm"
	Start  float64  `json:"start"`
	End    float64  `json:"end"`
	Amount float64  `json:"amount"`
	Hosts  []string `json:"hosts"`
}

// HostResult describes one platform host in a result dump.
type HostResult struct {
	Name  string  `json:"name"`
	Power float64 `json:"power"`
	Cores int     `json:"cores"`
}

// RunResult is the full outcome of one scheduling run, in the shape
// consumed by external tooling (trace charts, experiment collection).
type RunResult struct {
	Tasks []TaskResult `json:"tasks"`
	Hosts []HostResult `json:"hosts"`
}

// Makespan returns the latest task end time, i.e. the simulated
// execution time of the whole graph.
func (r *RunResult) Makespan() float64 {
	var max float64
	for _, t := range r.Tasks {
		if t.End > max {
			max = t.End
		}
	}
	return max
}

// ListOptions paginates list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// Clamp bounds the options to sane values.
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 || o.Limit > 500 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Run is a recorded scheduling run as persisted by the results store.
type Run struct {
	ID        string     `json:"id"`
	Algorithm string     `json:"algorithm"`
	Strategy  string     `json:"strategy,omitempty"`
	Seed      int64      `json:"seed"`
	Makespan  float64    `json:"makespan"`
	CreatedAt time.Time  `json:"created_at"`
	Result    *RunResult `json:"result,omitempty"`
}

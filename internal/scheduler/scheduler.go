package scheduler

import (
	"github.com/me/dagsim/internal/config"
	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

// Type distinguishes the two scheduling modes.
type Type int

const (
	// TypeStatic schedulers assign the whole graph in a single step
	// before the simulation starts.
	TypeStatic Type = iota
	// TypeDynamic schedulers assign tasks as they become schedulable,
	// interleaved with simulation progress.
	TypeDynamic
)

func (t Type) String() string {
	if t == TypeDynamic {
		return "dynamic"
	}
	return "static"
}

// Scheduler assigns computation tasks to hosts. Implementations hold
// only their own bookkeeping; all graph and platform state lives in
// the Platform.
type Scheduler interface {
	// Name returns the registry name of the algorithm.
	Name() string

	// Type returns the scheduling mode.
	Type() Type

	// Init reads configuration and prepares per-run state. Called
	// exactly once before the first Schedule.
	Init(p *platform.Platform, cfg config.Sim) error

	// Schedule performs one scheduling step. Static schedulers assign
	// every task here; dynamic ones assign the currently schedulable
	// set and return so the driver can advance the simulation.
	Schedule(p *platform.Platform, step int) error
}

// SubmissionNode returns the host designated to run the synthetic root
// and end tasks: the first host flagged as submission node, or the
// first host of the platform.
func SubmissionNode(p *platform.Platform) *model.Host {
	for _, h := range p.Hosts() {
		if h.Submission {
			return h
		}
	}
	return p.Hosts()[0]
}

// ScheduleSpecialTasks pins the root and end tasks to the submission
// node unless they are already placed. Idempotent across calls.
func ScheduleSpecialTasks(p *platform.Platform) error {
	node := SubmissionNode(p)
	for _, name := range []string{model.RootTask, model.EndTask} {
		t, err := p.TaskByName(name)
		if err != nil {
			return err
		}
		if t.Scheduled() || t.State.IsTerminal() {
			continue
		}
		if err := p.Schedule(t, node); err != nil {
			return err
		}
	}
	return nil
}

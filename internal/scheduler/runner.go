package scheduler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/me/dagsim/internal/config"
	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

// Runner couples a scheduler to a platform and drives the combined
// scheduling+simulation loop. A Runner is single-use: both the
// scheduler state and the platform are consumed by Run.
type Runner struct {
	scheduler Scheduler
	platform  *platform.Platform
	logger    *slog.Logger
	stepNo    int
	ran       bool
}

// NewRunner creates a Runner for one scheduling run.
func NewRunner(s Scheduler, p *platform.Platform, logger *slog.Logger) *Runner {
	return &Runner{
		scheduler: s,
		platform:  p,
		logger:    logger.With("component", "runner", "algorithm", s.Name()),
	}
}

// Run executes the full loop and returns the simulation outcome.
//
// Static mode schedules once and lets the simulation drain. Dynamic
// mode puts a watchpoint on every computation task, then alternates
// scheduling steps with Advance until no watched completion remains.
func (r *Runner) Run(cfg config.Sim) (*model.RunResult, error) {
	if r.ran {
		return nil, &model.StateViolationError{
			Entity:  "scheduler " + r.scheduler.Name(),
			Message: "run called twice on the same instance",
		}
	}
	r.ran = true

	if err := r.scheduler.Init(r.platform, cfg); err != nil {
		return nil, fmt.Errorf("init %s: %w", r.scheduler.Name(), err)
	}

	start := r.platform.Now()

	switch r.scheduler.Type() {
	case TypeStatic:
		if err := r.step(); err != nil {
			return nil, err
		}
		for r.platform.Advance() {
		}

	case TypeDynamic:
		for _, t := range r.platform.Tasks() {
			if t.Kind == model.KindCompSeq {
				r.platform.Watch(t)
			}
		}
		if err := r.step(); err != nil {
			return nil, err
		}
		for r.platform.Advance() {
			if err := r.step(); err != nil {
				return nil, err
			}
		}
	}

	elapsed := r.platform.Now() - start
	r.logger.Info("execution finished", "time", elapsed, "steps", r.stepNo)

	if unfinished := r.platform.Unfinished(); len(unfinished) > 0 {
		return nil, &model.SimulationError{
			Message: "tasks not finished by the end of simulation: " + strings.Join(unfinished, ", "),
		}
	}
	return r.platform.Snapshot(start), nil
}

func (r *Runner) step() error {
	if err := r.scheduler.Schedule(r.platform, r.stepNo); err != nil {
		return fmt.Errorf("scheduling step %d: %w", r.stepNo, err)
	}
	r.stepNo++
	return nil
}

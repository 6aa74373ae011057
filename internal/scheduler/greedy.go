package scheduler

import (
	"log/slog"
	"sort"

	"github.com/me/dagsim/internal/config"
	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

// Greedy is the older dynamic baseline: min-first list scheduling with
// the legacy estimator that tracks actual parent finish times instead
// of pure transfer costs. Kept for comparability with earlier
// experiment results; new experiments should use list_heuristic.
type Greedy struct {
	logger     *slog.Logger
	hostStates map[*model.Host]*HostState
}

// NewGreedy creates a greedy scheduler.
func NewGreedy(logger *slog.Logger) *Greedy {
	return &Greedy{logger: logger.With("component", "greedy")}
}

func (s *Greedy) Name() string { return "greedy" }

func (s *Greedy) Type() Type { return TypeDynamic }

func (s *Greedy) Init(p *platform.Platform, cfg config.Sim) error {
	s.hostStates = NewHostStates(p)
	return nil
}

func (s *Greedy) Schedule(p *platform.Platform, step int) error {
	if step == 0 {
		if err := ScheduleSpecialTasks(p); err != nil {
			return err
		}
	}

	var batch []*model.Task
	order := make(map[*model.Task]int)
	for i, t := range p.Tasks() {
		if t.Kind == model.KindCompSeq && t.State == model.TaskStateSchedulable {
			order[t] = i
			batch = append(batch, t)
		}
	}
	if len(batch) == 0 {
		return nil
	}

	s.logger.Debug("scheduling step", "step", step, "schedulable", len(batch))

	best := make(map[*model.Task]Estimate, len(batch))
	for commits := len(batch); commits > 0; commits-- {
		for _, t := range batch {
			guess := Estimate{}
			for _, h := range p.Hosts() {
				completion, err := legacyEstimate(p, s.hostStates, t, h)
				if err != nil {
					return err
				}
				if guess.Host == nil || completion < guess.Completion {
					guess = Estimate{Host: h, Completion: completion}
				}
			}
			best[t] = guess
		}

		// Smallest best estimate has the highest priority and sits at
		// the back; ties resolve to the earliest-in-graph task.
		sort.Slice(batch, func(i, j int) bool {
			bi, bj := best[batch[i]].Completion, best[batch[j]].Completion
			if bi != bj {
				return bi > bj
			}
			return order[batch[i]] > order[batch[j]]
		})

		t := batch[len(batch)-1]
		batch = batch[:len(batch)-1]
		target := best[t]

		s.logger.Debug("committing task", "task", t.Name, "host", target.Host.Name, "completion", target.Completion)
		if err := p.Schedule(t, target.Host); err != nil {
			return err
		}
		s.hostStates[target.Host].AvailableAt = target.Completion
	}
	return nil
}

package scheduler

import (
	"log/slog"
	"sort"

	"github.com/me/dagsim/internal/config"
	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

// Strategy selects how the list heuristic prioritizes the schedulable
// batch. The highest-priority task is committed first, so it gets its
// preferred host.
type Strategy int

const (
	// MinFirst prioritizes the task with the smallest best completion
	// estimate ("fastest first").
	MinFirst Strategy = iota
	// MaxFirst prioritizes the task with the largest best completion
	// estimate ("slowest first").
	MaxFirst
	// SufferagePriority prioritizes the task that loses the most if it
	// is pushed to its second-best host.
	SufferagePriority
)

// ParseStrategy converts the lh-strategy option value.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "min":
		return MinFirst, nil
	case "max":
		return MaxFirst, nil
	case "sufferage":
		return SufferagePriority, nil
	}
	return 0, model.NewConfigError("lh-strategy", "unknown strategy %q (valid values: min, max, sufferage)", s)
}

func (s Strategy) String() string {
	switch s {
	case MaxFirst:
		return "max"
	case SufferagePriority:
		return "sufferage"
	default:
		return "min"
	}
}

// ListHeuristic is the dynamic batch scheduler: at every step it
// estimates each schedulable task on each host, commits the
// highest-priority task to its best host, updates the host projection
// and repeats until the batch is drained.
type ListHeuristic struct {
	logger     *slog.Logger
	strategy   Strategy
	hostStates map[*model.Host]*HostState
	estimates  map[*model.Task][]Estimate
}

// NewListHeuristic creates a list heuristic scheduler.
func NewListHeuristic(logger *slog.Logger) *ListHeuristic {
	return &ListHeuristic{logger: logger.With("component", "list-heuristic")}
}

func (s *ListHeuristic) Name() string { return "list_heuristic" }

func (s *ListHeuristic) Type() Type { return TypeDynamic }

func (s *ListHeuristic) Init(p *platform.Platform, cfg config.Sim) error {
	strategy, err := ParseStrategy(cfg.LHStrategy)
	if err != nil {
		return err
	}
	s.strategy = strategy
	s.hostStates = NewHostStates(p)
	s.estimates = make(map[*model.Task][]Estimate)
	s.logger.Info("using priority strategy", "strategy", strategy.String())
	return nil
}

func (s *ListHeuristic) Schedule(p *platform.Platform, step int) error {
	if step == 0 {
		if err := ScheduleSpecialTasks(p); err != nil {
			return err
		}
	}

	// The batch, in graph order. Graph order is also the tie-break for
	// equal priorities.
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

	for commits := len(batch); commits > 0; commits-- {
		// Re-estimate every remaining task against every host. The
		// previous commit moved a host's availability, so stale
		// estimates cannot be reused.
		for _, t := range batch {
			if err := s.estimate(p, t); err != nil {
				return err
			}
		}

		if err := s.prioritize(batch, order); err != nil {
			return err
		}

		// The highest-priority task sits at the back.
		t := batch[len(batch)-1]
		batch = batch[:len(batch)-1]
		best := s.estimates[t][0]

		s.logger.Debug("committing task", "task", t.Name, "host", best.Host.Name, "completion", best.Completion)
		if err := p.Schedule(t, best.Host); err != nil {
			return err
		}
		s.hostStates[best.Host].AvailableAt = best.Completion
	}
	return nil
}

// estimate recomputes the task's per-host completion estimates, best
// first. Equal completions keep platform host order.
func (s *ListHeuristic) estimate(p *platform.Platform, t *model.Task) error {
	hosts := p.Hosts()
	ests := make([]Estimate, 0, len(hosts))
	for _, h := range hosts {
		completion, err := CompletionEstimate(p, s.hostStates, t, h)
		if err != nil {
			return err
		}
		ests = append(ests, Estimate{Host: h, Completion: completion})
	}
	sort.SliceStable(ests, func(i, j int) bool {
		return ests[i].Completion < ests[j].Completion
	})
	s.estimates[t] = ests
	return nil
}

// prioritize sorts the batch so that the highest-priority task ends up
// at the back where it is popped. Ties resolve to the
// earliest-in-graph task.
func (s *ListHeuristic) prioritize(batch []*model.Task, order map[*model.Task]int) error {
	switch s.strategy {
	case MinFirst:
		sort.Slice(batch, func(i, j int) bool {
			bi, bj := s.estimates[batch[i]][0].Completion, s.estimates[batch[j]][0].Completion
			if bi != bj {
				return bi > bj
			}
			return order[batch[i]] > order[batch[j]]
		})
	case MaxFirst:
		sort.Slice(batch, func(i, j int) bool {
			bi, bj := s.estimates[batch[i]][0].Completion, s.estimates[batch[j]][0].Completion
			if bi != bj {
				return bi < bj
			}
			return order[batch[i]] > order[batch[j]]
		})
	case SufferagePriority:
		sort.Slice(batch, func(i, j int) bool {
			si, sj := s.sufferage(batch[i]), s.sufferage(batch[j])
			if si != sj {
				return si < sj
			}
			return order[batch[i]] > order[batch[j]]
		})
	default:
		return model.NewConfigError("lh-strategy", "unknown strategy requested")
	}
	return nil
}

// sufferage is the penalty for losing the best host: the gap between
// the second-best and best completion estimates. With a single host
// there is no alternative and the best estimate itself is used rather
// than zero, so a single-host batch still commits longest-first
// instead of in arbitrary order.
func (s *ListHeuristic) sufferage(t *model.Task) float64 {
	ests := s.estimates[t]
	if len(ests) < 2 {
		return ests[0].Completion
	}
	return ests[1].Completion - ests[0].Completion
}

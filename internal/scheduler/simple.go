package scheduler

import (
	"log/slog"
	"math/rand/v2"

	"github.com/me/dagsim/internal/config"
	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

// RoundRobin assigns computation tasks to hosts in rotation, in graph
// order. Useful as a lower baseline for the heuristics.
type RoundRobin struct {
	logger *slog.Logger
}

// NewRoundRobin creates a round-robin scheduler.
func NewRoundRobin(logger *slog.Logger) *RoundRobin {
	return &RoundRobin{logger: logger.With("component", "round-robin")}
}

func (s *RoundRobin) Name() string { return "round_robin" }

func (s *RoundRobin) Type() Type { return TypeStatic }

func (s *RoundRobin) Init(p *platform.Platform, cfg config.Sim) error { return nil }

func (s *RoundRobin) Schedule(p *platform.Platform, step int) error {
	if err := ScheduleSpecialTasks(p); err != nil {
		return err
	}
	hosts := p.Hosts()
	idx := 0
	for _, t := range p.Tasks() {
		if t.Kind != model.KindCompSeq || t.State != model.TaskStateNotScheduled {
			continue
		}
		if err := p.Schedule(t, hosts[idx%len(hosts)]); err != nil {
			return err
		}
		idx++
	}
	return nil
}

// Random assigns computation tasks to uniformly random hosts. With a
// non-zero seed the assignment is reproducible bit-for-bit.
type Random struct {
	logger *slog.Logger
	seed   int64
}

// NewRandom creates a random scheduler.
func NewRandom(logger *slog.Logger) *Random {
	return &Random{logger: logger.With("component", "random")}
}

func (s *Random) Name() string { return "random" }

func (s *Random) Type() Type { return TypeStatic }

func (s *Random) Init(p *platform.Platform, cfg config.Sim) error {
	s.seed = cfg.Seed
	return nil
}

func (s *Random) Schedule(p *platform.Platform, step int) error {
	if err := ScheduleSpecialTasks(p); err != nil {
		return err
	}
	var rng *rand.Rand
	if s.seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(s.seed), uint64(s.seed)))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	hosts := p.Hosts()
	for _, t := range p.Tasks() {
		if t.Kind != model.KindCompSeq || t.State != model.TaskStateNotScheduled {
			continue
		}
		if err := p.Schedule(t, hosts[rng.IntN(len(hosts))]); err != nil {
			return err
		}
	}
	return nil
}

// Trivial pins every computation task to a single target host,
// selected by name or index. Degenerate baseline and a handy way to
// measure a workflow's serial makespan.
type Trivial struct {
	logger *slog.Logger
	target *model.Host
}

// NewTrivial creates a trivial single-host scheduler.
func NewTrivial(logger *slog.Logger) *Trivial {
	return &Trivial{logger: logger.With("component", "trivial")}
}

func (s *Trivial) Name() string { return "trivial" }

func (s *Trivial) Type() Type { return TypeStatic }

func (s *Trivial) Init(p *platform.Platform, cfg config.Sim) error {
	if cfg.TrivialName != "" {
		// Name wins over index.
		h, err := p.HostByName(cfg.TrivialName)
		if err != nil {
			return model.NewConfigError("trivial-name", "host %q does not exist", cfg.TrivialName)
		}
		s.target = h
		return nil
	}
	hosts := p.Hosts()
	if cfg.TrivialIdx < 0 || cfg.TrivialIdx >= len(hosts) {
		return model.NewConfigError("trivial-idx", "host index %d does not exist", cfg.TrivialIdx)
	}
	s.target = hosts[cfg.TrivialIdx]
	return nil
}

func (s *Trivial) Schedule(p *platform.Platform, step int) error {
	if err := ScheduleSpecialTasks(p); err != nil {
		return err
	}
	for _, t := range p.Tasks() {
		if t.Kind != model.KindCompSeq || t.Scheduled() {
			continue
		}
		if err := p.Schedule(t, s.target); err != nil {
			return err
		}
	}
	return nil
}

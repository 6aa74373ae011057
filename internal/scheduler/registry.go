package scheduler

import (
	"log/slog"

	"github.com/me/dagsim/pkg/model"
)

// Constructor builds a fresh scheduler instance.
type Constructor func(logger *slog.Logger) Scheduler

// Registry maps algorithm names to scheduler constructors.
// Registration happens at startup before any lookup; no mutex needed.
type Registry struct {
	ctors map[string]Constructor
	names []string
}

// NewRegistry creates a Registry with all built-in schedulers.
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	r.Register("round_robin", func(l *slog.Logger) Scheduler { return NewRoundRobin(l) })
	r.Register("random", func(l *slog.Logger) Scheduler { return NewRandom(l) })
	r.Register("trivial", func(l *slog.Logger) Scheduler { return NewTrivial(l) })
	r.Register("greedy", func(l *slog.Logger) Scheduler { return NewGreedy(l) })
	r.Register("list_heuristic", func(l *slog.Logger) Scheduler { return NewListHeuristic(l) })
	return r
}

// Register adds a scheduler constructor under the given name. A
// duplicate name panics: names must be unique and registration is a
// startup-time programming action.
func (r *Registry) Register(name string, c Constructor) {
	if _, dup := r.ctors[name]; dup {
		panic("scheduler: duplicate algorithm name " + name)
	}
	r.ctors[name] = c
	r.names = append(r.names, name)
}

// New creates a fresh scheduler for the given algorithm name.
func (r *Registry) New(name string, logger *slog.Logger) (Scheduler, error) {
	c, ok := r.ctors[name]
	if !ok {
		return nil, model.NewConfigError("algorithm", "unknown scheduling algorithm %q", name)
	}
	return c(logger), nil
}

// Names returns all algorithm names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

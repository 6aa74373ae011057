package platform

import (
	"fmt"
	"log/slog"

	"github.com/me/dagsim/pkg/model"
)

// Platform owns the simulated hosts, the task graph and the event
// clock. It is the only component that mutates task state; schedulers
// interact with it through Schedule, Watch and Advance. All operations
// happen on the driver goroutine.
type Platform struct {
	hosts  []*model.Host
	tasks  []*model.Task
	byName map[string]*model.Task
	byHost map[string]*model.Host

	routes       map[routeKey]RouteSpec
	defaultRoute *RouteSpec

	clock   float64
	watched map[*model.Task]bool
	busy    map[*model.Host]*model.Task
	events  eventQueue
	seq     int

	logger *slog.Logger
}

type routeKey struct {
	src, dst string
}

// Hosts returns all platform hosts in load order. The order is stable
// across a run and is the authoritative tie-break order.
func (p *Platform) Hosts() []*model.Host {
	return p.hosts
}

// Tasks returns all tasks in graph load order (root first, end last).
func (p *Platform) Tasks() []*model.Task {
	return p.tasks
}

// TaskByName returns the task with the given name.
func (p *Platform) TaskByName(name string) (*model.Task, error) {
	t, ok := p.byName[name]
	if !ok {
		return nil, &model.NotFoundError{Resource: "task", Name: name}
	}
	return t, nil
}

// HostByName returns the host with the given name.
func (p *Platform) HostByName(name string) (*model.Host, error) {
	h, ok := p.byHost[name]
	if !ok {
		return nil, &model.NotFoundError{Resource: "host", Name: name}
	}
	return h, nil
}

// Now returns the current simulated time in seconds.
func (p *Platform) Now() float64 {
	return p.clock
}

// ComputeTime returns the time the host needs to execute the given
// amount of flops. Pure and deterministic.
func (p *Platform) ComputeTime(h *model.Host, amount float64) float64 {
	return amount / h.Power
}

// RouteCommTime returns the time to transfer amount bytes from src to
// dst. A same-host transfer is free. Routes are symmetric; when no
// explicit route exists the platform default route applies (route
// coverage is validated at construction).
func (p *Platform) RouteCommTime(src, dst *model.Host, amount float64) float64 {
	if src == dst {
		return 0
	}
	r, ok := p.routes[routeKey{src.Name, dst.Name}]
	if !ok {
		r, ok = p.routes[routeKey{dst.Name, src.Name}]
	}
	if !ok {
		r = *p.defaultRoute
	}
	return r.Latency + amount/r.Bandwidth
}

// Schedule assigns a COMP_SEQ task to a host, transitioning it to
// SCHEDULED. Transfer tasks are placed automatically once both of
// their endpoints are assigned.
func (p *Platform) Schedule(t *model.Task, h *model.Host) error {
	if t.Kind != model.KindCompSeq {
		return &model.StateViolationError{
			Entity:  "task " + t.Name,
			Message: "only computation tasks can be assigned to a host",
		}
	}
	if !t.State.CanTransitionTo(model.TaskStateScheduled) {
		return &model.StateViolationError{
			Entity:  "task " + t.Name,
			State:   t.State.String(),
			Message: "cannot schedule",
		}
	}

	t.State = model.TaskStateScheduled
	t.Hosts = []*model.Host{h}
	p.logger.Debug("task assigned", "task", t.Name, "host", h.Name, "clock", p.clock)

	// Place transfers whose endpoints are now both known.
	for _, parent := range t.Parents {
		p.placeTransfer(parent)
	}
	for _, child := range t.Children {
		p.placeTransfer(child)
	}
	return nil
}

// placeTransfer assigns a COMM_E2E task to the producer/consumer host
// pair as soon as both endpoint tasks are scheduled.
func (p *Platform) placeTransfer(c *model.Task) {
	if c.Kind != model.KindCommE2E || c.State != model.TaskStateNotScheduled {
		return
	}
	producer, consumer := c.Parents[0], c.Children[0]
	if !producer.Scheduled() || !consumer.Scheduled() {
		return
	}
	c.State = model.TaskStateScheduled
	c.Hosts = []*model.Host{producer.Host(), consumer.Host()}
}

// Watch marks the task so that Advance returns once it completes.
func (p *Platform) Watch(t *model.Task) {
	p.watched[t] = true
}

// Snapshot renders the current simulation state as a RunResult. Times
// are reported relative to since.
func (p *Platform) Snapshot(since float64) *model.RunResult {
	result := &model.RunResult{
		Tasks: make([]model.TaskResult, 0, len(p.tasks)),
		Hosts: make([]model.HostResult, 0, len(p.hosts)),
	}
	for _, t := range p.tasks {
		names := make([]string, 0, len(t.Hosts))
		for _, h := range t.Hosts {
			names = append(names, h.Name)
		}
		result.Tasks = append(result.Tasks, model.TaskResult{
			Name:   t.Name,
			Type:   t.Kind.Short(),
			Start:  t.StartTime - since,
			End:    t.FinishTime - since,
			Amount: t.Amount,
			Hosts:  names,
		})
	}
	for _, h := range p.hosts {
		result.Hosts = append(result.Hosts, model.HostResult{
			Name:  h.Name,
			Power: h.Power,
			Cores: h.Cores,
		})
	}
	return result
}

// Unfinished returns the names of tasks that are not DONE. Used to
// detect graphs the chosen schedule failed to drain.
func (p *Platform) Unfinished() []string {
	var names []string
	for _, t := range p.tasks {
		if t.State != model.TaskStateDone {
			names = append(names, t.Name)
		}
	}
	return names
}

func (p *Platform) String() string {
	return fmt.Sprintf("platform{hosts: %d, tasks: %d, clock: %f}", len(p.hosts), len(p.tasks), p.clock)
}

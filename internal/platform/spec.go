package platform

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/me/dagsim/pkg/model"
)

// Spec is the declarative description a Platform is built from. The
// host and route halves come from the platform file, the task half
// from the graph file; tests assemble Specs directly.
type Spec struct {
	Hosts        []HostSpec  `yaml:"hosts" json:"hosts"`
	Routes       []RouteSpec `yaml:"routes" json:"routes"`
	DefaultRoute *RouteSpec  `yaml:"default_route" json:"default_route"`
	Tasks        []TaskSpec  `yaml:"tasks" json:"tasks"`
}

// HostSpec describes one execution host.
type HostSpec struct {
	Name       string  `yaml:"name" json:"name"`
	Power      float64 `yaml:"power" json:"power"` // flops per second
	Cores      int     `yaml:"cores" json:"cores"` // defaults to 1
	Submission bool    `yaml:"submission" json:"submission"`
}

// RouteSpec describes the link between two hosts. Routes are
// symmetric. In DefaultRoute the endpoint names are empty.
type RouteSpec struct {
	Src       string  `yaml:"src" json:"src"`
	Dst       string  `yaml:"dst" json:"dst"`
	Latency   float64 `yaml:"latency" json:"latency"`     // seconds
	Bandwidth float64 `yaml:"bandwidth" json:"bandwidth"` // bytes per second
}

// TaskSpec describes one graph node. Kind accepts comp/comp_seq and
// comm/comm_e2e; empty means computation.
type TaskSpec struct {
	Name     string   `yaml:"name" json:"name"`
	Kind     string   `yaml:"kind" json:"kind"`
	Amount   float64  `yaml:"amount" json:"amount"`
	Children []string `yaml:"children" json:"children"`
}

// New builds a Platform from a Spec, validating the platform
// description and the task graph. The synthetic root and end tasks are
// inserted when the graph does not carry them.
func New(spec Spec, logger *slog.Logger) (*Platform, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Platform{
		byName:  make(map[string]*model.Task),
		byHost:  make(map[string]*model.Host),
		routes:  make(map[routeKey]RouteSpec),
		watched: make(map[*model.Task]bool),
		busy:    make(map[*model.Host]*model.Task),
		logger:  logger.With("component", "platform"),
	}

	if err := p.buildHosts(spec); err != nil {
		return nil, err
	}
	if err := p.buildRoutes(spec); err != nil {
		return nil, err
	}
	if err := p.buildTasks(spec); err != nil {
		return nil, err
	}
	if err := p.validateGraph(); err != nil {
		return nil, err
	}

	// Parentless computation tasks are ready for dynamic scheduling
	// from the start.
	for _, t := range p.tasks {
		if t.Kind == model.KindCompSeq && len(t.Parents) == 0 {
			t.State = model.TaskStateSchedulable
		}
	}

	p.logger.Debug("platform ready", "hosts", len(p.hosts), "tasks", len(p.tasks))
	return p, nil
}

func (p *Platform) buildHosts(spec Spec) error {
	if len(spec.Hosts) == 0 {
		return model.NewConfigError("hosts", "platform defines no hosts")
	}
	for _, hs := range spec.Hosts {
		if hs.Name == "" {
			return model.NewConfigError("hosts", "host without a name")
		}
		if _, dup := p.byHost[hs.Name]; dup {
			return model.NewConfigError("hosts", "duplicate host %q", hs.Name)
		}
		if hs.Power <= 0 {
			return model.NewConfigError("hosts", "host %q: power must be positive", hs.Name)
		}
		cores := hs.Cores
		if cores == 0 {
			cores = 1
		}
		h := &model.Host{Name: hs.Name, Power: hs.Power, Cores: cores, Submission: hs.Submission}
		p.hosts = append(p.hosts, h)
		p.byHost[h.Name] = h
	}
	return nil
}

func (p *Platform) buildRoutes(spec Spec) error {
	for _, rs := range spec.Routes {
		if _, ok := p.byHost[rs.Src]; !ok {
			return model.NewConfigError("routes", "route references unknown host %q", rs.Src)
		}
		if _, ok := p.byHost[rs.Dst]; !ok {
			return model.NewConfigError("routes", "route references unknown host %q", rs.Dst)
		}
		if rs.Bandwidth <= 0 {
			return model.NewConfigError("routes", "route %s-%s: bandwidth must be positive", rs.Src, rs.Dst)
		}
		p.routes[routeKey{rs.Src, rs.Dst}] = rs
	}
	if spec.DefaultRoute != nil {
		if spec.DefaultRoute.Bandwidth <= 0 {
			return model.NewConfigError("default_route", "bandwidth must be positive")
		}
		r := *spec.DefaultRoute
		p.defaultRoute = &r
	}

	// Every distinct host pair needs a route in some direction, or a
	// default to fall back on.
	if p.defaultRoute == nil {
		for i, a := range p.hosts {
			for _, b := range p.hosts[i+1:] {
				_, fwd := p.routes[routeKey{a.Name, b.Name}]
				_, rev := p.routes[routeKey{b.Name, a.Name}]
				if !fwd && !rev {
					return model.NewConfigError("routes", "no route between %q and %q and no default route", a.Name, b.Name)
				}
			}
		}
	}
	return nil
}

func (p *Platform) buildTasks(spec Spec) error {
	for _, ts := range spec.Tasks {
		if ts.Name == "" {
			return &model.MalformedGraphError{Message: "task without a name"}
		}
		if _, dup := p.byName[ts.Name]; dup {
			return &model.MalformedGraphError{Task: ts.Name, Message: "duplicate task name"}
		}
		kind, err := model.ParseKind(ts.Kind)
		if err != nil {
			return &model.MalformedGraphError{Task: ts.Name, Message: err.Error()}
		}
		t := &model.Task{
			Name:   ts.Name,
			Kind:   kind,
			Amount: ts.Amount,
			State:  model.TaskStateNotScheduled,
		}
		p.tasks = append(p.tasks, t)
		p.byName[t.Name] = t
	}

	for _, ts := range spec.Tasks {
		parent := p.byName[ts.Name]
		for _, childName := range ts.Children {
			child, ok := p.byName[childName]
			if !ok {
				return &model.MalformedGraphError{Task: ts.Name, Message: fmt.Sprintf("unknown child %q", childName)}
			}
			parent.Children = append(parent.Children, child)
			child.Parents = append(child.Parents, parent)
		}
	}

	p.insertAnchors()
	return nil
}

// insertAnchors adds the synthetic root and end tasks when the graph
// does not define them: root feeds every source computation, every
// sink computation feeds end. Dependencies through the anchors carry
// no data, so they are plain graph edges without transfer tasks.
func (p *Platform) insertAnchors() {
	if _, ok := p.byName[model.RootTask]; !ok {
		root := &model.Task{Name: model.RootTask, Kind: model.KindCompSeq, State: model.TaskStateNotScheduled}
		for _, t := range p.tasks {
			if t.Kind == model.KindCompSeq && len(t.Parents) == 0 {
				root.Children = append(root.Children, t)
				t.Parents = append(t.Parents, root)
			}
		}
		p.tasks = append([]*model.Task{root}, p.tasks...)
		p.byName[root.Name] = root
	}
	if _, ok := p.byName[model.EndTask]; !ok {
		end := &model.Task{Name: model.EndTask, Kind: model.KindCompSeq, State: model.TaskStateNotScheduled}
		for _, t := range p.tasks {
			if t.Kind == model.KindCompSeq && len(t.Children) == 0 && t != end {
				t.Children = append(t.Children, end)
				end.Parents = append(end.Parents, t)
			}
		}
		p.tasks = append(p.tasks, end)
		p.byName[end.Name] = end
	}
}

// validateGraph checks transfer arity and rejects cycles (Kahn's
// algorithm over the full graph).
func (p *Platform) validateGraph() error {
	for _, t := range p.tasks {
		if t.Kind != model.KindCommE2E {
			continue
		}
		if len(t.Parents) != 1 {
			return &model.MalformedGraphError{Task: t.Name, Message: fmt.Sprintf("transfer must have exactly one parent, got %d", len(t.Parents))}
		}
		if len(t.Children) != 1 {
			return &model.MalformedGraphError{Task: t.Name, Message: fmt.Sprintf("transfer must have exactly one child, got %d", len(t.Children))}
		}
		if t.Parents[0].Kind != model.KindCompSeq || t.Children[0].Kind != model.KindCompSeq {
			return &model.MalformedGraphError{Task: t.Name, Message: "transfer endpoints must be computation tasks"}
		}
	}

	inDegree := make(map[*model.Task]int, len(p.tasks))
	for _, t := range p.tasks {
		inDegree[t] = len(t.Parents)
	}
	queue := make([]*model.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		if inDegree[t] == 0 {
			queue = append(queue, t)
		}
	}
	visited := 0
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		visited++
		for _, c := range t.Children {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}
	if visited != len(p.tasks) {
		var cycleNodes []string
		for t, deg := range inDegree {
			if deg > 0 {
				cycleNodes = append(cycleNodes, t.Name)
			}
		}
		sort.Strings(cycleNodes)
		return &model.MalformedGraphError{Message: "cycle involving tasks: " + strings.Join(cycleNodes, ", ")}
	}
	return nil
}

package platform

import (
	"math"
	"testing"

	"github.com/me/dagsim/pkg/model"
)

// pipelineSpec builds h0 -> h1 platform with the graph
// root -> a(10) -> x(comm 100) -> b(10) -> end.
func pipelineSpec() Spec {
	spec := twoHosts()
	spec.Tasks = []TaskSpec{
		{Name: "a", Amount: 10, Children: []string{"x"}},
		{Name: "x", Kind: "comm", Amount: 100, Children: []string{"b"}},
		{Name: "b", Amount: 10},
	}
	return spec
}

func scheduleByName(t *testing.T, p *Platform, assignments map[string]string) {
	t.Helper()
	// Graph order keeps the engine deterministic.
	for _, task := range p.Tasks() {
		hostName, ok := assignments[task.Name]
		if !ok {
			continue
		}
		host, err := p.HostByName(hostName)
		if err != nil {
			t.Fatalf("HostByName(%s): %v", hostName, err)
		}
		if err := p.Schedule(task, host); err != nil {
			t.Fatalf("Schedule(%s, %s): %v", task.Name, hostName, err)
		}
	}
}

func TestAdvanceRunsStaticScheduleToCompletion(t *testing.T) {
	p := mustNew(t, pipelineSpec())
	scheduleByName(t, p, map[string]string{
		"root": "h0", "end": "h0", "a": "h0", "b": "h1",
	})

	if p.Advance() {
		t.Fatal("Advance should return false with an empty watch set")
	}

	// a: 10 flops on h0 (power 1) -> done at 10.
	// x: 100 bytes over the default route (latency 1, bw 10) -> 11s -> done at 21.
	// b: 10 flops on h1 (power 2) -> done at 26.
	checks := map[string][2]float64{
		"root": {0, 0},
		"a":    {0, 10},
		"x":    {10, 21},
		"b":    {21, 26},
		"end":  {26, 26},
	}
	for name, want := range checks {
		task, err := p.TaskByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if task.State != model.TaskStateDone {
			t.Errorf("%s state = %s, want DONE", name, task.State)
		}
		if task.StartTime != want[0] || task.FinishTime != want[1] {
			t.Errorf("%s times = [%v, %v], want [%v, %v]", name, task.StartTime, task.FinishTime, want[0], want[1])
		}
	}

	if p.Now() != 26 {
		t.Errorf("Now() = %v, want 26", p.Now())
	}

	x, _ := p.TaskByName("x")
	if len(x.Hosts) != 2 || x.Hosts[0].Name != "h0" || x.Hosts[1].Name != "h1" {
		t.Errorf("transfer hosts = %v, want [h0 h1]", taskHostNames(x))
	}
}

func TestAdvanceStopsOnWatchedCompletions(t *testing.T) {
	p := mustNew(t, pipelineSpec())
	a, _ := p.TaskByName("a")
	b, _ := p.TaskByName("b")
	p.Watch(a)
	p.Watch(b)

	scheduleByName(t, p, map[string]string{
		"root": "h0", "end": "h0", "a": "h0", "b": "h1",
	})

	if !p.Advance() {
		t.Fatal("first Advance should stop on a's completion")
	}
	if p.Now() != 10 || a.State != model.TaskStateDone {
		t.Errorf("after first Advance: clock=%v a=%s", p.Now(), a.State)
	}

	if !p.Advance() {
		t.Fatal("second Advance should stop on b's completion")
	}
	if p.Now() != 26 || b.State != model.TaskStateDone {
		t.Errorf("after second Advance: clock=%v b=%s", p.Now(), b.State)
	}

	if p.Advance() {
		t.Error("final Advance should drain and return false")
	}
	if names := p.Unfinished(); len(names) != 0 {
		t.Errorf("unfinished tasks after drain: %v", names)
	}
}

func TestAdvancePromotesDownstreamTasks(t *testing.T) {
	p := mustNew(t, pipelineSpec())
	a, _ := p.TaskByName("a")
	b, _ := p.TaskByName("b")
	p.Watch(a)

	scheduleByName(t, p, map[string]string{"root": "h0", "end": "h0", "a": "h0"})

	if !p.Advance() {
		t.Fatal("Advance should stop once a is done")
	}
	// b's only input is the transfer x whose producer a is done, so b
	// is now schedulable even though x itself has not run.
	if b.State != model.TaskStateSchedulable {
		t.Fatalf("b state = %s, want SCHEDULABLE", b.State)
	}

	h1, _ := p.HostByName("h1")
	if err := p.Schedule(b, h1); err != nil {
		t.Fatalf("Schedule(b): %v", err)
	}
	if p.Advance() {
		t.Error("drain should return false")
	}
	if b.FinishTime != 26 {
		t.Errorf("b finish = %v, want 26", b.FinishTime)
	}
}

func TestHostRunsOneTaskAtATime(t *testing.T) {
	spec := twoHosts()
	spec.Tasks = []TaskSpec{
		{Name: "a", Amount: 10},
		{Name: "b", Amount: 10},
	}
	p := mustNew(t, spec)
	scheduleByName(t, p, map[string]string{
		"root": "h0", "end": "h0", "a": "h0", "b": "h0",
	})
	p.Advance()

	a, _ := p.TaskByName("a")
	b, _ := p.TaskByName("b")
	// Same host: executions serialize in graph order.
	if a.StartTime != 0 || a.FinishTime != 10 {
		t.Errorf("a ran [%v, %v], want [0, 10]", a.StartTime, a.FinishTime)
	}
	if b.StartTime != 10 || b.FinishTime != 20 {
		t.Errorf("b ran [%v, %v], want [10, 20]", b.StartTime, b.FinishTime)
	}
}

func TestScheduleStateViolations(t *testing.T) {
	p := mustNew(t, pipelineSpec())
	a, _ := p.TaskByName("a")
	x, _ := p.TaskByName("x")
	h0, _ := p.HostByName("h0")

	if err := p.Schedule(x, h0); err == nil {
		t.Error("scheduling a transfer task must fail")
	}

	if err := p.Schedule(a, h0); err != nil {
		t.Fatalf("first Schedule: %v", err)
	}
	if err := p.Schedule(a, h0); err == nil {
		t.Error("scheduling an already-scheduled task must fail")
	}
}

func TestRouteCommTime(t *testing.T) {
	spec := twoHosts()
	spec.Routes = []RouteSpec{{Src: "h0", Dst: "h1", Latency: 2, Bandwidth: 50}}
	p := mustNew(t, spec)
	h0, _ := p.HostByName("h0")
	h1, _ := p.HostByName("h1")

	// Same-host transfers are free regardless of amount.
	for _, amount := range []float64{0, 1, 1e9} {
		if got := p.RouteCommTime(h0, h0, amount); got != 0 {
			t.Errorf("RouteCommTime(h0, h0, %v) = %v, want 0", amount, got)
		}
	}

	want := 2 + 100.0/50
	if got := p.RouteCommTime(h0, h1, 100); math.Abs(got-want) > 1e-12 {
		t.Errorf("RouteCommTime(h0, h1, 100) = %v, want %v", got, want)
	}
	// Routes are symmetric.
	if got := p.RouteCommTime(h1, h0, 100); math.Abs(got-want) > 1e-12 {
		t.Errorf("RouteCommTime(h1, h0, 100) = %v, want %v", got, want)
	}
}

func TestSnapshot(t *testing.T) {
	p := mustNew(t, pipelineSpec())
	scheduleByName(t, p, map[string]string{
		"root": "h0", "end": "h0", "a": "h0", "b": "h1",
	})
	p.Advance()

	result := p.Snapshot(0)
	if len(result.Tasks) != 5 || len(result.Hosts) != 2 {
		t.Fatalf("snapshot sizes: %d tasks, %d hosts", len(result.Tasks), len(result.Hosts))
	}
	if result.Makespan() != 26 {
		t.Errorf("makespan = %v, want 26", result.Makespan())
	}
	for _, tr := range result.Tasks {
		if tr.Name == "x" && tr.Type != "comm" {
			t.Errorf("x type = %q, want comm", tr.Type)
		}
		if tr.Name == "a" && tr.Type != "comp" {
			t.Errorf("a type = %q, want comp", tr.Type)
		}
	}
}

func taskHostNames(t *model.Task) []string {
	names := make([]string, len(t.Hosts))
	for i, h := range t.Hosts {
		names[i] = h.Name
	}
	return names
}

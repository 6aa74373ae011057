package scheduler

import (
	"errors"
	"math"
	"testing"

	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

func approx(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("%s = %v, want %v", msg, got, want)
	}
}

// Three hosts with very different routes to the producer: the estimate
// must trade compute speed against transfer cost per host.
func TestCompletionEstimateTradesComputeAgainstTransfer(t *testing.T) {
	spec := platform.Spec{
		Hosts: []platform.HostSpec{
			{Name: "h0", Power: 0.5, Submission: true},
			{Name: "h1", Power: 1},
			{Name: "h2", Power: 1},
		},
		Routes: []platform.RouteSpec{
			{Src: "h0", Dst: "h1", Latency: 50, Bandwidth: 1e9},
			{Src: "h0", Dst: "h2", Latency: 5, Bandwidth: 1e9},
			{Src: "h1", Dst: "h2", Latency: 1, Bandwidth: 1e9},
		},
		Tasks: []platform.TaskSpec{
			{Name: "a", Amount: 1, Children: []string{"x"}},
			{Name: "x", Kind: "comm", Amount: 1, Children: []string{"b"}},
			{Name: "b", Amount: 20},
		},
	}
	p := newPlatform(t, spec)

	a, err := p.TaskByName("a")
	if err != nil {
		t.Fatal(err)
	}
	h0, _ := p.HostByName("h0")
	if err := p.Schedule(a, h0); err != nil {
		t.Fatal(err)
	}

	b, err := p.TaskByName("b")
	if err != nil {
		t.Fatal(err)
	}
	states := NewHostStates(p)

	// h0 colocates with the producer: no transfer, slow compute.
	got, err := CompletionEstimate(p, states, b, h0)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 40, "estimate on h0")

	// h1 pays the 50-unit latency on top of fast compute.
	h1, _ := p.HostByName("h1")
	got, err = CompletionEstimate(p, states, b, h1)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 70, "estimate on h1")

	// h2 has the cheap route and the fast compute: the winner.
	h2, _ := p.HostByName("h2")
	got, err = CompletionEstimate(p, states, b, h2)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 25, "estimate on h2")
}

// The producer's host is projected busy until the producer finishes:
// colocating there waits out the projection, while a remote host pays
// only the transfer. With equal compute everywhere the cheap-route
// host wins even against the data's own host.
func TestCompletionEstimateWithBusyProducerHost(t *testing.T) {
	spec := platform.Spec{
		Hosts: []platform.HostSpec{
			{Name: "h0", Power: 1, Submission: true},
			{Name: "h1", Power: 1},
			{Name: "h2", Power: 1},
		},
		Routes: []platform.RouteSpec{
			{Src: "h0", Dst: "h1", Latency: 0, Bandwidth: 2},
			{Src: "h0", Dst: "h2", Latency: 0, Bandwidth: 20},
			{Src: "h1", Dst: "h2", Latency: 0, Bandwidth: 1},
		},
		Tasks: []platform.TaskSpec{
			{Name: "a", Amount: 10, Children: []string{"x"}},
			{Name: "x", Kind: "comm", Amount: 100, Children: []string{"b"}},
			{Name: "b", Amount: 10},
		},
	}
	p := newPlatform(t, spec)

	a, err := p.TaskByName("a")
	if err != nil {
		t.Fatal(err)
	}
	h0, _ := p.HostByName("h0")
	if err := p.Schedule(a, h0); err != nil {
		t.Fatal(err)
	}

	b, err := p.TaskByName("b")
	if err != nil {
		t.Fatal(err)
	}
	states := NewHostStates(p)
	states[h0].AvailableAt = 10 // a's projected finish

	// h0: wait for a (10), no transfer, compute 10 -> 20.
	// h1: transfer 100/2 = 50, compute 10 -> 60.
	// h2: transfer 100/20 = 5, compute 10 -> 15, the winner.
	want := map[string]float64{"h0": 20, "h1": 60, "h2": 15}
	for name, expected := range want {
		h, err := p.HostByName(name)
		if err != nil {
			t.Fatal(err)
		}
		got, err := CompletionEstimate(p, states, b, h)
		if err != nil {
			t.Fatal(err)
		}
		approx(t, got, expected, "estimate on "+name)
	}
}

// Parallel inbound transfers overlap: the slowest one bounds data
// readiness, they do not add up.
func TestCompletionEstimateTakesSlowestTransfer(t *testing.T) {
	spec := platform.Spec{
		Hosts: []platform.HostSpec{
			{Name: "h0", Power: 1, Submission: true},
			{Name: "h1", Power: 1},
			{Name: "h2", Power: 1},
		},
		Routes: []platform.RouteSpec{
			{Src: "h1", Dst: "h0", Latency: 10, Bandwidth: 1e9},
			{Src: "h2", Dst: "h0", Latency: 3, Bandwidth: 1e9},
			{Src: "h1", Dst: "h2", Latency: 1, Bandwidth: 1e9},
		},
		Tasks: []platform.TaskSpec{
			{Name: "a", Amount: 1, Children: []string{"xa"}},
			{Name: "b", Amount: 1, Children: []string{"xb"}},
			{Name: "xa", Kind: "comm", Amount: 1, Children: []string{"c"}},
			{Name: "xb", Kind: "comm", Amount: 1, Children: []string{"c"}},
			{Name: "c", Amount: 5},
		},
	}
	p := newPlatform(t, spec)

	for name, host := range map[string]string{"a": "h1", "b": "h2"} {
		task, err := p.TaskByName(name)
		if err != nil {
			t.Fatal(err)
		}
		h, err := p.HostByName(host)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.Schedule(task, h); err != nil {
			t.Fatal(err)
		}
	}

	c, err := p.TaskByName("c")
	if err != nil {
		t.Fatal(err)
	}
	h0, _ := p.HostByName("h0")

	got, err := CompletionEstimate(p, NewHostStates(p), c, h0)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 15, "estimate with two transfers") // max(10, 3) + 5
}

func TestCompletionEstimateRespectsHostAvailability(t *testing.T) {
	p := newPlatform(t, twoHostSpec())
	h0, _ := p.HostByName("h0")
	states := NewHostStates(p)
	states[h0].AvailableAt = 12

	task := &model.Task{Name: "t", Kind: model.KindCompSeq, Amount: 4}
	got, err := CompletionEstimate(p, states, task, h0)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 16, "estimate on a busy host")
}

func TestCompletionEstimateMalformedTransfer(t *testing.T) {
	p := newPlatform(t, twoHostSpec())
	h0, _ := p.HostByName("h0")

	bad := &model.Task{Name: "x", Kind: model.KindCommE2E, Amount: 1}
	task := &model.Task{
		Name:    "t",
		Kind:    model.KindCompSeq,
		Amount:  1,
		Parents: []*model.Task{bad},
	}

	_, err := CompletionEstimate(p, NewHostStates(p), task, h0)
	var mg *model.MalformedGraphError
	if !errors.As(err, &mg) {
		t.Errorf("want MalformedGraphError, got %v", err)
	}
}

// The legacy estimator tracks actual parent finish times, including
// computation parents, and ignores the simulated clock.
func TestLegacyEstimate(t *testing.T) {
	p := newPlatform(t, twoHostSpec())
	h0, _ := p.HostByName("h0")
	h1, _ := p.HostByName("h1")
	states := NewHostStates(p)

	producer := &model.Task{
		Name:       "a",
		Kind:       model.KindCompSeq,
		FinishTime: 4,
		Hosts:      []*model.Host{h1},
	}
	transfer := &model.Task{
		Name:    "x",
		Kind:    model.KindCommE2E,
		Amount:  1,
		Parents: []*model.Task{producer},
	}
	compParent := &model.Task{Name: "b", Kind: model.KindCompSeq, FinishTime: 7}
	task := &model.Task{
		Name:    "t",
		Kind:    model.KindCompSeq,
		Amount:  2,
		Parents: []*model.Task{transfer, compParent},
	}

	// The computation parent finishing at 7 dominates the transfer
	// arriving at roughly 4.
	got, err := legacyEstimate(p, states, task, h0)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 9, "legacy estimate, data-bound")

	// A later host availability dominates both.
	states[h0].AvailableAt = 20
	got, err = legacyEstimate(p, states, task, h0)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, got, 22, "legacy estimate, host-bound")
}

package platform

import (
	"container/heap"

	"github.com/me/dagsim/pkg/model"
)

// event is a pending task completion.
type event struct {
	at   float64
	seq  int // insertion order, breaks time ties deterministically
	task *model.Task
}

type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

// Advance drives the simulation until at least one watched task
// completes (returns true) or no further events exist (returns false).
// With an empty watch set it simply runs the simulation to the end.
func (p *Platform) Advance() bool {
	for {
		p.startReady()
		if p.events.Len() == 0 {
			return false
		}

		// Process every completion sharing the earliest timestamp.
		tmin := p.events[0].at
		p.clock = tmin
		watchedHit := false
		for p.events.Len() > 0 && p.events[0].at == tmin {
			e := heap.Pop(&p.events).(*event)
			p.finish(e.task)
			if p.watched[e.task] {
				watchedHit = true
			}
		}
		if watchedHit {
			return true
		}
	}
}

// startReady starts every task that can run at the current clock, in
// graph order.
func (p *Platform) startReady() {
	for _, t := range p.tasks {
		if t.State != model.TaskStateScheduled {
			continue
		}
		switch t.Kind {
		case model.KindCompSeq:
			if p.parentsDone(t) && p.busy[t.Host()] == nil {
				p.start(t, p.ComputeTime(t.Host(), t.Amount))
				p.busy[t.Host()] = t
			}
		case model.KindCommE2E:
			if t.Parents[0].State == model.TaskStateDone {
				p.start(t, p.RouteCommTime(t.Hosts[0], t.Hosts[1], t.Amount))
			}
		}
	}
}

func (p *Platform) parentsDone(t *model.Task) bool {
	for _, parent := range t.Parents {
		if parent.State != model.TaskStateDone {
			return false
		}
	}
	return true
}

func (p *Platform) start(t *model.Task, duration float64) {
	t.State = model.TaskStateRunning
	t.StartTime = p.clock
	p.seq++
	heap.Push(&p.events, &event{at: p.clock + duration, seq: p.seq, task: t})
	p.logger.Debug("task started", "task", t.Name, "clock", p.clock, "duration", duration)
}

// finish completes a running task and promotes downstream tasks that
// became schedulable.
func (p *Platform) finish(t *model.Task) {
	t.State = model.TaskStateDone
	t.FinishTime = p.clock
	if t.Kind == model.KindCompSeq {
		delete(p.busy, t.Host())
	}
	p.logger.Debug("task done", "task", t.Name, "clock", p.clock)

	for _, child := range t.Children {
		switch child.Kind {
		case model.KindCompSeq:
			p.maybePromote(child)
		case model.KindCommE2E:
			p.maybePromote(child.Children[0])
		}
	}
}

// maybePromote moves a computation task from NOT_SCHEDULED to
// SCHEDULABLE once all of its inputs are producible: computation
// parents must be DONE, transfer parents must have a DONE producer.
// (The transfer itself cannot run before the task is placed, so its
// own completion is deliberately not required here.)
func (p *Platform) maybePromote(t *model.Task) {
	if t.Kind != model.KindCompSeq || t.State != model.TaskStateNotScheduled {
		return
	}
	for _, parent := range t.Parents {
		switch parent.Kind {
		case model.KindCommE2E:
			if parent.Parents[0].State != model.TaskStateDone {
				return
			}
		default:
			if parent.State != model.TaskStateDone {
				return
			}
		}
	}
	t.State = model.TaskStateSchedulable
	p.logger.Debug("task schedulable", "task", t.Name, "clock", p.clock)
}

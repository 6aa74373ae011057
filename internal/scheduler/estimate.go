package scheduler

import (
	"fmt"

	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/pkg/model"
)

// HostState is a scheduler's projection of one host: the earliest
// simulated time at which the host is next free. It is an upper-bound
// estimate, not ground truth, and is mutated only by the scheduler
// that owns it.
type HostState struct {
	AvailableAt float64
}

// Estimate is one (host, expected completion time) pair.
type Estimate struct {
	Host       *model.Host
	Completion float64
}

// NewHostStates initializes projections for every platform host.
func NewHostStates(p *platform.Platform) map[*model.Host]*HostState {
	states := make(map[*model.Host]*HostState, len(p.Hosts()))
	for _, h := range p.Hosts() {
		states[h] = &HostState{}
	}
	return states
}

// CompletionEstimate returns the expected completion time of task t if
// it were placed on host h now:
//
//	max(h.available_at, now) + max inbound transfer time + compute time
//
// Inbound transfers are the COMM_E2E parents of t, each costed from
// its producer's host to h; the longest one bounds data readiness.
// Computation parents contribute nothing: their data flows through a
// transfer task when it matters.
func CompletionEstimate(p *platform.Platform, states map[*model.Host]*HostState, t *model.Task, h *model.Host) (float64, error) {
	comp := p.ComputeTime(h, t.Amount)

	var comm float64
	for _, parent := range t.Parents {
		if parent.Kind != model.KindCommE2E {
			continue
		}
		if len(parent.Parents) != 1 {
			return 0, &model.MalformedGraphError{
				Task:    parent.Name,
				Message: fmt.Sprintf("transfer must have exactly one parent, got %d", len(parent.Parents)),
			}
		}
		producer := parent.Parents[0]
		if c := p.RouteCommTime(producer.Host(), h, parent.Amount); c > comm {
			comm = c
		}
	}

	available := states[h].AvailableAt
	if now := p.Now(); now > available {
		available = now
	}
	return available + comm + comp, nil
}

// legacyEstimate is the estimator of the older greedy baseline: data
// readiness tracks actual parent finish times, computation parents
// included, and transfers cost their route time on top of the
// producer's finish.
func legacyEstimate(p *platform.Platform, states map[*model.Host]*HostState, t *model.Task, h *model.Host) (float64, error) {
	comp := p.ComputeTime(h, t.Amount)

	var dataAvailable float64
	for _, parent := range t.Parents {
		switch parent.Kind {
		case model.KindCommE2E:
			if len(parent.Parents) != 1 {
				return 0, &model.MalformedGraphError{
					Task:    parent.Name,
					Message: fmt.Sprintf("transfer must have exactly one parent, got %d", len(parent.Parents)),
				}
			}
			producer := parent.Parents[0]
			c := p.RouteCommTime(producer.Host(), h, parent.Amount) + producer.FinishTime
			if c > dataAvailable {
				dataAvailable = c
			}
		case model.KindCompSeq:
			if parent.FinishTime > dataAvailable {
				dataAvailable = parent.FinishTime
			}
		}
	}

	available := states[h].AvailableAt
	if dataAvailable > available {
		available = dataAvailable
	}
	return available + comp, nil
}

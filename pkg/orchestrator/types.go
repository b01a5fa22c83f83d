package orchestrator

import (
	"time"

	"benchorch/pkg/runner"
	"benchorch/pkg/sysinfo"
)

// Phase is the orchestrator's position in its run lifecycle.
type Phase string

const (
	PhaseIdle        Phase = "IDLE"
	PhaseRunning     Phase = "RUNNING"
	PhaseAggregating Phase = "AGGREGATING"
	PhaseReporting   Phase = "REPORTING"
	PhaseDone        Phase = "DONE"
)

// Manifest is the single aggregated record of one orchestration run. It is
// assembled once, after every job has settled, and written to the results
// directory under a unique name so concurrent runs never collide.
//
// Jobs appear in descriptor declaration order, never completion order.
type Manifest struct {
	RunID       string              `json:"runId"`
	StartedAt   time.Time           `json:"startedAt"`
	FinishedAt  time.Time           `json:"finishedAt"`
	Environment sysinfo.Environment `json:"environment"`
	Jobs        []runner.Outcome    `json:"jobs"`
}

package runner

import (
	"context"
	"time"
)

// Descriptor identifies one benchmark track: what to execute and which
// filename prefix its result artifact is written under.
type Descriptor struct {
	Name           string   `json:"name"`
	Exec           string   `json:"exec"`
	Args           []string `json:"args"`
	ArtifactPrefix string   `json:"artifactPrefix"`
}

// Outcome captures how a single job ended.
//
// ExitCode is nil when the process was killed by a signal (or never
// started); a normal exit always yields the numeric code, including 0.
type Outcome struct {
	Name         string `json:"name"`
	ExitCode     *int   `json:"exitCode"`
	ArtifactPath string `json:"artifactPath,omitempty"`
	LogPath      string `json:"logPath,omitempty"`
	DurationMS   int64  `json:"durationMs"`
	Err          string `json:"error,omitempty"`
}

// Failed reports whether the job ended in anything other than a clean exit 0.
func (o Outcome) Failed() bool {
	return o.ExitCode == nil || *o.ExitCode != 0
}

// LineSink receives every complete output line of a job as it arrives.
// isStderr distinguishes the two standard streams.
type LineSink func(job string, isStderr bool, line string)

// JobRunner defines the interface for executing a single job.
type JobRunner interface {
	// Run executes the descriptor's command and blocks until the process
	// has exited and both of its output streams are fully drained.
	Run(ctx context.Context, d Descriptor) Outcome
}

func durationMS(d time.Duration) int64 {
	return d.Milliseconds()
}

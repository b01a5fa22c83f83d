package runner

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sync"
	"time"

	"benchorch/pkg/stream"
)

// ProcRunner runs jobs as child OS processes, forwarding their output
// line-by-line through the sink while the process is still running.
type ProcRunner struct {
	sink LineSink
}

// NewProcRunner returns a ProcRunner emitting job output to sink.
func NewProcRunner(sink LineSink) *ProcRunner {
	return &ProcRunner{sink: sink}
}

// Run spawns the descriptor's command. stdout and stderr are pumped through
// independent line splitters by two goroutines running concurrently with the
// process itself, so a child blocking on a full pipe can never deadlock the
// runner. Run returns only after both streams hit EOF and the process has
// been reaped.
func (r *ProcRunner) Run(ctx context.Context, d Descriptor) Outcome {
	start := time.Now()
	out := Outcome{Name: d.Name}

	cmd := exec.CommandContext(ctx, d.Exec, d.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		out.Err = err.Error()
		out.DurationMS = durationMS(time.Since(start))
		return out
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		out.Err = err.Error()
		out.DurationMS = durationMS(time.Since(start))
		return out
	}

	if err := cmd.Start(); err != nil {
		out.Err = err.Error()
		out.DurationMS = durationMS(time.Since(start))
		return out
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go r.pump(stdout, d.Name, false, &wg)
	go r.pump(stderr, d.Name, true, &wg)

	// Drain fully before Wait; Wait closes the pipes.
	wg.Wait()
	waitErr := cmd.Wait()

	out.DurationMS = durationMS(time.Since(start))
	out.ExitCode, out.Err = classifyExit(waitErr)
	return out
}

func (r *ProcRunner) pump(src io.Reader, job string, isStderr bool, wg *sync.WaitGroup) {
	defer wg.Done()
	lw := stream.NewLineWriter(func(line string) {
		r.sink(job, isStderr, line)
	})
	_, _ = io.Copy(lw, src)
	lw.Flush()
}

// classifyExit maps the Wait error to the outcome's exit code. A normal exit
// yields the numeric code; a signal-killed process yields a nil code, kept
// distinct from any numeric value.
func classifyExit(waitErr error) (*int, string) {
	if waitErr == nil {
		code := 0
		return &code, ""
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if exitErr.ProcessState.Exited() {
			code := exitErr.ExitCode()
			return &code, ""
		}
		return nil, waitErr.Error()
	}
	return nil, waitErr.Error()
}

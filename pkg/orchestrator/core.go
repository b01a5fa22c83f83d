// Package orchestrator launches a fixed set of benchmark jobs concurrently,
// aggregates their outcomes into a run manifest, and hands the manifest to
// the downstream scoreboard generator.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"benchorch/pkg/artifacts"
	"benchorch/pkg/logger"
	"benchorch/pkg/metrics"
	"benchorch/pkg/report"
	"benchorch/pkg/runner"
	"benchorch/pkg/storage"
	"benchorch/pkg/sysinfo"
)

// Options configures a Core. Jobs and ResultsDir are required; everything
// else has a usable zero value.
type Options struct {
	ResultsDir string
	RunPrefix  string
	Jobs       []runner.Descriptor

	// Trigger runs the scoreboard generator after the manifest is written.
	// Nil skips the reporting step.
	Trigger *report.Trigger

	// Console receives forwarded job output lines. Defaults to os.Stdout.
	Console io.Writer

	// Logs persists each job's captured output. Nil disables capture.
	Logs storage.LogStore

	// Mirror receives a post-run copy of the manifest and job logs,
	// typically S3. Nil disables mirroring. Mirror failures are warnings.
	Mirror storage.LogStore

	Log *zap.Logger
}

// Core owns one orchestration run: the static job list, the results
// directory, and the downstream report hand-off.
type Core struct {
	resultsDir string
	runPrefix  string
	jobs       []runner.Descriptor
	trigger    *report.Trigger
	console    io.Writer
	logs       storage.LogStore
	mirror     storage.LogStore
	log        *zap.Logger

	phase Phase
}

// NewCore validates the job set and builds a Core.
func NewCore(opts Options) (*Core, error) {
	if opts.ResultsDir == "" {
		return nil, fmt.Errorf("results directory is required")
	}
	if err := ValidateJobs(opts.Jobs); err != nil {
		return nil, err
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.RunPrefix == "" {
		opts.RunPrefix = "bench"
	}
	if opts.Log == nil {
		opts.Log = logger.Get()
	}
	return &Core{
		resultsDir: opts.ResultsDir,
		runPrefix:  opts.RunPrefix,
		jobs:       opts.Jobs,
		trigger:    opts.Trigger,
		console:    opts.Console,
		logs:       opts.Logs,
		mirror:     opts.Mirror,
		log:        opts.Log,
		phase:      PhaseIdle,
	}, nil
}

// Phase reports the orchestrator's current lifecycle phase.
func (c *Core) Phase() Phase {
	return c.phase
}

// Run executes every configured job at once, waits for all of them, writes
// the manifest, and triggers the report step.
//
// A job failing, crashing, or producing no artifact is recorded in its
// outcome and never fails the run; Run returns an error only when the
// manifest itself cannot be produced. There is no timeout: a hung job
// blocks the run until it exits.
func (c *Core) Run(ctx context.Context) (*Manifest, error) {
	if err := os.MkdirAll(c.resultsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}

	runID := uuid.New().String()
	c.setPhase(PhaseRunning)
	startedAt := time.Now().UTC()
	c.log.Info("starting benchmark run",
		zap.String("run_id", runID),
		zap.Int("jobs", len(c.jobs)),
		zap.String("results_dir", c.resultsDir))

	// Launch everything before joining anything. Outcomes land in their
	// declaration slot, so the manifest order never depends on which job
	// finishes first.
	outcomes := make([]runner.Outcome, len(c.jobs))
	var wg sync.WaitGroup
	for i, job := range c.jobs {
		wg.Add(1)
		go func(i int, job runner.Descriptor) {
			defer wg.Done()
			outcomes[i] = c.runOne(ctx, runID, job)
		}(i, job)
	}
	wg.Wait()

	c.setPhase(PhaseAggregating)
	finishedAt := time.Now().UTC()

	for i := range outcomes {
		c.resolveArtifact(&outcomes[i], c.jobs[i].ArtifactPrefix)
	}

	manifest := &Manifest{
		RunID:       runID,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Environment: sysinfo.Collect(),
		Jobs:        outcomes,
	}

	manifestPath, err := c.writeManifest(manifest)
	if err != nil {
		return nil, err
	}
	c.log.Info("manifest written", zap.String("path", manifestPath))

	c.mirrorRun(ctx, runID, manifestPath, manifest)

	c.setPhase(PhaseReporting)
	c.triggerReport(ctx, manifestPath)

	c.setPhase(PhaseDone)
	c.log.Info("run complete",
		zap.String("run_id", runID),
		zap.Duration("elapsed", finishedAt.Sub(startedAt)))
	return manifest, nil
}

// runOne executes a single job and settles its outcome, including log
// persistence. It never returns an error: failures become outcome data.
func (c *Core) runOne(ctx context.Context, runID string, job runner.Descriptor) runner.Outcome {
	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()

	var (
		buf bytes.Buffer
		mu  sync.Mutex // stdout and stderr pumps share the buffer
	)
	r := runner.NewProcRunner(func(name string, isStderr bool, line string) {
		tag, stream := name, "stdout"
		if isStderr {
			tag, stream = name+"!", "stderr"
		}
		fmt.Fprintf(c.console, "[%s] %s\n", tag, line)
		metrics.OutputLines.WithLabelValues(stream).Inc()
		mu.Lock()
		fmt.Fprintf(&buf, "[%s] %s\n", tag, line)
		mu.Unlock()
	})

	out := r.Run(ctx, job)

	if out.Failed() {
		c.log.Warn("job failed",
			zap.String("job", job.Name),
			zap.Any("exit_code", out.ExitCode),
			zap.String("error", out.Err))
	} else {
		c.log.Info("job finished",
			zap.String("job", job.Name),
			zap.Int64("duration_ms", out.DurationMS))
	}

	if c.logs != nil {
		name := fmt.Sprintf("%s-%s.log", job.Name, runID)
		ref, err := c.logs.Store(ctx, name, buf.Bytes())
		if err != nil {
			c.log.Warn("storing job log failed", zap.String("job", job.Name), zap.Error(err))
		} else {
			out.LogPath = ref
		}
	}

	metrics.RecordJob(job.Name, statusOf(out), float64(out.DurationMS)/1000.0)
	return out
}

func (c *Core) resolveArtifact(out *runner.Outcome, prefix string) {
	if out.ArtifactPath != "" || prefix == "" {
		return
	}
	path, err := artifacts.Locate(c.resultsDir, prefix)
	if err != nil {
		c.log.Warn("artifact lookup failed", zap.String("job", out.Name), zap.Error(err))
		return
	}
	if path == "" {
		metrics.ArtifactsFound.WithLabelValues("missing").Inc()
		c.log.Warn("no artifact found", zap.String("job", out.Name), zap.String("prefix", prefix))
		return
	}
	metrics.ArtifactsFound.WithLabelValues("found").Inc()
	out.ArtifactPath = path
}

// writeManifest persists the manifest under a unique name. This is the one
// step whose failure aborts the run: without a manifest there is nothing to
// report on.
func (c *Core) writeManifest(m *Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	name := fmt.Sprintf("%s-manifest-%d.json", c.runPrefix, time.Now().UnixMilli())
	path := filepath.Join(c.resultsDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// mirrorRun uploads the manifest and job logs to the configured mirror.
// Best effort: the local manifest is the primary deliverable.
func (c *Core) mirrorRun(ctx context.Context, runID, manifestPath string, m *Manifest) {
	if c.mirror == nil {
		return
	}
	upload := func(localPath, remoteName string) {
		data, err := os.ReadFile(localPath)
		if err != nil {
			c.log.Warn("mirror read failed", zap.String("path", localPath), zap.Error(err))
			return
		}
		ref, err := c.mirror.Store(ctx, remoteName, data)
		if err != nil {
			c.log.Warn("mirror upload failed", zap.String("path", localPath), zap.Error(err))
			return
		}
		c.log.Debug("mirrored", zap.String("ref", ref))
	}

	upload(manifestPath, runID+"/"+filepath.Base(manifestPath))
	for _, job := range m.Jobs {
		if job.LogPath != "" {
			upload(job.LogPath, runID+"/"+filepath.Base(job.LogPath))
		}
	}
}

func (c *Core) triggerReport(ctx context.Context, manifestPath string) {
	if c.trigger == nil {
		return
	}
	code, err := c.trigger.Run(ctx, manifestPath)
	if err != nil {
		c.log.Warn("report generator could not run", zap.Error(err))
		return
	}
	if code != 0 {
		c.log.Warn("report generator exited non-zero", zap.Int("exit_code", code))
	}
}

func (c *Core) setPhase(p Phase) {
	c.phase = p
	c.log.Debug("phase transition", zap.String("phase", string(p)))
}

func statusOf(out runner.Outcome) string {
	switch {
	case out.ExitCode == nil:
		return "signal"
	case *out.ExitCode == 0:
		return "success"
	default:
		return "failed"
	}
}

package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"

	"benchorch/pkg/runner"
)

// Built-in job sets. "official" is the small scoreboard suite; "parallel"
// runs every experimental track at once. Both are plain data feeding the
// same orchestrator core.

// OfficialJobs returns the three-track official suite.
func OfficialJobs(resultsDir string) []runner.Descriptor {
	return trackSet(resultsDir, "baseline", "quality", "latency")
}

// ParallelJobs returns the full seven-track experimental suite.
func ParallelJobs(resultsDir string) []runner.Descriptor {
	return trackSet(resultsDir,
		"baseline", "quality", "latency",
		"throughput", "memory", "cold-start", "concurrency")
}

func trackSet(resultsDir string, names ...string) []runner.Descriptor {
	jobs := make([]runner.Descriptor, len(names))
	for i, name := range names {
		jobs[i] = runner.Descriptor{
			Name:           name,
			Exec:           fmt.Sprintf("scripts/tracks/%s.sh", name),
			Args:           []string{"--out", resultsDir},
			ArtifactPrefix: name + "-",
		}
	}
	return jobs
}

// JobsForMode resolves a built-in job set by name.
func JobsForMode(mode, resultsDir string) ([]runner.Descriptor, error) {
	switch mode {
	case "official":
		return OfficialJobs(resultsDir), nil
	case "parallel":
		return ParallelJobs(resultsDir), nil
	default:
		return nil, fmt.Errorf("unknown bench mode %q (want official or parallel)", mode)
	}
}

// LoadJobsFile reads a job set from a JSON file: an array of descriptors.
// This is the escape hatch for ad-hoc suites without rebuilding.
func LoadJobsFile(path string) ([]runner.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}
	var jobs []runner.Descriptor
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parsing jobs file %q: %w", path, err)
	}
	if err := ValidateJobs(jobs); err != nil {
		return nil, fmt.Errorf("jobs file %q: %w", path, err)
	}
	return jobs, nil
}

// ValidateJobs rejects descriptors the orchestrator cannot track reliably:
// missing names or commands, or duplicate names within one run.
func ValidateJobs(jobs []runner.Descriptor) error {
	seen := make(map[string]bool, len(jobs))
	for i, j := range jobs {
		if j.Name == "" {
			return fmt.Errorf("job %d: name is required", i)
		}
		if j.Exec == "" {
			return fmt.Errorf("job %q: exec is required", j.Name)
		}
		if seen[j.Name] {
			return fmt.Errorf("duplicate job name %q", j.Name)
		}
		seen[j.Name] = true
	}
	return nil
}

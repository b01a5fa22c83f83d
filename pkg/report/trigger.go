// Package report hands a finished run over to the downstream scoreboard
// generator.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Trigger invokes the scoreboard generator with the manifest path. Unlike
// job output, the generator's streams are inherited verbatim, with no line
// prefixing: it is the final step and owns the console.
type Trigger struct {
	Command string
	Args    []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewTrigger builds a Trigger for the given generator command.
func NewTrigger(command string, args ...string) *Trigger {
	return &Trigger{
		Command: command,
		Args:    args,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Run executes the generator with --manifest=<path> appended and returns its
// exit code. A non-zero exit is reported through the code, not the error;
// the error is reserved for the generator being unrunnable at all.
func (t *Trigger) Run(ctx context.Context, manifestPath string) (int, error) {
	args := append(append([]string{}, t.Args...), fmt.Sprintf("--manifest=%s", manifestPath))
	cmd := exec.CommandContext(ctx, t.Command, args...)
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("running report generator %q: %w", t.Command, err)
}

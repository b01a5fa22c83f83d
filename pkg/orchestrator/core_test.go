package orchestrator_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"benchorch/pkg/orchestrator"
	"benchorch/pkg/report"
	"benchorch/pkg/runner"
	"benchorch/pkg/storage"
)

// consoleBuffer is a goroutine-safe writer standing in for stdout.
type consoleBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *consoleBuffer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *consoleBuffer) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

type CoreSuite struct {
	suite.Suite
	resultsDir string
	console    *consoleBuffer
}

func (s *CoreSuite) SetupTest() {
	s.resultsDir = s.T().TempDir()
	s.console = &consoleBuffer{}
}

func (s *CoreSuite) newCore(jobs []runner.Descriptor, opts func(*orchestrator.Options)) *orchestrator.Core {
	o := orchestrator.Options{
		ResultsDir: s.resultsDir,
		RunPrefix:  "test",
		Jobs:       jobs,
		Console:    s.console,
		Log:        zap.NewNop(),
	}
	if opts != nil {
		opts(&o)
	}
	core, err := orchestrator.NewCore(o)
	s.Require().NoError(err)
	return core
}

// shJob builds a descriptor that runs a shell one-liner.
func shJob(name, script, artifactPrefix string) runner.Descriptor {
	return runner.Descriptor{
		Name:           name,
		Exec:           "sh",
		Args:           []string{"-c", script},
		ArtifactPrefix: artifactPrefix,
	}
}

func (s *CoreSuite) writeArtifactScript(prefix string) string {
	return fmt.Sprintf(`printf '{"ok":true}' > %q`,
		filepath.Join(s.resultsDir, prefix+"1700000000000.json"))
}

func (s *CoreSuite) TestMixedOutcomesProduceCompleteManifest() {
	jobs := []runner.Descriptor{
		shJob("alpha", "sleep 0.2; echo from alpha; "+s.writeArtifactScript("alpha-"), "alpha-"),
		shJob("beta", "echo beta failing >&2; exit 1", "beta-"),
		shJob("gamma", s.writeArtifactScript("gamma-"), "gamma-"),
	}
	core := s.newCore(jobs, nil)

	m, err := core.Run(context.Background())
	s.Require().NoError(err)
	s.Equal(orchestrator.PhaseDone, core.Phase())

	// Declaration order, even though alpha finishes last.
	s.Require().Len(m.Jobs, 3)
	s.Equal("alpha", m.Jobs[0].Name)
	s.Equal("beta", m.Jobs[1].Name)
	s.Equal("gamma", m.Jobs[2].Name)

	s.Require().NotNil(m.Jobs[0].ExitCode)
	s.Equal(0, *m.Jobs[0].ExitCode)
	s.NotEmpty(m.Jobs[0].ArtifactPath)

	s.Require().NotNil(m.Jobs[1].ExitCode)
	s.Equal(1, *m.Jobs[1].ExitCode)
	s.Empty(m.Jobs[1].ArtifactPath)

	s.Require().NotNil(m.Jobs[2].ExitCode)
	s.Equal(0, *m.Jobs[2].ExitCode)
	s.NotEmpty(m.Jobs[2].ArtifactPath)

	s.False(m.FinishedAt.Before(m.StartedAt))
	s.NotEmpty(m.RunID)
}

func (s *CoreSuite) TestConsoleLinesArePrefixed() {
	jobs := []runner.Descriptor{
		shJob("track-a", "echo hello; echo bad >&2", ""),
	}
	core := s.newCore(jobs, nil)

	_, err := core.Run(context.Background())
	s.Require().NoError(err)

	out := s.console.String()
	s.Contains(out, "[track-a] hello")
	s.Contains(out, "[track-a!] bad")
}

func (s *CoreSuite) TestManifestFileWrittenWithRunPrefix() {
	core := s.newCore([]runner.Descriptor{shJob("noop", "true", "")}, nil)

	m, err := core.Run(context.Background())
	s.Require().NoError(err)

	entries, err := os.ReadDir(s.resultsDir)
	s.Require().NoError(err)

	var manifestName string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "test-manifest-") && strings.HasSuffix(e.Name(), ".json") {
			manifestName = e.Name()
		}
	}
	s.Require().NotEmpty(manifestName, "manifest file missing from results dir")

	data, err := os.ReadFile(filepath.Join(s.resultsDir, manifestName))
	s.Require().NoError(err)

	var decoded orchestrator.Manifest
	s.Require().NoError(json.Unmarshal(data, &decoded))
	s.Equal(m.RunID, decoded.RunID)
	s.Len(decoded.Jobs, 1)
}

func (s *CoreSuite) TestZeroJobsStillYieldsManifest() {
	core := s.newCore(nil, nil)

	m, err := core.Run(context.Background())
	s.Require().NoError(err)
	s.Empty(m.Jobs)
}

func (s *CoreSuite) TestCrashedJobStillAppearsInManifest() {
	jobs := []runner.Descriptor{
		{Name: "ghost", Exec: "definitely-not-a-real-binary-12345"},
		shJob("survivor", "true", ""),
	}
	core := s.newCore(jobs, nil)

	m, err := core.Run(context.Background())
	s.Require().NoError(err)
	s.Require().Len(m.Jobs, 2)
	s.Nil(m.Jobs[0].ExitCode)
	s.NotEmpty(m.Jobs[0].Err)
	s.Require().NotNil(m.Jobs[1].ExitCode)
	s.Equal(0, *m.Jobs[1].ExitCode)
}

func (s *CoreSuite) TestReportTriggerReceivesManifestPath() {
	marker := filepath.Join(s.T().TempDir(), "report-args")
	jobs := []runner.Descriptor{shJob("noop", "true", "")}
	core := s.newCore(jobs, func(o *orchestrator.Options) {
		o.Trigger = report.NewTrigger("sh", "-c", fmt.Sprintf(`echo "$0" > %q`, marker))
	})

	_, err := core.Run(context.Background())
	s.Require().NoError(err)

	data, err := os.ReadFile(marker)
	s.Require().NoError(err)
	s.Contains(string(data), "--manifest=")
	s.Contains(string(data), s.resultsDir)
}

func (s *CoreSuite) TestFailingReportDoesNotFailRun() {
	core := s.newCore([]runner.Descriptor{shJob("noop", "true", "")},
		func(o *orchestrator.Options) {
			o.Trigger = report.NewTrigger("sh", "-c", "exit 9")
		})

	_, err := core.Run(context.Background())
	s.NoError(err)
}

func (s *CoreSuite) TestJobLogsAreStored() {
	logs, err := storage.NewLocalLogStore(filepath.Join(s.resultsDir, "logs"))
	s.Require().NoError(err)

	jobs := []runner.Descriptor{shJob("chatty", "echo captured line", "")}
	core := s.newCore(jobs, func(o *orchestrator.Options) { o.Logs = logs })

	m, err := core.Run(context.Background())
	s.Require().NoError(err)
	s.Require().NotEmpty(m.Jobs[0].LogPath)

	data, err := os.ReadFile(m.Jobs[0].LogPath)
	s.Require().NoError(err)
	s.Contains(string(data), "[chatty] captured line")
}

func (s *CoreSuite) TestUnwritableResultsDirFailsRun() {
	core := s.newCore([]runner.Descriptor{shJob("noop", "true", "")}, nil)

	// Turn the results dir into a file so manifest creation must fail.
	s.Require().NoError(os.RemoveAll(s.resultsDir))
	s.Require().NoError(os.WriteFile(s.resultsDir, []byte("not a dir"), 0644))

	_, err := core.Run(context.Background())
	s.Error(err)
}

func TestCoreSuite(t *testing.T) {
	suite.Run(t, new(CoreSuite))
}

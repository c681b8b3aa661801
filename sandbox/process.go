package sandbox

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/devanik21/lessonbox/policy"
)

// Filenames written into the scratch directory for one execution.
const (
	submissionFilename = "lesson.py"
	harnessFilename    = "harness.py"
)

// ProcessRunner executes Python submissions in a throwaway interpreter
// process. The restricted namespace and stream capture live in a generated
// harness (see buildHarness); the runner's job is the scratch directory, the
// subprocess, the hard deadline, and decoding the harness report.
type ProcessRunner struct {
	logger    *zap.Logger
	pythonBin string
	cmdRunner CommandRunner
	fs        FileSystem
}

// ProcessRunnerOption defines a functional option for ProcessRunner.
type ProcessRunnerOption func(*ProcessRunner)

// WithCommandRunner sets the CommandRunner for ProcessRunner.
func WithCommandRunner(cmdRunner CommandRunner) ProcessRunnerOption {
	return func(p *ProcessRunner) {
		p.cmdRunner = cmdRunner
	}
}

// WithFileSystem sets the FileSystem for ProcessRunner.
func WithFileSystem(fs FileSystem) ProcessRunnerOption {
	return func(p *ProcessRunner) {
		p.fs = fs
	}
}

// NewProcessRunner creates a ProcessRunner with default implementations and
// optional interfaces.
func NewProcessRunner(logger *zap.Logger, pythonBin string, opts ...ProcessRunnerOption) *ProcessRunner {
	runner := &ProcessRunner{
		logger:    logger,
		pythonBin: pythonBin,
		cmdRunner: &RealCommandRunner{},
		fs:        &RealFileSystem{},
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

// harnessReport is the JSON object the harness prints on its stdout.
type harnessReport struct {
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	FaultKind string `json:"fault_kind"`
	Fault     string `json:"fault"`
}

// Run writes the submission and its harness into a scratch directory and
// executes them under a context deadline derived from the policy. The
// subprocess is killed outright when the deadline expires.
func (p *ProcessRunner) Run(ctx context.Context, source string, pol policy.Policy) (RunResult, error) {
	tempDir, err := p.fs.MkdirTemp("", "lessonbox-run-*")
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := p.fs.RemoveAll(tempDir); rmErr != nil {
			p.logger.Warn("failed to remove scratch dir",
				zap.String("dir", tempDir), zap.Error(rmErr))
		}
	}()

	sourcePath := filepath.Join(tempDir, submissionFilename)
	if writeErr := p.fs.WriteFile(sourcePath, []byte(source), filePermission); writeErr != nil {
		return RunResult{}, fmt.Errorf("failed to write submission: %w", writeErr)
	}

	harnessPath := filepath.Join(tempDir, harnessFilename)
	if writeErr := p.fs.WriteFile(harnessPath, []byte(buildHarness(pol)), filePermission); writeErr != nil {
		return RunResult{}, fmt.Errorf("failed to write harness: %w", writeErr)
	}

	runCtx, cancel := context.WithTimeout(ctx, pol.MaxDuration)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, runErr := p.cmdRunner.RunCommand(runCtx, []string{p.pythonBin, harnessPath, sourcePath})
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		p.logger.Warn("execution killed at deadline",
			zap.String("context", pol.Context),
			zap.Duration("limit", pol.MaxDuration))
		return RunResult{Duration: elapsed}, ErrDeadlineExceeded
	}
	if runErr != nil {
		return RunResult{}, fmt.Errorf("failed to run interpreter: %w", runErr)
	}
	if exitCode != 0 {
		return RunResult{}, fmt.Errorf("interpreter exited with code %d: %s", exitCode, stderr)
	}

	var report harnessReport
	if decodeErr := json.Unmarshal([]byte(stdout), &report); decodeErr != nil {
		return RunResult{}, fmt.Errorf("failed to decode harness report: %w", decodeErr)
	}

	result := RunResult{
		Stdout:   report.Stdout,
		Stderr:   report.Stderr,
		Fault:    report.Fault,
		Duration: elapsed,
	}
	switch report.FaultKind {
	case "eof":
		result.FaultKind = FaultEOF
	case "runtime":
		result.FaultKind = FaultRuntime
	default:
		result.FaultKind = FaultNone
	}

	return result, nil
}

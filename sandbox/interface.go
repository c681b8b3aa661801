package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/devanik21/lessonbox/policy"
)

// ErrDeadlineExceeded is returned by runners whose execution was terminated
// because it hit the policy's wall-clock budget.
var ErrDeadlineExceeded = errors.New("execution deadline exceeded")

// FaultKind classifies a runtime fault raised by executed source.
type FaultKind string

const (
	// FaultNone means the run completed without raising.
	FaultNone FaultKind = "none"

	// FaultRuntime covers ordinary runtime faults: arithmetic errors,
	// missing names, type errors.
	FaultRuntime FaultKind = "runtime"

	// FaultEOF means a permitted input operation found no data. The
	// governor remaps this to a success, since the sandbox has no
	// interactive input source.
	FaultEOF FaultKind = "eof"
)

// RunResult carries the captured streams of one execution. It is scoped to
// the single call that produced it; the runner owns the buffers until it
// returns and callers must not retain references across runs.
type RunResult struct {
	Stdout    string
	Stderr    string
	FaultKind FaultKind
	Fault     string
	Duration  time.Duration
}

// Runner executes validated source under a restricted environment and
// captures its output streams. Implementations enforce the policy's
// wall-clock budget preemptively and report overruns as
// ErrDeadlineExceeded. Output capture is torn down on every exit path.
type Runner interface {
	Run(ctx context.Context, source string, pol policy.Policy) (RunResult, error)
}

// CommandRunner abstracts system command execution so runners can be tested
// without an interpreter on the host.
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using os/exec.
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments. The command inherits
// the context's deadline and is killed when it expires.
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Arguments are built by the runner, not the submission

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
			err = nil
		} else {
			return "", "", 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// FileSystem abstracts the file operations a runner needs for its scratch
// directory.
type FileSystem interface {
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using the os package.
type RealFileSystem struct{}

func (RealFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Permission for files written into the scratch directory.
const filePermission = 0600

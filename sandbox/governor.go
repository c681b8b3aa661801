package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devanik21/lessonbox/policy"
)

// noOutputMessage is returned for clean runs that printed nothing.
const noOutputMessage = "Code executed successfully (no output)"

// noInputMessage replaces an end-of-input fault. Reading input is not an
// error from the learner's point of view; the sandbox simply has nothing to
// offer.
const noInputMessage = "Program requested input, but the sandbox has no interactive input source"

// Governor wraps a Runner with timing and outcome classification. It also
// owns the mutual-exclusion point required by the execution environments:
// output capture is a per-run resource, so at most one execution is in
// flight at a time and the lock is held until cleanup finishes.
type Governor struct {
	mu     sync.Mutex
	runner Runner
	logger *zap.Logger
}

// NewGovernor creates a Governor around the given runner.
func NewGovernor(runner Runner, logger *zap.Logger) *Governor {
	return &Governor{runner: runner, logger: logger}
}

// Run executes validated source under the policy and converts every way the
// run can end into an Outcome. It never returns an error; infrastructure
// failures become runtime_error outcomes.
func (g *Governor) Run(ctx context.Context, source string, pol policy.Policy) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	result, err := g.runner.Run(ctx, source, pol)
	elapsed := time.Since(start)

	limitSeconds := pol.MaxDuration.Seconds()

	switch {
	case errors.Is(err, ErrDeadlineExceeded):
		return TimedOut(limitSeconds)
	case err != nil:
		g.logger.Error("execution environment failure",
			zap.String("context", pol.Context), zap.Error(err))
		return RuntimeFailure("sandbox failure: " + err.Error())
	}

	// Backends terminate overruns themselves; this keeps the wall-clock
	// bound honest if one ever returns late.
	if elapsed > pol.MaxDuration {
		g.logger.Warn("execution finished past its budget",
			zap.String("context", pol.Context),
			zap.Duration("elapsed", elapsed),
			zap.Duration("limit", pol.MaxDuration))
		return TimedOut(limitSeconds)
	}

	switch result.FaultKind {
	case FaultEOF:
		return Succeeded(noInputMessage)
	case FaultRuntime:
		return RuntimeFailure("Execution error: " + result.Fault)
	}

	if result.Stderr != "" {
		return RuntimeFailure("Error: " + result.Stderr)
	}
	if result.Stdout == "" {
		return Succeeded(noOutputMessage)
	}
	return Succeeded(result.Stdout)
}

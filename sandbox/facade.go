package sandbox

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devanik21/lessonbox/policy"
)

// Sandbox is the single entry point for lesson code execution. It resolves
// the policy for the requesting context, runs static validation, and
// delegates validated submissions to the governed execution environment.
//
// Execute never returns a Go error and never panics into the caller: every
// failure path is represented in the Outcome.
type Sandbox struct {
	registry *policy.Registry
	governor *Governor
	logger   *zap.Logger

	executions atomic.Int64 // submissions handled, any outcome
	runs       atomic.Int64 // submissions that reached the environment
}

// New creates a Sandbox.
func New(registry *policy.Registry, governor *Governor, logger *zap.Logger) *Sandbox {
	return &Sandbox{
		registry: registry,
		governor: governor,
		logger:   logger,
	}
}

// Execute validates and runs one submission for the given lesson context and
// returns the uniform outcome. Rejected submissions never reach the
// execution environment.
func (s *Sandbox) Execute(ctx context.Context, source, lessonContext string) Outcome {
	submission := uuid.NewString()
	pol := s.registry.Resolve(lessonContext)
	s.executions.Add(1)

	if err := Validate(source, pol); err != nil {
		var rejection *RejectionError
		if errors.As(err, &rejection) {
			s.logger.Info("submission rejected",
				zap.String("submission", submission),
				zap.String("context", pol.Context),
				zap.String("rule", rejection.Rule),
				zap.String("subject", rejection.Subject))
		}
		return Rejected(err.Error())
	}

	s.runs.Add(1)
	outcome := s.governor.Run(ctx, source, pol)

	s.logger.Info("submission executed",
		zap.String("submission", submission),
		zap.String("context", pol.Context),
		zap.Bool("ok", outcome.OK),
		zap.String("category", string(outcome.Category)))

	return outcome
}

// Registry exposes the policy registry for callers that surface context
// information (the MCP list_contexts tool).
func (s *Sandbox) Registry() *policy.Registry {
	return s.registry
}

// Executions returns the number of submissions handled since startup. The
// surrounding application persists per-user execution counts; this counter
// only serves logging and tests.
func (s *Sandbox) Executions() int64 {
	return s.executions.Load()
}

// Runs returns the number of submissions that were handed to the execution
// environment. Validation rejections do not count.
func (s *Sandbox) Runs() int64 {
	return s.runs.Load()
}

// Package sandbox validates and executes lesson code submissions.
//
// The package is organized around four pieces. Validate is a pure textual
// check of a submission against its context's policy. Runner implementations
// execute validated source under a restricted namespace with captured output
// streams: ProcessRunner hosts Python submissions in a throwaway interpreter
// process, GojaRunner hosts JavaScript submissions in an embedded VM.
// Governor wraps a runner with wall-clock accounting, single-flight
// serialization, and outcome classification. Sandbox is the facade the rest
// of the system calls; it never lets a fault escape as anything but an
// Outcome.
//
// The validator is a denylist scanner, not an isolation boundary. It cannot
// see through aliasing or string assembly, and the restricted namespaces are
// only as strong as the interpreter hosting them. The runners compensate
// with hard deadlines and process or VM level termination, but callers
// should treat the whole subsystem as a guardrail for honest mistakes rather
// than a defense against a determined adversary.
//
// Usage:
//
//	runner, err := sandbox.NewRunner(logger, "process", "python3")
//	box := sandbox.New(registry, sandbox.NewGovernor(runner, logger), logger)
//	outcome := box.Execute(ctx, "print(17 % 5)", "python_basics")
package sandbox

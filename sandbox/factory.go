package sandbox

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted by NewRunner.
const (
	BackendProcess = "process"
	BackendGoja    = "goja"
)

// NewRunner creates the execution backend named in the configuration. The
// process backend runs Python submissions in a throwaway interpreter; the
// goja backend runs JavaScript submissions inside the server process.
func NewRunner(logger *zap.Logger, backend, pythonBin string) (Runner, error) {
	switch backend {
	case BackendProcess:
		return NewProcessRunner(logger, pythonBin), nil
	case BackendGoja:
		return NewGojaRunner(logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

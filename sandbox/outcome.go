package sandbox

import "fmt"

// Category tags the failure mode of an execution outcome.
type Category string

const (
	// CategoryValidationRejected means static validation refused the
	// submission before execution.
	CategoryValidationRejected Category = "validation_rejected"

	// CategoryRuntimeError means the submission ran and faulted, or wrote
	// to its error stream.
	CategoryRuntimeError Category = "runtime_error"

	// CategoryTimeout means the execution exceeded its wall-clock budget.
	CategoryTimeout Category = "timeout"
)

// Outcome is the uniform result returned to sandbox callers. It is either a
// success carrying captured output or a failure carrying a category and a
// human-readable message. Outcomes are produced fresh per execution and
// never mutated.
type Outcome struct {
	OK       bool     `json:"ok"`
	Output   string   `json:"output,omitempty"`
	Category Category `json:"category,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// Succeeded builds a success outcome with the captured output text.
func Succeeded(output string) Outcome {
	return Outcome{OK: true, Output: output}
}

// Rejected builds a validation failure from the rule message that fired.
func Rejected(reason string) Outcome {
	return Outcome{Category: CategoryValidationRejected, Message: reason}
}

// RuntimeFailure builds a runtime failure carrying the diagnostic text.
func RuntimeFailure(diagnostic string) Outcome {
	return Outcome{Category: CategoryRuntimeError, Message: diagnostic}
}

// TimedOut builds a timeout failure citing the configured limit.
func TimedOut(limitSeconds float64) Outcome {
	return Outcome{
		Category: CategoryTimeout,
		Message:  fmt.Sprintf("execution exceeded the %gs time limit", limitSeconds),
	}
}

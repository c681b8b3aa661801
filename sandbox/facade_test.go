package sandbox

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devanik21/lessonbox/policy"
)

// newTestSandbox wires a facade around the in-process goja backend so the
// full pipeline runs without external interpreters.
func newTestSandbox(t *testing.T) *Sandbox {
	t.Helper()
	logger := zaptest.NewLogger(t)
	registry := policy.NewRegistry(policy.Default(), policy.DefaultOverrides())
	runner := NewGojaRunner(logger)
	return New(registry, NewGovernor(runner, logger), logger)
}

func TestSandboxExecuteSuccess(t *testing.T) {
	box := newTestSandbox(t)

	outcome := box.Execute(context.Background(), "print(17 % 5)", policy.DefaultContext)

	require.True(t, outcome.OK)
	assert.Equal(t, "2\n", outcome.Output)
	assert.Equal(t, int64(1), box.Executions())
	assert.Equal(t, int64(1), box.Runs())
}

func TestSandboxExecuteIdempotent(t *testing.T) {
	box := newTestSandbox(t)

	first := box.Execute(context.Background(), "print(1 + 2)", policy.DefaultContext)
	second := box.Execute(context.Background(), "print(1 + 2)", policy.DefaultContext)

	require.True(t, first.OK)
	require.True(t, second.OK)
	assert.Equal(t, first.Output, second.Output)
}

func TestSandboxRejectionsNeverReachRunner(t *testing.T) {
	box := newTestSandbox(t)

	t.Run("ForbiddenImport", func(t *testing.T) {
		outcome := box.Execute(context.Background(), "import os\nprint(os.getcwd())", policy.DefaultContext)

		require.False(t, outcome.OK)
		assert.Equal(t, CategoryValidationRejected, outcome.Category)
		assert.Contains(t, outcome.Message, "os")
	})

	t.Run("ForbiddenFunction", func(t *testing.T) {
		outcome := box.Execute(context.Background(), `open("secrets.txt")`, policy.DefaultContext)

		require.False(t, outcome.OK)
		assert.Equal(t, CategoryValidationRejected, outcome.Category)
		assert.Contains(t, outcome.Message, "open")
	})

	t.Run("TooLong", func(t *testing.T) {
		source := "print(1)\n" + strings.Repeat("# padding\n", 200)
		outcome := box.Execute(context.Background(), source, policy.DefaultContext)

		require.False(t, outcome.OK)
		assert.Equal(t, CategoryValidationRejected, outcome.Category)
		assert.Contains(t, outcome.Message, "1000")
	})

	// Three submissions handled, none of them executed.
	assert.Equal(t, int64(3), box.Executions())
	assert.Equal(t, int64(0), box.Runs())
}

func TestSandboxContextPolicies(t *testing.T) {
	box := newTestSandbox(t)

	t.Run("InputRejectedByDefault", func(t *testing.T) {
		outcome := box.Execute(context.Background(), `input("name: ")`, "python_intro")
		require.False(t, outcome.OK)
		assert.Equal(t, CategoryValidationRejected, outcome.Category)
		assert.Contains(t, outcome.Message, "input")
	})

	t.Run("InputWaivedInFinalProject", func(t *testing.T) {
		outcome := box.Execute(context.Background(), `input("name: ")`, "final_project")
		// Validation passes; with no input source the run resolves to an
		// explanatory success.
		require.True(t, outcome.OK)
		assert.Contains(t, outcome.Output, "no interactive input")
	})

	t.Run("RegexModuleOnlyWhereAllowed", func(t *testing.T) {
		outcome := box.Execute(context.Background(), `print(re.test("^h", "hi"))`, "regex_patterns")
		require.True(t, outcome.OK)
		assert.Equal(t, "true\n", outcome.Output)

		elsewhere := box.Execute(context.Background(), `print(re.test("^h", "hi"))`, "python_intro")
		require.False(t, elsewhere.OK)
		assert.Equal(t, CategoryRuntimeError, elsewhere.Category)
	})
}

func TestSandboxRuntimeFailure(t *testing.T) {
	box := newTestSandbox(t)

	outcome := box.Execute(context.Background(), "print(nope)", policy.DefaultContext)

	require.False(t, outcome.OK)
	assert.Equal(t, CategoryRuntimeError, outcome.Category)
	assert.Contains(t, outcome.Message, "nope")
}

func TestSandboxLeavesProcessStreamsAlone(t *testing.T) {
	box := newTestSandbox(t)

	outBefore, errBefore := os.Stdout, os.Stderr

	box.Execute(context.Background(), "print(1)", policy.DefaultContext)
	box.Execute(context.Background(), "print(nope)", policy.DefaultContext)
	box.Execute(context.Background(), "import os", policy.DefaultContext)

	assert.Same(t, outBefore, os.Stdout)
	assert.Same(t, errBefore, os.Stderr)
}

func TestSandboxNeverPanics(t *testing.T) {
	box := newTestSandbox(t)

	sources := []string{
		"",
		"print(",
		"throw 42",
		"function f() { return f() } f()",
	}

	for _, source := range sources {
		require.NotPanics(t, func() {
			outcome := box.Execute(context.Background(), source, policy.DefaultContext)
			_ = outcome
		}, "source: %q", source)
	}
}

package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/devanik21/lessonbox/policy"
)

func TestGojaRunnerOutput(t *testing.T) {
	runner := NewGojaRunner(zaptest.NewLogger(t))
	pol := policy.Default()

	t.Run("PrintCapturesStdout", func(t *testing.T) {
		result, err := runner.Run(context.Background(), "print(17 % 5)", pol)
		require.NoError(t, err)
		assert.Equal(t, FaultNone, result.FaultKind)
		assert.Equal(t, "2\n", result.Stdout)
	})

	t.Run("MultipleArgumentsJoinedWithSpaces", func(t *testing.T) {
		result, err := runner.Run(context.Background(), `print("a", 1, true)`, pol)
		require.NoError(t, err)
		assert.Equal(t, "a 1 true\n", result.Stdout)
	})

	t.Run("NoOutputMeansEmptyStdout", func(t *testing.T) {
		result, err := runner.Run(context.Background(), "var x = 1 + 1", pol)
		require.NoError(t, err)
		assert.Equal(t, "", result.Stdout)
	})

	t.Run("IdempotentForPureSource", func(t *testing.T) {
		first, err := runner.Run(context.Background(), "print(2 + 2)", pol)
		require.NoError(t, err)
		second, err := runner.Run(context.Background(), "print(2 + 2)", pol)
		require.NoError(t, err)
		assert.Equal(t, first.Stdout, second.Stdout)
	})
}

func TestGojaRunnerHelpers(t *testing.T) {
	runner := NewGojaRunner(zaptest.NewLogger(t))
	pol := policy.Default()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"Len", `print(len("hello"))`, "5\n"},
		{"LenArray", `print(len([1, 2, 3]))`, "3\n"},
		{"Abs", `print(abs(-4))`, "4\n"},
		{"MinMax", `print(min(3, 1, 2), max(3, 1, 2))`, "1 3\n"},
		{"Sum", `print(sum([1, 2, 3, 4]))`, "10\n"},
		{"Sorted", `print(sorted([3, 1, 2]))`, "1,2,3\n"},
		{"Range", `print(range(4))`, "0,1,2,3\n"},
		{"Round", `print(round(2.6))`, "3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runner.Run(context.Background(), tt.source, pol)
			require.NoError(t, err)
			assert.Equal(t, FaultNone, result.FaultKind, "fault: %s", result.Fault)
			assert.Equal(t, tt.want, result.Stdout)
		})
	}
}

func TestGojaRunnerFaults(t *testing.T) {
	runner := NewGojaRunner(zaptest.NewLogger(t))
	pol := policy.Default()

	t.Run("MissingNameIsRuntimeFault", func(t *testing.T) {
		result, err := runner.Run(context.Background(), "print(nope)", pol)
		require.NoError(t, err)
		assert.Equal(t, FaultRuntime, result.FaultKind)
		assert.Contains(t, result.Fault, "nope")
	})

	t.Run("ThrownErrorIsRuntimeFault", func(t *testing.T) {
		result, err := runner.Run(context.Background(), `throw new Error("boom")`, pol)
		require.NoError(t, err)
		assert.Equal(t, FaultRuntime, result.FaultKind)
		assert.Contains(t, result.Fault, "boom")
	})

	t.Run("RunawayRecursionFaults", func(t *testing.T) {
		result, err := runner.Run(context.Background(), "function f() { return f() } f()", pol)
		require.NoError(t, err)
		assert.Equal(t, FaultRuntime, result.FaultKind)
	})

	t.Run("InputFaultsAsEOF", func(t *testing.T) {
		result, err := runner.Run(context.Background(), `input("name: ")`, pol)
		require.NoError(t, err)
		assert.Equal(t, FaultEOF, result.FaultKind)
	})

	t.Run("EvalIsGone", func(t *testing.T) {
		result, err := runner.Run(context.Background(), `eval("1+1")`, pol)
		require.NoError(t, err)
		assert.Equal(t, FaultRuntime, result.FaultKind)
	})
}

func TestGojaRunnerDeadline(t *testing.T) {
	runner := NewGojaRunner(zaptest.NewLogger(t))
	pol := policy.Default()
	pol.MaxDuration = 50 * time.Millisecond

	_, err := runner.Run(context.Background(), "while (true) {}", pol)
	require.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestGojaRunnerModules(t *testing.T) {
	runner := NewGojaRunner(zaptest.NewLogger(t))

	t.Run("RegexModuleWhenAllowed", func(t *testing.T) {
		pol := policy.Default()
		pol.AllowedModules = []string{"re"}

		result, err := runner.Run(context.Background(),
			`print(re.test("^h", "hello"), re.findall("l", "hello"))`, pol)
		require.NoError(t, err)
		assert.Equal(t, FaultNone, result.FaultKind, "fault: %s", result.Fault)
		assert.Equal(t, "true l,l\n", result.Stdout)
	})

	t.Run("RegexModuleAbsentByDefault", func(t *testing.T) {
		result, err := runner.Run(context.Background(), `print(re.test("a", "a"))`, policy.Default())
		require.NoError(t, err)
		assert.Equal(t, FaultRuntime, result.FaultKind)
	})

	t.Run("TimeModuleWhenAllowed", func(t *testing.T) {
		pol := policy.Default()
		pol.AllowedModules = []string{"time"}

		result, err := runner.Run(context.Background(), `print(time.now() > 0)`, pol)
		require.NoError(t, err)
		assert.Equal(t, "true\n", result.Stdout)
	})
}

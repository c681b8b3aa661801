package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/devanik21/lessonbox/policy"
)

// maxCallStackSize bounds VM recursion depth so runaway recursion faults
// instead of exhausting the host stack.
const maxCallStackSize = 500

// eofFaultPrefix marks thrown values that represent "no input available".
const eofFaultPrefix = "EOFError"

// GojaRunner executes JavaScript submissions in an embedded goja VM. Each
// run gets a fresh runtime with the dangerous globals removed and only the
// sandbox's primitive helpers, plus any allow-listed modules, bound into the
// global scope. Output goes to a per-call buffer, never to the process
// streams, and a timer interrupts the VM when the policy budget expires.
type GojaRunner struct {
	logger *zap.Logger
}

// NewGojaRunner creates a GojaRunner.
func NewGojaRunner(logger *zap.Logger) *GojaRunner {
	return &GojaRunner{logger: logger}
}

// Run executes the source and returns its captured output. Interrupted runs
// report ErrDeadlineExceeded; thrown errors come back as runtime faults.
func (g *GojaRunner) Run(ctx context.Context, source string, pol policy.Policy) (RunResult, error) {
	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)

	var stdout bytes.Buffer
	if err := setupGlobals(vm, &stdout, pol); err != nil {
		return RunResult{}, fmt.Errorf("failed to set up runtime globals: %w", err)
	}

	timer := time.NewTimer(pol.MaxDuration)
	defer timer.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("execution time limit exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-done:
		}
	}()

	start := time.Now()
	_, err := vm.RunScript(pol.Context, source)
	elapsed := time.Since(start)

	result := RunResult{
		Stdout:    stdout.String(),
		FaultKind: FaultNone,
		Duration:  elapsed,
	}

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			g.logger.Warn("execution interrupted at deadline",
				zap.String("context", pol.Context),
				zap.Duration("limit", pol.MaxDuration))
			return RunResult{Duration: elapsed}, ErrDeadlineExceeded
		}

		fault := faultMessage(err)
		if strings.HasPrefix(fault, eofFaultPrefix) {
			result.FaultKind = FaultEOF
		} else {
			result.FaultKind = FaultRuntime
		}
		result.Fault = fault
	}

	return result, nil
}

// faultMessage extracts the thrown value from a goja error, falling back to
// the error text for compile failures.
func faultMessage(err error) string {
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return exception.Value().String()
	}
	return err.Error()
}

// setupGlobals strips the runtime down to the sandbox surface: no eval, no
// timers, a print that writes to the capture buffer, the fixed helper set,
// and the context's allow-listed modules.
func setupGlobals(vm *goja.Runtime, stdout *bytes.Buffer, pol policy.Policy) error {
	vm.Set("eval", goja.Undefined())
	vm.Set("Function", goja.Undefined())
	vm.Set("globalThis", goja.Undefined())
	vm.Set("setTimeout", func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	vm.Set("setInterval", func(goja.FunctionCall) goja.Value { return goja.Undefined() })

	vm.Set("print", func(call goja.FunctionCall) goja.Value {
		for i, arg := range call.Arguments {
			if i > 0 {
				stdout.WriteByte(' ')
			}
			stdout.WriteString(arg.String())
		}
		stdout.WriteByte('\n')
		return goja.Undefined()
	})

	if err := bindHelpers(vm); err != nil {
		return err
	}

	// input() always faults: there is no interactive input source. When a
	// context waives the forbidden-input rule, the governor turns this
	// fault into an explanatory success.
	vm.Set("input", func(call goja.FunctionCall) goja.Value {
		panic(vm.ToValue(eofFaultPrefix + ": no input available in the sandbox"))
	})

	for _, module := range pol.AllowedModules {
		switch module {
		case "re":
			bindRegexModule(vm)
		case "time":
			bindTimeModule(vm)
		}
	}

	return nil
}

// bindHelpers installs the primitive helper functions shared by every
// context. They mirror the builtin set of the Python runner where the two
// languages overlap.
func bindHelpers(vm *goja.Runtime) error {
	vm.Set("len", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return vm.ToValue(0)
		}
		switch v := call.Arguments[0].Export().(type) {
		case string:
			return vm.ToValue(len([]rune(v)))
		case []interface{}:
			return vm.ToValue(len(v))
		case map[string]interface{}:
			return vm.ToValue(len(v))
		default:
			return vm.ToValue(0)
		}
	})

	vm.Set("abs", math.Abs)
	vm.Set("round", func(x float64) float64 { return math.Round(x) })

	vm.Set("min", func(values ...float64) float64 {
		if len(values) == 0 {
			return 0
		}
		m := values[0]
		for _, v := range values[1:] {
			m = math.Min(m, v)
		}
		return m
	})
	vm.Set("max", func(values ...float64) float64 {
		if len(values) == 0 {
			return 0
		}
		m := values[0]
		for _, v := range values[1:] {
			m = math.Max(m, v)
		}
		return m
	})

	vm.Set("sum", func(values []float64) float64 {
		var total float64
		for _, v := range values {
			total += v
		}
		return total
	})

	vm.Set("sorted", func(values []float64) []float64 {
		out := make([]float64, len(values))
		copy(out, values)
		sort.Float64s(out)
		return out
	})

	vm.Set("range", func(n int) []int {
		if n < 0 {
			n = 0
		}
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	})

	return nil
}

// bindRegexModule exposes a minimal regex helper backed by Go's regexp.
func bindRegexModule(vm *goja.Runtime) {
	module := vm.NewObject()
	module.Set("test", func(pattern, s string) bool {
		re, err := regexp.Compile(pattern)
		if err != nil {
			panic(vm.ToValue("SyntaxError: " + err.Error()))
		}
		return re.MatchString(s)
	})
	module.Set("findall", func(pattern, s string) []string {
		re, err := regexp.Compile(pattern)
		if err != nil {
			panic(vm.ToValue("SyntaxError: " + err.Error()))
		}
		return re.FindAllString(s, -1)
	})
	vm.Set("re", module)
}

// bindTimeModule exposes wall-clock helpers for the timing lessons.
func bindTimeModule(vm *goja.Runtime) {
	module := vm.NewObject()
	epoch := time.Now()
	module.Set("now", func() float64 {
		return float64(time.Now().UnixMilli()) / 1000.0
	})
	module.Set("clock", func() float64 {
		return time.Since(epoch).Seconds()
	})
	vm.Set("time", module)
}

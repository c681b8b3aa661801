package policy

import (
	"slices"
	"time"
)

// DefaultContext is the context id used when the caller does not name one.
const DefaultContext = "default"

// Default limits, carried over from the textbook application.
const (
	DefaultMaxSourceChars = 1000
	DefaultMaxDuration    = 5 * time.Second
)

// Policy describes what a single lesson context is allowed to do. It is
// configuration data: constructed once, read-only during validation and
// execution.
type Policy struct {
	// Context is the lesson context this policy was resolved for.
	Context string

	// MaxSourceChars is the maximum submission length in characters.
	MaxSourceChars int

	// MaxDuration is the wall-clock budget for one execution.
	MaxDuration time.Duration

	// AllowedModules are module names the context may import even when
	// they would otherwise be denied.
	AllowedModules []string

	// ForbiddenModules are module names rejected in import statements
	// unless explicitly allow-listed.
	ForbiddenModules []string

	// ForbiddenFunctions are function names rejected anywhere in the
	// source unless explicitly waived.
	ForbiddenFunctions []string

	// WaivedFunctions are forbidden function names this context may use
	// anyway. Waivers are explicit policy data, never inferred from the
	// context id.
	WaivedFunctions []string
}

// Default returns the base policy applied to contexts without an override.
// The forbidden sets mirror the textbook's security rules.
func Default() Policy {
	return Policy{
		Context:        DefaultContext,
		MaxSourceChars: DefaultMaxSourceChars,
		MaxDuration:    DefaultMaxDuration,
		ForbiddenModules: []string{
			"os", "sys", "subprocess", "shutil", "socket", "urllib",
			"requests", "pickle", "marshal", "shelve", "__import__",
			"eval", "exec",
		},
		ForbiddenFunctions: []string{
			"open", "input", "raw_input", "__import__", "reload",
			"compile", "eval", "exec", "globals", "locals", "vars", "dir",
		},
	}
}

// ModuleAllowed reports whether the named module is on the context's
// allow-list.
func (p Policy) ModuleAllowed(name string) bool {
	return slices.Contains(p.AllowedModules, name)
}

// FunctionWaived reports whether the named forbidden function is explicitly
// waived for this context.
func (p Policy) FunctionWaived(name string) bool {
	return slices.Contains(p.WaivedFunctions, name)
}

// Override adjusts the base policy for one lesson context. Zero fields leave
// the base value in place; list fields are appended to the base sets.
type Override struct {
	AllowModules   []string `yaml:"allow_modules"`
	WaiveFunctions []string `yaml:"waive_functions"`
	MaxSourceChars int      `yaml:"max_source_chars"`
	TimeoutSec     int      `yaml:"timeout_sec"`
}

// apply produces the effective policy for a context from the base policy and
// its override.
func (o Override) apply(base Policy, context string) Policy {
	p := base
	p.Context = context
	p.AllowedModules = append(slices.Clone(base.AllowedModules), o.AllowModules...)
	p.WaivedFunctions = append(slices.Clone(base.WaivedFunctions), o.WaiveFunctions...)
	if o.MaxSourceChars > 0 {
		p.MaxSourceChars = o.MaxSourceChars
	}
	if o.TimeoutSec > 0 {
		p.MaxDuration = time.Duration(o.TimeoutSec) * time.Second
	}
	return p
}

// DefaultOverrides returns the built-in lesson contexts of the textbook. The
// final project is the one context permitted to call input(); the waiver is
// carried in the policy itself.
func DefaultOverrides() map[string]Override {
	return map[string]Override{
		"regex_patterns": {
			AllowModules: []string{"re"},
		},
		"performance_timing": {
			AllowModules: []string{"time"},
		},
		"data_analysis": {
			AllowModules: []string{"pandas"},
		},
		"final_project": {
			AllowModules:   []string{"re", "time"},
			WaiveFunctions: []string{"input"},
		},
	}
}

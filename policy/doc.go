// Package policy defines the allow-list policies that govern lesson code
// execution.
//
// A Policy is an immutable value describing what a single lesson context may
// do: which modules it may import, which builtin functions are forbidden,
// which of those rules are explicitly waived, and the length and wall-clock
// limits that apply. Policies are resolved per lesson context through a
// Registry built once at startup; they are never mutated afterwards and may
// be shared freely across goroutines.
//
// Context definitions can be extended or overridden through a YAML file:
//
//	contexts:
//	  regex_patterns:
//	    allow_modules: [re]
//	  final_project:
//	    allow_modules: [re, time]
//	    waive_functions: [input]
package policy

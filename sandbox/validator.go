package sandbox

import (
	"fmt"
	"strings"

	"github.com/devanik21/lessonbox/policy"
)

// Validation rule identifiers, reported with each rejection.
const (
	RuleMaxLength         = "max_length"
	RuleForbiddenImport   = "forbidden_import"
	RuleForbiddenFunction = "forbidden_function"
)

// RejectionError describes why static validation refused a submission.
type RejectionError struct {
	Rule    string // which rule fired
	Subject string // the module or function that triggered it, if any
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Validate inspects raw source text against a policy before execution. It is
// a pure function: no side effects, no logging, and the same inputs always
// produce the same decision.
//
// The checks are textual, not semantic. Aliased imports, names assembled
// from string pieces, and reflective access all slip past; that is the
// accepted limitation of a denylist scanner, not something this function
// tries to outsmart.
func Validate(source string, pol policy.Policy) error {
	if len(source) > pol.MaxSourceChars {
		return &RejectionError{
			Rule:    RuleMaxLength,
			Message: fmt.Sprintf("code too long (max %d characters)", pol.MaxSourceChars),
		}
	}

	lowered := strings.ToLower(source)

	// Import statements are matched line by line so a denylisted name in a
	// string literal elsewhere does not trip them.
	for line := range strings.Lines(lowered) {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "import ") && !strings.Contains(line, "from ") {
			continue
		}
		for _, module := range pol.ForbiddenModules {
			if !strings.Contains(line, module) {
				continue
			}
			if pol.ModuleAllowed(module) {
				continue
			}
			return &RejectionError{
				Rule:    RuleForbiddenImport,
				Subject: module,
				Message: fmt.Sprintf("import '%s' not allowed for security", module),
			}
		}
	}

	for _, fn := range pol.ForbiddenFunctions {
		if !strings.Contains(lowered, fn+"(") {
			continue
		}
		if pol.FunctionWaived(fn) {
			continue
		}
		return &RejectionError{
			Rule:    RuleForbiddenFunction,
			Subject: fn,
			Message: fmt.Sprintf("function '%s' not allowed for security", fn),
		}
	}

	return nil
}

package sandbox

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/devanik21/lessonbox/policy"
)

// identifierRe filters module names that are safe to splice into the
// harness as import statements.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// safeBuiltins is the fixed set of primitive operations every submission may
// use, regardless of context. Each entry is bound by reference into the
// execution namespace.
var safeBuiltins = []string{
	"print", "len", "str", "int", "float", "bool", "list", "dict",
	"tuple", "set", "range", "enumerate", "zip", "sorted", "reversed",
	"sum", "min", "max", "abs", "round", "type",
}

// waivableBuiltins maps waivable function names to the builtin bound into
// the namespace when a context waives the rule. Only interactive input is
// waivable today.
var waivableBuiltins = map[string]string{
	"input": "input",
}

// buildHarness generates the Python program that hosts one submission. The
// harness constructs the restricted namespace, redirects the interpreter's
// stdout and stderr into in-memory buffers, executes the submission, always
// restores the streams, and reports the captured streams and any fault as a
// single JSON object on its own stdout.
//
// The harness runs in a subprocess, so the redirection is process-wide only
// within that throwaway interpreter; nothing in the server process is
// touched.
func buildHarness(pol policy.Policy) string {
	var b strings.Builder

	b.WriteString("import io\nimport json\nimport sys\n")
	for _, module := range pol.AllowedModules {
		if !identifierRe.MatchString(module) {
			continue
		}
		// Missing optional modules degrade to an unbound name rather
		// than a harness crash.
		fmt.Fprintf(&b, "try:\n    import %s as _mod_%s\nexcept ImportError:\n    _mod_%s = None\n",
			module, module, module)
	}

	b.WriteString("\n\ndef _main():\n")
	b.WriteString("    with open(sys.argv[1], \"r\") as f:\n")
	b.WriteString("        source = f.read()\n")

	b.WriteString("    builtins = {\n")
	for _, name := range safeBuiltins {
		fmt.Fprintf(&b, "        %q: %s,\n", name, name)
	}
	for _, name := range pol.WaivedFunctions {
		builtin, ok := waivableBuiltins[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "        %q: %s,\n", name, builtin)
	}
	b.WriteString("    }\n")
	b.WriteString("    ns = {\"__builtins__\": builtins}\n")
	for _, module := range pol.AllowedModules {
		if !identifierRe.MatchString(module) {
			continue
		}
		fmt.Fprintf(&b, "    if _mod_%s is not None:\n        ns[%q] = _mod_%s\n",
			module, module, module)
	}

	b.WriteString(`    out = io.StringIO()
    err = io.StringIO()
    old_out, old_err = sys.stdout, sys.stderr
    kind = "none"
    fault = ""
    sys.stdout, sys.stderr = out, err
    try:
        exec(compile(source, "<lesson>", "exec"), ns)
    except EOFError as exc:
        kind = "eof"
        fault = str(exc) or "EOF when reading a line"
    except BaseException as exc:
        kind = "runtime"
        fault = "%s: %s" % (type(exc).__name__, exc)
    finally:
        sys.stdout, sys.stderr = old_out, old_err
    json.dump({
        "stdout": out.getvalue(),
        "stderr": err.getvalue(),
        "fault_kind": kind,
        "fault": fault,
    }, sys.stdout)


_main()
`)

	return b.String()
}

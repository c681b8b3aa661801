package policy

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Registry resolves the effective policy for a lesson context. It is built
// once and read-only afterwards, so it may be shared without locking.
type Registry struct {
	base     Policy
	contexts map[string]Policy
}

// NewRegistry builds a registry from a base policy and per-context
// overrides. Effective policies are computed up front so Resolve never
// allocates.
func NewRegistry(base Policy, overrides map[string]Override) *Registry {
	contexts := make(map[string]Policy, len(overrides))
	for name, o := range overrides {
		contexts[name] = o.apply(base, name)
	}
	return &Registry{base: base, contexts: contexts}
}

// Resolve returns the policy for the given context. Unknown contexts get the
// base policy.
func (r *Registry) Resolve(context string) Policy {
	if p, ok := r.contexts[context]; ok {
		return p
	}
	p := r.base
	p.Context = context
	return p
}

// Contexts returns the sorted names of all registered contexts.
func (r *Registry) Contexts() []string {
	return slices.Sorted(maps.Keys(r.contexts))
}

// contextsFile is the on-disk shape of a contexts YAML file.
type contextsFile struct {
	Contexts map[string]Override `yaml:"contexts"`
}

// LoadOverrides reads per-context overrides from a YAML file.
func LoadOverrides(path string) (map[string]Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading contexts file: %w", err)
	}

	var file contextsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing contexts file %s: %w", path, err)
	}
	return file.Contexts, nil
}

// BuildRegistry constructs the registry used by the sandbox: the built-in
// lesson contexts, optionally extended by a contexts file. Entries from the
// file replace built-in entries of the same name. An empty path means
// built-ins only; a missing file is an error since the operator asked for it.
func BuildRegistry(base Policy, contextsPath string) (*Registry, error) {
	overrides := DefaultOverrides()
	if contextsPath != "" {
		loaded, err := LoadOverrides(contextsPath)
		if err != nil {
			return nil, err
		}
		maps.Copy(overrides, loaded)
	}
	return NewRegistry(base, overrides), nil
}

// Package processors provides the built-in processors that can be declared
// in a build config.
package processors

import (
	"fmt"
	"sort"
	"sync"

	"mipbuild/pkg/builder"
	"mipbuild/pkg/config"
)

// Factory creates a processor from its declaration.
type Factory func(name string, files []string, opts Options) (builder.Processor, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func init() {
	Register("banner", newBanner)
	Register("replace", newReplace)
	Register("copy", newCopy)
	Register("rename", newRename)
}

// Register makes a processor type available to Build. Registering the same
// type twice replaces the earlier factory.
func Register(typ string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[typ] = f
}

// Types returns the registered processor types, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build instantiates the declared processors in order.
func Build(cfgs []config.ProcessorConfig) ([]builder.Processor, error) {
	procs := make([]builder.Processor, 0, len(cfgs))
	for i, c := range cfgs {
		mu.RLock()
		factory, ok := factories[c.Type]
		mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("processor %d: unknown type %q (available: %v)", i, c.Type, Types())
		}

		name := c.Name
		if name == "" {
			name = c.Type
		}
		p, err := factory(name, c.Files, Options(c.Options))
		if err != nil {
			return nil, fmt.Errorf("processor %d (%s): %w", i, name, err)
		}
		procs = append(procs, p)
	}
	return procs, nil
}

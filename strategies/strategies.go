// Package strategies holds the built-in strategies and a name registry so
// the CLI can construct them from configuration.
package strategies

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/minitrade/backtest"
)

var registry = make(map[string]backtest.StrategyFactory)

func Register(name string, factory backtest.StrategyFactory) {
	registry[strings.ToLower(name)] = factory
}

// Get looks up a registered strategy factory by name, case-insensitive.
func Get(name string) (backtest.StrategyFactory, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)",
			name, strings.Join(Names(), ", "))
	}
	return factory, nil
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

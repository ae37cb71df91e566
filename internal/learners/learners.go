// Package learners provides a factory of ai.Learner from configuration strings.
// Learner implementations register themselves with Register.
package learners

import (
	"sort"
	"sync"

	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/parameters"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Constructor creates a learner from its parameters. It should pop (parameters.PopParamOr) every
// parameter it uses: any left over are reported as unknown.
type Constructor func(params parameters.Params) (ai.Learner, error)

var (
	muRegistry sync.Mutex

	// Registered learner modules.
	registry = make(map[string]Constructor)
)

// Register a learner module so it can be used by the front-ends.
func Register(name string, constructor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	registry[name] = constructor
}

// Registered returns the sorted names of the registered modules.
func Registered() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig is used if an empty configuration is given.
var DefaultConfig = "table"

// New creates a learner given the configuration string.
//
// The config is the module name followed optionally by a colon (":") and a comma-separated list of
// parameters with optional values, e.g. "table:file=values.json" or "nn:model=nn_model,seed=seed.json".
// The parameters accepted are dependent on the module.
func New(config string) (ai.Learner, error) {
	if config == "" {
		config = DefaultConfig
	}
	moduleName, params := parameters.SplitModule(config)
	muRegistry.Lock()
	constructor, ok := registry[moduleName]
	muRegistry.Unlock()
	if !ok {
		return nil, errors.Errorf("unknown learner %q, registered learners are %q", moduleName, Registered())
	}

	learner, err := constructor(params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create learner %q", moduleName)
	}
	if err = parameters.CheckAllUsed(params, moduleName); err != nil {
		return nil, err
	}
	klog.V(1).Infof("Created learner %s from %q", learner, config)
	return learner, nil
}

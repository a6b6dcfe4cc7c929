package puzzle

import (
	"sort"
	"sync"
)

// Scheme is one puzzle family: it derives instances and checks solutions.
// Implementations live in subpackages and register themselves in init(),
// like mathfactor and friends.
type Scheme interface {
	Generate(req GenerateRequest) (*Instance, error)
	Verify(inst *Instance, solution uint64) (bool, error)
}

var (
	registry = map[Type]Scheme{}
	regLock  sync.RWMutex
)

func Register(t Type, s Scheme) {
	regLock.Lock()
	defer regLock.Unlock()

	registry[t] = s
}

func scheme(t Type) (Scheme, bool) {
	regLock.RLock()
	defer regLock.RUnlock()
	result, ok := registry[t]
	return result, ok
}

// Types lists the registered puzzle type selectors, sorted.
func Types() []string {
	regLock.RLock()
	defer regLock.RUnlock()

	var result []string
	for t := range registry {
		result = append(result, t.String())
	}
	sort.Strings(result)
	return result
}

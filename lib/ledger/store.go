package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a key has no value in the backend.
	ErrNotFound = errors.New("ledger: value not found")

	// ErrBadConfig is returned when backend parameters fail validation.
	ErrBadConfig = errors.New("ledger: invalid backend configuration")

	// ErrUnknownBackend is returned when no factory is registered under
	// the requested name.
	ErrUnknownBackend = errors.New("ledger: unknown storage backend")
)

// Interface is the raw byte store a Ledger persists into. An expiry of
// zero means the value lives forever; ledger records always use zero, the
// expiry exists for backends that share storage with ephemeral data.
type Interface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expiry time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Factory builds a store backend from its JSON parameters.
type Factory interface {
	Build(ctx context.Context, data json.RawMessage) (Interface, error)
	Valid(data json.RawMessage) error
}

var (
	factories = map[string]Factory{}
	facLock   sync.RWMutex
)

func Register(name string, factory Factory) {
	facLock.Lock()
	defer facLock.Unlock()

	factories[name] = factory
}

// Open builds the named backend with the given parameters.
func Open(ctx context.Context, backend string, data json.RawMessage) (Interface, error) {
	facLock.RLock()
	factory, ok := factories[backend]
	facLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (have: %v)", ErrUnknownBackend, backend, Backends())
	}

	return factory.Build(ctx, data)
}

// Backends lists the registered backend names, sorted.
func Backends() []string {
	facLock.RLock()
	defer facLock.RUnlock()

	var result []string
	for name := range factories {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Package memory is the in-process ledger backend. Ledger records never
// expire, so this is a plain mutex-guarded map with lazy expiry handling
// for the rare caller that sets one anyway.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/glyphforge/sphinx/lib/ledger"
)

func init() {
	ledger.Register("memory", Factory{})
}

type entry struct {
	value  []byte
	expiry time.Time // zero means no expiry
}

type Store struct {
	mu   sync.RWMutex
	data map[string]entry
}

var _ ledger.Interface = (*Store)(nil)

func New() *Store {
	return &Store{data: map[string]entry{}}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
	}

	if !e.expiry.IsZero() && time.Now().After(e.expiry) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
	}

	return e.value, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, expiry time.Duration) error {
	e := entry{value: value}
	if expiry > 0 {
		e.expiry = time.Now().Add(expiry)
	}

	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()

	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return fmt.Errorf("%w: %q", ledger.ErrNotFound, key)
	}

	delete(s.data, key)
	return nil
}

type Factory struct{}

func (Factory) Valid(json.RawMessage) error { return nil }

func (Factory) Build(context.Context, json.RawMessage) (ledger.Interface, error) {
	return New(), nil
}

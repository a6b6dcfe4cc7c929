// Package config is the HCL configuration surface of sphinxd.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/glyphforge/sphinx/lib/ledger"
)

var (
	ErrCantBindToPort  = errors.New("bind: can't bind to host:port")
	ErrNoStoreBackend  = errors.New("store: no backend defined")
	ErrBadStoreParams  = errors.New("store: parameters are not valid JSON")
	ErrNoSuchRuleFile  = errors.New("config: rule file does not exist")
	ErrBadSlotInterval = errors.New("config: slot interval must be positive")
)

type Toplevel struct {
	Bind  Bind  `hcl:"bind,block"`
	Store Store `hcl:"store,block"`

	// RulesFname points at the optional CEL mint rule file (YAML or JSON).
	RulesFname string `hcl:"mint_rules,optional"`

	// SlotIntervalMS is how many milliseconds one entropy slot lasts.
	// Zero means the built-in default.
	SlotIntervalMS int `hcl:"slot_interval_ms,optional"`
}

func (t *Toplevel) Valid() error {
	var errs []error

	if err := t.Bind.Valid(); err != nil {
		errs = append(errs, err)
	}
	if err := t.Store.Valid(); err != nil {
		errs = append(errs, err)
	}

	if t.RulesFname != "" {
		if _, err := os.Stat(t.RulesFname); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrNoSuchRuleFile, t.RulesFname, err))
		}
	}

	if t.SlotIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrBadSlotInterval, t.SlotIntervalMS))
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// SlotInterval converts the configured slot duration, falling back to the
// entropy package default when unset.
func (t *Toplevel) SlotInterval() time.Duration {
	return time.Duration(t.SlotIntervalMS) * time.Millisecond
}

type Bind struct {
	HTTP    string `hcl:"http"`
	Metrics string `hcl:"metrics"`
}

func (b *Bind) Valid() error {
	var errs []error

	for _, addr := range []string{b.HTTP, b.Metrics} {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %w", ErrCantBindToPort, addr, err))
		} else {
			defer ln.Close()
		}
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Store names a ledger backend and carries its parameters as a JSON
// document, so each backend keeps its own config shape.
type Store struct {
	Backend    string `hcl:"backend"`
	Parameters string `hcl:"parameters,optional"`
}

func (s *Store) Valid() error {
	var errs []error

	if s.Backend == "" {
		errs = append(errs, fmt.Errorf("%w (have: %v)", ErrNoStoreBackend, ledger.Backends()))
	}

	if s.Parameters != "" && !json.Valid([]byte(s.Parameters)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadStoreParams, s.Parameters))
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// RawParameters is the backend config in the form ledger.Open wants.
func (s *Store) RawParameters() json.RawMessage {
	if s.Parameters == "" {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(s.Parameters)
}

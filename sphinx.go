// Package sphinx contains the project-wide constants and the Identity type
// shared by every other package in the module.
package sphinx

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// Version is the current Sphinx version. Set at build time with ldflags.
	Version = "devel"

	ErrBadIdentity = errors.New("sphinx: identity must be 32 bytes of hex")
)

const (
	// DefaultDifficulty is used when a mint request does not name one.
	DefaultDifficulty = 1

	// APIPrefix is where sphinxd mounts its JSON routes.
	APIPrefix = "/api"

	// IdentitySize is the width of an Identity in bytes.
	IdentitySize = 32
)

// Identity is an opaque account reference. The engine only ever compares
// identities for equality; it assumes no internal structure.
type Identity [IdentitySize]byte

// ParseIdentity decodes the hex text form of an Identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity

	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrBadIdentity, err)
	}

	if len(raw) != IdentitySize {
		return id, fmt.Errorf("%w: got %d bytes", ErrBadIdentity, len(raw))
	}

	copy(id[:], raw)
	return id, nil
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is the all-zero value, which is never
// a valid owner or authority.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(data []byte) error {
	parsed, err := ParseIdentity(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

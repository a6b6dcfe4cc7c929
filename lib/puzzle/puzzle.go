// Package puzzle implements the puzzle lifecycle core: deterministic
// generation from an entropy snapshot, the attribute wire codec, and
// per-type solution verification via a scheme registry.
package puzzle

import (
	"fmt"
	"strconv"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/lib/entropy"
)

// Type selects the puzzle scheme embedded in an asset. It is fixed at mint
// time and never changes afterwards.
type Type int

const (
	TypeMathFactor Type = iota
	TypeHashRiddle
	TypePattern
)

const (
	selectorMathFactor = "math_factor"
	selectorHashRiddle = "hash_riddle"
	selectorPattern    = "pattern"
)

func (t Type) String() string {
	switch t {
	case TypeMathFactor:
		return selectorMathFactor
	case TypeHashRiddle:
		return selectorHashRiddle
	case TypePattern:
		return selectorPattern
	default:
		return fmt.Sprintf("invalid(%d)", int(t))
	}
}

// Index is the numeric selector of the type on the wire and in the puzzle
// number formula.
func (t Type) Index() uint64 {
	return uint64(t)
}

// TypeFromSelector maps the textual selector to a Type.
func TypeFromSelector(s string) (Type, error) {
	switch s {
	case selectorMathFactor:
		return TypeMathFactor, nil
	case selectorHashRiddle:
		return TypeHashRiddle, nil
	case selectorPattern:
		return TypePattern, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPuzzleType, s)
	}
}

// TypeFromIndex maps the numeric selector to a Type.
func TypeFromIndex(i uint8) (Type, error) {
	t := Type(i)
	switch t {
	case TypeMathFactor, TypeHashRiddle, TypePattern:
		return t, nil
	default:
		return 0, fmt.Errorf("%w: index %d", ErrInvalidPuzzleType, i)
	}
}

// Instance is the full puzzle state of one asset. Type, Difficulty, Number,
// Commitment and MintSlot are immutable after generation. Solver, Solution,
// SolvedAt and Rarity are set together exactly once, by the first accepted
// solve.
type Instance struct {
	Type       Type
	Difficulty uint8
	Number     uint64
	Commitment string
	MintSlot   uint64

	// Pattern holds the visible sequence for TypePattern puzzles. The
	// hidden next element is the solution.
	Pattern []uint64

	Solved   bool
	Solver   *sphinx.Identity
	Solution *uint64
	SolvedAt int64
	Rarity   Rarity

	// Extra preserves attribute pairs the puzzle schema does not own, in
	// the order they were first seen.
	Extra AttributeList
}

// GenerateRequest carries everything a scheme needs to derive an Instance.
type GenerateRequest struct {
	Requester  sphinx.Identity
	Type       Type
	Difficulty uint8
	Entropy    entropy.Snapshot
}

// Generate derives a fresh unsolved Instance. It has no side effects;
// persisting the result is the caller's job.
func Generate(req GenerateRequest) (*Instance, error) {
	s, ok := scheme(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPuzzleType, req.Type)
	}

	return s.Generate(req)
}

// VerifySolution dispatches a candidate solution to the instance's scheme.
// The type is immutable post-creation, but an unknown value is still
// rejected here so a corrupted record can never pass verification.
func VerifySolution(inst *Instance, solution uint64) (bool, error) {
	s, ok := scheme(inst.Type)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrInvalidPuzzleType, inst.Type)
	}

	return s.Verify(inst, solution)
}

// Number computes the canonical puzzle number from an entropy slot, the
// difficulty, and the type selector:
//
//	((slot mod 1000) + 1) * (difficulty + 1) + (index + 1) * 100
//
// The additive type term keeps every number >= 102, so MathFactor targets
// always have factors beyond 1 and themselves.
func Number(slot uint64, difficulty uint8, t Type) uint64 {
	base := ((slot % 1000) + 1) * (uint64(difficulty) + 1)
	return base + (t.Index()+1)*100
}

// SolutionHash is the commitment function: three rounds of x -> x*31 + 17
// over a uint64 (wrapping), rendered as lowercase hex. It is demonstrative,
// not collision-resistant, and documented as such.
func SolutionHash(x uint64) string {
	for range 3 {
		x = x*31 + 17
	}
	return strconv.FormatUint(x, 16)
}

// Package hashriddle is the hash commitment puzzle: a candidate solution
// is accepted when its commitment hash equals the one stored at mint time.
package hashriddle

import (
	"crypto/subtle"

	"github.com/glyphforge/sphinx/lib/puzzle"
)

func init() {
	puzzle.Register(puzzle.TypeHashRiddle, &Scheme{})
}

type Scheme struct{}

// Generate commits to the puzzle number itself, so the number is both the
// riddle's seed and its intended answer. Any colliding preimage also
// verifies; that is an accepted weakness of the demonstrative commitment,
// not a bug.
func (Scheme) Generate(req puzzle.GenerateRequest) (*puzzle.Instance, error) {
	number := puzzle.Number(req.Entropy.Slot, req.Difficulty, puzzle.TypeHashRiddle)

	return &puzzle.Instance{
		Type:       puzzle.TypeHashRiddle,
		Difficulty: req.Difficulty,
		Number:     number,
		Commitment: puzzle.SolutionHash(number),
		MintSlot:   req.Entropy.Slot,
	}, nil
}

func (Scheme) Verify(inst *puzzle.Instance, solution uint64) (bool, error) {
	candidate := puzzle.SolutionHash(solution)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(inst.Commitment)) == 1, nil
}

// Package mathfactor is the factoring puzzle: the solution is any divisor
// of the puzzle number.
package mathfactor

import (
	"github.com/glyphforge/sphinx/lib/puzzle"
)

func init() {
	puzzle.Register(puzzle.TypeMathFactor, &Scheme{})
}

type Scheme struct{}

func (Scheme) Generate(req puzzle.GenerateRequest) (*puzzle.Instance, error) {
	number := puzzle.Number(req.Entropy.Slot, req.Difficulty, puzzle.TypeMathFactor)

	return &puzzle.Instance{
		Type:       puzzle.TypeMathFactor,
		Difficulty: req.Difficulty,
		Number:     number,
		Commitment: puzzle.SolutionHash(number),
		MintSlot:   req.Entropy.Slot,
	}, nil
}

// Verify accepts any divisor of the puzzle number, trivial ones included.
func (Scheme) Verify(inst *puzzle.Instance, solution uint64) (bool, error) {
	if solution == 0 {
		return false, nil
	}

	return inst.Number%solution == 0, nil
}

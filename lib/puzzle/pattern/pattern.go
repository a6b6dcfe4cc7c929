// Package pattern is the sequence puzzle: the asset carries a visible
// number sequence and the solution is the hidden next element, checked
// against a hash commitment.
package pattern

import (
	"crypto/subtle"

	"github.com/glyphforge/sphinx/lib/puzzle"
)

func init() {
	puzzle.Register(puzzle.TypePattern, &Scheme{})
}

type Scheme struct{}

// Generate derives the sequence from the puzzle number, so the whole
// instance reconstructs deterministically from persisted attributes. The
// sequence grows with difficulty; the commitment binds the next element.
func (Scheme) Generate(req puzzle.GenerateRequest) (*puzzle.Instance, error) {
	number := puzzle.Number(req.Entropy.Slot, req.Difficulty, puzzle.TypePattern)
	sequence, next := evolve(number, req.Difficulty)

	return &puzzle.Instance{
		Type:       puzzle.TypePattern,
		Difficulty: req.Difficulty,
		Number:     number,
		Commitment: puzzle.SolutionHash(next),
		MintSlot:   req.Entropy.Slot,
		Pattern:    sequence,
	}, nil
}

func (Scheme) Verify(inst *puzzle.Instance, solution uint64) (bool, error) {
	candidate := puzzle.SolutionHash(solution)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(inst.Commitment)) == 1, nil
}

// evolve builds the visible sequence seeded by the puzzle number and
// returns it with the hidden next element. The step rule comes from the
// seed as well: add two, double, or square, always mod 100.
func evolve(seed uint64, difficulty uint8) ([]uint64, uint64) {
	length := sequenceLength(difficulty)
	rule := (seed / 10) % 3
	current := seed % 10

	sequence := make([]uint64, 0, length)
	for range length {
		sequence = append(sequence, current)
		current = step(rule, current)
	}

	return sequence, current
}

func sequenceLength(difficulty uint8) int {
	switch difficulty {
	case 0:
		return 3
	case 1:
		return 4
	case 2:
		return 5
	default:
		return 6
	}
}

func step(rule, current uint64) uint64 {
	switch rule {
	case 0:
		return (current + 2) % 100
	case 1:
		return (current * 2) % 100
	default:
		return (current * current) % 100
	}
}

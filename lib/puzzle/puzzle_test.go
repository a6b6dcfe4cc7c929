package puzzle_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/lib/entropy"
	"github.com/glyphforge/sphinx/lib/puzzle"
	_ "github.com/glyphforge/sphinx/lib/puzzle/all"
)

func TestNumber(t *testing.T) {
	for _, tt := range []struct {
		name       string
		slot       uint64
		difficulty uint8
		puzzleType puzzle.Type
		want       uint64
	}{
		{
			name:       "math factor slot 42",
			slot:       42,
			difficulty: 1,
			puzzleType: puzzle.TypeMathFactor,
			want:       186,
		},
		{
			name:       "hash riddle slot 42",
			slot:       42,
			difficulty: 1,
			puzzleType: puzzle.TypeHashRiddle,
			want:       286,
		},
		{
			name:       "pattern slot 42",
			slot:       42,
			difficulty: 1,
			puzzleType: puzzle.TypePattern,
			want:       386,
		},
		{
			name:       "slot wraps mod 1000",
			slot:       1042,
			difficulty: 1,
			puzzleType: puzzle.TypeMathFactor,
			want:       186,
		},
		{
			name:       "zero slot zero difficulty",
			slot:       0,
			difficulty: 0,
			puzzleType: puzzle.TypeMathFactor,
			want:       101,
		},
		{
			name:       "difficulty scales the base",
			slot:       999,
			difficulty: 3,
			puzzleType: puzzle.TypePattern,
			want:       4300,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := puzzle.Number(tt.slot, tt.difficulty, tt.puzzleType)
			if got != tt.want {
				t.Errorf("Number(%d, %d, %s) = %d, want %d", tt.slot, tt.difficulty, tt.puzzleType, got, tt.want)
			}
		})
	}
}

func TestNumberAlwaysAboveTypeFloor(t *testing.T) {
	for slot := uint64(0); slot < 2000; slot += 97 {
		for difficulty := uint8(0); difficulty < 4; difficulty++ {
			if got := puzzle.Number(slot, difficulty, puzzle.TypeMathFactor); got < 102 {
				t.Fatalf("Number(%d, %d, math_factor) = %d below floor", slot, difficulty, got)
			}
		}
	}
}

func TestSolutionHash(t *testing.T) {
	for _, tt := range []struct {
		in   uint64
		want string
	}{
		{in: 186, want: "54cef7"},
		{in: 0, want: "41f1"},
	} {
		if got := puzzle.SolutionHash(tt.in); got != tt.want {
			t.Errorf("SolutionHash(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTypeSelectors(t *testing.T) {
	for _, tt := range []struct {
		selector string
		want     puzzle.Type
	}{
		{selector: "math_factor", want: puzzle.TypeMathFactor},
		{selector: "hash_riddle", want: puzzle.TypeHashRiddle},
		{selector: "pattern", want: puzzle.TypePattern},
	} {
		t.Run(tt.selector, func(t *testing.T) {
			got, err := puzzle.TypeFromSelector(tt.selector)
			if err != nil {
				t.Fatalf("TypeFromSelector(%q): %v", tt.selector, err)
			}
			if got != tt.want {
				t.Errorf("TypeFromSelector(%q) = %v, want %v", tt.selector, got, tt.want)
			}
			if got.String() != tt.selector {
				t.Errorf("round trip broke: %v.String() = %q", got, got.String())
			}
		})
	}

	if _, err := puzzle.TypeFromSelector("sudoku"); !errors.Is(err, puzzle.ErrInvalidPuzzleType) {
		t.Errorf("want ErrInvalidPuzzleType, got: %v", err)
	}

	if _, err := puzzle.TypeFromIndex(3); !errors.Is(err, puzzle.ErrInvalidPuzzleType) {
		t.Errorf("want ErrInvalidPuzzleType for index 3, got: %v", err)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	req := puzzle.GenerateRequest{
		Requester:  sphinx.Identity{1},
		Type:       puzzle.TypePattern,
		Difficulty: 1,
		Entropy: entropy.Snapshot{
			Slot: 42,
			Time: time.Unix(1700000000, 0),
		},
	}

	first, err := puzzle.Generate(req)
	if err != nil {
		t.Fatalf("can't generate: %v", err)
	}

	second, err := puzzle.Generate(req)
	if err != nil {
		t.Fatalf("can't generate again: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same inputs produced different instances:\nfirst:  %#v\nsecond: %#v", first, second)
	}

	// A different requester must not change the outcome.
	req.Requester = sphinx.Identity{2}
	third, err := puzzle.Generate(req)
	if err != nil {
		t.Fatalf("can't generate for other requester: %v", err)
	}
	if !reflect.DeepEqual(first, third) {
		t.Error("requester identity leaked into generation")
	}
}

func TestGenerateUnsolved(t *testing.T) {
	for _, selector := range puzzle.Types() {
		t.Run(selector, func(t *testing.T) {
			pt, err := puzzle.TypeFromSelector(selector)
			if err != nil {
				t.Fatalf("registry reported unknown selector %q: %v", selector, err)
			}

			inst, err := puzzle.Generate(puzzle.GenerateRequest{
				Type:       pt,
				Difficulty: 2,
				Entropy:    entropy.Snapshot{Slot: 7, Time: time.Unix(1700000000, 0)},
			})
			if err != nil {
				t.Fatalf("can't generate: %v", err)
			}

			if inst.Solved {
				t.Error("fresh instance reports solved")
			}
			if inst.Solver != nil || inst.Solution != nil {
				t.Error("fresh instance carries solve state")
			}
			if inst.Commitment == "" {
				t.Error("fresh instance has no commitment")
			}
			if inst.MintSlot != 7 {
				t.Errorf("MintSlot = %d, want 7", inst.MintSlot)
			}
		})
	}
}

func TestGenerateUnknownType(t *testing.T) {
	_, err := puzzle.Generate(puzzle.GenerateRequest{Type: puzzle.Type(42)})
	if !errors.Is(err, puzzle.ErrInvalidPuzzleType) {
		t.Errorf("want ErrInvalidPuzzleType, got: %v", err)
	}
}

func TestVerifySolutionUnknownType(t *testing.T) {
	_, err := puzzle.VerifySolution(&puzzle.Instance{Type: puzzle.Type(42)}, 1)
	if !errors.Is(err, puzzle.ErrInvalidPuzzleType) {
		t.Errorf("want ErrInvalidPuzzleType, got: %v", err)
	}
}

package pattern_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/glyphforge/sphinx/lib/entropy"
	"github.com/glyphforge/sphinx/lib/puzzle"
	"github.com/glyphforge/sphinx/lib/puzzle/pattern"
)

func generate(t *testing.T, slot uint64, difficulty uint8) *puzzle.Instance {
	t.Helper()

	inst, err := pattern.Scheme{}.Generate(puzzle.GenerateRequest{
		Type:       puzzle.TypePattern,
		Difficulty: difficulty,
		Entropy:    entropy.Snapshot{Slot: slot, Time: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("can't generate: %v", err)
	}
	return inst
}

func TestGenerate(t *testing.T) {
	// Seed 386: rule (386/10)%3 = 2 (square mod 100), start 386%10 = 6.
	inst := generate(t, 42, 1)

	if inst.Number != 386 {
		t.Errorf("Number = %d, want 386", inst.Number)
	}

	wantSequence := []uint64{6, 36, 96, 16}
	if !reflect.DeepEqual(inst.Pattern, wantSequence) {
		t.Errorf("Pattern = %v, want %v", inst.Pattern, wantSequence)
	}

	// The hidden next element is 16^2 mod 100 = 56.
	if inst.Commitment != puzzle.SolutionHash(56) {
		t.Errorf("Commitment = %q does not bind the next element", inst.Commitment)
	}
}

func TestSequenceLengthGrowsWithDifficulty(t *testing.T) {
	for _, tt := range []struct {
		difficulty uint8
		wantLen    int
	}{
		{difficulty: 0, wantLen: 3},
		{difficulty: 1, wantLen: 4},
		{difficulty: 2, wantLen: 5},
		{difficulty: 3, wantLen: 6},
		{difficulty: 9, wantLen: 6},
	} {
		inst := generate(t, 42, tt.difficulty)
		if len(inst.Pattern) != tt.wantLen {
			t.Errorf("difficulty %d: len(Pattern) = %d, want %d", tt.difficulty, len(inst.Pattern), tt.wantLen)
		}
	}
}

func TestStepRules(t *testing.T) {
	for _, tt := range []struct {
		name string
		slot uint64
		want []uint64
	}{
		// Seed 302: rule 0 (add two), start 2.
		{name: "add two", slot: 1, want: []uint64{2, 4, 6}},
		// Seed 312: rule 1 (double), start 2.
		{name: "double", slot: 11, want: []uint64{2, 4, 8}},
		// Seed 322: rule 2 (square), start 2.
		{name: "square", slot: 21, want: []uint64{2, 4, 16}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			inst := generate(t, tt.slot, 0)
			if !reflect.DeepEqual(inst.Pattern, tt.want) {
				t.Errorf("slot %d: Pattern = %v, want %v", tt.slot, inst.Pattern, tt.want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	inst := generate(t, 42, 1)

	ok, err := pattern.Scheme{}.Verify(inst, 56)
	if err != nil {
		t.Fatalf("can't verify: %v", err)
	}
	if !ok {
		t.Error("correct next element rejected")
	}

	// A visible sequence member is not the answer.
	for _, wrong := range []uint64{6, 36, 96, 16, 0} {
		ok, err := pattern.Scheme{}.Verify(inst, wrong)
		if err != nil {
			t.Fatalf("can't verify %d: %v", wrong, err)
		}
		if ok {
			t.Errorf("wrong solution %d accepted", wrong)
		}
	}
}

package puzzle_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/lib/entropy"
	"github.com/glyphforge/sphinx/lib/puzzle"
)

func mustGenerate(t *testing.T, pt puzzle.Type, difficulty uint8, slot uint64) *puzzle.Instance {
	t.Helper()

	inst, err := puzzle.Generate(puzzle.GenerateRequest{
		Type:       pt,
		Difficulty: difficulty,
		Entropy:    entropy.Snapshot{Slot: slot, Time: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("can't generate %s puzzle: %v", pt, err)
	}
	return inst
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	solver := sphinx.Identity{0xaa, 0xbb}
	solution := uint64(56)

	for _, tt := range []struct {
		name string
		inst *puzzle.Instance
	}{
		{
			name: "unsolved math factor",
			inst: mustGenerate(t, puzzle.TypeMathFactor, 1, 42),
		},
		{
			name: "unsolved hash riddle",
			inst: mustGenerate(t, puzzle.TypeHashRiddle, 0, 7),
		},
		{
			name: "unsolved pattern keeps sequence",
			inst: mustGenerate(t, puzzle.TypePattern, 1, 42),
		},
		{
			name: "solved pattern with solve state",
			inst: func() *puzzle.Instance {
				inst := mustGenerate(t, puzzle.TypePattern, 1, 42)
				inst.Solved = true
				inst.Solver = &solver
				inst.Solution = &solution
				inst.SolvedAt = 1700000123
				inst.Rarity = puzzle.RarityEpic
				return inst
			}(),
		},
		{
			name: "caller attributes ride along",
			inst: func() *puzzle.Instance {
				inst := mustGenerate(t, puzzle.TypeMathFactor, 2, 99)
				inst.Extra = puzzle.AttributeList{
					{Key: "hidden_trait", Value: "???"},
					{Key: "artist", Value: "glyphforge"},
				}
				return inst
			}(),
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			encoded := puzzle.Encode(tt.inst)

			decoded, err := puzzle.Decode(encoded)
			if err != nil {
				t.Fatalf("can't decode: %v", err)
			}

			if !reflect.DeepEqual(decoded, tt.inst) {
				t.Errorf("round trip changed the instance:\nwant: %#v\ngot:  %#v", tt.inst, decoded)
			}

			// Re-encoding the decoded instance must reproduce the wire
			// form exactly, caller pairs included.
			if again := puzzle.Encode(decoded); !reflect.DeepEqual(again, encoded) {
				t.Errorf("second encode diverged:\nwant: %#v\ngot:  %#v", encoded, again)
			}
		})
	}
}

func TestDecodeLegacyPuzzleHash(t *testing.T) {
	inst := mustGenerate(t, puzzle.TypeHashRiddle, 1, 42)
	encoded := puzzle.Encode(inst)

	for i := range encoded {
		if encoded[i].Key == puzzle.KeySolutionHash {
			encoded[i].Key = puzzle.KeyPuzzleHash
		}
	}

	decoded, err := puzzle.Decode(encoded)
	if err != nil {
		t.Fatalf("can't decode legacy list: %v", err)
	}
	if decoded.Commitment != inst.Commitment {
		t.Errorf("commitment = %q, want %q", decoded.Commitment, inst.Commitment)
	}
}

func TestDecodeMissingKeys(t *testing.T) {
	base := puzzle.Encode(mustGenerate(t, puzzle.TypeMathFactor, 1, 42))

	without := func(key string) puzzle.AttributeList {
		var result puzzle.AttributeList
		for _, attr := range base {
			if attr.Key != key {
				result = append(result, attr)
			}
		}
		return result
	}

	for _, tt := range []struct {
		drop string
		want error
	}{
		{drop: puzzle.KeyPuzzleType, want: puzzle.ErrPuzzleNotFound},
		{drop: puzzle.KeySolutionHash, want: puzzle.ErrPuzzleNotFound},
		{drop: puzzle.KeyPuzzleNumber, want: puzzle.ErrPuzzleNotFound},
		{drop: puzzle.KeyDifficulty, want: puzzle.ErrAttributeNotFound},
		{drop: puzzle.KeyMintSlot, want: puzzle.ErrAttributeNotFound},
		{drop: puzzle.KeySolved, want: puzzle.ErrAttributeNotFound},
	} {
		t.Run("missing "+tt.drop, func(t *testing.T) {
			if _, err := puzzle.Decode(without(tt.drop)); !errors.Is(err, tt.want) {
				t.Errorf("want %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestDecodePuzzleNumberOptionalForCommitmentTypes(t *testing.T) {
	inst := mustGenerate(t, puzzle.TypeHashRiddle, 1, 42)
	encoded := puzzle.Encode(inst)

	var trimmed puzzle.AttributeList
	for _, attr := range encoded {
		if attr.Key != puzzle.KeyPuzzleNumber {
			trimmed = append(trimmed, attr)
		}
	}

	decoded, err := puzzle.Decode(trimmed)
	if err != nil {
		t.Fatalf("hash riddle should decode without puzzle_number: %v", err)
	}
	if decoded.Number != 0 {
		t.Errorf("Number = %d, want 0", decoded.Number)
	}
}

func TestDecodeBadValues(t *testing.T) {
	for _, tt := range []struct {
		name  string
		key   string
		value string
	}{
		{name: "difficulty not a number", key: puzzle.KeyDifficulty, value: "hard"},
		{name: "difficulty overflows uint8", key: puzzle.KeyDifficulty, value: "300"},
		{name: "puzzle number not a number", key: puzzle.KeyPuzzleNumber, value: "xyz"},
		{name: "solved not a bool", key: puzzle.KeySolved, value: "maybe"},
		{name: "mint slot negative", key: puzzle.KeyMintSlot, value: "-1"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			encoded := puzzle.Encode(mustGenerate(t, puzzle.TypeMathFactor, 1, 42))
			encoded = puzzle.MergeUpdate(encoded, puzzle.AttributeList{{Key: tt.key, Value: tt.value}})

			if _, err := puzzle.Decode(encoded); !errors.Is(err, puzzle.ErrFailedToParsePuzzleData) {
				t.Errorf("want ErrFailedToParsePuzzleData, got: %v", err)
			}
		})
	}
}

func TestDecodeSolvedRequiresSolveState(t *testing.T) {
	encoded := puzzle.Encode(mustGenerate(t, puzzle.TypeMathFactor, 1, 42))
	encoded = puzzle.MergeUpdate(encoded, puzzle.AttributeList{{Key: puzzle.KeySolved, Value: "true"}})

	if _, err := puzzle.Decode(encoded); !errors.Is(err, puzzle.ErrAttributeNotFound) {
		t.Errorf("want ErrAttributeNotFound for solved without solver, got: %v", err)
	}
}

func TestMergeUpdateKeepsPositions(t *testing.T) {
	original := puzzle.AttributeList{
		{Key: "puzzle_type", Value: "pattern"},
		{Key: "solved", Value: "false"},
		{Key: "hidden_trait", Value: "???"},
	}

	merged := puzzle.MergeUpdate(original, puzzle.AttributeList{
		{Key: "solved", Value: "true"},
		{Key: "rarity", Value: "Epic"},
	})

	want := puzzle.AttributeList{
		{Key: "puzzle_type", Value: "pattern"},
		{Key: "solved", Value: "true"},
		{Key: "hidden_trait", Value: "???"},
		{Key: "rarity", Value: "Epic"},
	}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged = %#v, want %#v", merged, want)
	}

	// The input list is never mutated.
	if original[1].Value != "false" {
		t.Error("MergeUpdate mutated its input")
	}
}

func TestAttributeListGet(t *testing.T) {
	l := puzzle.AttributeList{{Key: "a", Value: "1"}, {Key: "a", Value: "2"}}

	if got, ok := l.Get("a"); !ok || got != "1" {
		t.Errorf("Get returned (%q, %v), want first match (\"1\", true)", got, ok)
	}
	if _, ok := l.Get("b"); ok {
		t.Error("Get found a key that is not there")
	}
}

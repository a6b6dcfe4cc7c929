package puzzle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glyphforge/sphinx"
)

// Attribute is one key/value pair in the persisted wire form.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AttributeList is the ordered wire form of an Instance plus whatever
// caller-supplied pairs ride along. Keys are unique within a list.
type AttributeList []Attribute

// Attribute keys owned by the puzzle schema.
const (
	KeyPuzzleType      = "puzzle_type"
	KeyDifficulty      = "difficulty"
	KeyPuzzleNumber    = "puzzle_number"
	KeySolutionHash    = "solution_hash"
	KeySolved          = "solved"
	KeyMintSlot        = "mint_slot"
	KeyPatternSequence = "pattern_sequence"
	KeySolver          = "solver"
	KeySolution        = "solution"
	KeySolveTimestamp  = "solve_timestamp"
	KeyRarity          = "rarity"

	// KeyPuzzleHash is the legacy commitment key some minters wrote for
	// non-math puzzles. Decode accepts it in place of solution_hash.
	KeyPuzzleHash = "puzzle_hash"

	// KeyHiddenTrait is written by the mint path but not owned by the
	// codec; it round-trips like any other caller attribute.
	KeyHiddenTrait = "hidden_trait"
)

var schemaKeys = map[string]bool{
	KeyPuzzleType:      true,
	KeyDifficulty:      true,
	KeyPuzzleNumber:    true,
	KeySolutionHash:    true,
	KeySolved:          true,
	KeyMintSlot:        true,
	KeyPatternSequence: true,
	KeySolver:          true,
	KeySolution:        true,
	KeySolveTimestamp:  true,
	KeyRarity:          true,
	KeyPuzzleHash:      true,
}

// Get returns the value of the first pair with the given key.
func (l AttributeList) Get(key string) (string, bool) {
	for _, attr := range l {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

func (l AttributeList) Clone() AttributeList {
	if l == nil {
		return nil
	}
	result := make(AttributeList, len(l))
	copy(result, l)
	return result
}

// MergeUpdate applies updates to a copy of l. A key already present is
// replaced in place, keeping its position; a new key is appended at the
// end. Pairs outside the update set are copied unchanged, so solve-time
// mutations never disturb unrelated metadata.
func MergeUpdate(l AttributeList, updates AttributeList) AttributeList {
	result := l.Clone()

	for _, update := range updates {
		replaced := false
		for i := range result {
			if result[i].Key == update.Key {
				result[i].Value = update.Value
				replaced = true
				break
			}
		}
		if !replaced {
			result = append(result, update)
		}
	}

	return result
}

// Encode renders an Instance as its canonical attribute list: the fixed
// schema keys first, the post-solve keys when the puzzle is solved, then
// every preserved unrecognized pair in original order.
func Encode(inst *Instance) AttributeList {
	result := AttributeList{
		{Key: KeyPuzzleType, Value: inst.Type.String()},
		{Key: KeyDifficulty, Value: strconv.FormatUint(uint64(inst.Difficulty), 10)},
		{Key: KeyPuzzleNumber, Value: strconv.FormatUint(inst.Number, 10)},
		{Key: KeySolutionHash, Value: inst.Commitment},
		{Key: KeySolved, Value: strconv.FormatBool(inst.Solved)},
		{Key: KeyMintSlot, Value: strconv.FormatUint(inst.MintSlot, 10)},
	}

	if len(inst.Pattern) != 0 {
		result = append(result, Attribute{
			Key:   KeyPatternSequence,
			Value: formatSequence(inst.Pattern),
		})
	}

	if inst.Solved {
		result = append(result,
			Attribute{Key: KeySolver, Value: inst.Solver.String()},
			Attribute{Key: KeySolution, Value: strconv.FormatUint(*inst.Solution, 10)},
			Attribute{Key: KeySolveTimestamp, Value: strconv.FormatInt(inst.SolvedAt, 10)},
			Attribute{Key: KeyRarity, Value: string(inst.Rarity)},
		)
	}

	result = append(result, inst.Extra...)

	return result
}

// Decode reconstructs an Instance from an attribute list. Keys the schema
// does not own are preserved in Instance.Extra so a later Encode loses
// nothing.
func Decode(l AttributeList) (*Instance, error) {
	inst := &Instance{}

	typeName, ok := l.Get(KeyPuzzleType)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrPuzzleNotFound, KeyPuzzleType)
	}
	t, err := TypeFromSelector(typeName)
	if err != nil {
		return nil, err
	}
	inst.Type = t

	difficulty, err := requiredUint(l, KeyDifficulty, 8)
	if err != nil {
		return nil, err
	}
	inst.Difficulty = uint8(difficulty)

	inst.MintSlot, err = requiredUint(l, KeyMintSlot, 64)
	if err != nil {
		return nil, err
	}

	if commitment, ok := l.Get(KeySolutionHash); ok {
		inst.Commitment = commitment
	} else if commitment, ok := l.Get(KeyPuzzleHash); ok {
		inst.Commitment = commitment
	} else {
		return nil, fmt.Errorf("%w: missing %s", ErrPuzzleNotFound, KeySolutionHash)
	}

	if raw, ok := l.Get(KeyPuzzleNumber); ok {
		inst.Number, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, parseErr(KeyPuzzleNumber, raw)
		}
	} else if inst.Type == TypeMathFactor {
		return nil, fmt.Errorf("%w: missing %s", ErrPuzzleNotFound, KeyPuzzleNumber)
	}

	if raw, ok := l.Get(KeyPatternSequence); ok {
		inst.Pattern, err = parseSequence(raw)
		if err != nil {
			return nil, parseErr(KeyPatternSequence, raw)
		}
	}

	rawSolved, ok := l.Get(KeySolved)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrAttributeNotFound, KeySolved)
	}
	inst.Solved, err = strconv.ParseBool(rawSolved)
	if err != nil {
		return nil, parseErr(KeySolved, rawSolved)
	}

	if inst.Solved {
		if err := decodeSolveState(l, inst); err != nil {
			return nil, err
		}
	}

	for _, attr := range l {
		if !schemaKeys[attr.Key] {
			inst.Extra = append(inst.Extra, attr)
		}
	}

	return inst, nil
}

func decodeSolveState(l AttributeList, inst *Instance) error {
	rawSolver, ok := l.Get(KeySolver)
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrAttributeNotFound, KeySolver)
	}
	solver, err := sphinx.ParseIdentity(rawSolver)
	if err != nil {
		return parseErr(KeySolver, rawSolver)
	}
	inst.Solver = &solver

	solution, err := requiredUint(l, KeySolution, 64)
	if err != nil {
		return err
	}
	inst.Solution = &solution

	rawTS, ok := l.Get(KeySolveTimestamp)
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrAttributeNotFound, KeySolveTimestamp)
	}
	inst.SolvedAt, err = strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return parseErr(KeySolveTimestamp, rawTS)
	}

	rawRarity, ok := l.Get(KeyRarity)
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrAttributeNotFound, KeyRarity)
	}
	inst.Rarity, err = ParseRarity(rawRarity)
	if err != nil {
		return err
	}

	return nil
}

func requiredUint(l AttributeList, key string, bits int) (uint64, error) {
	raw, ok := l.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrAttributeNotFound, key)
	}

	value, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, parseErr(key, raw)
	}

	return value, nil
}

func parseErr(key, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrFailedToParsePuzzleData, key, value)
}

func formatSequence(seq []uint64) string {
	parts := make([]string, len(seq))
	for i, n := range seq {
		parts[i] = strconv.FormatUint(n, 10)
	}
	return strings.Join(parts, ",")
}

func parseSequence(raw string) ([]uint64, error) {
	parts := strings.Split(raw, ",")
	result := make([]uint64, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		result[i] = n
	}
	return result, nil
}

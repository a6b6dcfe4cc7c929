package puzzle

import "errors"

var (
	// ErrIncorrectSolution rejects a candidate that fails verification.
	ErrIncorrectSolution = errors.New("puzzle: the provided solution is incorrect")

	// ErrPuzzleNotFound means a required puzzle key is absent from the
	// attribute list.
	ErrPuzzleNotFound = errors.New("puzzle: puzzle data not found in asset attributes")

	// ErrAttributeNotFound means a required non-puzzle attribute is absent.
	ErrAttributeNotFound = errors.New("puzzle: attribute not found")

	// ErrAlreadySolved rejects a solve attempt on a terminal-state puzzle.
	ErrAlreadySolved = errors.New("puzzle: already solved")

	// ErrInvalidPuzzleType rejects an unrecognized type selector.
	ErrInvalidPuzzleType = errors.New("puzzle: invalid puzzle type")

	// ErrFailedToParsePuzzleData means an attribute is present but its
	// value does not parse as the expected type.
	ErrFailedToParsePuzzleData = errors.New("puzzle: failed to parse puzzle data")
)

// Package lib wires the puzzle lifecycle together: generation at mint,
// the ownership-gated single-use solve transition, and the event payloads
// both produce. Persistence goes through the asset ledger; this package
// never talks to a store directly.
package lib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/lib/entropy"
	"github.com/glyphforge/sphinx/lib/ledger"
	"github.com/glyphforge/sphinx/lib/policy"
	"github.com/glyphforge/sphinx/lib/puzzle"
	_ "github.com/glyphforge/sphinx/lib/puzzle/all"
)

var (
	// ErrNotNFTOwner rejects a solve attempt by anyone but the recorded
	// owner of the asset.
	ErrNotNFTOwner = errors.New("lib: only the asset owner can attempt to solve the puzzle")

	// ErrUnauthorizedUpdate rejects a metadata-only update by an identity
	// that is not the asset's update authority.
	ErrUnauthorizedUpdate = errors.New("lib: unauthorized update attempt")

	// ErrMintDenied means a policy rule rejected the mint request.
	ErrMintDenied = errors.New("lib: mint request denied by policy")

	mintsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sphinx_mints_total",
		Help: "Minted puzzle assets by puzzle type.",
	}, []string{"puzzle_type"})

	solvesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sphinx_solves_total",
		Help: "Accepted solves by assigned rarity.",
	}, []string{"rarity"})

	solveFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sphinx_solve_failures_total",
		Help: "Rejected solve attempts by failure reason.",
	}, []string{"reason"})
)

// Options configures an Engine. Ledger and Entropy are required; Policy
// is optional and nil admits every mint.
type Options struct {
	Ledger  *ledger.Ledger
	Entropy entropy.Source
	Policy  *policy.Policy
}

func (o Options) Valid() error {
	var errs []error

	if o.Ledger == nil {
		errs = append(errs, errors.New("lib: Options.Ledger is required"))
	}
	if o.Entropy == nil {
		errs = append(errs, errors.New("lib: Options.Entropy is required"))
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Engine is the puzzle state machine. Every operation is a pure function
// of its inputs and the freshly read ledger state; the ledger's write
// serialization and revision check make the solve transition atomic.
type Engine struct {
	ledger  *ledger.Ledger
	entropy entropy.Source
	policy  *policy.Policy
}

func New(opts Options) (*Engine, error) {
	if err := opts.Valid(); err != nil {
		return nil, err
	}

	return &Engine{
		ledger:  opts.Ledger,
		entropy: opts.Entropy,
		policy:  opts.Policy,
	}, nil
}

// MintRequest asks for a new puzzle-bearing asset.
type MintRequest struct {
	Name       string
	URI        string
	PuzzleType string
	Difficulty uint8
	Requester  sphinx.Identity
}

// MintedEvent is emitted after a successful mint.
type MintedEvent struct {
	Asset        uuid.UUID       `json:"asset"`
	PuzzleType   string          `json:"puzzleType"`
	PuzzleNumber uint64          `json:"puzzleNumber"`
	Minter       sphinx.Identity `json:"minter"`
}

// Mint generates a puzzle for the requester and persists the new asset.
// The requester becomes both owner and update authority, and receives a
// holding record with balance one.
func (e *Engine) Mint(ctx context.Context, req MintRequest) (*ledger.Asset, *MintedEvent, error) {
	if req.Requester.IsZero() {
		return nil, nil, sphinx.ErrBadIdentity
	}

	t, err := puzzle.TypeFromSelector(req.PuzzleType)
	if err != nil {
		return nil, nil, err
	}

	allowed, rule, err := e.policy.Evaluate(ctx, &policy.Check{
		Requester:  req.Requester,
		PuzzleType: req.PuzzleType,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, fmt.Errorf("%w: rule %q", ErrMintDenied, rule)
	}

	snapshot, err := e.entropy.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	inst, err := puzzle.Generate(puzzle.GenerateRequest{
		Requester:  req.Requester,
		Type:       t,
		Difficulty: req.Difficulty,
		Entropy:    snapshot,
	})
	if err != nil {
		return nil, nil, err
	}

	attrs := puzzle.Encode(inst)
	attrs = append(attrs, puzzle.Attribute{Key: puzzle.KeyHiddenTrait, Value: "???"})

	asset := &ledger.Asset{
		ID:              uuid.New(),
		Name:            req.Name,
		URI:             req.URI,
		Owner:           req.Requester,
		UpdateAuthority: req.Requester,
		Attributes:      attrs,
		MintedAt:        snapshot.Time,
	}

	if err := e.ledger.Create(ctx, asset); err != nil {
		return nil, nil, err
	}

	if err := e.ledger.SetHolding(ctx, &ledger.Holding{
		Holder:  req.Requester,
		Asset:   asset.ID,
		Balance: 1,
	}); err != nil {
		return nil, nil, err
	}

	mintsProcessed.WithLabelValues(req.PuzzleType).Inc()
	slog.Info("minted puzzle asset",
		"asset", asset.ID,
		"puzzle_type", req.PuzzleType,
		"puzzle_number", inst.Number,
		"difficulty", req.Difficulty,
		"mint_slot", snapshot.Slot,
	)

	return asset, &MintedEvent{
		Asset:        asset.ID,
		PuzzleType:   req.PuzzleType,
		PuzzleNumber: inst.Number,
		Minter:       req.Requester,
	}, nil
}

// SolveRequest carries one solve attempt. NewURI is optional; when set,
// the asset's metadata URI changes along with the successful solve.
type SolveRequest struct {
	Asset    uuid.UUID
	Solver   sphinx.Identity
	Solution uint64
	NewURI   string
}

// SolvedEvent is emitted after a successful solve.
type SolvedEvent struct {
	Asset    uuid.UUID       `json:"asset"`
	Solver   sphinx.Identity `json:"solver"`
	SolvedAt time.Time       `json:"solvedAt"`
	Rarity   puzzle.Rarity   `json:"rarity"`
}

// Solve runs the single-use solve transition. Either the asset's
// attribute list advances to the solved state atomically and a SolvedEvent
// is returned, or an error from the taxonomy is returned and nothing
// persisted changes. State is always re-read fresh; a concurrent accepted
// solve surfaces as ledger.ErrStaleRevision or ErrAlreadySolved.
func (e *Engine) Solve(ctx context.Context, req SolveRequest) (*ledger.Asset, *SolvedEvent, error) {
	asset, event, err := e.solve(ctx, req)
	if err != nil {
		solveFailures.WithLabelValues(failureReason(err)).Inc()
		return nil, nil, err
	}

	solvesProcessed.WithLabelValues(string(event.Rarity)).Inc()
	return asset, event, nil
}

func (e *Engine) solve(ctx context.Context, req SolveRequest) (*ledger.Asset, *SolvedEvent, error) {
	if req.Solver.IsZero() {
		return nil, nil, sphinx.ErrBadIdentity
	}

	asset, err := e.ledger.Asset(ctx, req.Asset)
	if err != nil {
		return nil, nil, err
	}

	inst, err := puzzle.Decode(asset.Attributes)
	if err != nil {
		return nil, nil, err
	}

	if inst.Solved {
		return nil, nil, puzzle.ErrAlreadySolved
	}

	isOwner, err := e.VerifyOwner(ctx, req.Solver, asset)
	if err != nil {
		return nil, nil, err
	}
	if !isOwner {
		return nil, nil, ErrNotNFTOwner
	}

	correct, err := puzzle.VerifySolution(inst, req.Solution)
	if err != nil {
		return nil, nil, err
	}
	if !correct {
		return nil, nil, puzzle.ErrIncorrectSolution
	}

	snapshot, err := e.entropy.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	rarity := puzzle.RarityAt(snapshot.Time)

	updated := *asset
	updated.Attributes = puzzle.MergeUpdate(asset.Attributes, puzzle.AttributeList{
		{Key: puzzle.KeySolved, Value: "true"},
		{Key: puzzle.KeySolver, Value: req.Solver.String()},
		{Key: puzzle.KeySolution, Value: fmt.Sprintf("%d", req.Solution)},
		{Key: puzzle.KeySolveTimestamp, Value: fmt.Sprintf("%d", snapshot.Time.Unix())},
		{Key: puzzle.KeyRarity, Value: string(rarity)},
		{Key: puzzle.KeyHiddenTrait, Value: string(rarity) + " Solver"},
	})
	if req.NewURI != "" {
		updated.URI = req.NewURI
	}

	if err := e.ledger.Update(ctx, &updated, asset.Revision); err != nil {
		return nil, nil, err
	}

	slog.Info("puzzle solved",
		"asset", asset.ID,
		"solver", req.Solver,
		"rarity", rarity,
		"solve_slot", snapshot.Slot,
	)

	return &updated, &SolvedEvent{
		Asset:    asset.ID,
		Solver:   req.Solver,
		SolvedAt: snapshot.Time,
		Rarity:   rarity,
	}, nil
}

// AssetState reads the current ledger record for an asset.
func (e *Engine) AssetState(ctx context.Context, id uuid.UUID) (*ledger.Asset, error) {
	return e.ledger.Asset(ctx, id)
}

// VerifyOwner reports whether claimed is the asset's current owner. When a
// holding record exists its balance must be at least one and it must
// reference this asset. It returns false rather than an error on mismatch
// so callers choose the outgoing error.
func (e *Engine) VerifyOwner(ctx context.Context, claimed sphinx.Identity, asset *ledger.Asset) (bool, error) {
	if asset.Owner != claimed {
		return false, nil
	}

	holding, err := e.ledger.Holding(ctx, claimed, asset.ID)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		// No holding record in play; owner equality decides.
		return true, nil
	case err != nil:
		return false, err
	}

	return holding.Balance >= 1 && holding.Asset == asset.ID, nil
}

// VerifyUpdateAuthority reports whether claimed may perform metadata-only
// updates on the asset. This is a separate capability from ownership.
func (e *Engine) VerifyUpdateAuthority(claimed sphinx.Identity, asset *ledger.Asset) bool {
	return asset.UpdateAuthority == claimed
}

// UpdateURI changes the asset's metadata URI without touching puzzle
// state. Only the update authority may do this.
func (e *Engine) UpdateURI(ctx context.Context, assetID uuid.UUID, authority sphinx.Identity, newURI string) (*ledger.Asset, error) {
	asset, err := e.ledger.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}

	if !e.VerifyUpdateAuthority(authority, asset) {
		return nil, ErrUnauthorizedUpdate
	}

	updated := *asset
	updated.URI = newURI

	if err := e.ledger.Update(ctx, &updated, asset.Revision); err != nil {
		return nil, err
	}

	return &updated, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, puzzle.ErrIncorrectSolution):
		return "incorrect_solution"
	case errors.Is(err, puzzle.ErrAlreadySolved):
		return "already_solved"
	case errors.Is(err, ErrNotNFTOwner):
		return "not_owner"
	case errors.Is(err, puzzle.ErrInvalidPuzzleType):
		return "invalid_puzzle_type"
	case errors.Is(err, puzzle.ErrFailedToParsePuzzleData):
		return "parse_failure"
	case errors.Is(err, puzzle.ErrPuzzleNotFound), errors.Is(err, puzzle.ErrAttributeNotFound):
		return "missing_attribute"
	case errors.Is(err, ledger.ErrStaleRevision):
		return "stale_revision"
	case errors.Is(err, ledger.ErrNotFound):
		return "asset_not_found"
	case errors.Is(err, ledger.ErrInvalidAssetData):
		return "invalid_asset_data"
	case errors.Is(err, sphinx.ErrBadIdentity):
		return "bad_identity"
	default:
		return "other"
	}
}

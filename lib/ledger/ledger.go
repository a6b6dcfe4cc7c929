// Package ledger is the asset ledger: it stores one attribute list per
// asset in a pluggable byte store and executes state-changing calls one at
// a time, rejecting writes made against stale state.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/internal/actor"
	"github.com/glyphforge/sphinx/lib/puzzle"
)

var (
	// ErrInvalidAssetData means the stored asset record is malformed.
	ErrInvalidAssetData = errors.New("ledger: invalid asset data")

	// ErrAssetExists rejects minting over an existing asset ID.
	ErrAssetExists = errors.New("ledger: asset already exists")

	// ErrStaleRevision rejects an update computed from attributes that
	// another accepted call has since replaced. Callers must re-read and
	// retry from fresh state.
	ErrStaleRevision = errors.New("ledger: asset revision is stale")
)

// Asset is one collectible's ledger record.
type Asset struct {
	ID              uuid.UUID            `json:"id"`
	Name            string               `json:"name"`
	URI             string               `json:"uri"`
	Owner           sphinx.Identity      `json:"owner"`
	UpdateAuthority sphinx.Identity      `json:"updateAuthority"`
	Attributes      puzzle.AttributeList `json:"attributes"`
	Revision        uint64               `json:"revision"`
	MintedAt        time.Time            `json:"mintedAt"`
}

// Holding is the token-account analog: who holds how much of which asset.
// When a holding record exists for an asset, ownership checks require a
// balance of at least one.
type Holding struct {
	Holder  sphinx.Identity `json:"holder"`
	Asset   uuid.UUID       `json:"asset"`
	Balance uint64          `json:"balance"`
}

type unit struct{}

// Ledger wraps a byte store with asset record encoding and a single write
// actor, so at most one state-changing call commits per instant.
type Ledger struct {
	store  Interface
	writes *actor.Actor[*writeReq, unit]
	cancel context.CancelFunc
}

type writeReq struct {
	// exactly one of these is set
	create  *Asset
	update  *Asset
	holding *Holding

	expectedRevision uint64
}

func New(store Interface) *Ledger {
	ctx, cancel := context.WithCancel(context.Background())

	l := &Ledger{
		store:  store,
		cancel: cancel,
	}
	l.writes = actor.New(ctx, l.apply)

	return l
}

func (l *Ledger) Close() { l.cancel() }

func assetKey(id uuid.UUID) string {
	return "asset:" + id.String()
}

func holdingKey(holder sphinx.Identity, asset uuid.UUID) string {
	return "holding:" + holder.String() + ":" + asset.String()
}

// Asset reads the current record for an asset.
func (l *Ledger) Asset(ctx context.Context, id uuid.UUID) (*Asset, error) {
	data, err := l.store.Get(ctx, assetKey(id))
	if err != nil {
		return nil, err
	}

	var result Asset
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetData, err)
	}

	return &result, nil
}

// Holding reads a holder's record for an asset, if any.
func (l *Ledger) Holding(ctx context.Context, holder sphinx.Identity, asset uuid.UUID) (*Holding, error) {
	data, err := l.store.Get(ctx, holdingKey(holder, asset))
	if err != nil {
		return nil, err
	}

	var result Holding
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetData, err)
	}

	return &result, nil
}

// Create persists a new asset at revision 1. The ID must be unused.
func (l *Ledger) Create(ctx context.Context, asset *Asset) error {
	_, err := l.writes.Call(ctx, &writeReq{create: asset})
	return err
}

// Update replaces an asset record, but only if the stored revision still
// matches expectedRevision. On success the asset's revision is bumped.
func (l *Ledger) Update(ctx context.Context, asset *Asset, expectedRevision uint64) error {
	_, err := l.writes.Call(ctx, &writeReq{update: asset, expectedRevision: expectedRevision})
	return err
}

// SetHolding writes a holding record.
func (l *Ledger) SetHolding(ctx context.Context, holding *Holding) error {
	_, err := l.writes.Call(ctx, &writeReq{holding: holding})
	return err
}

// apply runs inside the write actor; it is the only code path that mutates
// the store, which is what makes the revision check meaningful.
func (l *Ledger) apply(ctx context.Context, req *writeReq) (unit, error) {
	switch {
	case req.create != nil:
		return unit{}, l.applyCreate(ctx, req.create)
	case req.update != nil:
		return unit{}, l.applyUpdate(ctx, req.update, req.expectedRevision)
	case req.holding != nil:
		return unit{}, l.put(ctx, holdingKey(req.holding.Holder, req.holding.Asset), req.holding)
	default:
		return unit{}, errors.New("ledger: empty write request")
	}
}

func (l *Ledger) applyCreate(ctx context.Context, asset *Asset) error {
	if _, err := l.store.Get(ctx, assetKey(asset.ID)); err == nil {
		return fmt.Errorf("%w: %s", ErrAssetExists, asset.ID)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	asset.Revision = 1
	return l.put(ctx, assetKey(asset.ID), asset)
}

func (l *Ledger) applyUpdate(ctx context.Context, asset *Asset, expectedRevision uint64) error {
	current, err := l.Asset(ctx, asset.ID)
	if err != nil {
		return err
	}

	if current.Revision != expectedRevision {
		return fmt.Errorf("%w: want revision %d, have %d", ErrStaleRevision, expectedRevision, current.Revision)
	}

	asset.Revision = expectedRevision + 1
	return l.put(ctx, assetKey(asset.ID), asset)
}

func (l *Ledger) put(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssetData, err)
	}

	return l.store.Set(ctx, key, data, 0)
}

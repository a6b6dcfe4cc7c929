// Package entropy supplies the slot counter and timestamp that seed puzzle
// generation and rarity assignment. It is a read-only collaborator: sources
// observe time, they never mutate anything.
package entropy

import (
	"context"
	"time"
)

// Snapshot is one observation of the ambient entropy. Slot is a monotonic
// counter and Time is the matching wall-clock reading. Neither is secret or
// adversarially strong; see the rarity docs.
type Snapshot struct {
	Slot uint64
	Time time.Time
}

// Source produces entropy snapshots. Implementations backed by a remote
// chain should honor the context; the system source never blocks.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

type systemSource struct {
	interval time.Duration
}

// System returns a Source whose slot advances once per interval of wall
// time, counted from the Unix epoch. With the same interval, two processes
// observe the same slot at the same instant, which is as close to a shared
// chain slot as a standalone deployment gets.
func System(interval time.Duration) Source {
	if interval <= 0 {
		interval = 400 * time.Millisecond
	}

	return &systemSource{interval: interval}
}

func (s *systemSource) Snapshot(ctx context.Context) (Snapshot, error) {
	now := time.Now()
	return Snapshot{
		Slot: uint64(now.UnixNano() / int64(s.interval)),
		Time: now,
	}, nil
}

// Fixed is a Source that always reports the same snapshot. Tests use it to
// make generation and rarity deterministic.
type Fixed Snapshot

func (f Fixed) Snapshot(ctx context.Context) (Snapshot, error) {
	return Snapshot(f), nil
}

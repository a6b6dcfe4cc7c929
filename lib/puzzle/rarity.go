package puzzle

import (
	"fmt"
	"time"
)

// Rarity is the tier a solve event lands in.
type Rarity string

const (
	RarityLegendary Rarity = "Legendary"
	RarityEpic      Rarity = "Epic"
	RarityRare      Rarity = "Rare"
	RarityCommon    Rarity = "Common"
)

// RarityAt buckets a timestamp into a tier: unix mod 100 under 10 is
// Legendary, under 30 Epic, under 60 Rare, otherwise Common.
//
// The submitter can observe (and in adversarial settings influence) the
// timestamp, so this is not a fair lottery. That weakness is inherited
// from the scheme on purpose rather than hidden.
func RarityAt(t time.Time) Rarity {
	switch bucket := t.Unix() % 100; {
	case bucket < 10:
		return RarityLegendary
	case bucket < 30:
		return RarityEpic
	case bucket < 60:
		return RarityRare
	default:
		return RarityCommon
	}
}

// ParseRarity validates the wire form of a tier.
func ParseRarity(s string) (Rarity, error) {
	switch r := Rarity(s); r {
	case RarityLegendary, RarityEpic, RarityRare, RarityCommon:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown rarity %q", ErrFailedToParsePuzzleData, s)
	}
}

package rating

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// ErrUnknownTier is returned for a tier token missing from the table.
var ErrUnknownTier = errors.New("unknown skill tier")

// Tiers maps a skill-tier token to its starting rating.
type Tiers map[string]int

// DefaultTiers returns the built-in competitive tier table.
func DefaultTiers() Tiers {
	return Tiers{
		"bronze1": 640,
		"bronze2": 670,
		"bronze3": 710,
		"silver1": 800,
		"silver2": 830,
		"silver3": 860,
		"gold1":   960,
		"gold2":   990,
		"gold3":   1020,
		"plat1":   1050,
		"plat2":   1080,
		"plat3":   1110,
	}
}

// Resolve returns the rating for token. Matching ignores case and spaces.
func (t Tiers) Resolve(token string) (int, error) {
	r, ok := t[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, token)
	}
	return r, nil
}

// Names lists the tiers ordered by rating, then name.
func (t Tiers) Names() []string {
	names := lo.Keys(t)
	slices.SortFunc(names, func(a, b string) int {
		if t[a] != t[b] {
			return t[a] - t[b]
		}
		return strings.Compare(a, b)
	})
	return names
}

// Validate rejects empty tables and non-positive ratings.
func (t Tiers) Validate() error {
	if len(t) == 0 {
		return errors.New("tier table is empty")
	}
	for name, r := range t {
		if r <= 0 {
			return fmt.Errorf("tier %q has non-positive rating %d", name, r)
		}
	}
	return nil
}

// Normalize lowercases every key so Resolve can match them.
func (t Tiers) Normalize() Tiers {
	return lo.MapKeys(t, func(_ int, k string) string { return strings.ToLower(strings.TrimSpace(k)) })
}

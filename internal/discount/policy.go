package discount

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognised names.
var ErrUnknownPolicy = errors.New("unknown tier policy")

// Policy chooses which tier, if any, applies to a line quantity.
type Policy string

const (
	// PolicyExact applies the first tier whose quantity equals the line quantity.
	PolicyExact Policy = "exact"
	// PolicyBestMatch applies the tier with the largest quantity not above the line
	// quantity. Equal thresholds resolve to the tier listed last.
	PolicyBestMatch Policy = "best_match"

	// DefaultPolicy is used when no policy is configured.
	DefaultPolicy = PolicyBestMatch
)

// ParsePolicy maps a configuration value to a Policy. Blank values yield DefaultPolicy.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return DefaultPolicy, nil
	case "exact", "exact_match", "exact-match":
		return PolicyExact, nil
	case "best_match", "best-match", "at_least", "at-least":
		return PolicyBestMatch, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, value)
	}
}

// String implements fmt.Stringer.
func (p Policy) String() string {
	if p == "" {
		return string(DefaultPolicy)
	}
	return string(p)
}

// Select returns the tier applicable to quantity under the policy. Unknown policies
// select nothing.
func (p Policy) Select(tiers []Tier, quantity int) (Tier, bool) {
	switch p {
	case PolicyExact:
		return selectExact(tiers, quantity)
	case PolicyBestMatch:
		return selectBestMatch(tiers, quantity)
	default:
		return Tier{}, false
	}
}

func selectExact(tiers []Tier, quantity int) (Tier, bool) {
	for _, t := range tiers {
		if t.Quantity == quantity {
			return t, true
		}
	}
	return Tier{}, false
}

func selectBestMatch(tiers []Tier, quantity int) (Tier, bool) {
	var (
		best  Tier
		found bool
	)
	for _, t := range tiers {
		if quantity < t.Quantity {
			continue
		}
		if !found || t.Quantity >= best.Quantity {
			best = t
			found = true
		}
	}
	return best, found
}

// Package combo defines the best-combination domain model shared by the
// client components: fetch options, combinations, packages and the
// server's result variants.
package combo

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultLimit is the number of combinations requested when the caller does
// not specify one.
const DefaultLimit = 3

// Limit bounds accepted by the server.
const (
	MinLimit = 1
	MaxLimit = 5
)

// Level is a coverage level for one sub-dimension (live or highlight).
type Level int

const (
	LevelNone    Level = 0
	LevelPartial Level = 1
	LevelFull    Level = 2
)

// String returns a short label for the level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelPartial:
		return "partial"
	case LevelFull:
		return "full"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// CoverageValue is the [live, highlight] pair reported per coverage key.
type CoverageValue struct {
	Live      Level
	Highlight Level
}

// NoCoverage is the value used when a package does not address a key.
var NoCoverage = CoverageValue{}

// UnmarshalJSON decodes the wire form [live, highlight]. Missing entries
// default to zero.
func (v *CoverageValue) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("coverage value: %w", err)
	}
	*v = CoverageValue{}
	if len(pair) > 0 {
		v.Live = Level(pair[0])
	}
	if len(pair) > 1 {
		v.Highlight = Level(pair[1])
	}
	return nil
}

// MarshalJSON encodes the pair back to [live, highlight].
func (v CoverageValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{int(v.Live), int(v.Highlight)})
}

// Package is one streaming package inside a combination.
type Package struct {
	Name                                  string                   `json:"name"`
	Coverage                              map[string]CoverageValue `json:"coverage"`
	MonthlyPriceCents                     *int                     `json:"monthlyPriceCents"`
	MonthlyPriceYearlySubscriptionInCents int                      `json:"monthlyPriceYearlySubscriptionInCents"`
}

// Combination is a candidate bundle of packages. Index is the server rank,
// 0 being the best.
type Combination struct {
	Index                                         int       `json:"index"`
	CombinedCoverage                              float64   `json:"combinedCoverage"`
	CombinedMonthlyPriceCents                     int       `json:"combinedMonthlyPriceCents"`
	CombinedMonthlyPriceYearlySubscriptionInCents int       `json:"combinedMonthlyPriceYearlySubscriptionInCents"`
	Packages                                      []Package `json:"packages"`
}

// FetchOptions bounds how many combinations the server may return.
type FetchOptions struct {
	Limit int `json:"limit" validate:"min=1,max=5"`
}

// DefaultOptions returns options with DefaultLimit.
func DefaultOptions() FetchOptions {
	return FetchOptions{Limit: DefaultLimit}
}

// SortByIndex returns a copy of cs ordered by ascending Index.
// The input slice is not modified.
func SortByIndex(cs []Combination) []Combination {
	out := make([]Combination, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})
	return out
}

// Clone returns a deep copy of the combination list so callers cannot
// mutate a stored READY result.
func Clone(cs []Combination) []Combination {
	if cs == nil {
		return nil
	}
	out := make([]Combination, len(cs))
	for i, c := range cs {
		out[i] = c
		out[i].Packages = make([]Package, len(c.Packages))
		for j, p := range c.Packages {
			cp := p
			if p.Coverage != nil {
				cp.Coverage = make(map[string]CoverageValue, len(p.Coverage))
				for k, v := range p.Coverage {
					cp.Coverage[k] = v
				}
			}
			if p.MonthlyPriceCents != nil {
				price := *p.MonthlyPriceCents
				cp.MonthlyPriceCents = &price
			}
			out[i].Packages[j] = cp
		}
	}
	return out
}

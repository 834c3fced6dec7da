package ration

import (
	"strings"

	"github.com/iwvelando/ration-formulator/pkg/constants"
)

const (
	ActivityLow      = "low"
	ActivityModerate = "moderate"
	ActivityHigh     = "high"
)

var activityMultipliers = map[string]float64{
	ActivityLow:      0.1,
	ActivityModerate: 0.25,
	ActivityHigh:     0.5,
}

// ActivityMultiplier returns the requirement boost for an activity level.
// Matching is case-insensitive; unknown or empty levels yield 0 and false.
func ActivityMultiplier(activity string) (float64, bool) {
	multiplier, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(activity))]
	return multiplier, ok
}

// Scale converts a baseline defined at the reference weight into absolute
// targets for the given weight and activity:
//
//	target = baseline * (weight / 500) * (1 + multiplier)
func Scale(baseline Nutrients, weight float64, activity string) Nutrients {
	multiplier, _ := ActivityMultiplier(activity)
	factor := weight / constants.ReferenceWeight * (1 + multiplier)
	return Nutrients{
		Protein: baseline.Protein * factor,
		Fiber:   baseline.Fiber * factor,
	}
}

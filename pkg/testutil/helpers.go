// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/ration-formulator/internal/ration"
)

// FindResult finds a result by ration name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []ration.Result, name string) *ration.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindAllocation returns the allocation for an ingredient, or nil when the
// result does not mention it.
func FindAllocation(result *ration.Result, ingredient string) *ration.Allocation {
	if result == nil {
		return nil
	}
	for i := range result.Allocations {
		if result.Allocations[i].Name == ingredient {
			return &result.Allocations[i]
		}
	}
	return nil
}

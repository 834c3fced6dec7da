// Package ration formulates least-cost feed rations. It scales per-animal
// nutrient requirements, builds a linear program over the available
// ingredients, hands it to an LP solver and interprets the outcome into
// ingredient quantities and a total cost.
package ration

import (
	"context"
	"sort"
)

// AnimalCategory identifies a requirement record.
type AnimalCategory string

const (
	Cattle  AnimalCategory = "cattle"
	Poultry AnimalCategory = "poultry"
	Goat    AnimalCategory = "goat"
)

var animalCategories = []AnimalCategory{Cattle, Poultry, Goat}

// AnimalCategories returns the supported categories in a stable order.
func AnimalCategories() []AnimalCategory {
	return append([]AnimalCategory(nil), animalCategories...)
}

// Valid reports whether the category is one of the supported categories.
func (a AnimalCategory) Valid() bool {
	for _, category := range animalCategories {
		if a == category {
			return true
		}
	}
	return false
}

// Ingredient is a feed ingredient with nutrient content per mass unit and a
// base cost per mass unit.
type Ingredient struct {
	Name    string  `json:"name" yaml:"name"`
	Protein float64 `json:"protein" yaml:"protein"`
	Fiber   float64 `json:"fiber" yaml:"fiber"`
	Cost    float64 `json:"cost" yaml:"cost"`
}

// Nutrients holds protein and fiber amounts.
type Nutrients struct {
	Protein float64 `json:"protein" yaml:"protein"`
	Fiber   float64 `json:"fiber" yaml:"fiber"`
}

// NutrientRequirement holds the baseline targets for an animal category at
// the reference weight, plus optional minimum purchase quantities keyed by
// ingredient name.
type NutrientRequirement struct {
	Animal   AnimalCategory
	Baseline Nutrients
	Minimums map[string]float64
}

// IngredientSource supplies an ordered list of uniquely named ingredients.
// Implementations must return a slice the caller may keep.
type IngredientSource interface {
	Ingredients(ctx context.Context) ([]Ingredient, error)
}

// RequirementSource supplies the requirement record for an animal category.
// A missing record is reported with an error wrapping ErrRequirementNotFound.
type RequirementSource interface {
	Requirement(ctx context.Context, animal AnimalCategory) (NutrientRequirement, error)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Package catalog holds the in-memory ingredient and requirement data the
// engine formulates against. A Catalog is immutable after construction and
// hands out copies, so it is safe to share between goroutines.
package catalog

import (
	"context"
	"fmt"

	"github.com/iwvelando/ration-formulator/internal/config"
	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/iwvelando/ration-formulator/pkg/mathutil"
)

// Catalog implements ration.IngredientSource and ration.RequirementSource.
type Catalog struct {
	ingredients  []ration.Ingredient
	requirements map[ration.AnimalCategory]ration.NutrientRequirement
}

var (
	_ ration.IngredientSource  = (*Catalog)(nil)
	_ ration.RequirementSource = (*Catalog)(nil)
)

// DefaultIngredients returns the built-in ingredient list.
func DefaultIngredients() []ration.Ingredient {
	return []ration.Ingredient{
		{Name: "Corn", Protein: 7.5, Fiber: 10, Cost: 70},
		{Name: "Soybean Meal", Protein: 48, Fiber: 6, Cost: 180},
		{Name: "Wheat Bran", Protein: 18, Fiber: 44, Cost: 45},
	}
}

// DefaultRequirements returns the built-in requirement records, defined at
// the reference weight and without minimum purchase floors.
func DefaultRequirements() []ration.NutrientRequirement {
	return []ration.NutrientRequirement{
		{Animal: ration.Cattle, Baseline: ration.Nutrients{Protein: 700, Fiber: 3000}},
		{Animal: ration.Poultry, Baseline: ration.Nutrients{Protein: 170, Fiber: 30}},
		{Animal: ration.Goat, Baseline: ration.Nutrients{Protein: 350, Fiber: 400}},
	}
}

// New validates and copies the given data into a Catalog.
func New(ingredients []ration.Ingredient, requirements []ration.NutrientRequirement) (*Catalog, error) {
	c := &Catalog{
		ingredients:  make([]ration.Ingredient, 0, len(ingredients)),
		requirements: make(map[ration.AnimalCategory]ration.NutrientRequirement, len(requirements)),
	}

	names := make(map[string]struct{}, len(ingredients))
	for _, ingredient := range ingredients {
		if ingredient.Name == "" {
			return nil, fmt.Errorf("ingredient without a name")
		}
		if _, exists := names[ingredient.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ration.ErrDuplicateIngredient, ingredient.Name)
		}
		names[ingredient.Name] = struct{}{}
		for label, value := range map[string]float64{
			"protein": ingredient.Protein,
			"fiber":   ingredient.Fiber,
			"cost":    ingredient.Cost,
		} {
			if !mathutil.IsFinite(value) || value < 0 {
				return nil, fmt.Errorf("ingredient %q has invalid %s %g", ingredient.Name, label, value)
			}
		}
		c.ingredients = append(c.ingredients, ingredient)
	}

	for _, requirement := range requirements {
		if !requirement.Animal.Valid() {
			return nil, fmt.Errorf("requirement for unsupported animal %q", requirement.Animal)
		}
		if _, exists := c.requirements[requirement.Animal]; exists {
			return nil, fmt.Errorf("requirement for %q is defined more than once", requirement.Animal)
		}
		if !mathutil.IsFinite(requirement.Baseline.Protein) || requirement.Baseline.Protein < 0 ||
			!mathutil.IsFinite(requirement.Baseline.Fiber) || requirement.Baseline.Fiber < 0 {
			return nil, fmt.Errorf("requirement for %q has invalid baseline", requirement.Animal)
		}
		for name, quantity := range requirement.Minimums {
			if _, ok := names[name]; !ok {
				return nil, fmt.Errorf("requirement for %q has a minimum for unknown ingredient %q", requirement.Animal, name)
			}
			if !mathutil.IsFinite(quantity) || quantity < 0 {
				return nil, fmt.Errorf("requirement for %q has invalid minimum %g for %q", requirement.Animal, quantity, name)
			}
		}
		requirement.Minimums = copyMinimums(requirement.Minimums)
		c.requirements[requirement.Animal] = requirement
	}

	return c, nil
}

// FromConfig builds a Catalog from the configuration, using the built-in
// data for any section the configuration leaves empty.
func FromConfig(conf *config.Configuration) (*Catalog, error) {
	if conf == nil {
		return New(DefaultIngredients(), DefaultRequirements())
	}

	ingredients := DefaultIngredients()
	if len(conf.Ingredients) > 0 {
		ingredients = make([]ration.Ingredient, 0, len(conf.Ingredients))
		for _, ic := range conf.Ingredients {
			ingredients = append(ingredients, ration.Ingredient{
				Name:    ic.Name,
				Protein: ic.Protein,
				Fiber:   ic.Fiber,
				Cost:    ic.Cost,
			})
		}
	}

	requirements := DefaultRequirements()
	if len(conf.Requirements) > 0 {
		requirements = make([]ration.NutrientRequirement, 0, len(conf.Requirements))
		for _, rc := range conf.Requirements {
			requirement := ration.NutrientRequirement{
				Animal:   ration.AnimalCategory(rc.Animal),
				Baseline: ration.Nutrients{Protein: rc.Protein, Fiber: rc.Fiber},
			}
			if len(rc.Minimums) > 0 {
				requirement.Minimums = make(map[string]float64, len(rc.Minimums))
				for _, minimum := range rc.Minimums {
					requirement.Minimums[minimum.Ingredient] = minimum.Quantity
				}
			}
			requirements = append(requirements, requirement)
		}
	}

	return New(ingredients, requirements)
}

// Ingredients returns a copy of the catalog's ingredients in catalog order.
func (c *Catalog) Ingredients(ctx context.Context) ([]ration.Ingredient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]ration.Ingredient(nil), c.ingredients...), nil
}

// Requirement returns a copy of the record for animal.
func (c *Catalog) Requirement(ctx context.Context, animal ration.AnimalCategory) (ration.NutrientRequirement, error) {
	if err := ctx.Err(); err != nil {
		return ration.NutrientRequirement{}, err
	}
	requirement, ok := c.requirements[animal]
	if !ok {
		return ration.NutrientRequirement{}, fmt.Errorf("%w: %s", ration.ErrRequirementNotFound, animal)
	}
	requirement.Minimums = copyMinimums(requirement.Minimums)
	return requirement, nil
}

// Requirements returns copies of every record in category order.
func (c *Catalog) Requirements() []ration.NutrientRequirement {
	var out []ration.NutrientRequirement
	for _, animal := range ration.AnimalCategories() {
		requirement, ok := c.requirements[animal]
		if !ok {
			continue
		}
		requirement.Minimums = copyMinimums(requirement.Minimums)
		out = append(out, requirement)
	}
	return out
}

func copyMinimums(minimums map[string]float64) map[string]float64 {
	if minimums == nil {
		return nil
	}
	out := make(map[string]float64, len(minimums))
	for name, quantity := range minimums {
		out[name] = quantity
	}
	return out
}

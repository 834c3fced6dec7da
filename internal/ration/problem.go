package ration

import (
	"fmt"
	"math"

	"github.com/iwvelando/ration-formulator/pkg/mathutil"
)

const (
	RowProtein = "protein"
	RowFiber   = "fiber"
)

// Bound limits the quantity of one ingredient. Upper is +Inf when unbounded.
type Bound struct {
	Lower float64
	Upper float64
}

// Constraint is one row of A·x <= b.
type Constraint struct {
	Name         string
	Coefficients []float64
	Bound        float64
}

// Problem is a least-cost ration expressed as a linear program:
//
//	minimize   Costs·x
//	subject to Rows[i].Coefficients·x <= Rows[i].Bound
//	           Bounds[j].Lower <= x[j] <= Bounds[j].Upper
//
// Ingredients fixes the column order of every vector.
type Problem struct {
	Ingredients []Ingredient
	Costs       []float64
	Rows        []Constraint
	Bounds      []Bound
	Target      Nutrients

	// IgnoredOverrides lists price override names that matched no ingredient.
	IgnoredOverrides []string
}

// BuildOptions carries the per-call adjustments to a problem.
type BuildOptions struct {
	PriceOverrides map[string]float64
	Minimums       map[string]float64
	UpperBounds    map[string]float64
}

// Build assembles the linear program for the given ingredients and target.
// Nutrient "at least" constraints are encoded as negated "at most" rows.
// Price overrides naming unknown ingredients are ignored and reported in
// IgnoredOverrides; minimums and upper bounds must name known ingredients.
func Build(ingredients []Ingredient, target Nutrients, opts BuildOptions) (*Problem, error) {
	if len(ingredients) == 0 {
		return nil, invalidInput("at least one ingredient is required")
	}
	if err := checkQuantity("protein target", target.Protein); err != nil {
		return nil, err
	}
	if err := checkQuantity("fiber target", target.Fiber); err != nil {
		return nil, err
	}

	n := len(ingredients)
	index := make(map[string]int, n)
	problem := &Problem{
		Ingredients: append([]Ingredient(nil), ingredients...),
		Costs:       make([]float64, n),
		Bounds:      make([]Bound, n),
		Target:      target,
	}
	for j, ingredient := range problem.Ingredients {
		if _, exists := index[ingredient.Name]; exists {
			return nil, internalError(fmt.Errorf("%w: %s", ErrDuplicateIngredient, ingredient.Name))
		}
		index[ingredient.Name] = j
		problem.Costs[j] = ingredient.Cost
		problem.Bounds[j] = Bound{Lower: 0, Upper: math.Inf(1)}
	}

	for _, name := range sortedKeys(opts.PriceOverrides) {
		price := opts.PriceOverrides[name]
		if err := checkQuantity(fmt.Sprintf("price override for %q", name), price); err != nil {
			return nil, err
		}
		j, ok := index[name]
		if !ok {
			problem.IgnoredOverrides = append(problem.IgnoredOverrides, name)
			continue
		}
		problem.Costs[j] = price
	}

	protein := make([]float64, n)
	fiber := make([]float64, n)
	for j, ingredient := range problem.Ingredients {
		protein[j] = -ingredient.Protein
		fiber[j] = -ingredient.Fiber
	}
	problem.Rows = append(problem.Rows,
		Constraint{Name: RowProtein, Coefficients: protein, Bound: -target.Protein},
		Constraint{Name: RowFiber, Coefficients: fiber, Bound: -target.Fiber},
	)

	if err := checkNames("minimum", opts.Minimums, index); err != nil {
		return nil, err
	}
	for j, ingredient := range problem.Ingredients {
		minimum, ok := opts.Minimums[ingredient.Name]
		if !ok {
			continue
		}
		row := make([]float64, n)
		row[j] = -1
		problem.Rows = append(problem.Rows, Constraint{
			Name:         "minimum:" + ingredient.Name,
			Coefficients: row,
			Bound:        -minimum,
		})
	}

	if err := checkNames("upper bound", opts.UpperBounds, index); err != nil {
		return nil, err
	}
	for name, upper := range opts.UpperBounds {
		j := index[name]
		if upper < problem.Bounds[j].Upper {
			problem.Bounds[j].Upper = upper
		}
	}

	if err := problem.Validate(); err != nil {
		return nil, internalError(err)
	}
	return problem, nil
}

// Validate checks that every vector of the problem matches the ingredient
// count. A failure indicates a defect in problem construction.
func (p *Problem) Validate() error {
	n := len(p.Ingredients)
	if n == 0 {
		return fmt.Errorf("%w: no ingredients", ErrInvariantViolation)
	}
	if len(p.Costs) != n {
		return fmt.Errorf("%w: %d costs for %d ingredients", ErrInvariantViolation, len(p.Costs), n)
	}
	if len(p.Bounds) != n {
		return fmt.Errorf("%w: %d bounds for %d ingredients", ErrInvariantViolation, len(p.Bounds), n)
	}
	for _, row := range p.Rows {
		if len(row.Coefficients) != n {
			return fmt.Errorf("%w: row %s has %d coefficients for %d ingredients",
				ErrInvariantViolation, row.Name, len(row.Coefficients), n)
		}
	}
	for j, bound := range p.Bounds {
		if bound.Lower < 0 || bound.Upper < bound.Lower {
			return fmt.Errorf("%w: bound [%g, %g] for %s",
				ErrInvariantViolation, bound.Lower, bound.Upper, p.Ingredients[j].Name)
		}
	}
	return nil
}

// A returns the constraint matrix in row order.
func (p *Problem) A() [][]float64 {
	a := make([][]float64, len(p.Rows))
	for i, row := range p.Rows {
		a[i] = row.Coefficients
	}
	return a
}

// B returns the right-hand side vector in row order.
func (p *Problem) B() []float64 {
	b := make([]float64, len(p.Rows))
	for i, row := range p.Rows {
		b[i] = row.Bound
	}
	return b
}

func checkQuantity(label string, value float64) error {
	if !mathutil.IsFinite(value) {
		return invalidInput("%s must be a finite number", label)
	}
	if value < 0 {
		return invalidInput("%s must be non-negative, got %g", label, value)
	}
	return nil
}

func checkNames(kind string, values map[string]float64, index map[string]int) error {
	for _, name := range sortedKeys(values) {
		if _, ok := index[name]; !ok {
			return invalidInput("%s references unknown ingredient %q", kind, name)
		}
		if err := checkQuantity(fmt.Sprintf("%s for %q", kind, name), values[name]); err != nil {
			return err
		}
	}
	return nil
}

package ration

import (
	"fmt"

	"github.com/iwvelando/ration-formulator/pkg/constants"
	"github.com/iwvelando/ration-formulator/pkg/mathutil"
)

// Allocation is the reported quantity of one ingredient.
type Allocation struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unit_cost"`
	Cost     float64 `json:"cost"`
}

// Solution is a successful formulation. Quantities and costs are rounded to
// two decimals and never negative.
type Solution struct {
	Quantities  map[string]float64
	Allocations []Allocation
	TotalCost   float64
	Objective   float64
	Target      Nutrients
	Supplied    Nutrients
}

// Interpret maps a solver outcome back onto the problem's ingredients.
// Quantities below epsilon, including negative numerical noise, are reported
// as zero. TotalCost is computed from the reported quantities so it always
// agrees with them; Objective is the solver's own rounded value.
func Interpret(outcome Outcome, problem *Problem, epsilon float64) (*Solution, error) {
	switch outcome.Status {
	case StatusOptimal:
	case StatusInfeasible, StatusUnbounded:
		return nil, infeasible(outcome.Err)
	case StatusNumericalError:
		return nil, solverError(outcome.Err)
	default:
		return nil, internalError(fmt.Errorf("unknown solver status %s", outcome.Status))
	}

	if problem == nil {
		return nil, internalError(fmt.Errorf("%w: nil problem", ErrInvariantViolation))
	}
	if len(outcome.X) != len(problem.Ingredients) {
		return nil, internalError(fmt.Errorf("%w: solution has %d values for %d ingredients",
			ErrInvariantViolation, len(outcome.X), len(problem.Ingredients)))
	}
	if epsilon <= 0 {
		epsilon = constants.QuantityEpsilon
	}

	solution := &Solution{
		Quantities:  make(map[string]float64, len(problem.Ingredients)),
		Allocations: make([]Allocation, 0, len(problem.Ingredients)),
		Objective:   mathutil.Round(outcome.Objective),
		Target: Nutrients{
			Protein: mathutil.Round(problem.Target.Protein),
			Fiber:   mathutil.Round(problem.Target.Fiber),
		},
	}

	total := 0.0
	var supplied Nutrients
	for i, ingredient := range problem.Ingredients {
		quantity := mathutil.Round(mathutil.SnapToZero(outcome.X[i], epsilon))
		cost := problem.Costs[i] * quantity
		total += cost
		supplied.Protein += ingredient.Protein * quantity
		supplied.Fiber += ingredient.Fiber * quantity

		solution.Quantities[ingredient.Name] = quantity
		solution.Allocations = append(solution.Allocations, Allocation{
			Name:     ingredient.Name,
			Quantity: quantity,
			UnitCost: problem.Costs[i],
			Cost:     mathutil.Round(cost),
		})
	}
	solution.TotalCost = mathutil.Round(total)
	solution.Supplied = Nutrients{
		Protein: mathutil.Round(supplied.Protein),
		Fiber:   mathutil.Round(supplied.Fiber),
	}
	return solution, nil
}

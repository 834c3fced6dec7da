package ration

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/ration-formulator/pkg/constants"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// SimplexSolver solves ration problems with gonum's simplex implementation,
// which uses Bland's rule and is therefore deterministic for a given input.
type SimplexSolver struct {
	Tolerance float64
}

// NewSimplexSolver returns a SimplexSolver. A non-positive tolerance selects
// the default.
func NewSimplexSolver(tolerance float64) *SimplexSolver {
	if tolerance <= 0 {
		tolerance = constants.DefaultSolverTolerance
	}
	return &SimplexSolver{Tolerance: tolerance}
}

type stdRow struct {
	coefficients []float64
	rhs          float64
}

// Solve converts the problem to standard form
//
//	minimize c·z  subject to  [A | I]·z = b,  z >= 0
//
// with one slack column per row, finite upper bounds added as rows and lower
// bounds shifted out, then runs lp.Simplex.
func (s *SimplexSolver) Solve(ctx context.Context, problem *Problem) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Status: StatusNumericalError, Err: fmt.Errorf("simplex panic: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusNumericalError, Err: err}
	}
	if err := problem.Validate(); err != nil {
		return Outcome{Status: StatusNumericalError, Err: err}
	}

	n := len(problem.Ingredients)
	lower := make([]float64, n)
	constant := 0.0
	for j, bound := range problem.Bounds {
		lower[j] = bound.Lower
		constant += problem.Costs[j] * bound.Lower
	}

	rows := make([]stdRow, 0, len(problem.Rows)+n)
	for _, row := range problem.Rows {
		rhs := row.Bound
		for j, a := range row.Coefficients {
			rhs -= a * lower[j]
		}
		rows = append(rows, stdRow{coefficients: row.Coefficients, rhs: rhs})
	}
	for j, bound := range problem.Bounds {
		if math.IsInf(bound.Upper, 1) {
			continue
		}
		coefficients := make([]float64, n)
		coefficients[j] = 1
		rows = append(rows, stdRow{coefficients: coefficients, rhs: bound.Upper - bound.Lower})
	}

	// A row with no coefficients either always holds or can never hold.
	kept := rows[:0]
	for _, row := range rows {
		if !allZero(row.coefficients) {
			kept = append(kept, row)
			continue
		}
		if row.rhs < 0 {
			return Outcome{Status: StatusInfeasible, Err: lp.ErrInfeasible}
		}
	}
	rows = kept

	// The lower-bound point is optimal whenever it is feasible and no cost is
	// negative.
	originFeasible := true
	for _, row := range rows {
		if row.rhs < 0 {
			originFeasible = false
			break
		}
	}
	nonNegativeCosts := true
	for _, cost := range problem.Costs {
		if cost < 0 {
			nonNegativeCosts = false
			break
		}
	}
	if originFeasible && nonNegativeCosts {
		return Outcome{Status: StatusOptimal, X: lower, Objective: constant}
	}

	// Columns that appear in no row would make A rank-deficient for lp.Simplex.
	// They stay at their lower bound unless their cost makes the problem
	// unbounded.
	var active []int
	for j := 0; j < n; j++ {
		used := false
		for _, row := range rows {
			if row.coefficients[j] != 0 {
				used = true
				break
			}
		}
		if used {
			active = append(active, j)
			continue
		}
		if problem.Costs[j] < 0 {
			return Outcome{Status: StatusUnbounded, Err: lp.ErrUnbounded}
		}
	}

	m := len(rows)
	k := len(active)
	a := mat.NewDense(m, k+m, nil)
	b := make([]float64, m)
	c := make([]float64, k+m)
	for col, j := range active {
		c[col] = problem.Costs[j]
	}
	for i, row := range rows {
		for col, j := range active {
			a.Set(i, col, row.coefficients[j])
		}
		a.Set(i, k+i, 1)
		b[i] = row.rhs
	}

	objective, z, err := lp.Simplex(c, a, b, s.Tolerance, nil)
	switch {
	case err == nil:
	case errors.Is(err, lp.ErrInfeasible):
		return Outcome{Status: StatusInfeasible, Err: err}
	case errors.Is(err, lp.ErrUnbounded):
		return Outcome{Status: StatusUnbounded, Err: err}
	default:
		return Outcome{Status: StatusNumericalError, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return Outcome{Status: StatusNumericalError, Err: err}
	}

	x := lower
	for col, j := range active {
		x[j] += z[col]
	}
	return Outcome{Status: StatusOptimal, X: x, Objective: objective + constant}
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

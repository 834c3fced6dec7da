package ration

import (
	"context"
	"fmt"
	"time"
)

// Status is the normalized outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusNumericalError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusNumericalError:
		return "numerical_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is what a Solver reports for one problem. X is ordered like
// Problem.Ingredients and is only meaningful when Status is StatusOptimal.
type Outcome struct {
	Status    Status
	X         []float64
	Objective float64
	Err       error
}

// Solver minimizes a Problem. Implementations must not panic across the
// boundary on numerical trouble; they report StatusNumericalError instead.
type Solver interface {
	Solve(ctx context.Context, problem *Problem) Outcome
}

// SolveWithTimeout runs solver against problem and gives up after timeout.
// Panics raised by the solver and deadline expiry are both reported as
// StatusNumericalError. A non-positive timeout only honors ctx.
func SolveWithTimeout(ctx context.Context, solver Solver, problem *Problem, timeout time.Duration) Outcome {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Outcome{Status: StatusNumericalError, Err: fmt.Errorf("solver panic: %v", r)}
			}
		}()
		done <- solver.Solve(ctx, problem)
	}()

	select {
	case outcome := <-done:
		return outcome
	case <-ctx.Done():
		return Outcome{Status: StatusNumericalError, Err: fmt.Errorf("solve aborted: %w", ctx.Err())}
	}
}

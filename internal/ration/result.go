package ration

import "errors"

// Result is the consumer-facing view of one formulation. Failed results never
// carry quantities or a cost, and Message never contains raw solver output.
// TotalCost is priced from the reported quantities; Objective is the
// solver's optimum rounded to cents.
type Result struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Success     bool               `json:"success" yaml:"success"`
	Quantities  map[string]float64 `json:"quantities,omitempty" yaml:"quantities,omitempty"`
	Allocations []Allocation       `json:"allocations,omitempty" yaml:"allocations,omitempty"`
	TotalCost   *float64           `json:"total_cost,omitempty" yaml:"total_cost,omitempty"`
	Objective   *float64           `json:"objective,omitempty" yaml:"objective,omitempty"`
	Target      *Nutrients         `json:"target,omitempty" yaml:"target,omitempty"`
	Supplied    *Nutrients         `json:"supplied,omitempty" yaml:"supplied,omitempty"`
	Reason      Reason             `json:"reason,omitempty" yaml:"reason,omitempty"`
	Message     string             `json:"message,omitempty" yaml:"message,omitempty"`
	Hint        string             `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// NewResult converts a formulation outcome into a Result.
func NewResult(name string, solution *Solution, err error) Result {
	if err != nil {
		result := Result{Name: name, Reason: ReasonInternal, Message: internalMessage}
		var rationErr *Error
		if errors.As(err, &rationErr) {
			result.Reason = rationErr.Reason
			result.Message = rationErr.Message
			result.Hint = rationErr.Hint
		}
		return result
	}
	if solution == nil {
		return Result{Name: name, Reason: ReasonInternal, Message: internalMessage}
	}

	total := solution.TotalCost
	objective := solution.Objective
	target := solution.Target
	supplied := solution.Supplied
	return Result{
		Name:        name,
		Success:     true,
		Quantities:  solution.Quantities,
		Allocations: solution.Allocations,
		TotalCost:   &total,
		Objective:   &objective,
		Target:      &target,
		Supplied:    &supplied,
	}
}

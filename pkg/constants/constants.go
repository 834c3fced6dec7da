// Package constants provides shared constants for the ration-formulator application.
package constants

// Nutrition constants
const (
	// ReferenceWeight is the body weight at which baseline requirements are defined
	ReferenceWeight = 500.0

	// DecimalPlaces is the number of decimals reported for quantities and costs
	DecimalPlaces = 2

	// QuantityEpsilon is the smallest quantity reported as non-zero
	QuantityEpsilon = 0.005

	// CostTolerance is the tolerance for comparing reported costs (1 cent)
	CostTolerance = 0.01
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "ration.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "RATION"
)

// Solver defaults
const (
	// SolverMethodSimplex selects the simplex LP backend
	SolverMethodSimplex = "simplex"

	// DefaultSolverTolerance is the reduced-cost tolerance handed to the simplex
	DefaultSolverTolerance = 1e-10

	// DefaultSolverTimeout is the per-solve deadline
	DefaultSolverTimeout = "5s"

	// DefaultConcurrency bounds parallel solves in batch formulation
	DefaultConcurrency = 4
)

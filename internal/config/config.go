// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/ration-formulator/pkg/constants"
	"github.com/iwvelando/ration-formulator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the ration formulator.
type Configuration struct {
	Logging      LoggingConfig       `yaml:"logging,omitempty" mapstructure:"logging"`
	Output       OutputConfig        `yaml:"output,omitempty" mapstructure:"output"`
	Solver       SolverConfig        `yaml:"solver,omitempty" mapstructure:"solver"`
	Engine       EngineConfig        `yaml:"engine,omitempty" mapstructure:"engine"`
	Ingredients  []IngredientConfig  `yaml:"ingredients,omitempty" mapstructure:"ingredients"`
	Requirements []RequirementConfig `yaml:"requirements,omitempty" mapstructure:"requirements"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// SolverConfig tunes the linear programming backend.
type SolverConfig struct {
	Method      string        `yaml:"method,omitempty" mapstructure:"method"`
	Tolerance   float64       `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	Timeout     time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
	ZeroEpsilon float64       `yaml:"zeroEpsilon,omitempty" mapstructure:"zeroEpsilon"`
}

// EngineConfig bounds the work done by a single engine.
type EngineConfig struct {
	Concurrency int `yaml:"concurrency,omitempty" mapstructure:"concurrency"`
}

// IngredientConfig describes one catalog ingredient. Nutrients are per mass
// unit, cost is per mass unit.
type IngredientConfig struct {
	Name    string  `yaml:"name" mapstructure:"name"`
	Protein float64 `yaml:"protein" mapstructure:"protein"`
	Fiber   float64 `yaml:"fiber" mapstructure:"fiber"`
	Cost    float64 `yaml:"cost" mapstructure:"cost"`
}

// RequirementConfig describes the baseline needs of an animal category at
// the reference weight.
type RequirementConfig struct {
	Animal   string          `yaml:"animal" mapstructure:"animal"`
	Protein  float64         `yaml:"protein" mapstructure:"protein"`
	Fiber    float64         `yaml:"fiber" mapstructure:"fiber"`
	Minimums []MinimumConfig `yaml:"minimums,omitempty" mapstructure:"minimums"`
}

// MinimumConfig is a minimum purchase quantity for one ingredient.
type MinimumConfig struct {
	Ingredient string  `yaml:"ingredient" mapstructure:"ingredient"`
	Quantity   float64 `yaml:"quantity" mapstructure:"quantity"`
}

// Default returns a configuration with every default applied and an empty
// catalog, which callers treat as "use the built-in seed data".
func Default() *Configuration {
	conf := &Configuration{}
	conf.Normalize()
	return conf
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with RATION_ override
// file values, e.g. RATION_SOLVER_TIMEOUT=2s.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("solver.method", constants.SolverMethodSimplex)
	v.SetDefault("solver.tolerance", constants.DefaultSolverTolerance)
	v.SetDefault("solver.timeout", constants.DefaultSolverTimeout)
	v.SetDefault("solver.zeroEpsilon", constants.QuantityEpsilon)
	v.SetDefault("engine.concurrency", constants.DefaultConcurrency)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Normalize()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Normalize fills unset values with defaults and canonicalizes names.
func (c *Configuration) Normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}

	c.Solver.Method = strings.ToLower(strings.TrimSpace(c.Solver.Method))
	if c.Solver.Method == "" {
		c.Solver.Method = constants.SolverMethodSimplex
	}
	if c.Solver.Tolerance <= 0 {
		c.Solver.Tolerance = constants.DefaultSolverTolerance
	}
	if c.Solver.Timeout == 0 {
		c.Solver.Timeout, _ = time.ParseDuration(constants.DefaultSolverTimeout)
	}
	if c.Solver.ZeroEpsilon <= 0 {
		c.Solver.ZeroEpsilon = constants.QuantityEpsilon
	}
	if c.Engine.Concurrency <= 0 {
		c.Engine.Concurrency = constants.DefaultConcurrency
	}

	for i := range c.Ingredients {
		c.Ingredients[i].Name = strings.TrimSpace(c.Ingredients[i].Name)
	}
	for i := range c.Requirements {
		c.Requirements[i].Animal = strings.ToLower(strings.TrimSpace(c.Requirements[i].Animal))
		for j := range c.Requirements[i].Minimums {
			c.Requirements[i].Minimums[j].Ingredient = strings.TrimSpace(c.Requirements[i].Minimums[j].Ingredient)
		}
	}
}

// Validate returns an error describing the first problem with the
// configuration. Catalog contents are checked again by the catalog package
// against the animal categories it knows about.
func (c *Configuration) Validate() error {
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Solver.Method != constants.SolverMethodSimplex {
		return fmt.Errorf("solver method %q is not supported", c.Solver.Method)
	}
	if c.Solver.Timeout < 0 {
		return fmt.Errorf("solver timeout %s must not be negative", c.Solver.Timeout)
	}

	names := make(map[string]struct{}, len(c.Ingredients))
	for i, ingredient := range c.Ingredients {
		if ingredient.Name == "" {
			return fmt.Errorf("ingredient %d has no name", i)
		}
		if _, exists := names[ingredient.Name]; exists {
			return fmt.Errorf("ingredient %q is defined more than once", ingredient.Name)
		}
		names[ingredient.Name] = struct{}{}
		if ingredient.Protein < 0 || ingredient.Fiber < 0 {
			return fmt.Errorf("ingredient %q has negative nutrient content", ingredient.Name)
		}
		if ingredient.Cost < 0 {
			return fmt.Errorf("ingredient %q has negative cost %.2f", ingredient.Name, ingredient.Cost)
		}
	}

	animals := make(map[string]struct{}, len(c.Requirements))
	for i, requirement := range c.Requirements {
		if requirement.Animal == "" {
			return fmt.Errorf("requirement %d has no animal", i)
		}
		if _, exists := animals[requirement.Animal]; exists {
			return fmt.Errorf("requirement for %q is defined more than once", requirement.Animal)
		}
		animals[requirement.Animal] = struct{}{}
		if requirement.Protein < 0 || requirement.Fiber < 0 {
			return fmt.Errorf("requirement for %q has negative nutrient targets", requirement.Animal)
		}
		for _, minimum := range requirement.Minimums {
			if minimum.Quantity < 0 {
				return fmt.Errorf("requirement for %q has negative minimum for %q", requirement.Animal, minimum.Ingredient)
			}
			if len(c.Ingredients) == 0 {
				continue
			}
			if _, ok := names[minimum.Ingredient]; !ok {
				return fmt.Errorf("requirement for %q has a minimum for unknown ingredient %q", requirement.Animal, minimum.Ingredient)
			}
		}
	}
	return nil
}

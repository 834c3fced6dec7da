package ration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/ration-formulator/internal/config"
	"github.com/iwvelando/ration-formulator/internal/metrics"
	"github.com/iwvelando/ration-formulator/pkg/mathutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName = "github.com/iwvelando/ration-formulator/internal/ration"

	PathAnimal  = "animal"
	PathTargets = "targets"
)

// Engine formulates rations against an ingredient catalog. It holds no
// per-request state and may be used from multiple goroutines.
type Engine struct {
	logger       *zap.Logger
	conf         *config.Configuration
	ingredients  IngredientSource
	requirements RequirementSource
	solver       Solver
	validator    *Validator
	metrics      *metrics.Recorder
	tracer       trace.Tracer
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSolver replaces the default simplex solver.
func WithSolver(solver Solver) Option {
	return func(e *Engine) {
		e.solver = solver
	}
}

// WithMetrics records formulation metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// ScaledRequirement is a requirement record resolved for one animal.
type ScaledRequirement struct {
	Animal     AnimalCategory     `json:"animal" yaml:"animal"`
	Weight     float64            `json:"weight" yaml:"weight"`
	Activity   string             `json:"activity,omitempty" yaml:"activity,omitempty"`
	Multiplier float64            `json:"multiplier" yaml:"multiplier"`
	Target     Nutrients          `json:"target" yaml:"target"`
	Minimums   map[string]float64 `json:"minimums,omitempty" yaml:"minimums,omitempty"`
}

// NewEngine constructs an Engine. A nil configuration selects the defaults;
// unset solver and engine settings in a non-nil one are defaulted on a copy.
func NewEngine(logger *zap.Logger, conf *config.Configuration, ingredients IngredientSource, requirements RequirementSource, opts ...Option) (*Engine, error) {
	if ingredients == nil {
		return nil, fmt.Errorf("ingredient source cannot be nil")
	}
	if requirements == nil {
		return nil, fmt.Errorf("requirement source cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if conf == nil {
		conf = config.Default()
	} else {
		normalized := config.Configuration{
			Logging: conf.Logging,
			Output:  conf.Output,
			Solver:  conf.Solver,
			Engine:  conf.Engine,
		}
		normalized.Normalize()
		conf = &normalized
	}

	e := &Engine{
		logger:       logger,
		conf:         conf,
		ingredients:  ingredients,
		requirements: requirements,
		validator:    NewValidator(),
		tracer:       otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.solver == nil {
		e.solver = NewSimplexSolver(conf.Solver.Tolerance)
	}
	return e, nil
}

// Requirements resolves and scales the requirement record for req without
// solving anything. Targets are rounded to two decimals.
func (e *Engine) Requirements(ctx context.Context, req ScalingRequest) (*ScaledRequirement, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Requirements", trace.WithAttributes(
		attribute.String("ration.animal", string(req.Animal)),
	))
	defer span.End()

	scaled, _, err := e.scale(ctx, "ration.Requirements", req)
	if err != nil {
		e.fail(span, err)
		return nil, err
	}
	scaled.Target = Nutrients{
		Protein: mathutil.Round(scaled.Target.Protein),
		Fiber:   mathutil.Round(scaled.Target.Fiber),
	}
	return scaled, nil
}

// FormulateForAnimal finds the cheapest ration meeting the scaled
// requirement of one animal, including any minimum purchase quantities the
// requirement record carries.
func (e *Engine) FormulateForAnimal(ctx context.Context, req ScalingRequest) (*Solution, error) {
	const op = "ration.FormulateForAnimal"
	ctx, span := e.tracer.Start(ctx, "Engine.FormulateForAnimal", trace.WithAttributes(
		attribute.String("ration.path", PathAnimal),
		attribute.String("ration.animal", string(req.Animal)),
	))
	defer span.End()

	solution, err := e.formulateForAnimal(ctx, op, req)
	e.finish(span, op, PathAnimal, err)
	return solution, err
}

func (e *Engine) formulateForAnimal(ctx context.Context, op string, req ScalingRequest) (*Solution, error) {
	scaled, exact, err := e.scale(ctx, op, req)
	if err != nil {
		return nil, err
	}
	return e.formulate(ctx, op, exact, BuildOptions{
		PriceOverrides: req.PriceOverrides,
		Minimums:       scaled.Minimums,
		UpperBounds:    req.UpperBounds,
	})
}

// FormulateForTargets finds the cheapest ration meeting explicit nutrient
// targets.
func (e *Engine) FormulateForTargets(ctx context.Context, req TargetRequest) (*Solution, error) {
	const op = "ration.FormulateForTargets"
	ctx, span := e.tracer.Start(ctx, "Engine.FormulateForTargets", trace.WithAttributes(
		attribute.String("ration.path", PathTargets),
	))
	defer span.End()

	solution, err := e.formulateForTargets(ctx, op, req)
	e.finish(span, op, PathTargets, err)
	return solution, err
}

func (e *Engine) formulateForTargets(ctx context.Context, op string, req TargetRequest) (*Solution, error) {
	if err := e.validator.ValidateTargetRequest(req); err != nil {
		return nil, err
	}
	target := Nutrients{Protein: *req.Protein, Fiber: *req.Fiber}
	return e.formulate(ctx, op, target, BuildOptions{
		PriceOverrides: req.PriceOverrides,
		Minimums:       req.Minimums,
		UpperBounds:    req.UpperBounds,
	})
}

// scale validates req and returns the scaled requirement along with the
// unrounded target used for solving.
func (e *Engine) scale(ctx context.Context, op string, req ScalingRequest) (*ScaledRequirement, Nutrients, error) {
	if err := e.validator.ValidateScalingRequest(req); err != nil {
		return nil, Nutrients{}, err
	}

	requirement, err := e.requirements.Requirement(ctx, req.Animal)
	if err != nil {
		if errors.Is(err, ErrRequirementNotFound) {
			return nil, Nutrients{}, &Error{
				Reason:  ReasonInvalidInput,
				Message: fmt.Sprintf("no nutrient requirement is defined for animal %q", req.Animal),
				Cause:   err,
			}
		}
		e.logger.Error("failed to load nutrient requirement",
			zap.String("op", op),
			zap.String("animal", string(req.Animal)),
			zap.Error(err),
		)
		return nil, Nutrients{}, internalError(err)
	}

	multiplier, known := ActivityMultiplier(req.Activity)
	if !known && req.Activity != "" {
		e.logger.Warn("unknown activity level, applying no activity adjustment",
			zap.String("op", op),
			zap.String("activity", req.Activity),
		)
	}

	target := Scale(requirement.Baseline, *req.Weight, req.Activity)
	e.logger.Debug("scaled nutrient requirement",
		zap.String("op", op),
		zap.String("animal", string(req.Animal)),
		zap.Float64("weight", *req.Weight),
		zap.Float64("multiplier", multiplier),
		zap.Float64("protein", target.Protein),
		zap.Float64("fiber", target.Fiber),
	)

	return &ScaledRequirement{
		Animal:     req.Animal,
		Weight:     *req.Weight,
		Activity:   req.Activity,
		Multiplier: multiplier,
		Target:     target,
		Minimums:   requirement.Minimums,
	}, target, nil
}

func (e *Engine) formulate(ctx context.Context, op string, target Nutrients, opts BuildOptions) (*Solution, error) {
	ingredients, err := e.ingredients.Ingredients(ctx)
	if err != nil {
		e.logger.Error("failed to load ingredients",
			zap.String("op", op),
			zap.Error(err),
		)
		return nil, internalError(err)
	}

	problem, err := Build(ingredients, target, opts)
	if err != nil {
		e.logInternal(op, err)
		return nil, err
	}
	if len(problem.IgnoredOverrides) > 0 {
		e.logger.Warn("ignoring price overrides for unknown ingredients",
			zap.String("op", op),
			zap.Strings("ingredients", problem.IgnoredOverrides),
		)
		e.metrics.AddIgnoredOverrides(len(problem.IgnoredOverrides))
	}

	e.logger.Debug("solving ration problem",
		zap.String("op", op),
		zap.Float64("protein", target.Protein),
		zap.Float64("fiber", target.Fiber),
		zap.Float64s("costs", problem.Costs),
		zap.Any("a", problem.A()),
		zap.Float64s("b", problem.B()),
	)

	start := time.Now()
	outcome := SolveWithTimeout(ctx, e.solver, problem, e.conf.Solver.Timeout)
	e.metrics.ObserveSolve(outcome.Status.String(), time.Since(start))

	if outcome.Status == StatusNumericalError {
		e.logger.Error("solver failed",
			zap.String("op", op),
			zap.Error(outcome.Err),
			zap.Strings("ingredients", ingredientNames(problem.Ingredients)),
			zap.Float64s("costs", problem.Costs),
			zap.Any("a", problem.A()),
			zap.Float64s("b", problem.B()),
		)
	}

	solution, err := Interpret(outcome, problem, e.conf.Solver.ZeroEpsilon)
	if err != nil {
		e.logInternal(op, err)
		return nil, err
	}

	if drift := solution.TotalCost - solution.Objective; !mathutil.IsZero(drift) {
		e.logger.Debug("reported cost differs from solver objective after rounding",
			zap.String("op", op),
			zap.Float64("drift", mathutil.Round(drift)),
		)
	}

	e.logger.Debug("ration formulated",
		zap.String("op", op),
		zap.Any("quantities", solution.Quantities),
		zap.Float64("totalCost", solution.TotalCost),
		zap.Float64("objective", solution.Objective),
	)
	return solution, nil
}

func (e *Engine) logInternal(op string, err error) {
	if ReasonOf(err) != ReasonInternal {
		return
	}
	if errors.Is(err, ErrInvariantViolation) {
		e.logger.DPanic("ration problem invariant violated",
			zap.String("op", op),
			zap.Error(err),
		)
		return
	}
	e.logger.Error("internal formulation error",
		zap.String("op", op),
		zap.Error(err),
	)
}

func (e *Engine) finish(span trace.Span, op, path string, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(ReasonOf(err))
		e.fail(span, err)
		e.logger.Info("formulation failed",
			zap.String("op", op),
			zap.String("reason", outcome),
			zap.Error(err),
		)
	}
	span.SetAttributes(attribute.String("ration.outcome", outcome))
	e.metrics.ObserveFormulation(path, outcome)
}

func (e *Engine) fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(ReasonOf(err)))
}

func ingredientNames(ingredients []Ingredient) []string {
	names := make([]string, len(ingredients))
	for i, ingredient := range ingredients {
		names[i] = ingredient.Name
	}
	return names
}

package ration

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchRequest is one entry of a batch. Exactly one of Scaling and Targets
// must be set.
type BatchRequest struct {
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Scaling *ScalingRequest `json:"animal,omitempty" yaml:"animal,omitempty"`
	Targets *TargetRequest  `json:"targets,omitempty" yaml:"targets,omitempty"`
}

// FormulateBatch runs independent requests concurrently, bounded by the
// configured concurrency. Results are returned in request order and a
// failing request does not affect the others.
func (e *Engine) FormulateBatch(ctx context.Context, requests []BatchRequest) []Result {
	ctx, span := e.tracer.Start(ctx, "Engine.FormulateBatch", trace.WithAttributes(
		attribute.Int("ration.batch_size", len(requests)),
	))
	defer span.End()

	results := make([]Result, len(requests))
	var g errgroup.Group
	g.SetLimit(e.conf.Engine.Concurrency)
	for i, request := range requests {
		name := request.Name
		if name == "" {
			name = fmt.Sprintf("request-%d", i+1)
		}
		g.Go(func() error {
			solution, err := e.formulateOne(ctx, request)
			results[i] = NewResult(name, solution, err)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	e.logger.Info("batch formulation complete",
		zap.String("op", "ration.FormulateBatch"),
		zap.Int("requests", len(requests)),
		zap.Int("failed", failed),
	)
	return results
}

func (e *Engine) formulateOne(ctx context.Context, request BatchRequest) (*Solution, error) {
	switch {
	case request.Scaling != nil && request.Targets != nil:
		return nil, invalidInput("request must set either animal or targets, not both")
	case request.Scaling != nil:
		return e.FormulateForAnimal(ctx, *request.Scaling)
	case request.Targets != nil:
		return e.FormulateForTargets(ctx, *request.Targets)
	default:
		return nil, invalidInput("request must set either animal or targets")
	}
}

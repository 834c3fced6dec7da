package ration_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iwvelando/ration-formulator/internal/catalog"
	"github.com/iwvelando/ration-formulator/internal/config"
	"github.com/iwvelando/ration-formulator/internal/ration"
	"github.com/iwvelando/ration-formulator/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFormulateBatch(t *testing.T) {
	engine := newEngine(t)

	requests := []ration.BatchRequest{
		{Name: "herd", Scaling: &ration.ScalingRequest{Animal: ration.Cattle, Weight: ptr(500), Activity: "low"}},
		{Scaling: &ration.ScalingRequest{Animal: "dog", Weight: ptr(20)}},
		{Name: "bounded", Targets: &ration.TargetRequest{
			Protein: ptr(100000), Fiber: ptr(100000),
			UpperBounds: map[string]float64{"Corn": 100, "Soybean Meal": 100, "Wheat Bran": 100},
		}},
		{Name: "empty"},
		{Name: "both", Scaling: &ration.ScalingRequest{Animal: ration.Goat, Weight: ptr(1)}, Targets: &ration.TargetRequest{}},
		{Name: "flock", Targets: &ration.TargetRequest{Protein: ptr(170), Fiber: ptr(30)}},
	}

	results := engine.FormulateBatch(context.Background(), requests)
	require.Len(t, results, len(requests))

	assert.Equal(t, "herd", results[0].Name)
	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].TotalCost)
	assert.Equal(t, 3375.0, *results[0].TotalCost)

	assert.Equal(t, "request-2", results[1].Name)
	assert.Equal(t, ration.ReasonInvalidInput, results[1].Reason)

	assert.Equal(t, ration.ReasonInfeasible, results[2].Reason)
	assert.Nil(t, results[2].Quantities)

	assert.Equal(t, ration.ReasonInvalidInput, results[3].Reason)
	assert.Equal(t, ration.ReasonInvalidInput, results[4].Reason)

	assert.True(t, results[5].Success)

	herd := testutil.FindResult(results, "herd")
	require.NotNil(t, herd)
	bran := testutil.FindAllocation(herd, "Wheat Bran")
	require.NotNil(t, bran)
	assert.Equal(t, 75.0, bran.Quantity)
	assert.Nil(t, testutil.FindResult(results, "request-1"))
}

type countingSolver struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	inner    ration.Solver
}

func (s *countingSolver) Solve(ctx context.Context, problem *ration.Problem) ration.Outcome {
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return s.inner.Solve(ctx, problem)
}

func TestFormulateBatchConcurrencyLimit(t *testing.T) {
	conf := config.Default()
	conf.Engine.Concurrency = 2
	solver := &countingSolver{inner: ration.NewSimplexSolver(0)}

	cat, err := catalog.New(catalog.DefaultIngredients(), catalog.DefaultRequirements())
	require.NoError(t, err)
	engine, err := ration.NewEngine(zap.NewNop(), conf, cat, cat, ration.WithSolver(solver))
	require.NoError(t, err)

	requests := make([]ration.BatchRequest, 8)
	for i := range requests {
		requests[i] = ration.BatchRequest{
			Name:    fmt.Sprintf("goat-%d", i),
			Scaling: &ration.ScalingRequest{Animal: ration.Goat, Weight: ptr(float64(10 * (i + 1)))},
		}
	}

	results := engine.FormulateBatch(context.Background(), requests)
	for i, result := range results {
		assert.Equal(t, fmt.Sprintf("goat-%d", i), result.Name)
		assert.True(t, result.Success, "request %d: %s", i, result.Message)
	}
	assert.LessOrEqual(t, solver.peak.Load(), int32(2))
}

func TestFormulateBatchWithUnsetConfiguration(t *testing.T) {
	cat, err := catalog.New(catalog.DefaultIngredients(), catalog.DefaultRequirements())
	require.NoError(t, err)
	engine, err := ration.NewEngine(nil, &config.Configuration{}, cat, cat)
	require.NoError(t, err)

	done := make(chan []ration.Result, 1)
	go func() {
		done <- engine.FormulateBatch(context.Background(), []ration.BatchRequest{
			{Name: "herd", Scaling: &ration.ScalingRequest{Animal: ration.Cattle, Weight: ptr(500), Activity: "low"}},
			{Name: "flock", Targets: &ration.TargetRequest{Protein: ptr(170), Fiber: ptr(30)}},
		})
	}()

	select {
	case results := <-done:
		require.Len(t, results, 2)
		assert.True(t, results[0].Success, results[0].Message)
		assert.Equal(t, 3375.0, *results[0].TotalCost)
		assert.True(t, results[1].Success, results[1].Message)
	case <-time.After(5 * time.Second):
		t.Fatal("FormulateBatch did not finish with an empty configuration")
	}
}

func TestNewEngineLeavesConfigurationUntouched(t *testing.T) {
	cat, err := catalog.New(catalog.DefaultIngredients(), catalog.DefaultRequirements())
	require.NoError(t, err)
	conf := &config.Configuration{}
	_, err = ration.NewEngine(nil, conf, cat, cat)
	require.NoError(t, err)
	assert.Zero(t, conf.Engine.Concurrency)
	assert.Zero(t, conf.Solver.Timeout)
}

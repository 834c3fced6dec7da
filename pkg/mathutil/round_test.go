package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Binary midpoint", 1.005, 1.01},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round up", -1.235, -1.24},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Exactly one cent", 0.01, 0.01},
		{"Nearly two cents", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if result != tt.expected {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundToNonFinite(t *testing.T) {
	if !math.IsNaN(RoundTo(math.NaN(), 2)) {
		t.Errorf("expected NaN to pass through")
	}
	if !math.IsInf(RoundTo(math.Inf(1), 2), 1) {
		t.Errorf("expected +Inf to pass through")
	}
}

func TestSnapToZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Negative noise", -1e-9, 0},
		{"Large negative", -3, 0},
		{"Below epsilon", 0.004, 0},
		{"At epsilon", 0.005, 0.005},
		{"Regular value", 75, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapToZero(tt.input, 0.005); got != tt.expected {
				t.Errorf("SnapToZero(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small negative", -0.001, true},
		{"Exactly tolerance", 0.01, true},
		{"Just above tolerance", 0.02, false},
		{"Large positive", 100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZero(tt.input); got != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(3375.004, 3375.0, 0.01) {
		t.Errorf("expected values to be within tolerance")
	}
	if WithinTolerance(3375.02, 3375.0, 0.01) {
		t.Errorf("expected values outside tolerance")
	}
}

func TestIsFinite(t *testing.T) {
	if IsFinite(math.NaN()) || IsFinite(math.Inf(-1)) {
		t.Errorf("expected non-finite values to be rejected")
	}
	if !IsFinite(-42.5) {
		t.Errorf("expected finite value to be accepted")
	}
}

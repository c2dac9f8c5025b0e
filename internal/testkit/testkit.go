// Package testkit provides the small deterministic datasets the package
// tests share. Every fixture has hand-checkable sums of squares, so tests
// can assert exact values instead of snapshots.
package testkit

import (
	"testing"

	"github.com/statkit/glm/dataset"
)

// OneFactor returns a balanced three-group dataset with group means -1, 0
// and 1 and a within-group sum of squares of 2 per group. An intercept-only
// versus group comparison on it gives F(2, 6) = 3 exactly, with upper tail
// probability exactly 1/8.
func OneFactor(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewCategorical("group", []string{"A", "A", "A", "B", "B", "B", "C", "C", "C"}),
		dataset.NewNumeric("y", []float64{-2, -1, 0, -1, 0, 1, 0, 1, 2}),
	)
	if err != nil {
		t.Fatalf("testkit.OneFactor: %v", err)
	}
	return ds
}

// TwoGroups returns the classic two-sample fixture: group A with values
// 10, 12, 11 and group B with 20, 22, 19. The pooled two-sample t statistic
// for the mean difference is -8.854 at 4 degrees of freedom.
func TwoGroups(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewCategorical("group", []string{"A", "A", "A", "B", "B", "B"}),
		dataset.NewNumeric("y", []float64{10, 12, 11, 20, 22, 19}),
	)
	if err != nil {
		t.Fatalf("testkit.TwoGroups: %v", err)
	}
	return ds
}

// Factorial returns a balanced 2x2 factorial with two replicates per cell,
// cell means 1, 2, 3, 4 (perfectly additive, so the interaction sum of
// squares is zero) and a within-cell sum of squares of 0.5 per cell. The
// sequential decomposition of y ~ a + b is SS_a = 8, SS_b = 2, residual
// SS = 2 on 5 degrees of freedom.
func Factorial(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewCategorical("a", []string{"A", "A", "A", "A", "B", "B", "B", "B"}),
		dataset.NewCategorical("b", []string{"C", "D", "C", "D", "C", "D", "C", "D"}),
		dataset.NewNumeric("y", []float64{0.5, 1.5, 1.5, 2.5, 2.5, 3.5, 3.5, 4.5}),
	)
	if err != nil {
		t.Fatalf("testkit.Factorial: %v", err)
	}
	return ds
}

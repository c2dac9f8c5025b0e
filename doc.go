// Package glm provides a general linear model comparison engine for Go:
// design matrices built from explicit specifications, numerically careful
// least-squares fits, F tests between nested models and multiplicity-aware
// contrast evaluation.
//
// The library is built for the analysis workflow rather than prediction:
// encode a model as data, fit it, and quantify the evidence for every term
// by comparing nested fits.
//
// # Features
//
// - Explicit model specifications: terms, contrast codings and the
// intercept are data, never inferred from strings
// - Treatment, sum-to-zero, Helmert, orthogonal polynomial and custom
// factor codings
// - Rank-revealing SVD solver with condition-number diagnostics
// - Extra-sum-of-squares F tests with structural nesting checks
// - Contrast families with none, Bonferroni, Holm, Tukey HSD and Scheffé
// adjustments
// - Concurrent sweeps over candidate model pairs
//
// # Installation
//
// Install with go get:
//
//	go get github.com/statkit/glm
//
// # Quick Start
//
// A one-factor analysis, from formula to F test:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/statkit/glm/anova"
//	    "github.com/statkit/glm/dataset"
//	    "github.com/statkit/glm/formula"
//	)
//
//	func main() {
//	    ds, err := dataset.New(
//	        dataset.NewCategorical("group", []string{"A", "A", "A", "B", "B", "B"}),
//	        dataset.NewNumeric("y", []float64{10, 12, 11, 20, 22, 19}),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    response, spec, err := formula.Parse("y ~ group")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    table, err := anova.Sequential(ds, response, spec)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(table)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - dataset: typed columns (numeric, categorical) with missing-value
//     tracking and summaries
//   - design: model specifications, factor codings and design matrix
//     construction
//   - formula: R-style formula front-end producing design specifications
//   - linear: SVD least-squares fitting and fitted-model accessors
//   - anova: nested model F tests and sequential ANOVA tables
//   - contrast: contrast evaluation with multiple-comparison policies
//   - metrics: fit summaries (R², log-likelihood, AIC, BIC)
//   - sweep: concurrent batches of model comparisons
//
// # Numerical Behavior
//
// Fits use a thin SVD and refuse rank-deficient designs instead of
// silently dropping columns; ill-conditioned designs are reported through
// the structured warning hook. Comparisons verify that the restricted
// column space lies inside the general one before any F statistic is
// formed, so accidental non-nested comparisons fail loudly.
//
// # Performance
//
// Design matrix construction parallelizes across rows for datasets with
// >1000 rows, detecting CPU cores and allocating workers automatically.
// Sweeps fan candidate comparisons out over a bounded worker pool; every
// fit is independent and the shared dataset is read-only.
//
// # License
//
// Released under the MIT License.
package glm

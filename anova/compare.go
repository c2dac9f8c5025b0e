// Package anova compares nested linear models by their residual sums of
// squares.
//
// Compare performs the classic extra-sum-of-squares F test between a
// restricted model and a general one, after verifying that the two fits are
// actually comparable: same observations, same response, strictly growing
// rank, and a restricted column space contained in the general one. Any
// violated precondition is an InvalidComparisonError; no statistic is
// produced from a pair that fails one.
//
// Sequential builds the Type I decomposition of a full specification, one
// row per term, from a chain of prefix fits compared pairwise.
package anova

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statkit/glm/linear"
	"github.com/statkit/glm/pkg/errors"
	"github.com/statkit/glm/pkg/log"
)

// DefaultNestingTolerance bounds how far a restricted basis direction may
// stick out of the general column space before the models are declared
// non-nested.
const DefaultNestingTolerance = 1e-8

// rssSlack absorbs floating-point noise in the RSS monotonicity check; a
// general RSS above the restricted one by more than this relative slack is a
// structural error, not roundoff.
const rssSlack = 1e-10

// ComparisonResult is the outcome of one nested model comparison.
type ComparisonResult struct {
	// RSSRestricted and RSSGeneral are the residual sums of squares of the
	// two models.
	RSSRestricted float64
	RSSGeneral    float64

	// RankRestricted and RankGeneral are the design ranks.
	RankRestricted int
	RankGeneral    int

	// DFNum is the numerator degrees of freedom, rank difference of the
	// designs. DFDen is the residual degrees of freedom of the general
	// model.
	DFNum int
	DFDen int

	// F is the test statistic and PValue its upper tail under F(DFNum, DFDen).
	F      float64
	PValue float64

	// NumObs is the shared observation count.
	NumObs int
}

// String renders the comparison the way it is usually quoted.
func (r *ComparisonResult) String() string {
	return fmt.Sprintf("F(%d, %d) = %.6g, p = %.6g (RSS %.6g -> %.6g, n = %d)",
		r.DFNum, r.DFDen, r.F, r.PValue, r.RSSRestricted, r.RSSGeneral, r.NumObs)
}

// CompareOption configures a single Compare call.
type CompareOption func(*compareConfig)

type compareConfig struct {
	nestingTolerance float64
}

// WithNestingTolerance sets how far a restricted basis direction may deviate
// from the general column space before the comparison is rejected. Values at
// or below zero keep the default.
func WithNestingTolerance(tol float64) CompareOption {
	return func(cfg *compareConfig) {
		if tol > 0 {
			cfg.nestingTolerance = tol
		}
	}
}

// Compare runs the extra-sum-of-squares F test of the general model against
// the restricted one.
//
// The preconditions are checked in a fixed order and the first failure
// aborts: equal observation counts (DimensionError), bit-identical response
// vectors, strictly positive numerator and denominator degrees of freedom,
// restricted column space nested in the general one, and a general RSS no
// larger than the restricted RSS (all InvalidComparisonError).
//
// F = ((RSS_R - RSS_G)/df1) / (RSS_G/df2); the p-value is the upper tail of
// the F(df1, df2) distribution.
func Compare(restricted, general *linear.FittedModel, opts ...CompareOption) (*ComparisonResult, error) {
	if restricted == nil || general == nil {
		return nil, errors.NewValueError("anova.Compare", "both models must be non-nil")
	}

	cfg := compareConfig{nestingTolerance: DefaultNestingTolerance}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := general.NumObs()
	if restricted.NumObs() != n {
		return nil, errors.NewDimensionError("anova.Compare", n, restricted.NumObs(), 0)
	}

	yR, yG := restricted.Response(), general.Response()
	for i := 0; i < n; i++ {
		if yR[i] != yG[i] {
			return nil, errors.NewInvalidComparisonError("anova.Compare",
				fmt.Sprintf("models were fit to different responses (first difference at row %d)", i))
		}
	}

	df1 := general.Rank() - restricted.Rank()
	if df1 <= 0 {
		return nil, errors.NewInvalidComparisonError("anova.Compare",
			fmt.Sprintf("general model must have higher rank than the restricted one (got %d vs %d)",
				general.Rank(), restricted.Rank()))
	}
	df2 := n - general.Rank()
	if df2 <= 0 {
		return nil, errors.NewInvalidComparisonError("anova.Compare",
			"general model is saturated; no residual degrees of freedom remain")
	}

	if err := checkNested(restricted, general, cfg.nestingTolerance); err != nil {
		return nil, err
	}

	rssR, rssG := restricted.RSS(), general.RSS()
	if rssG > rssR+rssSlack*(1+rssR) {
		return nil, errors.NewInvalidComparisonError("anova.Compare",
			fmt.Sprintf("general model has larger RSS than the restricted one (%g > %g)", rssG, rssR))
	}
	ss := rssR - rssG
	if ss < 0 {
		ss = 0
	}

	f := (ss / float64(df1)) / (rssG / float64(df2))
	p := math.NaN()
	if !math.IsNaN(f) {
		p = distuv.F{D1: float64(df1), D2: float64(df2)}.Survival(f)
	}

	log.GetLoggerWithName("anova").Debug("models compared",
		log.OperationKey, log.OperationCompare,
		log.FStatKey, f,
		log.PValueKey, p,
		log.DFNumKey, df1,
		log.DFDenKey, df2,
	)

	return &ComparisonResult{
		RSSRestricted:  rssR,
		RSSGeneral:     rssG,
		RankRestricted: restricted.Rank(),
		RankGeneral:    general.Rank(),
		DFNum:          df1,
		DFDen:          df2,
		F:              f,
		PValue:         p,
		NumObs:         n,
	}, nil
}

// checkNested verifies that every orthonormal basis direction of the
// restricted design lies in the general column space: the projection residual
// of each (unit length) basis vector must stay within tol.
func checkNested(restricted, general *linear.FittedModel, tol float64) error {
	uR := restricted.OrthonormalBasis()
	uG := general.OrthonormalBasis()

	var coords mat.Dense
	coords.Mul(uG.T(), uR)
	var proj mat.Dense
	proj.Mul(uG, &coords)

	n, rankR := uR.Dims()
	for j := 0; j < rankR; j++ {
		var ss float64
		for i := 0; i < n; i++ {
			d := uR.At(i, j) - proj.At(i, j)
			ss += d * d
		}
		if dev := math.Sqrt(ss); dev > tol {
			return errors.NewInvalidComparisonError("anova.Compare",
				fmt.Sprintf("restricted design is not nested in the general one (a basis direction deviates by %.3g)", dev))
		}
	}
	return nil
}

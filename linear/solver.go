// Package linear solves least-squares problems over prepared design
// matrices.
//
// Fit decomposes the design with a thin SVD and refuses to guess: a rank-
// deficient design is an error, never a silently pinned coefficient. The
// returned FittedModel is an immutable value object carrying everything the
// comparison and contrast layers consume, so one fit can serve many
// downstream tests without refactorization.
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statkit/glm/design"
	"github.com/statkit/glm/pkg/errors"
	"github.com/statkit/glm/pkg/log"
)

// Fit estimates the least-squares coefficients of y on the design matrix x.
//
// The solver factorizes x with a thin singular value decomposition and
// determines the numerical rank from the singular values relative to the
// largest one (cutoff WithRankTolerance, default 1e-12). A design whose rank
// is below its column count fails with a RankDeficientError. A full-rank
// design whose condition number exceeds the warning threshold (default 1e8)
// still fits, but emits an IllConditionedWarning through the errors warning
// hook.
//
// Fit is deterministic: identical inputs produce bit-identical coefficients.
func Fit(x *design.Matrix, y []float64, opts ...FitOption) (m *FittedModel, err error) {
	defer errors.Recover(&err, "linear.Fit")

	if x == nil {
		return nil, errors.NewValueError("linear.Fit", "design must not be nil")
	}
	n, p := x.Dims()
	if len(y) != n {
		return nil, errors.NewDimensionError("linear.Fit", n, len(y), 0)
	}
	if err := errors.CheckFinite("linear.Fit", y); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrixFinite("linear.Fit", x.Mat(), n, p); err != nil {
		return nil, err
	}

	cfg := newFitConfig(opts)

	var svd mat.SVD
	if !svd.Factorize(x.Mat(), mat.SVDThin) {
		return nil, errors.NewModelError("linear.Fit", "svd",
			errors.New("singular value decomposition did not converge"))
	}
	rank := svd.Rank(cfg.rankTolerance)
	if rank < p {
		return nil, errors.NewRankDeficientError("linear.Fit", rank, p)
	}

	sv := svd.Values(nil)
	cond := sv[0] / sv[p-1]
	if cond > cfg.conditionThreshold {
		errors.Warn(errors.NewIllConditionedWarning("linear.Fit", cond, cfg.conditionThreshold))
	}

	response := make([]float64, n)
	copy(response, y)

	var coefM mat.Dense
	svd.SolveTo(&coefM, mat.NewDense(n, 1, response), rank)
	coef := make([]float64, p)
	for j := 0; j < p; j++ {
		coef[j] = coefM.At(j, 0)
	}

	var fittedM mat.Dense
	fittedM.Mul(x.Mat(), &coefM)
	fitted := make([]float64, n)
	residuals := make([]float64, n)
	var rss float64
	for i := 0; i < n; i++ {
		fitted[i] = fittedM.At(i, 0)
		residuals[i] = response[i] - fitted[i]
		rss += residuals[i] * residuals[i]
	}

	dfResidual := n - rank
	sigma2 := math.NaN()
	if dfResidual > 0 {
		sigma2 = rss / float64(dfResidual)
	}

	var basis mat.Dense
	svd.UTo(&basis)

	log.GetLoggerWithName("linear").Debug("least squares solved",
		log.OperationKey, log.OperationFit,
		log.RowsKey, n,
		log.ColsKey, p,
		log.RankKey, rank,
		log.ConditionKey, cond,
		log.RSSKey, rss,
		log.DFResidualKey, dfResidual,
	)

	return &FittedModel{
		design:     x,
		names:      x.ColumnNames(),
		coef:       coef,
		fitted:     fitted,
		residuals:  residuals,
		response:   response,
		basis:      &basis,
		cov:        coefCovariance(&svd, sv, sigma2, p),
		rss:        rss,
		sigma2:     sigma2,
		cond:       cond,
		rankTol:    cfg.rankTolerance,
		n:          n,
		rank:       rank,
		dfResidual: dfResidual,
	}, nil
}

// coefCovariance assembles sigma2·V·S⁻²·Vᵀ from the right singular vectors.
// With sigma2 NaN (saturated model) every entry is NaN.
func coefCovariance(svd *mat.SVD, sv []float64, sigma2 float64, p int) *mat.SymDense {
	var v mat.Dense
	svd.VTo(&v)

	cov := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			var sum float64
			for k := 0; k < p; k++ {
				sum += v.At(i, k) * v.At(j, k) / (sv[k] * sv[k])
			}
			cov.SetSym(i, j, sigma2*sum)
		}
	}
	return cov
}

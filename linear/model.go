package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/statkit/glm/design"
	"github.com/statkit/glm/pkg/errors"
)

// FittedModel is the immutable result of a least-squares fit: coefficients
// with their column names, fitted values and residuals, the residual sum of
// squares, and the numerical byproducts downstream consumers need (rank,
// coefficient covariance, an orthonormal basis of the design column space).
// Accessors return copies of internal state; a FittedModel never changes
// after Fit returns and is safe for concurrent use.
type FittedModel struct {
	design     *design.Matrix
	names      []string
	coef       []float64
	fitted     []float64
	residuals  []float64
	response   []float64
	basis      *mat.Dense
	cov        *mat.SymDense
	rss        float64
	sigma2     float64
	cond       float64
	rankTol    float64
	n          int
	rank       int
	dfResidual int
}

// Design returns the design matrix the model was fit on.
func (m *FittedModel) Design() *design.Matrix { return m.design }

// ColumnNames returns the design column names, aligned with Coefficients.
func (m *FittedModel) ColumnNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Coefficients returns the estimated coefficients in design column order.
func (m *FittedModel) Coefficients() []float64 {
	out := make([]float64, len(m.coef))
	copy(out, m.coef)
	return out
}

// Coefficient returns the estimate for the named design column.
func (m *FittedModel) Coefficient(name string) (float64, bool) {
	for i, n := range m.names {
		if n == name {
			return m.coef[i], true
		}
	}
	return 0, false
}

// Fitted returns the fitted values, one per observation.
func (m *FittedModel) Fitted() []float64 {
	out := make([]float64, len(m.fitted))
	copy(out, m.fitted)
	return out
}

// Residuals returns the raw residuals y - fitted.
func (m *FittedModel) Residuals() []float64 {
	out := make([]float64, len(m.residuals))
	copy(out, m.residuals)
	return out
}

// Response returns the response vector the model was fit to, bit for bit.
func (m *FittedModel) Response() []float64 {
	out := make([]float64, len(m.response))
	copy(out, m.response)
	return out
}

// RSS returns the residual sum of squares.
func (m *FittedModel) RSS() float64 { return m.rss }

// Rank returns the numerical rank of the design matrix. A model only ever
// exists at full column rank, so Rank equals the number of design columns.
func (m *FittedModel) Rank() int { return m.rank }

// NumObs returns the number of observations the model was fit to.
func (m *FittedModel) NumObs() int { return m.n }

// DFResidual returns the residual degrees of freedom, n - rank.
func (m *FittedModel) DFResidual() int { return m.dfResidual }

// Sigma2 returns the residual variance estimate RSS/(n-rank). For a
// saturated model (zero residual degrees of freedom) it is NaN.
func (m *FittedModel) Sigma2() float64 { return m.sigma2 }

// ConditionNumber returns the ratio of the largest to the smallest singular
// value of the design matrix.
func (m *FittedModel) ConditionNumber() float64 { return m.cond }

// RankTolerance returns the relative singular-value cutoff the fit used to
// determine rank.
func (m *FittedModel) RankTolerance() float64 { return m.rankTol }

// CoefCovariance returns the coefficient covariance matrix sigma2·V·S⁻²·Vᵀ.
// Entries are NaN for a saturated model, where sigma2 cannot be estimated.
func (m *FittedModel) CoefCovariance() *mat.SymDense {
	p := len(m.coef)
	out := mat.NewSymDense(p, nil)
	out.CopySym(m.cov)
	return out
}

// OrthonormalBasis returns an orthonormal basis of the design column space
// as a read-only n×rank view. The comparator projects onto it to verify
// nesting. Callers must not type-assert and mutate the returned matrix.
func (m *FittedModel) OrthonormalBasis() mat.Matrix { return m.basis }

// Predict returns x·β̂ for a new design matrix with the same columns, in the
// same order, as the design the model was fit on.
func (m *FittedModel) Predict(x *design.Matrix) ([]float64, error) {
	if x == nil {
		return nil, errors.NewValueError("linear.Predict", "design must not be nil")
	}
	rows, cols := x.Dims()
	if cols != len(m.coef) {
		return nil, errors.NewDimensionError("linear.Predict", len(m.coef), cols, 1)
	}
	for j, name := range x.ColumnNames() {
		if name != m.names[j] {
			return nil, errors.NewValueError("linear.Predict",
				"design column '"+name+"' does not match fitted column '"+m.names[j]+"'")
		}
	}

	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			sum += x.At(i, j) * m.coef[j]
		}
		out[i] = sum
	}
	return out, nil
}

// Package contrast evaluates linear contrasts of model coefficients or
// group means, with pluggable multiple-comparison adjustment.
//
// Evaluate works on a FittedModel: the estimate is a weighted sum of
// coefficients and the standard error comes from the coefficient covariance
// matrix. EvaluateMeans works directly on summarized cells (mean, standard
// error, degrees of freedom per group). Both report a t statistic and a raw
// two-sided p-value per contrast, then hand the whole family to the chosen
// Policy; swapping the policy never changes estimates or standard errors.
package contrast

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statkit/glm/linear"
	"github.com/statkit/glm/pkg/errors"
	"github.com/statkit/glm/pkg/log"
)

// WeightSumTolerance bounds how far mean-contrast weights may stray from
// summing to zero.
const WeightSumTolerance = 1e-8

// Contrast is one named weight vector. For Evaluate the weights run over
// model coefficients (no sum constraint: a single coefficient is a valid
// contrast); for EvaluateMeans they run over cells and must sum to zero.
type Contrast struct {
	Name    string
	Weights []float64
}

// Result is the evaluation of one contrast.
type Result struct {
	Name     string
	Estimate float64
	StdErr   float64

	// T is Estimate/StdErr, DF the degrees of freedom of its null t
	// distribution, PValue the raw two-sided tail and AdjustedP the
	// family-adjusted one.
	T         float64
	DF        float64
	PValue    float64
	AdjustedP float64
}

// Cell is one summarized group for EvaluateMeans.
type Cell struct {
	Name string
	Mean float64
	SE   float64
	DF   float64
}

// EvaluateOption configures an Evaluate call.
type EvaluateOption func(*evalConfig)

type evalConfig struct {
	groups int
}

// WithGroups declares how many group means stand behind the evaluated
// family. Tukey HSD and Scheffé adjustments require it; the other policies
// ignore it. EvaluateMeans derives it from the cell count instead.
func WithGroups(k int) EvaluateOption {
	return func(cfg *evalConfig) {
		cfg.groups = k
	}
}

// Evaluate computes each contrast of the model's coefficients and adjusts
// the family of p-values with the given policy.
//
// Per contrast: estimate w'β̂, standard error sqrt(w'Σw) from the coefficient
// covariance, t = estimate/SE, and a two-sided p-value from Student's t at
// the model's residual degrees of freedom. Weight vectors must match the
// coefficient count. A saturated model has no residual variance, so no
// contrast can be tested on it.
func Evaluate(model *linear.FittedModel, contrasts []Contrast, policy Policy, opts ...EvaluateOption) ([]Result, error) {
	if model == nil {
		return nil, errors.NewValueError("contrast.Evaluate", "model must not be nil")
	}
	if policy == nil {
		return nil, errors.NewValueError("contrast.Evaluate", "policy must not be nil")
	}
	df := model.DFResidual()
	if df <= 0 {
		return nil, errors.NewValueError("contrast.Evaluate",
			"model has zero residual degrees of freedom; contrast tests are undefined")
	}

	var cfg evalConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	coef := model.Coefficients()
	cov := model.CoefCovariance()
	p := len(coef)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}

	results := make([]Result, len(contrasts))
	family := Family{
		P:      make([]float64, len(contrasts)),
		T:      make([]float64, len(contrasts)),
		DF:     float64(df),
		Groups: cfg.groups,
	}
	for i, c := range contrasts {
		if len(c.Weights) != p {
			return nil, errors.NewDimensionError("contrast.Evaluate", p, len(c.Weights), 1)
		}
		if err := errors.CheckFinite("contrast.Evaluate", c.Weights); err != nil {
			return nil, err
		}
		if allZero(c.Weights) {
			return nil, errors.NewValidationError("weights", "contrast weights must not all be zero", c.Name)
		}

		var est, variance float64
		for a, w := range c.Weights {
			est += w * coef[a]
			for b, v := range c.Weights {
				variance += w * v * cov.At(a, b)
			}
		}
		if variance < 0 {
			variance = 0
		}
		se := math.Sqrt(variance)
		t := est / se
		pRaw := 2 * tDist.Survival(math.Abs(t))

		results[i] = Result{Name: c.Name, Estimate: est, StdErr: se, T: t, DF: float64(df), PValue: pRaw}
		family.P[i], family.T[i] = pRaw, t
	}

	adjusted, err := policy.Adjust(family)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].AdjustedP = adjusted[i]
	}

	log.GetLoggerWithName("contrast").Debug("contrasts evaluated",
		log.OperationKey, log.OperationEvaluate,
		log.AdjustmentKey, policy.Name(),
		log.FamilySizeKey, len(contrasts),
	)
	return results, nil
}

// EvaluateMeans computes each contrast of summarized group means and adjusts
// the family of p-values with the given policy.
//
// Weights must sum to zero within WeightSumTolerance. The estimate is the
// weighted sum of cell means and the standard error combines the cell
// standard errors as sqrt(Σ w²·SE²). Degrees of freedom follow the
// Welch-Satterthwaite approximation per contrast, which reduces to the
// pooled value for balanced cells; the family adjustment uses the smallest
// per-contrast value and warns when the cells disagree.
func EvaluateMeans(cells []Cell, contrasts []Contrast, policy Policy) ([]Result, error) {
	if len(cells) < 2 {
		return nil, errors.NewValueError("contrast.EvaluateMeans", "need at least two cells")
	}
	if policy == nil {
		return nil, errors.NewValueError("contrast.EvaluateMeans", "policy must not be nil")
	}
	for _, cell := range cells {
		if math.IsNaN(cell.Mean) || math.IsInf(cell.Mean, 0) {
			return nil, errors.NewValidationError("cells", "cell mean must be finite", cell.Name)
		}
		if !(cell.SE > 0) || math.IsInf(cell.SE, 0) {
			return nil, errors.NewValidationError("cells", "cell standard error must be positive and finite", cell.Name)
		}
		if !(cell.DF > 0) || math.IsInf(cell.DF, 0) {
			return nil, errors.NewValidationError("cells", "cell degrees of freedom must be positive and finite", cell.Name)
		}
	}

	k := len(cells)
	results := make([]Result, len(contrasts))
	family := Family{
		P:      make([]float64, len(contrasts)),
		T:      make([]float64, len(contrasts)),
		DF:     math.Inf(1),
		Groups: k,
	}
	minDF, maxDF := math.Inf(1), 0.0
	for i, c := range contrasts {
		if len(c.Weights) != k {
			return nil, errors.NewDimensionError("contrast.EvaluateMeans", k, len(c.Weights), 1)
		}
		if err := errors.CheckFinite("contrast.EvaluateMeans", c.Weights); err != nil {
			return nil, err
		}
		var sum float64
		for _, w := range c.Weights {
			sum += w
		}
		if math.Abs(sum) > WeightSumTolerance {
			return nil, errors.NewValidationError("weights", "contrast weights must sum to zero", sum)
		}
		if allZero(c.Weights) {
			return nil, errors.NewValidationError("weights", "contrast weights must not all be zero", c.Name)
		}

		var est, variance, wsDenom float64
		for j, w := range c.Weights {
			est += w * cells[j].Mean
			a := w * w * cells[j].SE * cells[j].SE
			variance += a
			wsDenom += a * a / cells[j].DF
		}
		se := math.Sqrt(variance)
		df := variance * variance / wsDenom
		t := est / se
		pRaw := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t))

		results[i] = Result{Name: c.Name, Estimate: est, StdErr: se, T: t, DF: df, PValue: pRaw}
		family.P[i], family.T[i] = pRaw, t
		minDF = math.Min(minDF, df)
		maxDF = math.Max(maxDF, df)
	}

	if len(contrasts) > 0 {
		family.DF = minDF
		if maxDF-minDF > 1e-9 {
			sizes := make([]int, k)
			for j, cell := range cells {
				sizes[j] = int(math.Round(cell.DF))
			}
			errors.Warn(errors.NewUnbalancedGroupsWarning("contrast.EvaluateMeans", sizes,
				"family adjustment uses the smallest per-contrast degrees of freedom"))
		}
	}

	adjusted, err := policy.Adjust(family)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].AdjustedP = adjusted[i]
	}

	log.GetLoggerWithName("contrast").Debug("mean contrasts evaluated",
		log.OperationKey, log.OperationEvaluate,
		log.AdjustmentKey, policy.Name(),
		log.FamilySizeKey, len(contrasts),
	)
	return results, nil
}

func allZero(w []float64) bool {
	for _, v := range w {
		if v != 0 {
			return false
		}
	}
	return true
}

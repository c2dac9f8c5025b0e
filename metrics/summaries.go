// Package metrics computes fit summaries of linear models: coefficient of
// determination, Gaussian log-likelihood and the information criteria
// usually read alongside F tests when choosing between candidate models.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/statkit/glm/linear"
	"github.com/statkit/glm/pkg/errors"
)

// RSquared returns the coefficient of determination of a fit. The total sum
// of squares is centered when the design carries an intercept and raw
// otherwise, so a no-intercept model is judged against the zero prediction
// rather than the mean.
func RSquared(m *linear.FittedModel) (float64, error) {
	if m == nil {
		return 0, errors.NewValueError("metrics.RSquared", "model must not be nil")
	}
	tss := totalSS(m)
	if tss <= 0 {
		return 0, errors.NewValueError("metrics.RSquared",
			"response has zero total sum of squares; R² is undefined")
	}
	return 1 - m.RSS()/tss, nil
}

// AdjustedRSquared returns R² penalized for model size,
// 1 - (1-R²)·(n-i)/(n-p), with i = 1 when the design has an intercept.
func AdjustedRSquared(m *linear.FittedModel) (float64, error) {
	r2, err := RSquared(m)
	if err != nil {
		return 0, err
	}
	if m.DFResidual() <= 0 {
		return 0, errors.NewValueError("metrics.AdjustedRSquared",
			"model has zero residual degrees of freedom")
	}
	base := float64(m.NumObs())
	if m.Design().HasIntercept() {
		base--
	}
	return 1 - (1-r2)*base/float64(m.DFResidual()), nil
}

// LogLikelihood returns the maximized Gaussian log-likelihood of the fit,
// -n/2·(log 2π + log(RSS/n) + 1). A zero-residual fit has an unbounded
// likelihood and is rejected.
func LogLikelihood(m *linear.FittedModel) (float64, error) {
	if m == nil {
		return 0, errors.NewValueError("metrics.LogLikelihood", "model must not be nil")
	}
	if m.RSS() <= 0 {
		return 0, errors.NewValueError("metrics.LogLikelihood",
			"residual sum of squares is zero; the Gaussian likelihood is unbounded")
	}
	n := float64(m.NumObs())
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(m.RSS()/n) + 1), nil
}

// AIC returns Akaike's information criterion, -2·logLik + 2·k, counting the
// rank of the design plus the error variance as parameters.
func AIC(m *linear.FittedModel) (float64, error) {
	ll, err := LogLikelihood(m)
	if err != nil {
		return 0, err
	}
	k := float64(m.Rank() + 1)
	return -2*ll + 2*k, nil
}

// BIC returns the Bayesian information criterion, -2·logLik + log(n)·k,
// with the same parameter count as AIC.
func BIC(m *linear.FittedModel) (float64, error) {
	ll, err := LogLikelihood(m)
	if err != nil {
		return 0, err
	}
	k := float64(m.Rank() + 1)
	return -2*ll + math.Log(float64(m.NumObs()))*k, nil
}

func totalSS(m *linear.FittedModel) float64 {
	y := m.Response()
	var tss float64
	if m.Design().HasIntercept() {
		mean := stat.Mean(y, nil)
		for _, v := range y {
			d := v - mean
			tss += d * d
		}
		return tss
	}
	for _, v := range y {
		tss += v * v
	}
	return tss
}

// MSE returns the mean squared error between two value vectors.
func MSE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("metrics.MSE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("metrics.MSE", n, len(yPred), 0)
	}
	var sum float64
	for i, v := range yTrue {
		d := v - yPred[i]
		sum += d * d
	}
	return sum / float64(n), nil
}

// RMSE returns the root mean squared error between two value vectors.
func RMSE(yTrue, yPred []float64) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error between two value vectors.
func MAE(yTrue, yPred []float64) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("metrics.MAE", "empty vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("metrics.MAE", n, len(yPred), 0)
	}
	var sum float64
	for i, v := range yTrue {
		sum += math.Abs(v - yPred[i])
	}
	return sum / float64(n), nil
}

package contrast

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// Quadrature sizes for the studentized range tail. The integrands are smooth,
// so fixed Gauss-Legendre rules of this order put the result well inside the
// 1e-6 tolerance the k=2 identity with the t distribution is tested at.
const (
	rangeOuterNodes = 128
	rangeInnerNodes = 64
)

// studentizedRangeSurvival returns P(Q >= q) for the studentized range Q of
// k independent standard normal means with nu error degrees of freedom.
//
// Writing S for the square root of an independent chi-squared over nu, the
// distribution function is
//
//	P(Q <= q) = ∫ f_S(s) · P(range of k normals <= q·s) ds
//
// with the inner probability k·∫ φ(z)·[Φ(z) - Φ(z-u)]^(k-1) dz. Both
// integrals are evaluated with fixed Gauss-Legendre rules; the outer
// integration runs between the 1e-12 and 1-1e-12 quantiles of S, and the
// inner over z in [-9, 9], beyond which the normal density contributes
// nothing at double precision.
func studentizedRangeSurvival(q float64, k int, nu float64) float64 {
	if q <= 0 {
		return 1
	}

	chi2 := distuv.ChiSquared{K: nu}
	sLo := math.Sqrt(chi2.Quantile(1e-12) / nu)
	sHi := math.Sqrt(chi2.Quantile(1-1e-12) / nu)

	chi := distuv.Chi{K: nu}
	sqrtNu := math.Sqrt(nu)
	cdf := quad.Fixed(func(s float64) float64 {
		// Density of S = chi_nu/sqrt(nu) by change of variable.
		return sqrtNu * chi.Prob(s*sqrtNu) * rangeCDF(q*s, k)
	}, sLo, sHi, rangeOuterNodes, quad.Legendre{}, 0)

	p := 1 - cdf
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// rangeCDF returns P(range of k independent standard normals <= u).
func rangeCDF(u float64, k int) float64 {
	if u <= 0 {
		return 0
	}
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	inner := quad.Fixed(func(z float64) float64 {
		return norm.Prob(z) * math.Pow(norm.CDF(z)-norm.CDF(z-u), float64(k-1))
	}, -9, 9, rangeInnerNodes, quad.Legendre{}, 0)
	return float64(k) * inner
}

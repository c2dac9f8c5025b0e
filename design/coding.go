package design

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statkit/glm/pkg/errors"
)

// A Coding turns a categorical factor with k observed levels into k-1 design
// columns. The library ships the four standard codings plus fully custom
// matrices; all of them produce exactly levels-1 mutually independent
// columns, which the resolver verifies before any expansion happens.
type Coding struct {
	kind   codingKind
	custom [][]float64
}

type codingKind int

const (
	treatmentCoding codingKind = iota
	sumCoding
	helmertCoding
	polyCoding
	customCoding
)

// Treatment returns dummy coding with the first observed level as the
// reference: column j is the indicator of level j+1. This is the default
// coding applied to any factor without an assigned one.
func Treatment() Coding { return Coding{kind: treatmentCoding} }

// SumToZero returns sum-to-zero (deviation) coding: column j is 1 for level
// j, -1 for the last level, 0 otherwise, so coefficients measure deviations
// from the grand mean.
func SumToZero() Coding { return Coding{kind: sumCoding} }

// Helmert returns Helmert coding: column j contrasts level j+1 against the
// mean of all earlier levels. The columns are mutually orthogonal.
func Helmert() Coding { return Coding{kind: helmertCoding} }

// Polynomial returns orthogonal polynomial coding over equally spaced level
// scores: linear, quadratic, cubic and higher trend columns, each scaled to
// unit length.
func Polynomial() Coding { return Coding{kind: polyCoding} }

// Custom returns a caller-supplied coding. Each argument is one contrast
// column over the factor's observed levels in first-appearance order, so a
// factor with k levels needs exactly k-1 columns of length k, and the
// columns must be linearly independent. Violations surface as a
// MissingContrastError when the spec is resolved against a dataset.
func Custom(columns ...[]float64) Coding {
	cols := make([][]float64, len(columns))
	for i, c := range columns {
		cols[i] = make([]float64, len(c))
		copy(cols[i], c)
	}
	return Coding{kind: customCoding, custom: cols}
}

// Name returns the coding name as it appears in diagnostics.
func (c Coding) Name() string {
	switch c.kind {
	case treatmentCoding:
		return "treatment"
	case sumCoding:
		return "sum"
	case helmertCoding:
		return "helmert"
	case polyCoding:
		return "poly"
	case customCoding:
		return "custom"
	default:
		return "unknown"
	}
}

// matrix materializes the k×(k-1) coding matrix for a factor with the given
// observed levels, together with the label suffix of each column.
func (c Coding) matrix(factor string, levels []string) (*mat.Dense, []string, error) {
	k := len(levels)
	if k < 2 {
		return nil, nil, errors.NewMissingContrastError(factor,
			fmt.Sprintf("factor has %d observed level(s); at least 2 required", k))
	}

	switch c.kind {
	case treatmentCoding:
		m := mat.NewDense(k, k-1, nil)
		names := make([]string, k-1)
		for j := 0; j < k-1; j++ {
			m.Set(j+1, j, 1)
			names[j] = levels[j+1]
		}
		return m, names, nil

	case sumCoding:
		m := mat.NewDense(k, k-1, nil)
		for j := 0; j < k-1; j++ {
			m.Set(j, j, 1)
			m.Set(k-1, j, -1)
		}
		return m, indexNames(k - 1), nil

	case helmertCoding:
		m := mat.NewDense(k, k-1, nil)
		for j := 0; j < k-1; j++ {
			for i := 0; i <= j; i++ {
				m.Set(i, j, -1)
			}
			m.Set(j+1, j, float64(j+1))
		}
		return m, indexNames(k - 1), nil

	case polyCoding:
		return polyMatrix(k), polyNames(k - 1), nil

	case customCoding:
		return c.customMatrix(factor, k)

	default:
		return nil, nil, errors.NewMissingContrastError(factor, "unknown coding kind")
	}
}

// customMatrix validates and assembles a caller-supplied coding.
func (c Coding) customMatrix(factor string, k int) (*mat.Dense, []string, error) {
	if len(c.custom) != k-1 {
		return nil, nil, errors.NewMissingContrastError(factor,
			fmt.Sprintf("custom coding has %d column(s); a %d-level factor needs %d", len(c.custom), k, k-1))
	}
	m := mat.NewDense(k, k-1, nil)
	for j, col := range c.custom {
		if len(col) != k {
			return nil, nil, errors.NewMissingContrastError(factor,
				fmt.Sprintf("custom coding column %d has length %d; factor has %d levels", j+1, len(col), k))
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, errors.NewMissingContrastError(factor,
					fmt.Sprintf("custom coding column %d contains non-finite value %g", j+1, v))
			}
			m.Set(i, j, v)
		}
	}

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return nil, nil, errors.NewMissingContrastError(factor, "custom coding could not be factorized")
	}
	if svd.Rank(codingRankTol) < k-1 {
		return nil, nil, errors.NewMissingContrastError(factor, "custom coding columns are linearly dependent")
	}
	return m, indexNames(k - 1), nil
}

// codingRankTol is the relative singular-value cutoff used to decide whether
// custom contrast columns are mutually independent.
const codingRankTol = 1e-12

// polyMatrix builds orthogonal polynomial contrasts for k equally spaced
// levels: Gram-Schmidt on the centered power basis, each column normalized
// to unit length. For k=3 this yields the familiar linear (-1,0,1)/sqrt(2)
// and quadratic (1,-2,1)/sqrt(6) columns.
func polyMatrix(k int) *mat.Dense {
	center := float64(k+1) / 2
	basis := make([][]float64, k)
	for d := 0; d < k; d++ {
		basis[d] = make([]float64, k)
		for i := 0; i < k; i++ {
			basis[d][i] = math.Pow(float64(i+1)-center, float64(d))
		}
	}

	// Modified Gram-Schmidt; the d=0 constant column is used for
	// orthogonalization but not emitted.
	for d := 0; d < k; d++ {
		for prev := 0; prev < d; prev++ {
			dot := 0.0
			norm2 := 0.0
			for i := 0; i < k; i++ {
				dot += basis[d][i] * basis[prev][i]
				norm2 += basis[prev][i] * basis[prev][i]
			}
			for i := 0; i < k; i++ {
				basis[d][i] -= dot / norm2 * basis[prev][i]
			}
		}
	}

	m := mat.NewDense(k, k-1, nil)
	for d := 1; d < k; d++ {
		norm := 0.0
		for i := 0; i < k; i++ {
			norm += basis[d][i] * basis[d][i]
		}
		norm = math.Sqrt(norm)
		for i := 0; i < k; i++ {
			m.Set(i, d-1, basis[d][i]/norm)
		}
	}
	return m
}

// indexNames labels coding columns "1".."n", matching the printed output of
// sum, Helmert and custom codings in standard statistical environments.
func indexNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%d", i+1)
	}
	return names
}

// polyNames labels polynomial columns .L, .Q, .C and then ^4, ^5, ...
func polyNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		switch i {
		case 0:
			names[i] = ".L"
		case 1:
			names[i] = ".Q"
		case 2:
			names[i] = ".C"
		default:
			names[i] = fmt.Sprintf("^%d", i+1)
		}
	}
	return names
}

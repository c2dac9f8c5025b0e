package anova

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statkit/glm/dataset"
	"github.com/statkit/glm/design"
	"github.com/statkit/glm/linear"
	"github.com/statkit/glm/pkg/errors"
)

// TableRow is one term of a sequential decomposition.
type TableRow struct {
	// Term is the model term label, e.g. "group" or "group:dose".
	Term string

	// DF is the degrees of freedom the term consumes and SumSq the extra
	// sum of squares it explains over the preceding terms.
	DF    int
	SumSq float64

	// MeanSq is SumSq/DF. F tests the term's MeanSq against the residual
	// mean square of the full model, with PValue the upper F tail.
	MeanSq float64
	F      float64
	PValue float64
}

// Table is a sequential (Type I) analysis-of-variance decomposition: each
// row tests one term against the model of all preceding terms, and every
// row's denominator is the residual mean square of the full model.
//
// Because terms are added in specification order, the rows of an unbalanced
// design depend on that order; only balanced orthogonal designs decompose
// identically under reordering.
type Table struct {
	// Response names the response column the decomposition explains.
	Response string

	// Rows holds one entry per term, in specification order.
	Rows []TableRow

	// ResidualDF and ResidualSS describe the full model's leftover.
	ResidualDF int
	ResidualSS float64

	// NumObs is the number of observations.
	NumObs int
}

// String renders the table in the classic layout.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of Variance Table\n\nResponse: %s\n", t.Response)
	fmt.Fprintf(&b, "%-14s %4s %10s %10s %9s %11s\n", "", "Df", "Sum Sq", "Mean Sq", "F value", "Pr(>F)")
	for _, r := range t.Rows {
		fmt.Fprintf(&b, "%-14s %4d %10.4f %10.4f %9.4f %11.5g\n",
			r.Term, r.DF, r.SumSq, r.MeanSq, r.F, r.PValue)
	}
	fmt.Fprintf(&b, "%-14s %4d %10.4f %10.4f\n",
		"Residuals", t.ResidualDF, t.ResidualSS, t.ResidualSS/float64(t.ResidualDF))
	return b.String()
}

// Sequential fits the nested chain of prefix models of spec against the
// named response and decomposes the explained sum of squares term by term.
// Each prefix pair is validated through Compare, so the chain inherits all
// of its comparability checks.
//
// The specification must keep the intercept (the chain starts at the
// intercept-only model) and the full model must retain at least one residual
// degree of freedom. Build options apply to every prefix design.
func Sequential(ds *dataset.Dataset, response string, spec *design.Spec, opts ...design.BuildOption) (*Table, error) {
	if ds == nil {
		return nil, errors.NewValueError("anova.Sequential", "dataset must not be nil")
	}
	if spec == nil {
		return nil, errors.NewValueError("anova.Sequential", "spec must not be nil")
	}
	if !spec.HasIntercept() {
		return nil, errors.NewValueError("anova.Sequential", "sequential decomposition requires an intercept")
	}

	y, err := ds.Response(response)
	if err != nil {
		return nil, err
	}

	// Fit the chain of prefix models, intercept-only first.
	terms := spec.Terms()
	fits := make([]*linear.FittedModel, len(terms)+1)
	for i := 0; i <= len(terms); i++ {
		x, err := design.Build(spec.Prefix(i), ds, opts...)
		if err != nil {
			return nil, err
		}
		fits[i], err = linear.Fit(x, y)
		if err != nil {
			return nil, err
		}
	}

	full := fits[len(terms)]
	dfRes := full.DFResidual()
	if dfRes <= 0 {
		return nil, errors.NewInvalidComparisonError("anova.Sequential",
			"full model is saturated; no residual degrees of freedom remain")
	}
	msRes := full.RSS() / float64(dfRes)

	rows := make([]TableRow, len(terms))
	for i, term := range terms {
		cmp, err := Compare(fits[i], fits[i+1])
		if err != nil {
			return nil, err
		}
		ss := cmp.RSSRestricted - cmp.RSSGeneral
		if ss < 0 {
			ss = 0
		}
		df := cmp.DFNum
		meanSq := ss / float64(df)
		f := meanSq / msRes
		rows[i] = TableRow{
			Term:   term.String(),
			DF:     df,
			SumSq:  ss,
			MeanSq: meanSq,
			F:      f,
			PValue: distuv.F{D1: float64(df), D2: float64(dfRes)}.Survival(f),
		}
	}

	return &Table{
		Response:   response,
		Rows:       rows,
		ResidualDF: dfRes,
		ResidualSS: full.RSS(),
		NumObs:     full.NumObs(),
	}, nil
}

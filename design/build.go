// Package design expands model specifications into numeric design matrices.
//
// A Spec lists model terms (main effects and interactions) plus per-factor
// contrast codings; Build resolves the spec against a dataset and produces
// an immutable Matrix with R-convention column names such as "(Intercept)",
// "groupB" and "group.L:dose". Categorical predictors expand through one of
// the standard codings (Treatment, SumToZero, Helmert, Polynomial) or a
// Custom matrix; numeric predictors pass through unchanged unless
// standardization is requested.
package design

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/statkit/glm/core/parallel"
	"github.com/statkit/glm/dataset"
	"github.com/statkit/glm/pkg/errors"
	"github.com/statkit/glm/pkg/log"
)

// Row expansion switches to chunked parallel execution above this many
// observations.
const parallelThreshold = 1000

// BuildOption configures a single Build call.
type BuildOption func(*builder)

// WithStandardized centers numeric predictors and scales them to unit
// standard deviation before expansion, so interaction products use the
// standardized values too. Coefficients of a standardized fit are in
// standard-deviation units. Constant columns are centered but not scaled.
func WithStandardized() BuildOption {
	return func(b *builder) {
		b.standardize = true
	}
}

type builder struct {
	standardize bool
}

// encoding is one resolved predictor: either a numeric pass-through column
// or a factor with its materialized contrast matrix.
type encoding struct {
	column   *dataset.Column
	numeric  bool
	mean     float64
	scale    float64
	contrast *mat.Dense
	names    []string
	width    int
}

// value returns the j-th expansion column of the predictor at the given row.
func (e *encoding) value(row, j int) float64 {
	if e.numeric {
		return (e.column.Float(row) - e.mean) / e.scale
	}
	return e.contrast.At(e.column.LevelIndex(row), j)
}

// Build expands a model specification against a dataset into a design
// matrix. Columns are laid out intercept first (unless suppressed), then the
// expansion of every main-effect term in declaration order, then the product
// columns of every interaction term in declaration order. Interaction column
// blocks cycle the first constituent fastest, and every constituent's
// contrast must resolve before any product column is emitted.
//
// Failure modes: a term referencing an unknown column, a factor with fewer
// than two observed levels, and an invalid custom coding all return a
// MissingContrastError; a missing value in any referenced cell returns a
// MissingDataError naming the column and row.
func Build(spec *Spec, ds *dataset.Dataset, opts ...BuildOption) (*Matrix, error) {
	if spec == nil {
		return nil, errors.NewValueError("design.Build", "spec must not be nil")
	}
	if ds == nil {
		return nil, errors.NewValueError("design.Build", "dataset must not be nil")
	}

	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	ordered, err := orderTerms(spec.terms)
	if err != nil {
		return nil, err
	}

	// Resolve every referenced predictor once, in first-use order, before
	// any column is written. Interaction validity falls out of this: a
	// product block only exists once all constituents resolved.
	encodings := make(map[string]*encoding)
	for _, t := range ordered {
		for _, name := range t.predictors {
			if _, done := encodings[name]; done {
				continue
			}
			e, err := b.resolve(spec, ds, name)
			if err != nil {
				return nil, err
			}
			encodings[name] = e
		}
	}

	// Column layout.
	type block struct {
		offset int
		width  int
		encs   []*encoding
	}
	var names []string
	if spec.intercept {
		names = append(names, InterceptName)
	}
	blocks := make([]block, 0, len(ordered))
	for _, t := range ordered {
		encs := make([]*encoding, len(t.predictors))
		width := 1
		for i, name := range t.predictors {
			encs[i] = encodings[name]
			width *= encs[i].width
		}
		blocks = append(blocks, block{offset: len(names), width: width, encs: encs})
		for c := 0; c < width; c++ {
			idx := c
			label := ""
			for _, e := range encs {
				part := e.names[idx%e.width]
				idx /= e.width
				if label == "" {
					label = part
				} else {
					label += ":" + part
				}
			}
			names = append(names, label)
		}
	}

	p := len(names)
	if p == 0 {
		return nil, errors.NewValueError("design.Build", "design has no columns; add terms or keep the intercept")
	}
	seen := make(map[string]struct{}, p)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return nil, errors.NewValueError("design.Build", "duplicate design column '"+name+"' (duplicate term?)")
		}
		seen[name] = struct{}{}
	}

	n := ds.NumRows()
	data := mat.NewDense(n, p, nil)
	parallel.ParallelizeWithThreshold(n, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			if spec.intercept {
				data.Set(i, 0, 1)
			}
			for _, blk := range blocks {
				for c := 0; c < blk.width; c++ {
					idx := c
					v := 1.0
					for _, e := range blk.encs {
						v *= e.value(i, idx%e.width)
						idx /= e.width
					}
					data.Set(i, blk.offset+c, v)
				}
			}
		}
	})

	log.GetLoggerWithName("design").Debug("design matrix built",
		log.OperationKey, log.OperationBuild,
		log.RowsKey, n,
		log.ColsKey, p,
		log.TermsKey, len(spec.terms),
	)

	return &Matrix{data: data, names: names}, nil
}

// orderTerms validates terms and returns them main effects first, then
// interactions, each group in declaration order.
func orderTerms(terms []Term) ([]Term, error) {
	var mains, inters []Term
	for _, t := range terms {
		if t.Order() == 0 {
			return nil, errors.NewValueError("design.Build", "term has no predictors")
		}
		seen := make(map[string]struct{}, t.Order())
		for _, name := range t.predictors {
			if _, dup := seen[name]; dup {
				return nil, errors.NewValidationError("term", "duplicate predictor in interaction", t.String())
			}
			seen[name] = struct{}{}
		}
		if t.Order() == 1 {
			mains = append(mains, t)
		} else {
			inters = append(inters, t)
		}
	}
	return append(mains, inters...), nil
}

// resolve looks up one predictor and prepares its expansion. Numeric columns
// pass through (optionally standardized); categorical columns materialize
// their assigned coding, defaulting to Treatment.
func (b *builder) resolve(spec *Spec, ds *dataset.Dataset, name string) (*encoding, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, errors.NewMissingContrastError(name, "no column named '"+name+"' in dataset")
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			return nil, errors.NewMissingDataError(name, i)
		}
	}

	if col.Kind() == dataset.Numeric {
		e := &encoding{column: col, numeric: true, scale: 1, names: []string{name}, width: 1}
		if b.standardize {
			e.mean, e.scale = momentsOf(col)
		}
		return e, nil
	}

	coding, _ := spec.CodingFor(name) // zero value is Treatment
	m, suffixes, err := coding.matrix(name, col.Levels())
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(suffixes))
	for j, s := range suffixes {
		labels[j] = name + s
	}
	return &encoding{column: col, contrast: m, names: labels, width: len(labels)}, nil
}

// momentsOf returns the mean and population standard deviation of a numeric
// column, substituting 1 for a zero deviation so constant columns survive
// standardization centered but unscaled.
func momentsOf(col *dataset.Column) (mean, scale float64) {
	n := col.Len()
	for i := 0; i < n; i++ {
		mean += col.Float(i)
	}
	mean /= float64(n)

	var ss float64
	for i := 0; i < n; i++ {
		d := col.Float(i) - mean
		ss += d * d
	}
	scale = math.Sqrt(ss / float64(n))
	if scale == 0 {
		scale = 1
	}
	return mean, scale
}

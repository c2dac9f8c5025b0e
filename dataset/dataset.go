// Package dataset provides the immutable column-oriented table the model
// builder consumes. Columns are typed (numeric or categorical) and missing
// values are tagged explicitly at construction: NaN marks a missing numeric
// entry and the empty string marks a missing label. Nothing in the library
// coerces or imputes a missing value silently.
package dataset

import (
	"math"

	"github.com/statkit/glm/pkg/errors"
)

// Kind discriminates column types.
type Kind int

const (
	// Numeric columns hold float64 observations.
	Numeric Kind = iota
	// Categorical columns hold string labels with a finite level set.
	Categorical
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is one named, typed column of observations. A Column is immutable
// after construction; accessors return copies of internal slices.
type Column struct {
	name    string
	kind    Kind
	values  []float64
	labels  []string
	codes   []int
	levels  []string
	missing []bool
}

// NewNumeric creates a numeric column. NaN entries are tagged as missing.
func NewNumeric(name string, values []float64) *Column {
	vals := make([]float64, len(values))
	copy(vals, values)
	missing := make([]bool, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			missing[i] = true
		}
	}
	return &Column{name: name, kind: Numeric, values: vals, missing: missing}
}

// NewCategorical creates a categorical column. Empty-string labels are
// tagged as missing. Levels are recorded in order of first appearance, which
// also fixes the reference level for treatment coding.
func NewCategorical(name string, labels []string) *Column {
	labs := make([]string, len(labels))
	copy(labs, labels)

	missing := make([]bool, len(labels))
	codes := make([]int, len(labels))
	var levels []string
	seen := make(map[string]int)

	for i, lab := range labels {
		if lab == "" {
			missing[i] = true
			codes[i] = -1
			continue
		}
		idx, ok := seen[lab]
		if !ok {
			idx = len(levels)
			seen[lab] = idx
			levels = append(levels, lab)
		}
		codes[i] = idx
	}

	return &Column{
		name:    name,
		kind:    Categorical,
		labels:  labs,
		codes:   codes,
		levels:  levels,
		missing: missing,
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of observations.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.values)
	}
	return len(c.labels)
}

// IsMissing reports whether the observation at row i is missing.
func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// HasMissing reports whether the column contains any missing observation.
func (c *Column) HasMissing() bool {
	for _, m := range c.missing {
		if m {
			return true
		}
	}
	return false
}

// Float returns the numeric value at row i. Only valid for numeric columns;
// callers must check IsMissing first.
func (c *Column) Float(i int) float64 { return c.values[i] }

// Label returns the label at row i. Only valid for categorical columns.
func (c *Column) Label(i int) string { return c.labels[i] }

// LevelIndex returns the index into Levels of the label at row i, or -1 when
// the observation is missing. Only valid for categorical columns.
func (c *Column) LevelIndex(i int) int { return c.codes[i] }

// Levels returns the distinct observed labels in order of first appearance.
func (c *Column) Levels() []string {
	out := make([]string, len(c.levels))
	copy(out, c.levels)
	return out
}

// Floats returns a copy of all numeric values, missing entries included as NaN.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.values))
	copy(out, c.values)
	return out
}

// Dataset is an ordered collection of equal-length columns, rows aligned by
// observation index. A Dataset is read-only after construction and safe for
// concurrent use.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles columns into a Dataset. All columns must be non-empty, of
// equal length, and uniquely named.
func New(cols ...*Column) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}

	rows := cols[0].Len()
	if rows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset.New")
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Name() == "" {
			return nil, errors.NewValueError("dataset.New", "column name must not be empty")
		}
		if _, dup := index[c.Name()]; dup {
			return nil, errors.NewValueError("dataset.New", "duplicate column name '"+c.Name()+"'")
		}
		if c.Len() != rows {
			return nil, errors.NewDimensionError("dataset.New", rows, c.Len(), 0)
		}
		index[c.Name()] = i
	}

	return &Dataset{cols: cols, index: index, rows: rows}, nil
}

// NumRows returns the number of observations.
func (d *Dataset) NumRows() int { return d.rows }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Column returns the named column.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// ColumnNames returns column names in declaration order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name()
	}
	return names
}

// Response extracts the named numeric column as a response vector. It fails
// with a MissingDataError at the first missing observation, and with a
// ValueError when the column is categorical or absent.
func (d *Dataset) Response(name string) ([]float64, error) {
	col, ok := d.Column(name)
	if !ok {
		return nil, errors.NewValueError("dataset.Response", "no column named '"+name+"'")
	}
	if col.Kind() != Numeric {
		return nil, errors.NewValueError("dataset.Response", "column '"+name+"' is categorical; a response must be numeric")
	}
	for i := 0; i < col.Len(); i++ {
		if col.IsMissing(i) {
			return nil, errors.NewMissingDataError(name, i)
		}
	}
	return col.Floats(), nil
}

package design

import (
	"gonum.org/v1/gonum/mat"

	"github.com/statkit/glm/pkg/errors"
)

// InterceptName is the label of the intercept column.
const InterceptName = "(Intercept)"

// Matrix is a fully expanded design matrix: one row per observation, one
// named column per intercept/contrast/interaction dimension. A Matrix is
// immutable after construction; the solver and the comparator only ever read
// it.
type Matrix struct {
	data  *mat.Dense
	names []string
}

// NewMatrix wraps column names and data into a Matrix, copying the data. It
// exists for callers that assemble designs by hand; Build is the usual
// constructor.
func NewMatrix(names []string, data *mat.Dense) (*Matrix, error) {
	if data == nil {
		return nil, errors.NewValueError("design.NewMatrix", "data must not be nil")
	}
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "design.NewMatrix")
	}
	if len(names) != c {
		return nil, errors.NewDimensionError("design.NewMatrix", c, len(names), 1)
	}
	seen := make(map[string]struct{}, c)
	for _, n := range names {
		if n == "" {
			return nil, errors.NewValueError("design.NewMatrix", "column name must not be empty")
		}
		if _, dup := seen[n]; dup {
			return nil, errors.NewValueError("design.NewMatrix", "duplicate column name '"+n+"'")
		}
		seen[n] = struct{}{}
	}

	d := mat.NewDense(r, c, nil)
	d.Copy(data)
	ns := make([]string, c)
	copy(ns, names)
	return &Matrix{data: d, names: ns}, nil
}

// Dims returns the number of rows (observations) and columns.
func (m *Matrix) Dims() (rows, cols int) { return m.data.Dims() }

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 { return m.data.At(i, j) }

// ColumnNames returns the column labels in order.
func (m *Matrix) ColumnNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// ColumnIndex returns the position of the named column.
func (m *Matrix) ColumnIndex(name string) (int, bool) {
	for i, n := range m.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// HasIntercept reports whether the design carries an intercept column.
func (m *Matrix) HasIntercept() bool {
	_, ok := m.ColumnIndex(InterceptName)
	return ok
}

// Mat returns the design as a read-only gonum matrix view. The returned
// value shares storage with the Matrix, so callers must not type-assert and
// mutate it; use Data for an owned copy.
func (m *Matrix) Mat() mat.Matrix { return m.data }

// Data returns an owned copy of the design values.
func (m *Matrix) Data() *mat.Dense {
	r, c := m.data.Dims()
	d := mat.NewDense(r, c, nil)
	d.Copy(m.data)
	return d
}

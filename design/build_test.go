package design

import (
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/statkit/glm/dataset"
	"github.com/statkit/glm/pkg/errors"
)

func threeGroupData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.NewCategorical("group", []string{"A", "A", "B", "B", "C", "C"}),
		dataset.NewNumeric("dose", []float64{1, 2, 3, 4, 5, 6}),
		dataset.NewNumeric("y", []float64{1.1, 1.9, 3.2, 3.8, 5.1, 5.9}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	return ds
}

func TestBuildTreatmentDefault(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec([]Term{MainEffect("group")})

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rows, cols := m.Dims()
	if rows != 6 || cols != 3 {
		t.Fatalf("Dims() = (%d, %d), want (6, 3)", rows, cols)
	}
	wantNames := []string{InterceptName, "groupB", "groupC"}
	if got := m.ColumnNames(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", got, wantNames)
	}

	// Treatment coding: level A is the reference, each indicator is 0/1.
	want := [][]float64{
		{1, 0, 0},
		{1, 0, 0},
		{1, 1, 0},
		{1, 1, 0},
		{1, 0, 1},
		{1, 0, 1},
	}
	for i, row := range want {
		for j, v := range row {
			if m.At(i, j) != v {
				t.Errorf("design[%d,%d] = %v, want %v", i, j, m.At(i, j), v)
			}
		}
	}
}

func TestBuildNumericPassThrough(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec([]Term{MainEffect("dose")})

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, cols := m.Dims(); cols != 2 {
		t.Fatalf("cols = %d, want 2", cols)
	}
	for i := 0; i < 6; i++ {
		if m.At(i, 1) != float64(i+1) {
			t.Errorf("dose column row %d = %v, want %v", i, m.At(i, 1), float64(i+1))
		}
	}
}

func TestBuildInteractionLayout(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec([]Term{
		MainEffect("group"),
		MainEffect("dose"),
		Interaction("group", "dose"),
	})

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Intercept, then main effects in declaration order, then interactions.
	wantNames := []string{InterceptName, "groupB", "groupC", "dose", "groupB:dose", "groupC:dose"}
	if got := m.ColumnNames(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", got, wantNames)
	}

	// Product columns are elementwise products of the expansions.
	for i := 0; i < 6; i++ {
		if got, want := m.At(i, 4), m.At(i, 1)*m.At(i, 3); got != want {
			t.Errorf("groupB:dose row %d = %v, want %v", i, got, want)
		}
		if got, want := m.At(i, 5), m.At(i, 2)*m.At(i, 3); got != want {
			t.Errorf("groupC:dose row %d = %v, want %v", i, got, want)
		}
	}
}

func TestBuildInteractionComponentOrder(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec([]Term{Interaction("dose", "group")})

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantNames := []string{InterceptName, "dose:groupB", "dose:groupC"}
	if got := m.ColumnNames(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", got, wantNames)
	}
}

func TestBuildTwoFactorInteractionCyclesFirstFastest(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewCategorical("a", []string{"a1", "a2", "a3", "a1", "a2", "a3"}),
		dataset.NewCategorical("b", []string{"b1", "b1", "b1", "b2", "b2", "b2"}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	spec := NewSpec([]Term{Interaction("a", "b")})

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// a expands to 2 columns, b to 1; the first component cycles fastest.
	wantNames := []string{InterceptName, "aa2:bb2", "aa3:bb2"}
	if got := m.ColumnNames(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", got, wantNames)
	}
	// Row 4 is (a2, b2): indicator product 1*1 for aa2:bb2.
	if m.At(4, 1) != 1 || m.At(4, 2) != 0 {
		t.Errorf("row 4 = (%v, %v), want (1, 0)", m.At(4, 1), m.At(4, 2))
	}
}

func TestBuildWithoutIntercept(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec([]Term{MainEffect("dose")}, WithoutIntercept())

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if m.HasIntercept() {
		t.Error("HasIntercept() = true, want false")
	}
	if _, cols := m.Dims(); cols != 1 {
		t.Errorf("cols = %d, want 1", cols)
	}
}

func TestBuildWithCoding(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec(
		[]Term{MainEffect("group")},
		WithCoding("group", SumToZero()),
	)

	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantNames := []string{InterceptName, "group1", "group2"}
	if got := m.ColumnNames(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", got, wantNames)
	}
	// Last level C codes as (-1, -1).
	if m.At(4, 1) != -1 || m.At(4, 2) != -1 {
		t.Errorf("row 4 = (%v, %v), want (-1, -1)", m.At(4, 1), m.At(4, 2))
	}
}

func TestBuildWithStandardized(t *testing.T) {
	ds := threeGroupData(t)
	spec := NewSpec([]Term{MainEffect("dose")})

	m, err := Build(spec, ds, WithStandardized())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// The standardized column has mean 0 and unit population deviation.
	n, _ := m.Dims()
	var sum, ss float64
	for i := 0; i < n; i++ {
		sum += m.At(i, 1)
	}
	mean := sum / float64(n)
	for i := 0; i < n; i++ {
		d := m.At(i, 1) - mean
		ss += d * d
	}
	if math.Abs(mean) > 1e-12 {
		t.Errorf("standardized mean = %v, want 0", mean)
	}
	if sd := math.Sqrt(ss / float64(n)); math.Abs(sd-1) > 1e-12 {
		t.Errorf("standardized deviation = %v, want 1", sd)
	}
}

func TestBuildStandardizedConstantColumn(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("c", []float64{7, 7, 7, 7}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	spec := NewSpec([]Term{MainEffect("c")})

	m, err := Build(spec, ds, WithStandardized())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// Constant columns are centered but not scaled.
	for i := 0; i < 4; i++ {
		if m.At(i, 1) != 0 {
			t.Errorf("row %d = %v, want 0", i, m.At(i, 1))
		}
	}
}

func TestBuildErrors(t *testing.T) {
	ds := threeGroupData(t)

	tests := []struct {
		name  string
		spec  *Spec
		check func(t *testing.T, err error)
	}{
		{
			name: "unknown column",
			spec: NewSpec([]Term{MainEffect("treatmentarm")}),
			check: func(t *testing.T, err error) {
				var mcErr *errors.MissingContrastError
				if !errors.As(err, &mcErr) {
					t.Fatalf("got %v, want MissingContrastError", err)
				}
				if mcErr.Factor != "treatmentarm" {
					t.Errorf("Factor = %q, want %q", mcErr.Factor, "treatmentarm")
				}
			},
		},
		{
			name: "nil spec",
			spec: nil,
			check: func(t *testing.T, err error) {
				var valErr *errors.ValueError
				if !errors.As(err, &valErr) {
					t.Fatalf("got %v, want ValueError", err)
				}
			},
		},
		{
			name: "empty design",
			spec: NewSpec(nil, WithoutIntercept()),
			check: func(t *testing.T, err error) {
				var valErr *errors.ValueError
				if !errors.As(err, &valErr) {
					t.Fatalf("got %v, want ValueError", err)
				}
			},
		},
		{
			name: "duplicate term",
			spec: NewSpec([]Term{MainEffect("dose"), MainEffect("dose")}),
			check: func(t *testing.T, err error) {
				var valErr *errors.ValueError
				if !errors.As(err, &valErr) {
					t.Fatalf("got %v, want ValueError", err)
				}
			},
		},
		{
			name: "repeated predictor in interaction",
			spec: NewSpec([]Term{Interaction("dose", "dose")}),
			check: func(t *testing.T, err error) {
				var valErr *errors.ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("got %v, want ValidationError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.spec, ds)
			if err == nil {
				t.Fatal("Build() succeeded, want error")
			}
			tt.check(t, err)
		})
	}
}

func TestBuildMissingData(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewNumeric("dose", []float64{1, math.NaN(), 3}),
		dataset.NewCategorical("group", []string{"A", "B", ""}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}

	_, err = Build(NewSpec([]Term{MainEffect("dose")}), ds)
	var mdErr *errors.MissingDataError
	if !errors.As(err, &mdErr) {
		t.Fatalf("numeric gap: got %v, want MissingDataError", err)
	}
	if mdErr.Column != "dose" || mdErr.Row != 1 {
		t.Errorf("MissingDataError = %+v, want Column=dose Row=1", mdErr)
	}

	_, err = Build(NewSpec([]Term{MainEffect("group")}), ds)
	if !errors.As(err, &mdErr) {
		t.Fatalf("categorical gap: got %v, want MissingDataError", err)
	}
	if mdErr.Column != "group" || mdErr.Row != 2 {
		t.Errorf("MissingDataError = %+v, want Column=group Row=2", mdErr)
	}

	// A term that never touches the gappy columns builds fine.
	full, err := dataset.New(
		dataset.NewNumeric("dose", []float64{1, math.NaN(), 3}),
		dataset.NewNumeric("x", []float64{4, 5, 6}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	if _, err := Build(NewSpec([]Term{MainEffect("x")}), full); err != nil {
		t.Errorf("unreferenced missing data should not fail the build: %v", err)
	}
}

func TestBuildSingleLevelFactor(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewCategorical("group", []string{"A", "A", "A"}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}

	_, err = Build(NewSpec([]Term{MainEffect("group")}), ds)
	var mcErr *errors.MissingContrastError
	if !errors.As(err, &mcErr) {
		t.Fatalf("got %v, want MissingContrastError", err)
	}
}

func TestBuildLargeDatasetParallelPath(t *testing.T) {
	// Enough rows to cross the chunked-expansion threshold.
	n := 4 * parallelThreshold
	labels := make([]string, n)
	values := make([]float64, n)
	groups := []string{"A", "B", "C"}
	for i := 0; i < n; i++ {
		labels[i] = groups[i%3]
		values[i] = float64(i)
	}
	ds, err := dataset.New(
		dataset.NewCategorical("group", labels),
		dataset.NewNumeric("x", values),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}

	spec := NewSpec([]Term{
		MainEffect("group"),
		MainEffect("x"),
		Interaction("group", "x"),
	})
	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rows, cols := m.Dims()
	if rows != n || cols != 6 {
		t.Fatalf("Dims() = (%d, %d), want (%d, 6)", rows, cols, n)
	}
	for _, i := range []int{0, 1, parallelThreshold, n - 2, n - 1} {
		if m.At(i, 0) != 1 {
			t.Errorf("intercept row %d = %v, want 1", i, m.At(i, 0))
		}
		if m.At(i, 3) != float64(i) {
			t.Errorf("x row %d = %v, want %v", i, m.At(i, 3), float64(i))
		}
		wantB := 0.0
		if i%3 == 1 {
			wantB = 1.0
		}
		if m.At(i, 1) != wantB {
			t.Errorf("groupB row %d = %v, want %v", i, m.At(i, 1), wantB)
		}
		if got, want := m.At(i, 4), wantB*float64(i); got != want {
			t.Errorf("groupB:x row %d = %v, want %v", i, got, want)
		}
	}
}

func TestBuildManyLevels(t *testing.T) {
	// 12 levels exercise the generated suffixes beyond single digits.
	n := 24
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = "L" + strconv.Itoa(i%12)
	}
	ds, err := dataset.New(dataset.NewCategorical("block", labels))
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}

	spec := NewSpec([]Term{MainEffect("block")}, WithCoding("block", Helmert()))
	m, err := Build(spec, ds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, cols := m.Dims(); cols != 12 {
		t.Fatalf("cols = %d, want 12", cols)
	}
	names := m.ColumnNames()
	if names[11] != "block11" {
		t.Errorf("last column = %q, want %q", names[11], "block11")
	}
}

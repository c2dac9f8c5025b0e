package anova

import (
	"math"
	"strings"
	"testing"

	"github.com/statkit/glm/dataset"
	"github.com/statkit/glm/design"
	"github.com/statkit/glm/internal/testkit"
	"github.com/statkit/glm/pkg/errors"
)

func TestSequentialOneFactor(t *testing.T) {
	ds := testkit.OneFactor(t)
	spec := design.NewSpec([]design.Term{design.MainEffect("group")})

	tab, err := Sequential(ds, "y", spec)
	if err != nil {
		t.Fatalf("Sequential() error = %v", err)
	}

	if len(tab.Rows) != 1 {
		t.Fatalf("len(Rows) = %d, want 1", len(tab.Rows))
	}
	row := tab.Rows[0]
	const tol = 1e-10
	if row.Term != "group" {
		t.Errorf("Term = %q, want %q", row.Term, "group")
	}
	if row.DF != 2 || math.Abs(row.SumSq-6) > tol || math.Abs(row.MeanSq-3) > tol {
		t.Errorf("row = %+v, want DF=2 SumSq=6 MeanSq=3", row)
	}
	if math.Abs(row.F-3) > tol || math.Abs(row.PValue-0.125) > tol {
		t.Errorf("F/p = %v/%v, want 3/0.125", row.F, row.PValue)
	}
	if tab.ResidualDF != 6 || math.Abs(tab.ResidualSS-6) > tol {
		t.Errorf("residual = %d df, SS %v, want 6 df, SS 6", tab.ResidualDF, tab.ResidualSS)
	}
	if tab.NumObs != 9 || tab.Response != "y" {
		t.Errorf("NumObs/Response = %d/%q, want 9/y", tab.NumObs, tab.Response)
	}
}

func TestSequentialBalancedFactorial(t *testing.T) {
	ds := testkit.Factorial(t)
	spec := design.NewSpec([]design.Term{
		design.MainEffect("a"),
		design.MainEffect("b"),
	})

	tab, err := Sequential(ds, "y", spec)
	if err != nil {
		t.Fatalf("Sequential() error = %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(tab.Rows))
	}

	const tol = 1e-10
	a, b := tab.Rows[0], tab.Rows[1]
	if a.Term != "a" || a.DF != 1 || math.Abs(a.SumSq-8) > tol {
		t.Errorf("row a = %+v, want DF=1 SumSq=8", a)
	}
	if b.Term != "b" || b.DF != 1 || math.Abs(b.SumSq-2) > tol {
		t.Errorf("row b = %+v, want DF=1 SumSq=2", b)
	}
	if tab.ResidualDF != 5 || math.Abs(tab.ResidualSS-2) > tol {
		t.Errorf("residual = %d df, SS %v, want 5 df, SS 2", tab.ResidualDF, tab.ResidualSS)
	}

	// Both F statistics test against the full-model residual mean square 0.4.
	if math.Abs(a.F-20) > tol {
		t.Errorf("F(a) = %v, want 20", a.F)
	}
	if math.Abs(b.F-5) > tol {
		t.Errorf("F(b) = %v, want 5", b.F)
	}
	// Tail bounds from standard F(1, 5) critical values: 16.26 at 1% and
	// 22.78 at 0.5% bracket F=20; 4.06 at 10% and 6.61 at 5% bracket F=5.
	if a.PValue <= 0.005 || a.PValue >= 0.01 {
		t.Errorf("PValue(a) = %v, want within (0.005, 0.01)", a.PValue)
	}
	if b.PValue <= 0.05 || b.PValue >= 0.10 {
		t.Errorf("PValue(b) = %v, want within (0.05, 0.10)", b.PValue)
	}

	// The decomposition adds back up to the total sum of squares.
	total := a.SumSq + b.SumSq + tab.ResidualSS
	if math.Abs(total-12) > tol {
		t.Errorf("SS total = %v, want 12", total)
	}
}

func TestSequentialOrderInvariantWhenBalanced(t *testing.T) {
	ds := testkit.Factorial(t)

	ab, err := Sequential(ds, "y", design.NewSpec([]design.Term{
		design.MainEffect("a"),
		design.MainEffect("b"),
	}))
	if err != nil {
		t.Fatalf("Sequential(a, b) error = %v", err)
	}
	ba, err := Sequential(ds, "y", design.NewSpec([]design.Term{
		design.MainEffect("b"),
		design.MainEffect("a"),
	}))
	if err != nil {
		t.Fatalf("Sequential(b, a) error = %v", err)
	}

	// The design is balanced, so each term keeps its sum of squares under
	// reordering.
	bySS := map[string]float64{}
	for _, r := range ab.Rows {
		bySS[r.Term] = r.SumSq
	}
	for _, r := range ba.Rows {
		if math.Abs(bySS[r.Term]-r.SumSq) > 1e-10 {
			t.Errorf("term %q: SS %v after reorder, want %v", r.Term, r.SumSq, bySS[r.Term])
		}
	}
}

func TestSequentialZeroInteraction(t *testing.T) {
	ds := testkit.Factorial(t)
	spec := design.NewSpec([]design.Term{
		design.MainEffect("a"),
		design.MainEffect("b"),
		design.Interaction("a", "b"),
	})

	tab, err := Sequential(ds, "y", spec)
	if err != nil {
		t.Fatalf("Sequential() error = %v", err)
	}
	if len(tab.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(tab.Rows))
	}
	// The cell means are perfectly additive.
	inter := tab.Rows[2]
	if inter.Term != "a:b" {
		t.Errorf("Term = %q, want a:b", inter.Term)
	}
	if inter.SumSq > 1e-10 {
		t.Errorf("interaction SumSq = %v, want ~0", inter.SumSq)
	}
	if tab.ResidualDF != 4 {
		t.Errorf("ResidualDF = %d, want 4", tab.ResidualDF)
	}
}

func TestSequentialValidation(t *testing.T) {
	ds := testkit.OneFactor(t)

	_, err := Sequential(ds, "y", design.NewSpec([]design.Term{design.MainEffect("group")}, design.WithoutIntercept()))
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("no intercept: got %v, want ValueError", err)
	}

	_, err = Sequential(ds, "nope", design.NewSpec([]design.Term{design.MainEffect("group")}))
	if err == nil {
		t.Error("unknown response: Sequential() succeeded, want error")
	}

	_, err = Sequential(nil, "y", design.NewSpec(nil))
	if err == nil {
		t.Error("nil dataset: Sequential() succeeded, want error")
	}
	_, err = Sequential(ds, "y", nil)
	if err == nil {
		t.Error("nil spec: Sequential() succeeded, want error")
	}
}

func TestSequentialSaturated(t *testing.T) {
	ds, err := dataset.New(
		dataset.NewCategorical("group", []string{"A", "B", "C"}),
		dataset.NewNumeric("y", []float64{1, 2, 4}),
	)
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}

	_, err = Sequential(ds, "y", design.NewSpec([]design.Term{design.MainEffect("group")}))
	var icErr *errors.InvalidComparisonError
	if !errors.As(err, &icErr) {
		t.Fatalf("got %v, want InvalidComparisonError", err)
	}
}

func TestSequentialEmptySpec(t *testing.T) {
	ds := testkit.OneFactor(t)
	tab, err := Sequential(ds, "y", design.NewSpec(nil))
	if err != nil {
		t.Fatalf("Sequential() error = %v", err)
	}
	if len(tab.Rows) != 0 {
		t.Errorf("len(Rows) = %d, want 0", len(tab.Rows))
	}
	if tab.ResidualDF != 8 || math.Abs(tab.ResidualSS-12) > 1e-10 {
		t.Errorf("residual = %d df, SS %v, want 8 df, SS 12", tab.ResidualDF, tab.ResidualSS)
	}
}

func TestTableString(t *testing.T) {
	ds := testkit.OneFactor(t)
	tab, err := Sequential(ds, "y", design.NewSpec([]design.Term{design.MainEffect("group")}))
	if err != nil {
		t.Fatalf("Sequential() error = %v", err)
	}

	s := tab.String()
	for _, want := range []string{
		"Analysis of Variance Table",
		"Response: y",
		"group",
		"Residuals",
		"Pr(>F)",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}

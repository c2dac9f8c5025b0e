package contrast

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// With two groups the range of the means is |Z1 - Z2|, so Q = |T|·√2 and the
// studentized range tail must reproduce the two-sided t tail.
func TestStudentizedRangeTwoGroups(t *testing.T) {
	for _, nu := range []float64{4, 10, 30} {
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
		for _, tStat := range []float64{0.5, 1.0, 2.0, 3.0} {
			want := 2 * tDist.Survival(tStat)
			got := studentizedRangeSurvival(tStat*math.Sqrt2, 2, nu)
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("nu=%v t=%v: survival = %.8f, want %.8f", nu, tStat, got, want)
			}
		}
	}
}

// Spot checks against the standard 5% critical values of the studentized
// range: q(0.05; k=3, nu=10) = 3.88 and q(0.05; k=4, nu=12) = 4.20.
func TestStudentizedRangeTableValues(t *testing.T) {
	tests := []struct {
		q  float64
		k  int
		nu float64
	}{
		{3.88, 3, 10},
		{4.20, 4, 12},
	}
	for _, tt := range tests {
		got := studentizedRangeSurvival(tt.q, tt.k, tt.nu)
		if got < 0.045 || got > 0.055 {
			t.Errorf("survival(%v, %d, %v) = %v, want about 0.05", tt.q, tt.k, tt.nu, got)
		}
	}
}

func TestStudentizedRangeMonotone(t *testing.T) {
	// Decreasing in q.
	prev := 1.0
	for _, q := range []float64{0.5, 1, 2, 3, 4, 6} {
		p := studentizedRangeSurvival(q, 3, 10)
		if p < 0 || p > 1 {
			t.Fatalf("survival(%v, 3, 10) = %v out of [0, 1]", q, p)
		}
		if p > prev {
			t.Errorf("survival not decreasing at q=%v: %v after %v", q, p, prev)
		}
		prev = p
	}

	// Increasing in k: more means make a large range more likely.
	p3 := studentizedRangeSurvival(3.5, 3, 10)
	p5 := studentizedRangeSurvival(3.5, 5, 10)
	if p5 <= p3 {
		t.Errorf("survival at k=5 (%v) not above k=3 (%v)", p5, p3)
	}
}

func TestStudentizedRangeEdgeCases(t *testing.T) {
	if got := studentizedRangeSurvival(0, 3, 10); got != 1 {
		t.Errorf("survival at q=0 is %v, want 1", got)
	}
	if got := studentizedRangeSurvival(-1, 3, 10); got != 1 {
		t.Errorf("survival at q<0 is %v, want 1", got)
	}
	if got := studentizedRangeSurvival(50, 3, 10); got > 1e-6 {
		t.Errorf("survival at q=50 is %v, want near 0", got)
	}
}

func TestRangeCDF(t *testing.T) {
	if got := rangeCDF(0, 3); got != 0 {
		t.Errorf("rangeCDF(0, 3) = %v, want 0", got)
	}
	// For k=2 the range is |Z1 - Z2| ~ |N(0, 2)|.
	norm := distuv.Normal{Mu: 0, Sigma: math.Sqrt2}
	for _, u := range []float64{0.5, 1, 2, 4} {
		want := norm.CDF(u) - norm.CDF(-u)
		if got := rangeCDF(u, 2); math.Abs(got-want) > 1e-8 {
			t.Errorf("rangeCDF(%v, 2) = %.10f, want %.10f", u, got, want)
		}
	}
	// CDF in [0, 1] and increasing for larger families too.
	prev := 0.0
	for _, u := range []float64{0.5, 1, 2, 3, 5} {
		got := rangeCDF(u, 6)
		if got < prev || got > 1+1e-12 {
			t.Errorf("rangeCDF(%v, 6) = %v not increasing within [0, 1]", u, got)
		}
		prev = got
	}
}

package contrast

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statkit/glm/pkg/errors"
)

// Family is the input to a multiple-comparison adjustment: the raw two-sided
// p-values and t statistics of the evaluated contrasts, the residual degrees
// of freedom they were computed at, and the number of group means behind the
// family. Bonferroni and Holm only use the comparison count len(P); Tukey
// and Scheffé additionally need Groups and DF.
type Family struct {
	P      []float64
	T      []float64
	DF     float64
	Groups int
}

// Policy adjusts a family of raw p-values for multiple comparisons. A Policy
// is a pure function of the Family; it never touches estimates or standard
// errors.
type Policy interface {
	// Name identifies the policy in diagnostics, e.g. "bonferroni".
	Name() string

	// Adjust returns one adjusted p-value per family member, in order.
	Adjust(f Family) ([]float64, error)
}

// None returns the identity policy: adjusted p-values equal raw ones.
func None() Policy { return nonePolicy{} }

type nonePolicy struct{}

func (nonePolicy) Name() string { return "none" }

func (nonePolicy) Adjust(f Family) ([]float64, error) {
	out := make([]float64, len(f.P))
	copy(out, f.P)
	return out, nil
}

// Bonferroni returns the policy that multiplies each raw p-value by the
// comparison count, capping at 1.
func Bonferroni() Policy { return bonferroniPolicy{} }

type bonferroniPolicy struct{}

func (bonferroniPolicy) Name() string { return "bonferroni" }

func (bonferroniPolicy) Adjust(f Family) ([]float64, error) {
	k := float64(len(f.P))
	out := make([]float64, len(f.P))
	for i, p := range f.P {
		out[i] = math.Min(1, p*k)
	}
	return out, nil
}

// Holm returns the step-down policy: the i-th smallest raw p-value is
// multiplied by (k-i), with a running maximum so adjusted values never
// decrease along the ordering. Uniformly no more conservative than
// Bonferroni.
func Holm() Policy { return holmPolicy{} }

type holmPolicy struct{}

func (holmPolicy) Name() string { return "holm" }

func (holmPolicy) Adjust(f Family) ([]float64, error) {
	k := len(f.P)
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return f.P[order[a]] < f.P[order[b]] })

	out := make([]float64, k)
	running := 0.0
	for i, idx := range order {
		adj := math.Min(1, float64(k-i)*f.P[idx])
		if adj < running {
			adj = running
		}
		running = adj
		out[idx] = adj
	}
	return out, nil
}

// TukeyHSD returns the studentized-range policy for all-pairs mean
// comparisons: each |t| statistic maps to q = |t|·√2 and the adjusted
// p-value is the upper tail of the studentized range of Groups means at DF
// degrees of freedom. For Groups = 2 it coincides with the raw two-sided t
// test.
func TukeyHSD() Policy { return tukeyPolicy{} }

type tukeyPolicy struct{}

func (tukeyPolicy) Name() string { return "tukey" }

func (tukeyPolicy) Adjust(f Family) ([]float64, error) {
	if f.Groups < 2 {
		return nil, errors.NewValidationError("groups",
			"Tukey HSD needs the number of group means behind the family", f.Groups)
	}
	if f.DF <= 0 {
		return nil, errors.NewValidationError("df",
			"Tukey HSD needs positive residual degrees of freedom", f.DF)
	}
	out := make([]float64, len(f.T))
	for i, t := range f.T {
		out[i] = studentizedRangeSurvival(math.Abs(t)*math.Sqrt2, f.Groups, f.DF)
	}
	return out, nil
}

// Scheffe returns the policy for arbitrary (post hoc) contrasts over Groups
// means: the adjusted p-value is the upper tail of F(Groups-1, DF) at
// t²/(Groups-1). Valid for any contrast in the means, not just pairs; for
// Groups = 2 it coincides with the raw two-sided t test.
func Scheffe() Policy { return scheffePolicy{} }

type scheffePolicy struct{}

func (scheffePolicy) Name() string { return "scheffe" }

func (scheffePolicy) Adjust(f Family) ([]float64, error) {
	if f.Groups < 2 {
		return nil, errors.NewValidationError("groups",
			"Scheffé adjustment needs the number of group means behind the family", f.Groups)
	}
	if f.DF <= 0 {
		return nil, errors.NewValidationError("df",
			"Scheffé adjustment needs positive residual degrees of freedom", f.DF)
	}
	d1 := float64(f.Groups - 1)
	fDist := distuv.F{D1: d1, D2: f.DF}
	out := make([]float64, len(f.T))
	for i, t := range f.T {
		out[i] = fDist.Survival(t * t / d1)
	}
	return out, nil
}

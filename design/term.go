package design

import "strings"

// Term is one model term: a single predictor name is a main effect, two or
// more names form an interaction whose design columns are the products of
// the constituents' expansion columns.
type Term struct {
	predictors []string
}

// MainEffect creates a main-effect term for one predictor.
func MainEffect(name string) Term {
	return Term{predictors: []string{name}}
}

// Interaction creates an interaction term over the named predictors. The
// order of names fixes the order in which expansion columns cycle (first
// name fastest) and the order of the name parts in generated column labels.
func Interaction(names ...string) Term {
	ps := make([]string, len(names))
	copy(ps, names)
	return Term{predictors: ps}
}

// Predictors returns the predictor names of the term.
func (t Term) Predictors() []string {
	out := make([]string, len(t.predictors))
	copy(out, t.predictors)
	return out
}

// Order returns the number of predictors in the term: 1 for a main effect,
// 2 for a two-way interaction, and so on.
func (t Term) Order() int { return len(t.predictors) }

// String renders the term the way model output prints it: "dose" for a main
// effect, "group:dose" for an interaction.
func (t Term) String() string { return strings.Join(t.predictors, ":") }

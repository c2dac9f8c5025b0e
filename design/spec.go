package design

// Spec is an explicit model specification: an ordered list of terms, the
// contrast coding assigned to each factor, and the intercept flag. A Spec
// carries everything the builder needs, so no process-wide defaults exist;
// two analyses of the same factor can use different codings without
// interfering.
type Spec struct {
	terms     []Term
	codings   map[string]Coding
	intercept bool
}

// SpecOption configures a Spec at construction.
type SpecOption func(*Spec)

// WithCoding assigns a contrast coding to the named factor. Factors without
// an assigned coding default to Treatment.
func WithCoding(factor string, c Coding) SpecOption {
	return func(s *Spec) {
		s.codings[factor] = c
	}
}

// WithoutIntercept suppresses the intercept column. Suppression is only ever
// requested through this option; the builder never infers it from term
// structure or formula text.
func WithoutIntercept() SpecOption {
	return func(s *Spec) {
		s.intercept = false
	}
}

// NewSpec creates a model specification over the given terms. The intercept
// is included unless WithoutIntercept is supplied.
func NewSpec(terms []Term, opts ...SpecOption) *Spec {
	s := &Spec{
		terms:     make([]Term, len(terms)),
		codings:   make(map[string]Coding),
		intercept: true,
	}
	copy(s.terms, terms)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Terms returns the terms in declaration order.
func (s *Spec) Terms() []Term {
	out := make([]Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// NumTerms returns the number of terms.
func (s *Spec) NumTerms() int { return len(s.terms) }

// HasIntercept reports whether the design includes an intercept column.
func (s *Spec) HasIntercept() bool { return s.intercept }

// CodingFor returns the coding assigned to the factor and whether one was
// assigned explicitly.
func (s *Spec) CodingFor(factor string) (Coding, bool) {
	c, ok := s.codings[factor]
	return c, ok
}

// Prefix returns a copy of the spec keeping only the first n terms. Contrast
// codings and the intercept flag carry over, which makes the nested model
// sequence of a sequential analysis a one-liner.
func (s *Spec) Prefix(n int) *Spec {
	if n > len(s.terms) {
		n = len(s.terms)
	}
	out := &Spec{
		terms:     make([]Term, n),
		codings:   make(map[string]Coding, len(s.codings)),
		intercept: s.intercept,
	}
	copy(out.terms, s.terms[:n])
	for k, v := range s.codings {
		out.codings[k] = v
	}
	return out
}

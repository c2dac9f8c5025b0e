package linear

// Numerical defaults for the solver.
const (
	// DefaultRankTolerance is the relative singular-value cutoff below
	// which a direction counts as numerically null.
	DefaultRankTolerance = 1e-12

	// DefaultConditionThreshold is the condition number above which a
	// full-rank fit emits an IllConditionedWarning.
	DefaultConditionThreshold = 1e8
)

// FitOption configures a single Fit call.
type FitOption func(*fitConfig)

type fitConfig struct {
	rankTolerance      float64
	conditionThreshold float64
}

func newFitConfig(opts []FitOption) fitConfig {
	cfg := fitConfig{
		rankTolerance:      DefaultRankTolerance,
		conditionThreshold: DefaultConditionThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithRankTolerance sets the relative singular-value cutoff used to
// determine the numerical rank of the design. Values at or below zero keep
// the default.
func WithRankTolerance(tol float64) FitOption {
	return func(cfg *fitConfig) {
		if tol > 0 {
			cfg.rankTolerance = tol
		}
	}
}

// WithConditionThreshold sets the condition number above which a fit warns
// about an ill-conditioned design. Values at or below zero keep the default.
func WithConditionThreshold(c float64) FitOption {
	return func(cfg *fitConfig) {
		if c > 0 {
			cfg.conditionThreshold = c
		}
	}
}

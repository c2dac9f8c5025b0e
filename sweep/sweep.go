// Package sweep runs families of model comparisons as one concurrent batch.
//
// Screening many candidate model pairs against the same dataset is
// embarrassingly parallel: every pair builds, fits and compares on its own,
// and the workers only share the read-only dataset. Run distributes the
// pairs over a bounded worker pool and returns one Outcome per pair in
// input order. A failing pair records its error in the outcome and never
// fails the batch; only context cancellation aborts a run. Each run also
// produces a Manifest recording its id, counts, worker bound and wall time.
package sweep

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/statkit/glm/anova"
	"github.com/statkit/glm/dataset"
	"github.com/statkit/glm/design"
	"github.com/statkit/glm/linear"
	"github.com/statkit/glm/pkg/errors"
	"github.com/statkit/glm/pkg/log"
)

// SpecPair is one comparison to run: a restricted model against a general
// one, both fit to the same response.
type SpecPair struct {
	Name       string
	Restricted *design.Spec
	General    *design.Spec
}

// Outcome is the result of one pair. Exactly one of Result and Err is set.
type Outcome struct {
	Index  int
	Name   string
	Result *anova.ComparisonResult
	Err    error
}

// Manifest records one sweep run.
type Manifest struct {
	SweepID   string    `json:"sweep_id"`
	Pairs     int       `json:"pairs"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Workers   int       `json:"workers"`
	RuntimeMs int64     `json:"runtime_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Runner executes sweeps with a bounded number of concurrent workers.
type Runner struct {
	workers int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers bounds the number of pairs fit concurrently. Values below one
// keep the default of GOMAXPROCS.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 1 {
			r.workers = n
		}
	}
}

// NewRunner creates a Runner. By default it uses one worker per available
// CPU.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every pair against the dataset and returns the outcomes in
// input order together with the run's manifest. Pair failures, including
// panics inside a fit, are captured per outcome; the returned error is
// non-nil only when the response column cannot be resolved or the context
// is cancelled.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset, response string, pairs []SpecPair) ([]Outcome, *Manifest, error) {
	if ds == nil {
		return nil, nil, errors.NewValueError("sweep.Run", "dataset must not be nil")
	}
	y, err := ds.Response(response)
	if err != nil {
		return nil, nil, err
	}

	sweepID := newSweepID()
	start := time.Now()
	logger := log.GetLoggerWithName("sweep")
	logger.Debug("sweep started",
		log.OperationKey, log.OperationSweep,
		log.SweepIDKey, sweepID,
		log.SweepSizeKey, len(pairs),
		log.SweepWorkersKey, r.workers,
		log.ResponseKey, response,
	)

	outcomes := make([]Outcome, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := comparePair(ds, y, pair)
			outcomes[i] = Outcome{Index: i, Name: pair.Name, Result: result, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, errors.Wrap(err, "sweep aborted")
	}

	manifest := &Manifest{
		SweepID:   sweepID,
		Pairs:     len(pairs),
		Workers:   r.workers,
		RuntimeMs: time.Since(start).Milliseconds(),
		CreatedAt: start,
	}
	for _, o := range outcomes {
		if o.Err != nil {
			manifest.Failed++
		} else {
			manifest.Succeeded++
		}
	}

	logger.Info("sweep finished",
		log.OperationKey, log.OperationSweep,
		log.SweepIDKey, sweepID,
		log.SweepSizeKey, manifest.Pairs,
		log.SweepWorkersKey, manifest.Workers,
		log.DurationMsKey, manifest.RuntimeMs,
	)
	return outcomes, manifest, nil
}

// comparePair fits both models of a pair and compares them. Panics are
// converted to errors so one bad pair cannot take down the batch.
func comparePair(ds *dataset.Dataset, y []float64, pair SpecPair) (result *anova.ComparisonResult, err error) {
	defer errors.Recover(&err, "sweep.Run")

	restricted, err := fitSpec(ds, y, pair.Restricted)
	if err != nil {
		return nil, errors.Wrap(err, "restricted model")
	}
	general, err := fitSpec(ds, y, pair.General)
	if err != nil {
		return nil, errors.Wrap(err, "general model")
	}
	return anova.Compare(restricted, general)
}

func fitSpec(ds *dataset.Dataset, y []float64, spec *design.Spec) (*linear.FittedModel, error) {
	if spec == nil {
		return nil, errors.NewValueError("sweep.Run", "spec must not be nil")
	}
	x, err := design.Build(spec, ds)
	if err != nil {
		return nil, err
	}
	return linear.Fit(x, y)
}

// newSweepID returns a time-ordered unique id, falling back to a random one
// when the v7 source fails.
func newSweepID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

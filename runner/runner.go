// Package runner turns a circuit into a complete execution record:
// simulation, ideal and noisy sampling, Bloch vectors, and a summary.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"qtermsim/backend"
	"qtermsim/quantum"
)

// Options control one execution.
type Options struct {
	Shots   int
	Backend backend.Backend
	// NoiseLevel overrides the backend's noise when set.
	NoiseLevel *float64
	// Seed makes sampling reproducible. Zero picks a time-derived seed.
	Seed uint64
}

func (o Options) noiseLevel() float64 {
	if o.NoiseLevel != nil {
		return *o.NoiseLevel
	}
	return o.Backend.NoiseLevel
}

type Runner struct {
	logger      *zap.Logger
	parallelism int64
	now         func() time.Time
}

// New returns a runner that logs to logger and runs at most parallelism
// executions at once in RunBatch.
func New(logger *zap.Logger, parallelism int) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:      logger.Named("runner"),
		parallelism: int64(max(parallelism, 1)),
		now:         time.Now,
	}
}

// Execute simulates and samples c. A non-zero effective noise level adds a
// noisy copy of the measurements.
func (r *Runner) Execute(ctx context.Context, c quantum.Circuit, opts Options) (*Execution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	noise := opts.noiseLevel()
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(r.now().UnixNano())
	}

	start := r.now()
	exec := &Execution{
		ID:      "exec-" + uuid.NewString(),
		Circuit: c,
		Backend: opts.Backend.ID,
	}
	log := r.logger.With(zap.String("id", exec.ID))

	res, err := quantum.Simulate(c)
	if err != nil {
		log.Warn("simulation rejected", zap.Error(err))
		return nil, errors.Wrap(err, "simulate")
	}

	sampler := quantum.NewSeededSampler(seed)
	ideal, err := sampler.Sample(res.Probabilities, res.NumQubits(), opts.Shots)
	if err != nil {
		return nil, errors.Wrap(err, "sample")
	}
	var noisy []quantum.MeasurementResult
	if noise != 0 {
		noisy, err = sampler.ApplyNoise(ideal, noise)
		if err != nil {
			return nil, errors.Wrap(err, "apply noise")
		}
	}

	probs := res.ProbabilityMap()
	exec.Expected = Expected{
		StateVector: StateSnapshot{
			Amplitudes:    res.Amplitudes(),
			Probabilities: res.Probabilities,
		},
		Probabilities: probs,
	}
	exec.Actual = Actual{
		Shots:        opts.Shots,
		NoiseLevel:   noise,
		Measurements: ideal,
		Noisy:        noisy,
	}
	exec.Bloch = res.State.BlochVectors()
	exec.QubitProbabilities = res.State.QubitProbabilities()

	effective := opts.Backend
	effective.NoiseLevel = noise
	exec.Summary = backend.Summarize(c, effective, exec.Actual.Observed(), probs)

	elapsed := r.now().Sub(start)
	exec.Metadata = Metadata{
		ExecutionTimeMs: float64(elapsed.Microseconds()) / 1000,
		CircuitDepth:    c.Depth(),
		GateCount:       c.GateCount(),
		Seed:            seed,
		Timestamp:       start.UTC(),
	}

	log.Info("execution finished",
		zap.String("backend", exec.Backend),
		zap.Int("qubits", c.NumQubits),
		zap.Int("gates", c.GateCount()),
		zap.Int("shots", opts.Shots),
		zap.Float64("noise", noise),
		zap.Uint64("seed", seed),
		zap.Duration("duration", elapsed),
	)
	return exec, nil
}

// RunBatch executes every circuit with the same options, bounded by the
// runner's parallelism. Results keep the input order. Circuit i samples
// with seed+i, so a fixed seed makes the batch reproducible. The first
// failure cancels the rest.
func (r *Runner) RunBatch(ctx context.Context, circuits []quantum.Circuit, opts Options) ([]*Execution, error) {
	base := opts.Seed
	if base == 0 {
		base = uint64(r.now().UnixNano())
	}
	results := make([]*Execution, len(circuits))
	sem := semaphore.NewWeighted(r.parallelism)
	g, gctx := errgroup.WithContext(ctx)

	r.logger.Info("batch started", zap.Int("circuits", len(circuits)), zap.Int64("parallelism", r.parallelism))
	for i, c := range circuits {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, c := i, c
		jobOpts := opts
		jobOpts.Seed = base + uint64(i)
		g.Go(func() error {
			defer sem.Release(1)
			exec, err := r.Execute(gctx, c, jobOpts)
			if err != nil {
				return errors.Wrapf(err, "circuit %d", i)
			}
			results[i] = exec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error("batch failed", zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Info("batch finished", zap.Int("circuits", len(circuits)))
	return results, nil
}

package profiler

import (
	"time"

	"go.uber.org/zap"
)

// Profiler measures the wall-clock duration of named stages and reports them to the log.
// Timing is purely observational and never alters the outcome of a measured stage.
type Profiler struct {
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// NewProfiler creates a new Profiler. Profiling is enabled by default in builds tagged with
// `debug` (see DiagnosticsEnabled) and disabled otherwise.
//
// Parameters:
//   - options: functional options for profiler configuration
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:  zap.NewNop(),
		enabled: DiagnosticsEnabled,
		now:     time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// WithLogger sets the logger stage timings are written to. A nil logger is ignored.
func WithLogger(logger *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithEnabled overrides the build default for whether stage timings are logged.
func WithEnabled(enabled bool) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.enabled = enabled
	}
}

// Enabled reports whether stage timings are logged.
func (p *Profiler) Enabled() bool {
	return p.enabled
}

// Measure runs fn and, when profiling is enabled, logs "<stage> took: <n>ms" at debug level.
// The stage is timed even when fn fails so slow failures remain visible.
//
// Parameters:
//   - stage: a human readable name for the measured work
//   - fn: the work to measure
//
// Returns:
//   - error: the error returned by fn, unchanged
func (p *Profiler) Measure(stage string, fn func() error) error {
	if !p.enabled {
		return fn()
	}

	start := p.now()
	err := fn()
	elapsed := p.now().Sub(start)

	p.logger.Debug(stage+" took: "+formatMillis(elapsed),
		zap.String("stage", stage),
		zap.Duration("elapsed", elapsed),
		zap.Bool("failed", err != nil),
	)
	return err
}

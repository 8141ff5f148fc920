package main

import (
	"os"

	"github.com/Carmen-Shannon/oxy-triangle/engine/profiler"
	"github.com/Carmen-Shannon/oxy-triangle/triangle"
	"go.uber.org/zap"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	os.Exit(run(logger))
}

// run renders the triangle and returns the process exit code. The logger is flushed before
// returning so the failure reason is never lost to buffering.
func run(logger *zap.Logger, options ...triangle.RunOption) int {
	defer func() { _ = logger.Sync() }()

	options = append([]triangle.RunOption{triangle.WithLogger(logger)}, options...)
	if err := triangle.Run(options...); err != nil {
		logger.Error("render failed", zap.Error(err))
		return 1
	}
	return 0
}

// newLogger builds a development logger, which includes debug timings, in debug builds and a
// production logger otherwise.
func newLogger() (*zap.Logger, error) {
	if profiler.DiagnosticsEnabled {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

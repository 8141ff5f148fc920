//go:build debug

package profiler

// DiagnosticsEnabled is true in builds tagged with `debug`; stage timings are logged by default.
const DiagnosticsEnabled = true

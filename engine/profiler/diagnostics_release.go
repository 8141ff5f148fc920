//go:build !debug

package profiler

// DiagnosticsEnabled is false in regular builds; stage timings are only logged when requested.
const DiagnosticsEnabled = false

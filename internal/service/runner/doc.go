// Package runner assembles the data plane in one process: the harness,
// the alerter and the monitor partitions on a shared runtime, plus the
// optional trigger feed and metrics endpoints.
package runner

// Package clock abstracts time for the partition runtime.
//
// Production code injects Real(); tests inject Fake() and move time with
// Advance so validity windows and bounded waits are deterministic.
package clock

// Package checker polls the trigger feed of a running taws-runner and
// logs the monitor triggers as they fire.
package checker

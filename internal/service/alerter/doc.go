// Package alerter implements the TAWS partition: it owns the arm/inhibit
// table, turns every new aircraft state into an alert state through the
// alerting engine and publishes the result on the alert port.
package alerter

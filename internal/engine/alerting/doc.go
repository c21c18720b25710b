// Package alerting is the reference alerting engine the controller delegates
// to. It maps the arm/inhibit flag table and an aircraft state snapshot to an
// alert state.
//
// Only the excessive descent rate function (Mode 1) raises alerts; the other
// subsystems can be armed and inhibited but never report. The envelopes are
// illustrative and carry no certification value.
package alerting

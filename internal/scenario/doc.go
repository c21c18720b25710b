// Package scenario is the conformance harness of the alerting partition.
//
// A scenario is a list of moulds and oracles. The harness generates a batch
// of random aircraft states, presses every frame through the moulds in
// registration order, sends the frames one by one to the alerter and checks
// each observed alert state against the oracles. Moulds that bound a flight
// parameter use a BouncingClamp, which reflects excursions back into the
// allowed region instead of clipping them, so a forced constraint never
// shows up as a discontinuity of its own.
//
// Scenarios are usually written as given/when/then sentences in YAML
// feature files; see ParseStep and LoadFeatures.
package scenario

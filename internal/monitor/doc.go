// Package monitor is the runtime-verification monitor fed by the event
// composer.
//
// A monitor is built once from a declarative specification: the ordered
// list of input streams (one event slot each) and a set of triggers over
// them. Every call to Accept submits one event vector with the current time
// and returns a verdict per trigger; a true verdict means the trigger's
// message must be raised to the operator.
//
// Specifications are YAML documents validated against an embedded JSON
// schema before they are decoded.
package monitor

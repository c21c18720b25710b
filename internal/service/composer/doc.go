// Package composer implements the monitor partition. Every slot it turns
// the arrivals on the aircraft state and alert ports into one event vector,
// submits it to the verification monitor and reports the triggers that fire.
package composer

// Package taws contains the data model exchanged between the partitions.
//
// It defines the alert subsystem enumeration, alert levels, arm/inhibit
// commands, the aircraft state snapshot, and the two port messages:
// InputMessage (aircraft state channel, 128 bytes) and AlertState
// (alert channel, 16 bytes). Every port type is a CBOR `toarray` struct so
// its wire size is independent of field names.
package taws

// Package partition is the in-process stand-in for the time-partitioned
// runtime: named sampling ports with validity windows and a cooperative,
// round-robin slot scheduler.
//
// A sampling port is last-value-wins and never queues. A port has exactly one
// sender and any number of receivers; each receiver applies its own validity
// window. Port storage is not locked: the scheduler runs one partition at a
// time and the hand-off between slots orders every access.
package partition

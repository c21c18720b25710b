// Package trigger implements the gRPC transport of the monitor trigger feed.
//
// The service exchanges well-known protobuf types only (Empty in, Struct
// out), so its descriptor is declared here instead of being generated.
package trigger

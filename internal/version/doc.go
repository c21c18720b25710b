// Package version holds the build metadata injected at link time, for
// example:
//
//	go build -ldflags "-X github.com/oshokin/taws-partitions/internal/version.Version=1.2.0"
package version

// Package config defines the settings shared by the taws binaries and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type names the sampling ports, their validity windows, the
// scenario batch parameters and the optional listen addresses of the
// trigger feed and the metrics endpoint.
package config

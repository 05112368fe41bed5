// Package telemetry exposes the exporter's own health on a separate path.
//
// The registry is private so these series never mix with the i2pd samples
// served on the metrics path.
package telemetry

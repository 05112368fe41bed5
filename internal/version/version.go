// Package version carries the build version of the exporter.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/Jercik/i2pd-webconsole-exporter/internal/version.Version=v1.2.3"
var Version = "dev"

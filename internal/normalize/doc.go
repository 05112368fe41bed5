// Package normalize converts text matched on the i2pd web console into
// metric values.
//
//   - ByteSize: "10.5 MiB" → 11010048 (binary units B..TiB, rounded)
//   - ByteRate: "12.5 KiB/s" → 12800 (bytes per second, unrounded)
//   - Percent: "45%" → 45
//   - Count: "1234" → 1234
//   - Status: "OK" → 1, anything else → 0 (never fails)
//   - Enabled: "enabled" → 1, anything else → 0 (never fails)
//   - Constant: always 1, for info-style gauges
//
// Every function is pure. Failures wrap ErrMalformed so callers can tell a
// layout change (no match) apart from a value they could not read.
package normalize

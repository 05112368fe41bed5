package normalize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every error returned from this package.
var ErrMalformed = errors.New("malformed value")

// Func converts one matched raw string into a sample value.
type Func func(raw string) (float64, error)

// unitPowers maps a binary size unit to its power of 1024.
var unitPowers = map[string]int{
	"B":   0,
	"KiB": 1,
	"MiB": 2,
	"GiB": 3,
	"TiB": 4,
}

// quantityRE splits "<mantissa><ws?><unit>" into its integer digits,
// fractional digits and unit.
var quantityRE = regexp.MustCompile(`^(\d+)(?:\.(\d+))?\s*(\S+)$`)

// ByteSize parses a human-readable byte size such as "1.23 GiB" into an
// integer byte count. The fractional part is rounded to the nearest byte.
func ByteSize(s string) (uint64, error) {
	intPart, frac, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	power, ok := unitPowers[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unknown size unit %q in %q", ErrMalformed, unit, s)
	}
	mult := pow1024(power)

	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: mantissa %q: %v", ErrMalformed, intPart, err)
	}
	if whole > math.MaxUint64/mult {
		return 0, fmt.Errorf("%w: %q overflows uint64", ErrMalformed, s)
	}
	total := whole * mult

	if frac != "" {
		f, err := strconv.ParseFloat("0."+frac, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: fraction %q: %v", ErrMalformed, frac, err)
		}
		add := uint64(math.Round(f * float64(mult)))
		if total > math.MaxUint64-add {
			return 0, fmt.Errorf("%w: %q overflows uint64", ErrMalformed, s)
		}
		total += add
	}
	return total, nil
}

// ByteRate parses a transfer rate such as "12.5 KiB/s" into bytes per second.
func ByteRate(s string) (float64, error) {
	intPart, frac, unit, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	base, ok := strings.CutSuffix(unit, "/s")
	if !ok {
		return 0, fmt.Errorf("%w: rate %q has no /s suffix", ErrMalformed, s)
	}
	power, ok := unitPowers[base]
	if !ok {
		return 0, fmt.Errorf("%w: unknown rate unit %q in %q", ErrMalformed, unit, s)
	}
	num := intPart
	if frac != "" {
		num += "." + frac
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: mantissa %q: %v", ErrMalformed, num, err)
	}
	return v * float64(pow1024(power)), nil
}

// Percent parses "45%" or "45.5 %" into 45 or 45.5.
func Percent(s string) (float64, error) {
	num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: percentage %q", ErrMalformed, s)
	}
	return v, nil
}

// Count parses a non-negative integer count.
func Count(s string) (float64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: count %q", ErrMalformed, s)
	}
	return float64(n), nil
}

// Status reports 1 when the console shows the network as "OK" and 0 for any
// other status word (Testing, Firewalled, Unknown, ...).
func Status(s string) float64 {
	if strings.TrimSpace(s) == "OK" {
		return 1
	}
	return 0
}

// Enabled reports 1 for "enabled" and 0 for "disabled" or anything unknown.
func Enabled(s string) float64 {
	if strings.EqualFold(strings.TrimSpace(s), "enabled") {
		return 1
	}
	return 0
}

// Constant always returns 1. The interesting data of info-style metrics
// (capabilities, addresses) lives in their labels.
func Constant(string) float64 { return 1 }

// ServiceName turns a console service title such as "HTTP Proxy" into the
// label value "http_proxy".
func ServiceName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

// Adapters exposing the converters above as Func values for the rule table.
var (
	BytesFunc    Func = func(s string) (float64, error) { n, err := ByteSize(s); return float64(n), err }
	RateFunc     Func = ByteRate
	PercentFunc  Func = Percent
	CountFunc    Func = Count
	StatusFunc   Func = total(Status)
	EnabledFunc  Func = total(Enabled)
	ConstantFunc Func = total(Constant)
)

// total lifts an infallible converter into a Func.
func total(f func(string) float64) Func {
	return func(s string) (float64, error) { return f(s), nil }
}

func splitQuantity(s string) (intPart, frac, unit string, err error) {
	m := quantityRE.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", "", fmt.Errorf("%w: quantity %q", ErrMalformed, s)
	}
	return m[1], m[2], m[3], nil
}

func pow1024(power int) uint64 {
	return uint64(1) << (10 * uint(power))
}

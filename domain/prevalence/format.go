package prevalence

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f the way the report has always rendered floats: the
// shortest representation that round-trips, with a ".0" on integral values
// and exponent notation only outside [1e-4, 1e16).
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	var s string
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s = strconv.FormatFloat(f, 'e', -1, 64)
		return s
	}
	s = strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatPercent renders an already scaled percentage with a "%" suffix.
func FormatPercent(pct float64, integral bool) string {
	return FormatPercentNumber(pct, integral) + "%"
}

// ParsePercent is the inverse of FormatPercent.
func ParsePercent(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
}

// FormatPercentNumber renders a percentage without its suffix. A percentage
// scaled from an integer fraction stays an integer and carries no ".0".
func FormatPercentNumber(pct float64, integral bool) string {
	if integral {
		return strconv.FormatInt(int64(pct), 10)
	}
	return FormatFloat(pct)
}

// ParsePercentNumber is the inverse of FormatPercentNumber.
func ParsePercentNumber(s string) (pct float64, integral bool, err error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(n), true, nil
	}
	pct, err = strconv.ParseFloat(s, 64)
	return pct, false, err
}

// IsIntegerLiteral reports whether a source number was written as an integer.
func IsIntegerLiteral(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// leading numeric prefix, e.g. "12.5ct" -> "12.5"
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseFloat parses s leniently: surrounding spaces and thousands separators are
// ignored, a trailing unit is dropped, and anything unparseable yields 0.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseInt is ParseFloat truncated toward zero.
func ParseInt(s string) int {
	return int(ParseFloat(s))
}

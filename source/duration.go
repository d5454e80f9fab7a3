package source

import (
	"strconv"
	"strings"
)

// secondsThreshold separates seconds-scale metadata values from minute-scale
// ones. Catalog runtimes realistically never exceed 500 minutes, so anything
// larger is treated as seconds.
const secondsThreshold = 500

// NormalizeDuration converts a machine-readable numeric duration to whole
// minutes. Values greater than 500 are assumed to be seconds.
func NormalizeDuration(raw int) int {
	if raw > secondsThreshold {
		return raw / 60
	}
	return raw
}

// ParseClock converts a clock string ("H:MM:SS" or "MM:SS") to whole minutes.
// Seconds are intentionally discarded; sub-minute precision is irrelevant in
// this domain. Returns zero when the string is not a recognizable clock.
func ParseClock(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")

	toInt := func(p string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		return n, err == nil && n >= 0
	}

	switch len(parts) {
	case 3: // H:MM:SS
		h, okH := toInt(parts[0])
		m, okM := toInt(parts[1])
		if !okH || !okM {
			return 0
		}
		return h*60 + m
	case 2: // MM:SS
		m, ok := toInt(parts[0])
		if !ok {
			return 0
		}
		return m
	default:
		return 0
	}
}

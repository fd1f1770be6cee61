package util

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return 0, false
	}
	return h*60 + mm, true
}

// ClockString renders minutes since midnight as "HH:MM".
func ClockString(minutes int) string {
	minutes %= 24 * 60
	if minutes < 0 {
		minutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClampMinutes bounds a minutes-of-day value into [earliest, latest].
func ClampMinutes(v, earliest, latest int) int {
	if v < earliest {
		return earliest
	}
	if v > latest {
		return latest
	}
	return v
}

// DurationHours is the net shift length between two minutes-of-day values
// minus a break, in hours. An end before the start is treated as next-day.
func DurationHours(startMin, endMin, breakMin int) float64 {
	if endMin < startMin {
		endMin += 24 * 60
	}
	net := float64(endMin-startMin-breakMin) / 60.0
	if net < 0 {
		net = 0
	}
	return Round2(net)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SafeFloat converts a numeric token to float64, tolerating thousands commas
// and stray spaces. Malformed input yields the default 0.
func SafeFloat(s string) float64 {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), " ", "")
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

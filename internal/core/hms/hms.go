// Package hms converts between "HH:MM:SS" duration strings and whole seconds.
//
// Parsing is lenient: missing, empty, non-numeric or negative components
// count as zero and no error is ever returned.
package hms

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse returns the total number of seconds described by an "HH:MM:SS" string.
func Parse(value string) int {
	parts := strings.Split(value, ":")
	weights := [3]int{3600, 60, 1}

	total := 0
	for i, weight := range weights {
		if i >= len(parts) {
			break
		}
		// saturate instead of wrapping into a plausible duration
		value := component(parts[i])
		if value > (math.MaxInt-total)/weight {
			return math.MaxInt
		}
		total += value * weight
	}
	return total
}

// Format renders seconds as zero-padded "HH:MM:SS". Hours are not wrapped.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
}

// Badge renders seconds as the compact "m:ss" indicator text.
func Badge(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Normalize parses and re-formats value into canonical "HH:MM:SS".
func Normalize(value string) string {
	return Format(Parse(value))
}

func component(raw string) int {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 0 {
		return 0
	}
	return number
}

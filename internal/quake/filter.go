package quake

import "math"

// Filter returns the subsequence of events whose magnitude meets or exceeds
// threshold, preserving order. An unknown (nil) magnitude compares as -Inf,
// so those events are excluded for every finite threshold, including 0.
// Pure function: same inputs always yield the same output.
func Filter(events []Event, threshold float64) []Event {
	filtered := make([]Event, 0, len(events))
	for _, e := range events {
		mag := math.Inf(-1)
		if e.Magnitude != nil {
			mag = *e.Magnitude
		}
		if mag >= threshold {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

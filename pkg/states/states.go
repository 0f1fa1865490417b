// Package states derives the covered-state table that drives the map view.
package states

import "strings"

// Count is one covered state. Count is always 1: it marks coverage, it is
// not a frequency.
type Count struct {
	State string `json:"state" yaml:"state"`
	Count int    `json:"count" yaml:"count"`
}

// Counts returns one row per distinct state in first-seen order.
func Counts(states []string) []Count {
	distinct := Distinct(states)
	out := make([]Count, len(distinct))
	for i, s := range distinct {
		out[i] = Count{State: s, Count: 1}
	}
	return out
}

// Distinct returns the non-blank states with duplicates removed, keeping the
// first occurrence of each.
func Distinct(states []string) []string {
	seen := make(map[string]struct{}, len(states))
	out := make([]string, 0, len(states))
	for _, s := range states {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

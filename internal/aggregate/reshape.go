package aggregate

import (
	"math"
	"strconv"
)

// LongEntry is one (label, stat, value) triple of the tidy form.
type LongEntry struct {
	Label string
	Stat  string
	Value string
}

// Wide renders a row as one cell per key in order, empty string for null.
func Wide(row Row, keys []string) []string {
	cells := make([]string, len(keys))
	for i, key := range keys {
		cells[i] = FormatValue(row[key])
	}
	return cells
}

// Long reshapes a row into (label, stat, value) triples, skipping null
// statistics. Only display rounding is applied; the row itself is not
// modified.
func Long(label string, row Row, keys []string) []LongEntry {
	var out []LongEntry
	for _, key := range keys {
		v, ok := row[key]
		if !ok {
			continue
		}
		out = append(out, LongEntry{Label: label, Stat: key, Value: FormatValue(v)})
	}
	return out
}

// FormatValue renders a statistic cell for display: formatted time strings
// pass through, numbers are rounded to 3 significant figures, null becomes
// the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(RoundSig(x, 3), 'f', -1, 64)
	default:
		return ""
	}
}

// RoundSig rounds v to n significant figures.
func RoundSig(v float64, n int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	magnitude := math.Ceil(math.Log10(math.Abs(v)))
	power := float64(n) - magnitude
	scale := math.Pow(10, power)
	return math.Round(v*scale) / scale
}

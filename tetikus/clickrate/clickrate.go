// Package clickrate tracks left-button-down timestamps over a rolling window
// and reports them as clicks per second.
package clickrate

// WindowMS is the trailing window length. With a one second window the rate
// in downs per second equals the in-window count.
const WindowMS = 1000

// Tracker keeps the left-button-down timestamps that fall inside the
// trailing window. Entries are pruned on every access, insert or read, so
// the slice never grows past one window's worth of clicks. Not safe for
// concurrent use; the enricher serializes access.
type Tracker struct {
	downs []int64
}

// RecordDown appends a left-button-down timestamp and prunes entries that
// fell out of the window.
func (t *Tracker) RecordDown(nowMS int64) {
	t.downs = append(t.downs, nowMS)
	t.prune(nowMS)
}

// Rate returns the click rate in downs per second at nowMS, counting
// timestamps in [nowMS-WindowMS, nowMS].
func (t *Tracker) Rate(nowMS int64) float64 {
	t.prune(nowMS)
	return float64(len(t.downs)) / (WindowMS / 1000.0)
}

func (t *Tracker) prune(nowMS int64) {
	cutoff := nowMS - WindowMS
	i := 0
	for i < len(t.downs) && t.downs[i] < cutoff {
		i++
	}
	t.downs = t.downs[i:]
}

// Package view renders enriched records on the console as they arrive.
package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"kafji.net/tetikus/tetikus/capture"
)

// statusInterval is how often a status line with totals and the live click
// rate is interleaved between event lines.
const statusInterval = 5 * time.Second

// View drains the writer's record queue on a fixed cadence and prints one
// line per record, flagging near-click scrolls and combat activity. The
// drain never blocks the capture path: the queue producer drops on full and
// stdout writes go through a non-blocking writer.
type View struct {
	w       io.Writer
	records <-chan capture.Record
	cps     func() float64

	count      int
	lastStatus time.Time
}

// New builds a view over the record queue. cps supplies the live click rate
// for status lines and may be nil.
func New(out io.Writer, records <-chan capture.Record, cps func() float64) *View {
	return &View{w: newAsyncWriter(out), records: records, cps: cps, lastStatus: time.Now()}
}

// Run drains on each tick until the record channel closes.
func (v *View) Run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		if !v.drain() {
			return
		}
	}
}

func (v *View) drain() bool {
	rendered := false
	for {
		select {
		case rec, ok := <-v.records:
			if !ok {
				return false
			}
			v.count++
			rendered = true
			fmt.Fprintln(v.w, FormatLine(rec))
		default:
			if rendered && v.cps != nil && time.Since(v.lastStatus) >= statusInterval {
				fmt.Fprintf(v.w, "-- events=%d cps=%.1f\n", v.count, v.cps())
				v.lastStatus = time.Now()
			}
			return true
		}
	}
}

// Count reports how many records have been rendered. Valid once Run has
// returned.
func (v *View) Count() int {
	return v.count
}

// FormatLine renders one record the way the log viewer shows it: wall-clock
// time, running session clock, coordinates when captured, wheel correlation
// fields, and the [SCROLL NEAR LMB] / [COMBAT] markers.
func FormatLine(rec capture.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", rec.Time.Format("15:04:05"), formatElapsed(rec.SinceStartMS))
	if rec.HasCoords {
		fmt.Fprintf(&b, " x=%d y=%d dx=%d dy=%d", rec.X, rec.Y, rec.DX, rec.DY)
	}
	if rec.IsWheel() {
		since := "-"
		if rec.ButtonSeen {
			since = strconv.FormatInt(rec.SinceButtonMS, 10)
		}
		near := "0"
		if rec.NearClick {
			near = "1"
		}
		fmt.Fprintf(&b, " ms_since_button_event=%s scroll_near_click=%s", since, near)
	}
	fmt.Fprintf(&b, " event=%s", rec.Kind)
	if rec.NearClick && rec.IsWheel() {
		b.WriteString(" [SCROLL NEAR LMB]")
	}
	if rec.Combat == capture.Combat {
		b.WriteString(" [COMBAT]")
	}
	return b.String()
}

// formatElapsed renders a session-relative offset as HH:MM:SS.mmm.
func formatElapsed(ms int64) string {
	totalSeconds := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		totalSeconds/3600,
		(totalSeconds%3600)/60,
		totalSeconds%60,
		ms%1000,
	)
}

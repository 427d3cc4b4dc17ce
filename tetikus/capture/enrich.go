package capture

import (
	"sync"
	"time"

	"kafji.net/tetikus/inputevent"
	"kafji.net/tetikus/tetikus/clickrate"
)

// Enricher turns raw mouse events into records, deriving the combat and
// near-click heuristics from the rolling click rate and the last button
// transition. One mutex guards all state: the capture goroutine reads the
// thresholds that setters mutate from other goroutines.
type Enricher struct {
	mu sync.Mutex

	nearClickMS   int64
	combatCPS     float64
	coordsEnabled bool

	tracker      clickrate.Tracker
	lastButtonMS int64
	buttonSeen   bool
}

func NewEnricher(nearClickMS int, combatCPS float64, coordsEnabled bool) *Enricher {
	return &Enricher{
		nearClickMS:   int64(nearClickMS),
		combatCPS:     combatCPS,
		coordsEnabled: coordsEnabled,
	}
}

// SetNearClickMS takes effect on the next event.
func (e *Enricher) SetNearClickMS(ms int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nearClickMS = int64(ms)
}

// SetCombatCPS takes effect on the next event.
func (e *Enricher) SetCombatCPS(cps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.combatCPS = cps
}

// SetCoordsEnabled takes effect on the next event.
func (e *Enricher) SetCoordsEnabled(flag bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.coordsEnabled = flag
}

// CPS returns the current left-click rate, for display.
func (e *Enricher) CPS(nowMS int64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Rate(nowMS)
}

// EnrichClick handles any button transition. Left downs feed the click-rate
// tracker; every transition, press or release, any button, becomes the new
// last button event. The record's own distance to the last button event is
// zero by definition.
func (e *Enricher) EnrichClick(ev inputevent.MouseClick, now time.Time, sinceStartMS int64) Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	nowMS := now.UnixMilli()
	if ev.Button == inputevent.ButtonLeft && ev.Action == inputevent.ActionDown {
		e.tracker.RecordDown(nowMS)
	}
	e.lastButtonMS = nowMS
	e.buttonSeen = true

	rec := Record{
		Time:          now,
		SinceStartMS:  sinceStartMS,
		SinceButtonMS: 0,
		ButtonSeen:    true,
		Combat:        e.combatState(nowMS),
		Kind:          KindForClick(ev.Button, ev.Action),
	}
	if e.coordsEnabled {
		// wheel deltas stay true zero for button events
		rec.HasCoords = true
		rec.X, rec.Y = ev.X, ev.Y
	}
	return rec
}

// EnrichScroll handles wheel movement. A zero vertical delta stays the
// neutral Wheel kind even when the horizontal delta is nonzero.
func (e *Enricher) EnrichScroll(ev inputevent.MouseScroll, now time.Time, sinceStartMS int64) Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	nowMS := now.UnixMilli()
	kind := KindWheel
	switch {
	case ev.DY > 0:
		kind = KindWheelUp
	case ev.DY < 0:
		kind = KindWheelDown
	}

	rec := Record{
		Time:         now,
		SinceStartMS: sinceStartMS,
		Combat:       e.combatState(nowMS),
		Kind:         kind,
	}
	if e.buttonSeen {
		rec.ButtonSeen = true
		rec.SinceButtonMS = nowMS - e.lastButtonMS
		rec.NearClick = rec.SinceButtonMS >= 0 && rec.SinceButtonMS <= e.nearClickMS
	}
	if e.coordsEnabled {
		rec.HasCoords = true
		rec.X, rec.Y = ev.X, ev.Y
		rec.DX, rec.DY = ev.DX, ev.DY
	}
	return rec
}

func (e *Enricher) combatState(nowMS int64) CombatState {
	if e.tracker.Rate(nowMS) >= e.combatCPS {
		return Combat
	}
	return Idle
}

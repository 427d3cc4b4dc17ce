package capture

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"kafji.net/tetikus/inputevent"
)

// Kind is the closed set of event names written to the log. Button kinds are
// lowercase {button}{Down|Up}; wheel kinds keep the original capitalized
// scheme.
type Kind string

const (
	KindLeftDown   Kind = "leftDown"
	KindLeftUp     Kind = "leftUp"
	KindRightDown  Kind = "rightDown"
	KindRightUp    Kind = "rightUp"
	KindMiddleDown Kind = "middleDown"
	KindMiddleUp   Kind = "middleUp"
	KindX1Down     Kind = "x1Down"
	KindX1Up       Kind = "x1Up"
	KindX2Down     Kind = "x2Down"
	KindX2Up       Kind = "x2Up"
	KindOtherDown  Kind = "otherDown"
	KindOtherUp    Kind = "otherUp"

	KindWheelUp   Kind = "WheelUp"
	KindWheelDown Kind = "WheelDown"
	KindWheel     Kind = "Wheel"
)

var clickKinds = map[inputevent.MouseButton][2]Kind{
	inputevent.ButtonLeft:   {KindLeftDown, KindLeftUp},
	inputevent.ButtonRight:  {KindRightDown, KindRightUp},
	inputevent.ButtonMiddle: {KindMiddleDown, KindMiddleUp},
	inputevent.ButtonX1:     {KindX1Down, KindX1Up},
	inputevent.ButtonX2:     {KindX2Down, KindX2Up},
}

// KindForClick maps a button transition to its event name.
func KindForClick(button inputevent.MouseButton, action inputevent.ButtonAction) Kind {
	kinds, ok := clickKinds[button]
	if !ok {
		kinds = [2]Kind{KindOtherDown, KindOtherUp}
	}
	if action == inputevent.ActionUp {
		return kinds[1]
	}
	return kinds[0]
}

type CombatState string

const (
	Combat CombatState = "combat"
	Idle   CombatState = "idle"
)

// Record is one enriched log entry.
type Record struct {
	Time         time.Time
	SinceStartMS int64

	// Cursor position and wheel deltas. Meaningful only when HasCoords is
	// set, i.e. coordinate capture was enabled at the moment the record was
	// produced. Button events carry true zero deltas.
	X, Y      int32
	DX, DY    int32
	HasCoords bool

	// Time since the previous button transition. ButtonSeen is false until
	// the session's first button event; SinceButtonMS is meaningless then
	// and renders blank, never zero.
	SinceButtonMS int64
	ButtonSeen    bool

	Combat    CombatState
	NearClick bool
	Kind      Kind
}

// IsWheel reports whether the record came from a scroll event.
func (r Record) IsWheel() bool {
	return r.Kind == KindWheelUp || r.Kind == KindWheelDown || r.Kind == KindWheel
}

// Header is the fixed CSV column order.
var Header = []string{
	"timestamp",
	"ms_since_start",
	"x",
	"y",
	"dx",
	"dy",
	"ms_since_button_event",
	"combat_state",
	"scroll_near_click",
	"event",
}

// ISO-8601 local time with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000-07:00"

// Row renders the record in Header order.
func (r Record) Row() []string {
	var x, y, dx, dy string
	if r.HasCoords {
		x = strconv.FormatInt(int64(r.X), 10)
		y = strconv.FormatInt(int64(r.Y), 10)
		dx = strconv.FormatInt(int64(r.DX), 10)
		dy = strconv.FormatInt(int64(r.DY), 10)
	}
	var sinceButton string
	if r.ButtonSeen {
		sinceButton = strconv.FormatInt(r.SinceButtonMS, 10)
	}
	nearClick := "0"
	if r.NearClick {
		nearClick = "1"
	}
	return []string{
		r.Time.Format(timestampLayout),
		strconv.FormatInt(r.SinceStartMS, 10),
		x,
		y,
		dx,
		dy,
		sinceButton,
		string(r.Combat),
		nearClick,
		string(r.Kind),
	}
}

const logBaseName = "mouse_events"

// LogPath builds the default timestamped log file name inside dir. Each
// session gets a fresh name so a stopped session's file is never appended to
// by accident.
func LogPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", logBaseName, now.Format("2006-01-02_15-04-05")))
}

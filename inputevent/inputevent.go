// Package inputevent is the typed model for raw mouse input.
package inputevent

// Event is either a MouseClick or a MouseScroll.
type Event any

type MouseButton uint8

const (
	ButtonLeft MouseButton = iota + 1
	ButtonRight
	ButtonMiddle
	ButtonX1
	ButtonX2
)

type ButtonAction uint8

const (
	ActionDown ButtonAction = iota + 1
	ActionUp
)

// MouseClick is one button transition together with the cursor position at
// the moment the hook observed it.
type MouseClick struct {
	Button MouseButton
	Action ButtonAction
	X, Y   int32
}

// MouseScroll is one wheel movement. DY is the vertical delta in notches,
// positive away from the user. DX is the horizontal (side scroll) delta.
type MouseScroll struct {
	X, Y   int32
	DX, DY int32
}

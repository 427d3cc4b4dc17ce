package capture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafji.net/tetikus/inputevent"
)

func TestKindForClick(t *testing.T) {
	tests := []struct {
		button inputevent.MouseButton
		action inputevent.ButtonAction
		want   Kind
	}{
		{inputevent.ButtonLeft, inputevent.ActionDown, KindLeftDown},
		{inputevent.ButtonLeft, inputevent.ActionUp, KindLeftUp},
		{inputevent.ButtonRight, inputevent.ActionDown, KindRightDown},
		{inputevent.ButtonRight, inputevent.ActionUp, KindRightUp},
		{inputevent.ButtonMiddle, inputevent.ActionDown, KindMiddleDown},
		{inputevent.ButtonMiddle, inputevent.ActionUp, KindMiddleUp},
		{inputevent.ButtonX1, inputevent.ActionDown, KindX1Down},
		{inputevent.ButtonX2, inputevent.ActionUp, KindX2Up},
		{inputevent.MouseButton(99), inputevent.ActionDown, KindOtherDown},
		{inputevent.MouseButton(99), inputevent.ActionUp, KindOtherUp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForClick(tt.button, tt.action))
	}
}

func TestRowMatchesHeaderOrder(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	rec := Record{
		Time:          time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, loc),
		SinceStartMS:  1234,
		X:             10,
		Y:             20,
		DX:            0,
		DY:            -1,
		HasCoords:     true,
		SinceButtonMS: 50,
		ButtonSeen:    true,
		Combat:        Combat,
		NearClick:     true,
		Kind:          KindWheelDown,
	}

	row := rec.Row()
	require.Len(t, row, len(Header))
	assert.Equal(t, []string{
		"2025-03-14T09:26:53.589+07:00",
		"1234",
		"10", "20", "0", "-1",
		"50",
		"combat",
		"1",
		"WheelDown",
	}, row)
}

func TestIsWheel(t *testing.T) {
	assert.True(t, Record{Kind: KindWheelUp}.IsWheel())
	assert.True(t, Record{Kind: KindWheelDown}.IsWheel())
	assert.True(t, Record{Kind: KindWheel}.IsWheel())
	assert.False(t, Record{Kind: KindLeftDown}.IsWheel())
}

func TestLogPath(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	got := LogPath("/tmp/logs", now)
	assert.Equal(t, "/tmp/logs/mouse_events_2025-03-14_09-26-53.csv", got)
}

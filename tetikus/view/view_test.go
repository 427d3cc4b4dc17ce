package view

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafji.net/tetikus/tetikus/capture"
)

func wheelRecord() capture.Record {
	return capture.Record{
		Time:          time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		SinceStartMS:  3_723_456, // 01:02:03.456
		SinceButtonMS: 50,
		ButtonSeen:    true,
		NearClick:     true,
		Combat:        capture.Combat,
		Kind:          capture.KindWheelDown,
	}
}

func TestFormatLineWheelNearClickCombat(t *testing.T) {
	line := FormatLine(wheelRecord())
	assert.Equal(t, "[09:26:53] 01:02:03.456 ms_since_button_event=50 scroll_near_click=1 event=WheelDown [SCROLL NEAR LMB] [COMBAT]", line)
}

func TestFormatLineButtonEvent(t *testing.T) {
	rec := capture.Record{
		Time:         time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		SinceStartMS: 500,
		ButtonSeen:   true,
		Combat:       capture.Idle,
		Kind:         capture.KindLeftDown,
	}
	line := FormatLine(rec)
	assert.Equal(t, "[09:26:53] 00:00:00.500 event=leftDown", line)
}

func TestFormatLineCoords(t *testing.T) {
	rec := capture.Record{
		Time:         time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		SinceStartMS: 0,
		X:            100, Y: 200, DX: 0, DY: 1,
		HasCoords:  true,
		ButtonSeen: true,
		Combat:     capture.Idle,
		Kind:       capture.KindWheelUp,
	}
	line := FormatLine(rec)
	assert.Contains(t, line, "x=100 y=200 dx=0 dy=1")
	assert.NotContains(t, line, "[SCROLL NEAR LMB]")
	assert.NotContains(t, line, "[COMBAT]")
}

func TestFormatLineUnknownSinceButton(t *testing.T) {
	rec := capture.Record{
		Time:   time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Combat: capture.Idle,
		Kind:   capture.KindWheel,
	}
	line := FormatLine(rec)
	assert.Contains(t, line, "ms_since_button_event=-")
	assert.Contains(t, line, "scroll_near_click=0")
}

func TestDrainRendersQueuedRecords(t *testing.T) {
	records := make(chan capture.Record, 10)
	var buf bytes.Buffer
	v := &View{w: &buf, records: records}

	records <- wheelRecord()
	records <- wheelRecord()

	assert.True(t, v.drain())
	assert.Equal(t, 2, v.Count())
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestRunReturnsWhenChannelCloses(t *testing.T) {
	records := make(chan capture.Record, 10)
	records <- wheelRecord()
	close(records)

	var buf bytes.Buffer
	v := &View{w: &buf, records: records}

	done := make(chan struct{})
	go func() {
		v.Run(time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("view did not stop after channel close")
	}
	require.Equal(t, 1, v.Count())
}

package csvlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafji.net/tetikus/tetikus/capture"
)

func testRecord(kind capture.Kind, sinceStartMS int64) capture.Record {
	return capture.Record{
		Time:         time.UnixMilli(1_700_000_000_000 + sinceStartMS),
		SinceStartMS: sinceStartMS,
		ButtonSeen:   true,
		Combat:       capture.Idle,
		Kind:         kind,
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	w, err := Open(path, nil)
	require.NoError(t, err)
	w.Close()

	rows := readRows(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, capture.Header, rows[0])
}

func TestAppendDoesNotRewriteHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")

	w, err := Open(path, nil)
	require.NoError(t, err)
	w.Write(testRecord(capture.KindLeftDown, 10))
	w.Close()

	w, err = Open(path, nil)
	require.NoError(t, err)
	w.Write(testRecord(capture.KindLeftUp, 20))
	w.Close()

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, capture.Header, rows[0])
	assert.Equal(t, "leftDown", rows[1][9])
	assert.Equal(t, "leftUp", rows[2][9])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "timestamp,"))
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	w, err := Open(path, nil)
	require.NoError(t, err)

	records := []capture.Record{
		{
			Time: time.UnixMilli(1_700_000_000_000), SinceStartMS: 0,
			X: 1, Y: 2, DX: 0, DY: 0, HasCoords: true,
			ButtonSeen: true, Combat: capture.Idle, Kind: capture.KindLeftDown,
		},
		{
			Time: time.UnixMilli(1_700_000_000_050), SinceStartMS: 50,
			X: 1, Y: 2, DX: 0, DY: -1, HasCoords: true,
			SinceButtonMS: 50, ButtonSeen: true, NearClick: true,
			Combat: capture.Combat, Kind: capture.KindWheelDown,
		},
		{
			Time: time.UnixMilli(1_700_000_001_000), SinceStartMS: 1000,
			Combat: capture.Idle, Kind: capture.KindWheel,
		},
	}
	for _, rec := range records {
		w.Write(rec)
	}
	w.Close()

	rows := readRows(t, path)
	require.Len(t, rows, len(records)+1)
	for i, rec := range records {
		assert.Equal(t, rec.Row(), rows[i+1])
	}

	// the unknown-sentinel row keeps its blanks
	assert.Equal(t, "", rows[3][2])
	assert.Equal(t, "", rows[3][6])
	assert.Equal(t, "0", rows[3][8])
}

func TestQueueDropsNewestOnOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	w, err := open(path, nil, 2)
	require.NoError(t, err)

	for i := int64(0); i < 5; i++ {
		w.Write(testRecord(capture.KindLeftDown, i))
	}
	w.Close()

	// the file keeps every record, only the live view misses some
	rows := readRows(t, path)
	assert.Len(t, rows, 6)
	assert.Equal(t, uint64(3), w.Dropped())

	var queued []capture.Record
	for rec := range w.Records() {
		queued = append(queued, rec)
	}
	require.Len(t, queued, 2)
	assert.Equal(t, int64(0), queued[0].SinceStartMS)
	assert.Equal(t, int64(1), queued[1].SinceStartMS)
}

func TestQueueOrderMatchesFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	w, err := Open(path, nil)
	require.NoError(t, err)

	for i := int64(0); i < 10; i++ {
		w.Write(testRecord(capture.KindLeftDown, i))
	}
	w.Close()

	rows := readRows(t, path)
	i := int64(0)
	for rec := range w.Records() {
		assert.Equal(t, i, rec.SinceStartMS)
		assert.Equal(t, rec.Row(), rows[i+1])
		i++
	}
	assert.Equal(t, int64(10), i)
}

func TestPeriodicFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")

	now := time.UnixMilli(0)
	clock := func() time.Time { return now }

	w, err := Open(path, clock)
	require.NoError(t, err)
	defer w.Close()

	w.Write(testRecord(capture.KindLeftDown, 1))
	// within the flush interval nothing but the header is on disk yet
	assert.Len(t, readRows(t, path), 1)

	now = now.Add(501 * time.Millisecond)
	w.Write(testRecord(capture.KindLeftUp, 2))
	assert.Len(t, readRows(t, path), 3)
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")
	w, err := Open(path, nil)
	require.NoError(t, err)

	w.Write(testRecord(capture.KindLeftDown, 1))
	w.Close()
	w.Close()

	// writes after close are ignored
	w.Write(testRecord(capture.KindLeftUp, 2))

	rows := readRows(t, path)
	assert.Len(t, rows, 2)

	_, open := <-w.Records()
	assert.True(t, open, "queued record survives close")
	_, open = <-w.Records()
	assert.False(t, open, "channel closed after drain")
}

package capture

import (
	"os"
	"time"

	"github.com/bytedance/sonic"
)

// Summary describes one completed capture session. It is written next to the
// log so a batch of test runs can be skimmed without parsing CSVs.
type Summary struct {
	LogPath       string    `json:"log_path"`
	StartedAt     time.Time `json:"started_at"`
	StoppedAt     time.Time `json:"stopped_at"`
	DurationMS    int64     `json:"duration_ms"`
	Events        int       `json:"events"`
	Clicks        int       `json:"clicks"`
	Wheels        int       `json:"wheels"`
	NearClicks    int       `json:"near_clicks"`
	CombatRecords int       `json:"combat_records"`
}

func summaryPath(logPath string) string {
	return logPath + ".summary.json"
}

func writeSummary(path string, s Summary) error {
	data, err := sonic.Marshal(&s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Package config persists the user-adjustable settings between runs.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"

	"kafji.net/tetikus/logging"
)

var slog = logging.New("tetikus/config")

const fileName = "tetikus.toml"

const (
	DefaultNearClickMS = 80
	DefaultCombatCPS   = 2.0
	DefaultLogLevel    = "info"
)

// Config is the settings file contents.
type Config struct {
	NearClickMS   int     `toml:"near_click_ms"`
	CombatCPS     float64 `toml:"combat_cps"`
	CoordsEnabled bool    `toml:"coords_enabled"`
	LastLogDir    string  `toml:"last_log_dir"`
	LogLevel      string  `toml:"log_level"`
}

// Default is the built-in fallback used when the settings file is missing or
// unreadable. Coordinate capture starts off.
func Default() Config {
	return Config{
		NearClickMS: DefaultNearClickMS,
		CombatCPS:   DefaultCombatCPS,
		LogLevel:    DefaultLogLevel,
	}
}

// Store reads and writes one settings file. The path is fixed at
// construction and passed to whoever needs it; there is no ambient
// process-wide settings location.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// DefaultPath places the settings file under %APPDATA% on Windows and as a
// dotfile in the home directory elsewhere.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, fileName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fileName
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, fileName)
	}
	return filepath.Join(home, "."+fileName)
}

// Load returns the saved settings, falling back to the defaults on any read
// or parse failure. Keys absent from the file keep their default values.
func (s *Store) Load() Config {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read settings file", "path", s.path, "error", err)
		}
		return Default()
	}
	c, err := parse(data)
	if err != nil {
		slog.Warn("failed to parse settings file", "path", s.path, "error", err)
		return Default()
	}
	return c
}

func parse(data []byte) (Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save persists the settings. Best effort: failures are logged, never
// returned.
func (s *Store) Save(c Config) {
	data, err := toml.Marshal(c)
	if err != nil {
		slog.Warn("failed to encode settings", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		slog.Warn("failed to write settings file", "path", s.path, "error", err)
	}
}

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for vidloop, stored in
// ~/.vidloop/config.json. The file supports single-line // comments for
// documentation purposes.
type Config struct {
	Player PlayerConfig `json:"player"`
	Loop   LoopConfig   `json:"loop"`
	Web    WebConfig    `json:"web"`
	Store  StoreConfig  `json:"store"`
}

// PlayerConfig selects the external player binaries and the volume
// policy.
type PlayerConfig struct {
	// MPVBinary is the mpv executable the serve command starts. It must
	// support the JSON IPC protocol.
	MPVBinary string `json:"mpv_binary"`
	// LoopBinary is the player command the loop command spawns for
	// detached interval loops.
	LoopBinary string `json:"loop_binary"`
	// DefaultVolume is applied once media is loaded. 0 falls back to the
	// built-in default.
	DefaultVolume int `json:"default_volume"`
	// VolumeCeiling caps every volume change. 0 falls back to the
	// built-in default.
	VolumeCeiling int `json:"volume_ceiling"`
}

// LoopConfig tunes the control loop.
type LoopConfig struct {
	// TickPeriodMS is the control loop cadence in milliseconds. 0 falls
	// back to the built-in default.
	TickPeriodMS int `json:"tick_period_ms"`
}

// WebConfig holds the HTTP server settings.
type WebConfig struct {
	// Listen is the address the HTTP server binds.
	Listen string `json:"listen"`
}

// StoreConfig tunes timestamp file handling.
type StoreConfig struct {
	// SaveOnSort writes a sorted table back to the file immediately
	// instead of waiting for the next cell edit.
	SaveOnSort bool `json:"save_on_sort"`
}

const (
	// DefaultMPVBinary assumes mpv on PATH.
	DefaultMPVBinary = "mpv"
	// DefaultLoopBinary assumes VLC on PATH.
	DefaultLoopBinary = "vlc"
	// DefaultVolume is deliberately quiet.
	DefaultVolume = 20
	// DefaultVolumeCeiling caps the volume range well below the player
	// maximum.
	DefaultVolumeCeiling = 40
	// DefaultTickPeriodMS keeps loop restarts within a tenth of a second
	// of the end bound.
	DefaultTickPeriodMS = 100
	// DefaultListen binds loopback only.
	DefaultListen = "127.0.0.1:8799"
)

// TickPeriod returns the control loop cadence as a Duration.
func (c LoopConfig) TickPeriod() time.Duration {
	return time.Duration(c.TickPeriodMS) * time.Millisecond
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Player: PlayerConfig{
			MPVBinary:     DefaultMPVBinary,
			LoopBinary:    DefaultLoopBinary,
			DefaultVolume: DefaultVolume,
			VolumeCeiling: DefaultVolumeCeiling,
		},
		Loop: LoopConfig{
			TickPeriodMS: DefaultTickPeriodMS,
		},
		Web: WebConfig{
			Listen: DefaultListen,
		},
		Store: StoreConfig{
			SaveOnSort: false,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// vidloop configuration - ~/.vidloop/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box with mpv and VLC on PATH. Edit this file to customise vidloop
// behaviour.
{
  // ── External players ─────────────────────────────────────────────────────
  "player": {
    // mpv executable the serve command starts. Must support JSON IPC
    // (any mpv from the last decade does).
    "mpv_binary": "mpv",

    // Player command the loop command spawns for detached interval loops.
    "loop_binary": "vlc",

    // Volume applied once media is loaded, in player percent.
    // 0 uses the built-in default.
    "default_volume": 20,

    // Upper bound for every volume change; requests above it are clamped.
    "volume_ceiling": 40
  },

  // ── Loop control ─────────────────────────────────────────────────────────
  "loop": {
    // Control loop cadence in milliseconds. Lower values tighten the loop
    // bound at the cost of more player chatter.
    "tick_period_ms": 100
  },

  // ── Web UI ───────────────────────────────────────────────────────────────
  "web": {
    // Address the HTTP server binds. Keep it on loopback unless you trust
    // everyone on the network.
    "listen": "127.0.0.1:8799"
  },

  // ── Timestamp store ──────────────────────────────────────────────────────
  "store": {
    // Write the reordered table back to the file immediately after a sort.
    // Off by default: a sort stays in memory until the next cell edit
    // persists the current order.
    "save_on_sort": false
  }
}
`

// configFilePath returns the path to ~/.vidloop/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vidloop", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.vidloop/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Player.MPVBinary == "" {
		cfg.Player.MPVBinary = DefaultMPVBinary
	}
	if cfg.Player.LoopBinary == "" {
		cfg.Player.LoopBinary = DefaultLoopBinary
	}
	if cfg.Player.DefaultVolume == 0 {
		cfg.Player.DefaultVolume = DefaultVolume
	}
	if cfg.Player.VolumeCeiling == 0 {
		cfg.Player.VolumeCeiling = DefaultVolumeCeiling
	}
	if cfg.Loop.TickPeriodMS == 0 {
		cfg.Loop.TickPeriodMS = DefaultTickPeriodMS
	}
	if cfg.Web.Listen == "" {
		cfg.Web.Listen = DefaultListen
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

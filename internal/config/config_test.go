package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"vidloop/internal/config"
)

func TestLoadFirstRunWritesTemplate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Player.MPVBinary != config.DefaultMPVBinary {
		t.Errorf("MPVBinary = %q, want %q", cfg.Player.MPVBinary, config.DefaultMPVBinary)
	}
	if cfg.Web.Listen != config.DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Web.Listen, config.DefaultListen)
	}

	data, err := os.ReadFile(filepath.Join(home, ".vidloop", "config.json"))
	if err != nil {
		t.Fatalf("template was not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("template file is empty")
	}

	// The annotated template must itself survive a Load round trip.
	cfg2, err := config.Load()
	if err != nil {
		t.Fatalf("Load() of written template: %v", err)
	}
	if cfg2 != cfg {
		t.Errorf("reloaded config = %+v, want %+v", cfg2, cfg)
	}
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".vidloop")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	content := `// custom player only
{
  "player": {"mpv_binary": "/opt/mpv/bin/mpv"},
  "store": {"save_on_sort": true}
}
`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Player.MPVBinary != "/opt/mpv/bin/mpv" {
		t.Errorf("MPVBinary = %q, want the configured path", cfg.Player.MPVBinary)
	}
	if cfg.Player.VolumeCeiling != config.DefaultVolumeCeiling {
		t.Errorf("VolumeCeiling = %d, want default %d", cfg.Player.VolumeCeiling, config.DefaultVolumeCeiling)
	}
	if cfg.Loop.TickPeriodMS != config.DefaultTickPeriodMS {
		t.Errorf("TickPeriodMS = %d, want default %d", cfg.Loop.TickPeriodMS, config.DefaultTickPeriodMS)
	}
	if !cfg.Store.SaveOnSort {
		t.Error("SaveOnSort = false, want true")
	}
}

func TestLoadRejectsBrokenJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".vidloop")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded on broken JSON, want error")
	}
}

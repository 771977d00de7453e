package strata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shell.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BaseLayerID != 1000 || cfg.ApplicationLayerID != 4000 {
		t.Errorf("layer id defaults wrong: %+v", cfg)
	}
	if cfg.PanelHeight != 70 {
		t.Errorf("PanelHeight = %d, want 70", cfg.PanelHeight)
	}
	if cfg.FadeModel != "spring" {
		t.Errorf("FadeModel = %q, want spring", cfg.FadeModel)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults fail validation: %v", err)
	}
}

func TestLoadConfigOverridesAndKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
base-layer-id = 100
panel-height = 48
fade-model = "tween"

[[launcher]]
icon-id = 4001
workspace-id = 1
path = "/usr/bin/term"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseLayerID != 100 || cfg.PanelHeight != 48 || cfg.FadeModel != "tween" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.WorkspaceLayerID != 3000 || cfg.TransitionDurationMS != 300 {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if len(cfg.Launchers) != 1 || cfg.Launchers[0].IconID != 4001 || cfg.Launchers[0].Workspace != 1 {
		t.Errorf("launchers = %+v", cfg.Launchers)
	}
}

func TestLoadConfigRejectsDuplicateLayerIDs(t *testing.T) {
	path := writeConfig(t, "base-layer-id = 2000\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadConfigRejectsUnknownFadeModel(t *testing.T) {
	path := writeConfig(t, "fade-model = \"teleport\"\n")
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("LoadConfig on a missing file succeeded")
	}
}

package strata

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Launcher is one icon on the launcher workspace. Icon surfaces are created
// by the UI client; the controller only positions them.
type Launcher struct {
	// IconID is the surface id the UI client renders the icon into.
	IconID SurfaceID `toml:"icon-id"`
	// Workspace is the zero-based page the icon lives on.
	Workspace int `toml:"workspace-id"`
	// Path is the executable launched on activation.
	Path string `toml:"path"`
}

// Config is the shell controller's configuration, loaded from TOML.
type Config struct {
	BaseLayerID                LayerID `toml:"base-layer-id"`
	WorkspaceBackgroundLayerID LayerID `toml:"workspace-background-layer-id"`
	WorkspaceLayerID           LayerID `toml:"workspace-layer-id"`
	ApplicationLayerID         LayerID `toml:"application-layer-id"`

	// PanelHeight is the pixel height reserved for the panel at the bottom
	// edge of each screen.
	PanelHeight int `toml:"panel-height"`

	// TransitionDurationMS is the duration of tween-model fades.
	TransitionDurationMS int `toml:"transition-duration"`

	// FadeModel picks the home overlay's fade: "spring" or "tween".
	FadeModel string `toml:"fade-model"`

	Launchers []Launcher `toml:"launcher"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		BaseLayerID:                1000,
		WorkspaceBackgroundLayerID: 2000,
		WorkspaceLayerID:           3000,
		ApplicationLayerID:         4000,
		PanelHeight:                70,
		TransitionDurationMS:       300,
		FadeModel:                  "spring",
	}
}

// LoadConfig reads a TOML config file over the defaults. Keys absent from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	ids := map[LayerID]string{}
	for id, name := range map[LayerID]string{
		c.BaseLayerID:                "base-layer-id",
		c.WorkspaceBackgroundLayerID: "workspace-background-layer-id",
		c.WorkspaceLayerID:           "workspace-layer-id",
		c.ApplicationLayerID:         "application-layer-id",
	} {
		if other, ok := ids[id]; ok {
			return invalidArgf("config: %s and %s share layer id %d", other, name, id)
		}
		ids[id] = name
	}
	if c.PanelHeight < 0 {
		return invalidArgf("config: negative panel-height %d", c.PanelHeight)
	}
	if c.FadeModel != "spring" && c.FadeModel != "tween" {
		return invalidArgf("config: unknown fade-model %q", c.FadeModel)
	}
	for _, l := range c.Launchers {
		if l.Workspace < 0 {
			return invalidArgf("config: launcher %d: negative workspace-id %d", l.IconID, l.Workspace)
		}
	}
	return nil
}

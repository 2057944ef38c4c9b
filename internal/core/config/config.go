package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Paths         Paths         `toml:"paths"`
	Engine        Engine        `toml:"engine"`
	Risk          Risk          `toml:"risk"`
	Cache         Cache         `toml:"cache"`
	Watch         Watch         `toml:"watch"`
	DB            Database      `toml:"db"`
	Observability Observability `toml:"observability"`
}

type Paths struct {
	// SnapshotDir holds one <project>.json document per project, produced
	// by the external analyzer.
	SnapshotDir string `toml:"snapshot_dir"`
	StateDir    string `toml:"state_dir"`
}

type Engine struct {
	DefaultDepth int `toml:"default_depth"`
	MaxDepth     int `toml:"max_depth"`
}

// Risk holds the affected-count thresholds for each risk tier. The upper
// bound of each tier is inclusive; anything above HighMax is CRITICAL.
type Risk struct {
	LowMax    int    `toml:"low_max"`
	MediumMax int    `toml:"medium_max"`
	HighMax   int    `toml:"high_max"`
	CountMode string `toml:"count_mode"` // "files" or "elements"
}

type Cache struct {
	TTL time.Duration `toml:"ttl"`
}

type Watch struct {
	Debounce     time.Duration `toml:"debounce"`
	ExcludeFiles []string      `toml:"exclude_files"`
	ReloadRate   float64       `toml:"reload_rate"`
	ReloadBurst  int           `toml:"reload_burst"`
}

type Database struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Observability struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with all defaults applied, for hosts that
// run without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Paths.SnapshotDir) == "" {
		cfg.Paths.SnapshotDir = "data/snapshots"
	}
	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = "data/state"
	}

	if cfg.Engine.DefaultDepth <= 0 {
		cfg.Engine.DefaultDepth = 3
	}
	if cfg.Engine.MaxDepth <= 0 {
		cfg.Engine.MaxDepth = 10
	}

	if cfg.Risk.LowMax <= 0 {
		cfg.Risk.LowMax = 5
	}
	if cfg.Risk.MediumMax <= 0 {
		cfg.Risk.MediumMax = 15
	}
	if cfg.Risk.HighMax <= 0 {
		cfg.Risk.HighMax = 40
	}
	if strings.TrimSpace(cfg.Risk.CountMode) == "" {
		cfg.Risk.CountMode = "files"
	}

	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 15 * time.Minute
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.ReloadRate <= 0 {
		cfg.Watch.ReloadRate = 2
	}
	if cfg.Watch.ReloadBurst <= 0 {
		cfg.Watch.ReloadBurst = 4
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "data/state/history.db"
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9187"
	}
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	if cfg.Engine.MaxDepth > 10 {
		return fmt.Errorf("engine.max_depth must be <= 10, got %d", cfg.Engine.MaxDepth)
	}
	if cfg.Engine.DefaultDepth > cfg.Engine.MaxDepth {
		return fmt.Errorf("engine.default_depth %d exceeds engine.max_depth %d",
			cfg.Engine.DefaultDepth, cfg.Engine.MaxDepth)
	}
	if cfg.Risk.LowMax >= cfg.Risk.MediumMax || cfg.Risk.MediumMax >= cfg.Risk.HighMax {
		return fmt.Errorf("risk thresholds must be strictly increasing: low_max=%d medium_max=%d high_max=%d",
			cfg.Risk.LowMax, cfg.Risk.MediumMax, cfg.Risk.HighMax)
	}
	switch cfg.Risk.CountMode {
	case "files", "elements":
	default:
		return fmt.Errorf("risk.count_mode must be %q or %q, got %q", "files", "elements", cfg.Risk.CountMode)
	}
	return nil
}

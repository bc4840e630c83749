package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ftahirops/lapaudit/collector"
	"github.com/ftahirops/lapaudit/ledger"
	"github.com/ftahirops/lapaudit/model"
)

// Config holds operator defaults. Command-line flags override it.
type Config struct {
	Ledger  LedgerConfig  `yaml:"ledger"`
	Grading GradingConfig `yaml:"grading"`
	Probes  ProbeConfig   `yaml:"probes"`
	Log     LogConfig     `yaml:"log"`
}

type LedgerConfig struct {
	Dir     string `yaml:"dir"`     // empty: the boot medium, else the working directory
	File    string `yaml:"file"`    // file name inside Dir
	Remount bool   `yaml:"remount"` // remount a read-only boot medium read-write
}

type GradingConfig struct {
	Interactive    bool   `yaml:"interactive"`
	DisplayTest    bool   `yaml:"display_test"`
	DefaultScreen  string `yaml:"default_screen"`
	DefaultChassis string `yaml:"default_chassis"`
}

type ProbeConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Root    string        `yaml:"root"` // filesystem root holding proc/ and sys/; tools only run when "/"
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	return Config{
		Ledger: LedgerConfig{
			File:    ledger.DefaultFile,
			Remount: true,
		},
		Grading: GradingConfig{
			Interactive:    true,
			DisplayTest:    true,
			DefaultScreen:  string(model.GradeB),
			DefaultChassis: string(model.GradeB),
		},
		Probes: ProbeConfig{
			Timeout: collector.DefaultTimeout,
			Root:    "/",
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Path returns ~/.config/lapaudit/config.yaml (or XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lapaudit", "config.yaml")
}

// Load reads the config at path over the defaults. An empty path means
// Path(). A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values a typo could make meaningless.
func (c Config) Validate() error {
	if c.Ledger.File == "" || strings.ContainsRune(c.Ledger.File, filepath.Separator) {
		return fmt.Errorf("config: ledger.file must be a plain file name, got %q", c.Ledger.File)
	}
	if _, ok := model.ParseGrade(c.Grading.DefaultScreen); !ok {
		return fmt.Errorf("config: grading.default_screen must be A, B or C, got %q", c.Grading.DefaultScreen)
	}
	if _, ok := model.ParseGrade(c.Grading.DefaultChassis); !ok {
		return fmt.Errorf("config: grading.default_chassis must be A, B or C, got %q", c.Grading.DefaultChassis)
	}
	if c.Probes.Timeout <= 0 {
		return fmt.Errorf("config: probes.timeout must be positive, got %s", c.Probes.Timeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LedgerPath is the full path of the ledger file for the given probe
// root.
func (c Config) LedgerPath() string {
	return filepath.Join(ledger.ResolveDir(c.Ledger.Dir, filepath.Join(c.Probes.Root, "proc")), c.Ledger.File)
}

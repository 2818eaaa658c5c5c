// Package config provides configuration management for zenplan.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultWorkerPort is the port the local worker listens on.
	DefaultWorkerPort = 37810

	// DefaultHeatmapWeeks is the number of weeks rendered on the activity heatmap.
	DefaultHeatmapWeeks = 20

	// MaxHeatmapWeeks caps the heatmap length from any source.
	MaxHeatmapWeeks = 520

	// DefaultLogLevel is the zerolog level name used when nothing is configured.
	DefaultLogLevel = "info"

	// DataDirName is the subdirectory of the documents folder holding per-date files.
	DataDirName = "ZenPlan"

	configDirName = ".zenplan"
)

// Config holds zenplan settings.
type Config struct {
	DataDir      string `json:"ZENPLAN_DATA_DIR"`
	LogLevel     string `json:"ZENPLAN_LOG_LEVEL"`
	WorkerPort   int    `json:"ZENPLAN_WORKER_PORT"`
	HeatmapWeeks int    `json:"ZENPLAN_HEATMAP_WEEKS"`
}

var (
	global     *Config
	globalOnce sync.Once
)

// ConfigDir returns the directory holding settings, the subject catalog and logs.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, configDirName)
}

// SettingsPath returns the path to settings.json.
func SettingsPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// CatalogPath returns the path to the subject catalog.
func CatalogPath() string {
	return filepath.Join(ConfigDir(), "subjects.yaml")
}

// LogPath returns the path of the worker log file.
func LogPath() string {
	return filepath.Join(ConfigDir(), "logs", "worker.log")
}

// DocumentsDir returns the platform's user documents location.
// XDG_DOCUMENTS_DIR wins when set; otherwise ~/Documents.
func DocumentsDir() string {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "Documents")
}

// DefaultDataDir returns <documents>/ZenPlan.
func DefaultDataDir() string {
	return filepath.Join(DocumentsDir(), DataDirName)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir:      DefaultDataDir(),
		LogLevel:     DefaultLogLevel,
		WorkerPort:   DefaultWorkerPort,
		HeatmapWeeks: DefaultHeatmapWeeks,
	}
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0750)
}

// EnsureSettings writes a default settings.json if none exists yet.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll creates the config directory and default settings.
func EnsureAll() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Load reads settings.json and applies environment overrides. A missing
// settings file is not an error. A malformed one is reported, and the
// returned config is still usable: defaults plus environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	var loadErr error
	if data, err := os.ReadFile(SettingsPath()); err == nil {
		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", SettingsPath(), err)
		} else {
			cfg.merge(&fileCfg)
		}
	}

	// .env in the working directory feeds the env overrides below.
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, loadErr
}

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	globalOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring settings file")
		}
		global = cfg
	})
	return global
}

// GetWorkerPort returns the worker port, honouring ZENPLAN_WORKER_PORT
// even after Get() has cached the configuration.
func GetWorkerPort() int {
	if port, ok := envInt("ZENPLAN_WORKER_PORT"); ok {
		return port
	}
	return Get().WorkerPort
}

func (c *Config) merge(other *Config) {
	if other.DataDir != "" {
		c.DataDir = expandHome(other.DataDir)
	}
	if other.LogLevel != "" {
		c.LogLevel = strings.ToLower(other.LogLevel)
	}
	if other.WorkerPort > 0 {
		c.WorkerPort = other.WorkerPort
	}
	if other.HeatmapWeeks > 0 {
		c.HeatmapWeeks = min(other.HeatmapWeeks, MaxHeatmapWeeks)
	}
}

func (c *Config) applyEnv() {
	if dir := os.Getenv("ZENPLAN_DATA_DIR"); dir != "" {
		c.DataDir = expandHome(dir)
	}
	if level := os.Getenv("ZENPLAN_LOG_LEVEL"); level != "" {
		c.LogLevel = strings.ToLower(level)
	}
	if port, ok := envInt("ZENPLAN_WORKER_PORT"); ok {
		c.WorkerPort = port
	}
	if weeks, ok := envInt("ZENPLAN_HEATMAP_WEEKS"); ok {
		c.HeatmapWeeks = min(weeks, MaxHeatmapWeeks)
	}
}

// envInt parses a positive integer env var.
func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the engine configuration surface. Unknown keys in either config
// file are ignored; out-of-range values fall back to the defaults below
// with a single warning each.
type Config struct {
	RepoPath               string   `toml:"repo_path" yaml:"repo_path"`
	RefreshIntervalSeconds float64  `toml:"refresh_interval_seconds" yaml:"refresh_interval_seconds"`
	MaxDepth               int      `toml:"max_depth" yaml:"max_depth"`
	MaxFilesPerCluster     int      `toml:"max_files_per_cluster" yaml:"max_files_per_cluster"`
	DebounceMs             int      `toml:"debounce_ms" yaml:"debounce_ms"`
	MaxEventsPerSecond     int      `toml:"max_events_per_second" yaml:"max_events_per_second"`
	CommitLimit            int      `toml:"commit_limit" yaml:"commit_limit"`
	IgnoreDirectories      []string `toml:"ignore_directories" yaml:"ignore_directories"`
	IgnoreFileSuffixes     []string `toml:"ignore_file_suffixes" yaml:"ignore_file_suffixes"`
	LogFile                string   `toml:"log_file" yaml:"log_file"`
}

func Default() *Config {
	return &Config{
		RepoPath:               ".",
		RefreshIntervalSeconds: 1.0,
		MaxDepth:               3,
		MaxFilesPerCluster:     10,
		DebounceMs:             500,
		MaxEventsPerSecond:     10,
		CommitLimit:            50,
	}
}

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "repowatch", "config.toml")
}

// Load reads the global TOML config, falling back to defaults when the file
// does not exist or cannot be parsed. A broken config file is reported and
// skipped, never fatal.
func Load() (*Config, error) {
	path := GetConfigPath()
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		slog.Warn("ignoring unparseable config, using defaults", "path", path, "error", err)
		return Default(), nil
	}
	cfg.Normalize()
	return cfg, nil
}

// LoadRepoOverrides overlays a per-repository .repowatch.yml, when present,
// onto the config. A broken overrides file is reported and skipped.
func (c *Config) LoadRepoOverrides(repoRoot string) {
	path := filepath.Join(repoRoot, ".repowatch.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		slog.Warn("ignoring unparseable repo overrides", "path", path, "error", err)
		return
	}
	c.Normalize()
}

func (c *Config) Save() error {
	path := GetConfigPath()
	os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// Normalize clamps invalid values back to their defaults, warning once per
// field. Configuration problems never stop the engine.
func (c *Config) Normalize() {
	def := Default()
	if c.RefreshIntervalSeconds <= 0 {
		slog.Warn("invalid refresh_interval_seconds, using default",
			"got", c.RefreshIntervalSeconds, "default", def.RefreshIntervalSeconds)
		c.RefreshIntervalSeconds = def.RefreshIntervalSeconds
	}
	if c.MaxDepth <= 0 {
		slog.Warn("invalid max_depth, using default", "got", c.MaxDepth, "default", def.MaxDepth)
		c.MaxDepth = def.MaxDepth
	}
	if c.MaxFilesPerCluster <= 0 {
		slog.Warn("invalid max_files_per_cluster, using default",
			"got", c.MaxFilesPerCluster, "default", def.MaxFilesPerCluster)
		c.MaxFilesPerCluster = def.MaxFilesPerCluster
	}
	if c.DebounceMs <= 0 {
		slog.Warn("invalid debounce_ms, using default", "got", c.DebounceMs, "default", def.DebounceMs)
		c.DebounceMs = def.DebounceMs
	}
	if c.MaxEventsPerSecond <= 0 {
		slog.Warn("invalid max_events_per_second, using default",
			"got", c.MaxEventsPerSecond, "default", def.MaxEventsPerSecond)
		c.MaxEventsPerSecond = def.MaxEventsPerSecond
	}
	if c.CommitLimit <= 0 {
		c.CommitLimit = def.CommitLimit
	}
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds * float64(time.Second))
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

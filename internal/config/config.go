// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Database   DatabaseConfig   `yaml:"database"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Generation GenerationConfig `yaml:"generation"`
	Progress   ProgressConfig   `yaml:"progress"`
	Inbox      InboxConfig      `yaml:"inbox"`
	NATS       NATSConfig       `yaml:"nats"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig configures artifact storage and retention.
type StorageConfig struct {
	Directory     string `yaml:"directory"`
	RetentionDays int    `yaml:"retention_days"` // 0 disables the retention sweep
	SweepSchedule string `yaml:"sweep_schedule"` // cron expression
}

// DatabaseConfig locates the SQLite databases.
type DatabaseConfig struct {
	PlansPath  string `yaml:"plans_path"`
	EventsPath string `yaml:"events_path"`
}

// TemplatesConfig locates the fragment override directory.
type TemplatesConfig struct {
	Directory string `yaml:"directory"` // empty = built-in fragments only
}

// GenerationConfig bounds document generation.
type GenerationConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ProgressConfig tunes the client-side progress animation.
type ProgressConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Step         float64       `yaml:"step"`
	Cap          float64       `yaml:"cap"`
}

// InboxConfig configures the filesystem inbox watcher.
type InboxConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// NATSConfig configures the optional event mirror.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// MetricsConfig toggles Prometheus collection.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from the specified file. A .env or .env.local
// file in the working directory is applied first; variables already in the
// process environment win. ${VAR} references in the YAML are expanded.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Directory:     "./memorias",
			RetentionDays: 0,
			SweepSchedule: "0 3 * * *",
		},
		Database: DatabaseConfig{
			PlansPath:  "./memoria.db",
			EventsPath: "./memoria-events.db",
		},
		Generation: GenerationConfig{
			Timeout: 2 * time.Minute,
		},
		Progress: ProgressConfig{
			TickInterval: 200 * time.Millisecond,
			Step:         0.14,
			Cap:          0.70,
		},
		NATS: NATSConfig{
			SubjectPrefix: "memoria",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Storage.Directory == "" {
		return fmt.Errorf("storage.directory must not be empty")
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("storage.retention_days must not be negative")
	}
	if c.Generation.Timeout <= 0 {
		return fmt.Errorf("generation.timeout must be positive")
	}
	if c.Progress.TickInterval <= 0 {
		return fmt.Errorf("progress.tick_interval must be positive")
	}
	if c.Progress.Step <= 0 || c.Progress.Step > 1 {
		return fmt.Errorf("progress.step must be in (0, 1]")
	}
	if c.Progress.Cap <= 0 || c.Progress.Cap > 1 {
		return fmt.Errorf("progress.cap must be in (0, 1]")
	}
	if c.Inbox.Enabled && c.Inbox.Directory == "" {
		return fmt.Errorf("inbox.directory must be set when inbox is enabled")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url must be set when nats is enabled")
	}
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Storage.RetentionDays = 30
	example.Inbox = InboxConfig{Enabled: false, Directory: "./inbox"}
	example.NATS = NATSConfig{Enabled: false, URL: "nats://localhost:4222", SubjectPrefix: "memoria"}
	example.Metrics = MetricsConfig{Enabled: true}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// loadEnvFiles applies .env files without overriding the process environment.
func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

// Package config loads the settings shared by boxinfo and boxinfod from
// defaults, ~/.config/boxinfo/config.yml, BOXINFO_* variables and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tinytelemetry/boxinfo/internal/model"
	"github.com/tinytelemetry/boxinfo/internal/socketrpc"
)

const (
	defaultRoot           = "/"
	defaultAPIAddr        = "127.0.0.1:8089"
	defaultQueryTimeout   = 30 * time.Second
	defaultBackupInterval = 24 * time.Hour
	defaultBackupKeepLast = 7
)

// Config is the runtime configuration of both binaries.
type Config struct {
	Root               string        `mapstructure:"root"`
	Language           string        `mapstructure:"language"`
	UpdateCheck        bool          `mapstructure:"update-check"`
	MemoryRows         int           `mapstructure:"memory-rows"`
	ReverseScrollWheel bool          `mapstructure:"reverse-scroll-wheel"`
	SocketPath         string        `mapstructure:"socket-path"`
	GeoCachePath       string        `mapstructure:"geo-cache-path"`
	BrandingFile       string        `mapstructure:"branding-file"`
	GitHubToken        string        `mapstructure:"github-token"`
	NetworkTimeout     time.Duration `mapstructure:"network-timeout"`

	// Daemon
	CollectInterval      time.Duration `mapstructure:"collect-interval"`
	MemorySampleInterval time.Duration `mapstructure:"memory-sample-interval"`
	DBPath               string        `mapstructure:"db-path"`
	QueryTimeout         time.Duration `mapstructure:"query-timeout"`
	RetentionDays        int           `mapstructure:"retention-days"`
	APIEnabled           bool          `mapstructure:"api-enabled"`
	APIAddr              string        `mapstructure:"api-addr"`
	OTLPEndpoint         string        `mapstructure:"otlp-endpoint"`
	BackupEnabled        bool          `mapstructure:"backup-enabled"`
	BackupInterval       time.Duration `mapstructure:"backup-interval"`
	BackupDir            string        `mapstructure:"backup-dir"`
	BackupKeepLast       int           `mapstructure:"backup-keep-last"`

	ConfigPath string `mapstructure:"-"` // not from config file
}

// Load reads the configuration. configPath overrides the default file
// location; flags, when non-nil, win over every other source for the
// flags the user set.
func Load(configPath string, flags *pflag.FlagSet) (Config, error) {
	var cfg Config

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".local", "share", "boxinfo")

	v := viper.New()
	v.SetEnvPrefix("BOXINFO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("root", defaultRoot)
	v.SetDefault("language", model.DefaultLanguage)
	v.SetDefault("update-check", true)
	v.SetDefault("memory-rows", model.DefaultMemoryRows)
	v.SetDefault("reverse-scroll-wheel", false)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("geo-cache-path", filepath.Join(home, ".cache", "boxinfo", "geolocation.cbor"))
	v.SetDefault("branding-file", filepath.Join(home, ".config", "boxinfo", "branding.yml"))
	v.SetDefault("github-token", "")
	v.SetDefault("network-timeout", model.DefaultNetworkTimeout)
	v.SetDefault("collect-interval", model.DefaultCollectInterval)
	v.SetDefault("memory-sample-interval", model.DefaultMemorySampleInterval)
	v.SetDefault("db-path", filepath.Join(dataDir, "boxinfo.duckdb"))
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("retention-days", model.DefaultRetentionDays)
	v.SetDefault("api-enabled", true)
	v.SetDefault("api-addr", defaultAPIAddr)
	v.SetDefault("otlp-endpoint", "")
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", defaultBackupInterval)
	v.SetDefault("backup-dir", filepath.Join(dataDir, "backups"))
	v.SetDefault("backup-keep-last", defaultBackupKeepLast)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return cfg, fmt.Errorf("binding flags: %w", err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "boxinfo", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	for _, p := range []*string{&cfg.Root, &cfg.SocketPath, &cfg.GeoCachePath, &cfg.BrandingFile, &cfg.DBPath, &cfg.BackupDir} {
		*p = expandHome(*p, home)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MemoryRows <= 0 {
		return fmt.Errorf("invalid memory-rows: %d", c.MemoryRows)
	}
	if c.NetworkTimeout <= 0 {
		return fmt.Errorf("invalid network-timeout: %s", c.NetworkTimeout)
	}
	if c.CollectInterval <= 0 {
		return fmt.Errorf("invalid collect-interval: %s", c.CollectInterval)
	}
	if c.MemorySampleInterval <= 0 {
		return fmt.Errorf("invalid memory-sample-interval: %s", c.MemorySampleInterval)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("invalid retention-days: %d", c.RetentionDays)
	}
	return nil
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

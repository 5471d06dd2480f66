package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/socketrpc"

	"github.com/spf13/viper"
)

const (
	defaultBindHost       = "127.0.0.1"
	defaultAPIPort        = model.DefaultAPIPort
	defaultBackend        = backendDuckDB
	defaultQueryTimeout   = 30 * time.Second
	defaultBackupInterval = 6 * time.Hour
	defaultBackupKeepLast = 24
	defaultLogLevel       = "info"

	backendDuckDB = "duckdb"
	backendSQLite = "sqlite"
)

// appConfig is internal runtime configuration for the service.
type appConfig struct {
	Host              string        `mapstructure:"host"`
	APIPort           int           `mapstructure:"api-port"`
	APIAddr           string        `mapstructure:"api-addr"`
	Backend           string        `mapstructure:"backend"`
	DBPath            string        `mapstructure:"db-path"`
	QueryTimeout      time.Duration `mapstructure:"query-timeout"`
	BackupEnabled     bool          `mapstructure:"backup-enabled"`
	BackupInterval    time.Duration `mapstructure:"backup-interval"`
	BackupDir         string        `mapstructure:"backup-dir"`
	BackupKeepLast    int           `mapstructure:"backup-keep-last"`
	AdminPassword     string        `mapstructure:"admin-password"`
	AdminPasswordHash string        `mapstructure:"admin-password-hash"`
	WebDir            string        `mapstructure:"web-dir"`
	FragmentDir       string        `mapstructure:"fragment-dir"`
	Manifest          string        `mapstructure:"manifest"`
	MaxUploadBytes    int64         `mapstructure:"max-upload-bytes"`
	SocketPath        string        `mapstructure:"socket-path"`
	LogLevel          string        `mapstructure:"log-level"`
	ConfigPath        string        `mapstructure:"-"`
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".local", "share", "invite")

	v := viper.New()
	v.SetEnvPrefix("INVITE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("host", defaultBindHost)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("backend", defaultBackend)
	v.SetDefault("db-path", "")
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", defaultBackupInterval)
	v.SetDefault("backup-dir", filepath.Join(dataDir, "backups"))
	v.SetDefault("backup-keep-last", defaultBackupKeepLast)
	v.SetDefault("admin-password", "")
	v.SetDefault("admin-password-hash", "")
	v.SetDefault("web-dir", "")
	v.SetDefault("fragment-dir", "")
	v.SetDefault("manifest", "")
	v.SetDefault("max-upload-bytes", model.MaxPhotoUploadBytes)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("log-level", defaultLogLevel)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "invite", "config.yml"))
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
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	switch cfg.Backend {
	case backendDuckDB, backendSQLite:
	default:
		return cfg, fmt.Errorf("invalid backend: %q (want duckdb or sqlite)", cfg.Backend)
	}
	if cfg.BackupEnabled {
		if cfg.BackupInterval <= 0 {
			return cfg, fmt.Errorf("invalid backup-interval: %s", cfg.BackupInterval)
		}
		if cfg.BackupKeepLast <= 0 {
			return cfg, fmt.Errorf("invalid backup-keep-last: %d", cfg.BackupKeepLast)
		}
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(dataDir, "invite"+backendExt(cfg.Backend))
	}
	cfg.DBPath = expandHome(home, cfg.DBPath)
	cfg.BackupDir = expandHome(home, cfg.BackupDir)
	cfg.WebDir = expandHome(home, cfg.WebDir)
	cfg.FragmentDir = expandHome(home, cfg.FragmentDir)
	cfg.Manifest = expandHome(home, cfg.Manifest)

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}

// backendExt is the database and snapshot file extension for a backend.
func backendExt(backend string) string {
	if backend == backendSQLite {
		return ".db"
	}
	return ".duckdb"
}

func expandHome(home, p string) string {
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}

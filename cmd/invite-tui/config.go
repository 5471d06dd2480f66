package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/socketrpc"

	"github.com/spf13/viper"
)

const (
	defaultServerURL = "http://127.0.0.1:3000"
	adminViaHTTP     = "http"
	adminViaSocket   = "socket"
)

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	ServerURL    string        `mapstructure:"server-url"`
	SocketPath   string        `mapstructure:"socket-path"`
	AdminVia     string        `mapstructure:"admin-via"`
	Offline      bool          `mapstructure:"offline"`
	Manifest     string        `mapstructure:"manifest"`
	Preload      bool          `mapstructure:"preload"`
	HideDelay    time.Duration `mapstructure:"hide-delay"`
	Language     string        `mapstructure:"language"`
	Title        string        `mapstructure:"title"`
	WeddingDate  string        `mapstructure:"wedding-date"`
	TimeZone     string        `mapstructure:"time-zone"`
	GlamourStyle string        `mapstructure:"glamour-style"`
	LogLevel     string        `mapstructure:"log-level"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("INVITE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("server-url", defaultServerURL)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("admin-via", adminViaHTTP)
	v.SetDefault("offline", false)
	v.SetDefault("manifest", "")
	v.SetDefault("preload", false)
	v.SetDefault("hide-delay", model.DefaultHideDelay)
	v.SetDefault("language", model.DefaultLanguage)
	v.SetDefault("title", model.DefaultCoupleTitle)
	v.SetDefault("wedding-date", model.DefaultWeddingDate)
	v.SetDefault("time-zone", model.DefaultTimeZone)
	v.SetDefault("glamour-style", "")
	v.SetDefault("log-level", "info")

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

	switch cfg.AdminVia {
	case adminViaHTTP, adminViaSocket:
	default:
		return cfg, fmt.Errorf("invalid admin-via: %q (want http or socket)", cfg.AdminVia)
	}
	if cfg.HideDelay < 0 {
		return cfg, fmt.Errorf("invalid hide-delay: %s", cfg.HideDelay)
	}
	if strings.HasPrefix(cfg.Manifest, "~/") {
		cfg.Manifest = filepath.Join(home, cfg.Manifest[2:])
	}
	return cfg, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/client"
	"github.com/heyojules/invite/internal/countdown"
	"github.com/heyojules/invite/internal/fragment"
	"github.com/heyojules/invite/internal/i18n"
	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/socketrpc"
	"github.com/heyojules/invite/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var serverURL string
	var view string
	var offline bool
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/invite/config.yml)")
	flag.StringVar(&serverURL, "server", "", "override the invite service URL")
	flag.StringVar(&view, "view", "", "view to open first (home, album, invitation)")
	flag.BoolVar(&offline, "offline", false, "browse the embedded pages without a service")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Invite CLI - Terminal Invitation\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if offline {
		cfg.Offline = true
	}

	if err := runTUI(cfg, view); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig, view string) error {
	logger, err := newRuntimeLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	manifest, err := fragment.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}

	tr, err := i18n.New(cfg.Language)
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	wedding, err := model.WeddingTime(cfg.WeddingDate, cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid wedding-date/time-zone: %w", err)
	}

	siteCfg := tui.SiteConfig{
		Views:      manifest.RouterViews(),
		Default:    manifest.DefaultView(),
		StartURL:   startURL(cfg, view),
		Title:      cfg.Title,
		Countdown:  countdown.NewTimer(wedding, time.Second),
		Translator: tr,
		Renderer:   tui.NewRenderer(cfg.GlamourStyle),
		Logger:     logger,
		Preload:    cfg.Preload,
		HideDelay:  cfg.HideDelay,
	}

	var adminSvc tui.AdminService
	if cfg.Offline {
		catalog, err := fragment.NewCatalog(manifest, "", logger.Named("fragment"))
		if err != nil {
			return err
		}
		siteCfg.Source = catalog
	} else {
		api, err := client.New(cfg.ServerURL, nil)
		if err != nil {
			return err
		}
		source, err := fragment.NewHTTPSource(cfg.ServerURL, nil)
		if err != nil {
			return err
		}
		siteCfg.Source = source
		siteCfg.Data = api
		adminSvc = api
	}

	if cfg.AdminVia == adminViaSocket {
		sock, err := socketrpc.Dial(cfg.SocketPath)
		if err != nil {
			return fmt.Errorf("cannot connect to invite service at %s: %w\nIs the invite service running? Start it with: invite", cfg.SocketPath, err)
		}
		defer sock.Close()
		adminSvc = tui.AdminFunc(func(_ context.Context, password string) (admin.Summary, error) {
			return sock.AdminSummary(password)
		})
	}

	site, err := tui.NewSite(siteCfg)
	if err != nil {
		return err
	}
	defer site.Close()

	app := tui.NewApp(site, tui.NewAdminPage(adminSvc, tr))

	p := tea.NewProgram(app, tea.WithAltScreen())
	site.Attach(p.Send)
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	stats := site.Router().Stats()
	logger.Info("session ended", zap.Any("router", stats))
	return nil
}

// startURL is the address the shell starts from; a view flag becomes its
// fragment.
func startURL(cfg cliConfig, view string) string {
	base := cfg.ServerURL
	if cfg.Offline {
		base = "invite:/"
	}
	base = strings.TrimRight(base, "/") + "/"
	if view != "" {
		return base + "#" + strings.TrimPrefix(view, "#")
	}
	return base
}

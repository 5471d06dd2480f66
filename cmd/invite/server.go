package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/backup"
	"github.com/heyojules/invite/internal/duckdb"
	"github.com/heyojules/invite/internal/fragment"
	"github.com/heyojules/invite/internal/httpserver"
	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/socketrpc"
	"github.com/heyojules/invite/internal/sqlite"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runServer serves the page fragments, the guest APIs and the local admin
// socket until SIGINT or SIGTERM.
func runServer(cfg appConfig) error {
	logger, err := newRuntimeLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	store, err := openBackend(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	defer store.Close()

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupDir,
		KeepLast: cfg.BackupKeepLast,
		Ext:      backendExt(cfg.Backend),
	}, logger.Named("backup"))
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	manifest, err := fragment.LoadManifest(cfg.Manifest)
	if err != nil {
		return err
	}
	catalog, err := fragment.NewCatalog(manifest, cfg.FragmentDir, logger.Named("fragment"))
	if err != nil {
		return err
	}

	// A nil Authorizer rejects every admin request.
	var authorizer httpserver.Authorizer
	auth, err := admin.NewAuth(cfg.AdminPasswordHash, cfg.AdminPassword)
	switch {
	case errors.Is(err, admin.ErrNoPassword):
		logger.Warn("no admin password configured; admin routes are disabled")
	case err != nil:
		return err
	default:
		authorizer = auth
	}

	apiServer := httpserver.NewServer(cfg.APIAddr, store, catalog, authorizer, httpserver.Options{
		WebDir:         cfg.WebDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	defer apiServer.Stop()

	sockServer := socketrpc.NewServer(cfg.SocketPath, store, authorizer, logger)
	if err := sockServer.Start(); err != nil {
		logger.Warn("failed to start socket server", zap.String("path", cfg.SocketPath), zap.Error(err))
	} else {
		defer sockServer.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(cfg, authorizer != nil)

	g, gctx := errgroup.WithContext(ctx)

	// Without the watcher cached fragments live until restart.
	g.Go(func() error {
		if err := catalog.Watch(gctx); err != nil {
			logger.Warn("fragment watch stopped", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server: errgroup exited with error", zap.Error(err))
	}
	return nil
}

func openBackend(cfg appConfig, logger *zap.Logger) (model.Backend, error) {
	switch cfg.Backend {
	case backendSQLite:
		return sqlite.NewStore(cfg.DBPath, logger.Named("sqlite"), cfg.QueryTimeout)
	default:
		return duckdb.NewStore(cfg.DBPath, logger.Named("duckdb"), cfg.QueryTimeout)
	}
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func printStartupBanner(cfg appConfig, adminEnabled bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	gold := lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	status := func(on bool, label, value string) string {
		mark := dot
		if on {
			mark = check
		}
		return fmt.Sprintf("    %s  %-14s %s", mark, label, value)
	}

	lines := []string{
		"",
		gold.Bold(true).Render("    " + model.DefaultCoupleTitle),
		"    " + dim.Render("invite v"+version),
		"",
		dim.Render("    ─────────────────────────────────"),
		"",
		bold.Render("    Gateway"),
		"",
		status(true, "HTTP API", gold.Render(cfg.APIAddr)),
		status(true, "Unix Socket", gold.Render(shortenPath(cfg.SocketPath))),
		status(adminEnabled, "Admin", dim.Render(onOff(adminEnabled))),
		"",
		bold.Render("    Content"),
		"",
		status(cfg.FragmentDir != "", "Fragments", dim.Render(orDefault(shortenPath(cfg.FragmentDir), "embedded"))),
		status(cfg.WebDir != "", "Web Root", dim.Render(orDefault(shortenPath(cfg.WebDir), "disabled"))),
		"",
		bold.Render("    Storage"),
		"",
		status(true, "Backend", dim.Render(cfg.Backend+" · "+shortenPath(cfg.DBPath))),
		status(cfg.BackupEnabled, "Snapshots", dim.Render(orDefault(backupLabel(cfg), "disabled"))),
		"",
		bold.Render("    Config"),
		"",
		status(cfg.ConfigPath != "", "Config File", dim.Render(orDefault(shortenPath(cfg.ConfigPath), "default (no file)"))),
		"",
		dim.Render("    ─────────────────────────────────"),
		"",
		"    " + dim.Render("Press ") + gold.Render("Ctrl+C") + dim.Render(" to stop"),
		"",
	}
	fmt.Println(strings.Join(lines, "\n"))
}

func backupLabel(cfg appConfig) string {
	if !cfg.BackupEnabled {
		return ""
	}
	return fmt.Sprintf("%s every %s", shortenPath(cfg.BackupDir), cfg.BackupInterval)
}

func onOff(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultInterval = 6 * time.Hour
	defaultKeepLast = 24
	defaultExt      = ".duckdb"

	filePrefix = "invite-"
	timeLayout = "20060102-150405.000"
)

// Manager runs periodic local snapshots of the active backend.
type Manager struct {
	store  Snapshotter
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager initializes the backup manager and takes a startup snapshot.
// It returns nil when backups are disabled.
func NewManager(store Snapshotter, cfg Config, logger *zap.Logger) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, fmt.Errorf("backup: nil snapshotter")
	}
	if strings.TrimSpace(store.DBPath()) == "" {
		return nil, fmt.Errorf("backup: db-path is empty (in-memory store)")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, fmt.Errorf("backup: backup-dir is required when backup is enabled")
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if cfg.Ext == "" {
		cfg.Ext = defaultExt
	}
	if err := os.MkdirAll(cfg.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("backup: create backup-dir: %w", err)
	}

	m := newManager(store, cfg, logger)

	// Startup snapshot to reduce recovery point after restarts.
	if err := m.RunOnce(m.ctx); err != nil {
		m.logger.Warn("startup snapshot failed", zap.Error(err))
	}

	m.wg.Add(1)
	go m.loop()
	return m, nil
}

func newManager(store Snapshotter, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Ext == "" {
		cfg.Ext = defaultExt
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger.Named("backup"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (m *Manager) loop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.RunOnce(m.ctx); err != nil {
				m.logger.Warn("periodic snapshot failed", zap.Error(err))
			}
		case <-m.ctx.Done():
			return
		}
	}
}

// RunOnce creates one local snapshot and prunes old copies.
func (m *Manager) RunOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fileName := filePrefix + m.now().UTC().Format(timeLayout) + m.cfg.Ext
	localPath := filepath.Join(m.cfg.LocalDir, fileName)

	if err := m.store.SnapshotTo(localPath); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	m.logger.Info("created snapshot", zap.String("path", localPath))

	if err := pruneLocalBackups(m.cfg.LocalDir, m.cfg.Ext, m.cfg.KeepLast); err != nil {
		return fmt.Errorf("prune local backups: %w", err)
	}
	return nil
}

// Stop terminates the periodic backup loop.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}

func pruneLocalBackups(localDir, ext string, keepLast int) error {
	if keepLast <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(localDir, filePrefix+"*"+ext))
	if err != nil {
		return err
	}
	if len(matches) <= keepLast {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		// timestamp is embedded in filename and lexical sort matches chronology
		return matches[i] > matches[j]
	})

	for _, oldPath := range matches[keepLast:] {
		if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

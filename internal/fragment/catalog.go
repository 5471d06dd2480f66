package fragment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrUnknownFragment is returned for sources the manifest does not list.
var ErrUnknownFragment = errors.New("fragment: unknown source")

// Catalog serves fragment files named by a manifest, from the embedded pages
// or from an override directory. Files are read once and cached; with an
// override directory, Watch drops cache entries when files change on disk.
type Catalog struct {
	manifest Manifest
	fsys     fs.FS
	dir      string
	logger   *zap.Logger

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewCatalog creates a catalog. An empty dir serves the embedded pages.
func NewCatalog(m Manifest, dir string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{
		manifest: m,
		fsys:     embedded,
		dir:      dir,
		logger:   logger,
		cache:    make(map[string][]byte),
	}
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("fragment dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("fragment dir: %s is not a directory", dir)
		}
		c.fsys = os.DirFS(dir)
	}
	return c, nil
}

// Manifest returns the catalog's view set.
func (c *Catalog) Manifest() Manifest { return c.manifest }

// Fragment returns the markup for source.
func (c *Catalog) Fragment(source string) ([]byte, error) {
	if _, ok := c.manifest.BySource(source); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFragment, source)
	}

	c.mu.RLock()
	data, ok := c.cache[source]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}

	data, err := fs.ReadFile(c.fsys, source)
	if err != nil {
		return nil, fmt.Errorf("reading fragment %s: %w", source, err)
	}

	c.mu.Lock()
	c.cache[source] = data
	c.mu.Unlock()
	return data, nil
}

// Fetch lets the catalog act as the router's fragment source in-process.
func (c *Catalog) Fetch(_ context.Context, source string) (string, error) {
	data, err := c.Fragment(source)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Catalog) invalidate(source string) {
	c.mu.Lock()
	delete(c.cache, source)
	c.mu.Unlock()
}

// Watch invalidates cached fragments when their files change. It returns
// when ctx ends. Without an override directory it returns immediately.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.dir == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fragment watch: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]bool)
	for _, v := range c.manifest.Views {
		dirs[filepath.Join(c.dir, filepath.FromSlash(path.Dir(v.Source)))] = true
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("fragment watch %s: %w", d, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(c.dir, ev.Name)
			if err != nil {
				continue
			}
			source := filepath.ToSlash(rel)
			if _, known := c.manifest.BySource(source); !known {
				continue
			}
			c.invalidate(source)
			c.logger.Info("fragment changed", zap.String("source", source), zap.String("op", ev.Op.String()))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("fragment watch error", zap.Error(err))
		}
	}
}

// Package fragment describes the site's page fragments and moves them
// between the server and the view router: the YAML manifest that defines the
// view set, the server-side catalog that serves fragment files, and the HTTP
// source the router fetches from.
package fragment

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/heyojules/invite/internal/router"

	"gopkg.in/yaml.v3"
)

//go:embed pages/*.html pages/manifest.yml
var embedded embed.FS

const embeddedManifest = "pages/manifest.yml"

// ViewSpec is one view entry in the manifest.
type ViewSpec struct {
	ID     string `yaml:"id" json:"id"`
	Source string `yaml:"source" json:"source"`
	Title  string `yaml:"title" json:"title"`
}

// Manifest is the static view set of the site.
type Manifest struct {
	Default string     `yaml:"default" json:"default"`
	Views   []ViewSpec `yaml:"views" json:"views"`
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return m, err
	}
	return m, nil
}

// LoadManifest reads a manifest file. An empty path selects the embedded
// manifest.
func LoadManifest(p string) (Manifest, error) {
	if p == "" {
		return DefaultManifest()
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
}

// DefaultManifest returns the embedded home/album/invitation manifest.
func DefaultManifest() (Manifest, error) {
	data, err := embedded.ReadFile(embeddedManifest)
	if err != nil {
		return Manifest{}, fmt.Errorf("reading embedded manifest: %w", err)
	}
	return ParseManifest(data)
}

// Validate checks ids are present and unique, sources are relative clean
// paths, and the default names a view. A missing default becomes the first
// view.
func (m *Manifest) Validate() error {
	if len(m.Views) == 0 {
		return errors.New("manifest: no views")
	}
	seen := make(map[string]bool, len(m.Views))
	for _, v := range m.Views {
		if v.ID == "" {
			return errors.New("manifest: view with empty id")
		}
		if seen[v.ID] {
			return fmt.Errorf("manifest: duplicate view %q", v.ID)
		}
		seen[v.ID] = true
		if v.Source == "" || path.IsAbs(v.Source) || path.Clean(v.Source) != v.Source {
			return fmt.Errorf("manifest: view %q has invalid source %q", v.ID, v.Source)
		}
	}
	if m.Default == "" {
		m.Default = m.Views[0].ID
	}
	if !seen[m.Default] {
		return fmt.Errorf("manifest: default view %q is not defined", m.Default)
	}
	return nil
}

// RouterViews converts the manifest into the router's view set.
func (m Manifest) RouterViews() []router.View {
	views := make([]router.View, 0, len(m.Views))
	for _, v := range m.Views {
		views = append(views, router.View{ID: router.ViewID(v.ID), Source: v.Source, Title: v.Title})
	}
	return views
}

// DefaultView is the view used when a URL names none.
func (m Manifest) DefaultView() router.ViewID {
	return router.ViewID(m.Default)
}

// BySource finds the view whose source is src.
func (m Manifest) BySource(src string) (ViewSpec, bool) {
	for _, v := range m.Views {
		if v.Source == src {
			return v, true
		}
	}
	return ViewSpec{}, false
}

package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/heyojules/invite/internal/fragment"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/charmbracelet/glamour"
)

// Renderer turns page fragments into styled terminal text: markup is
// sanitized, converted to Markdown, then rendered by glamour at the
// current width.
type Renderer struct {
	conv  *htmltomarkdown.Converter
	style string

	mu    sync.Mutex
	width int
	term  *glamour.TermRenderer
}

// NewRenderer creates a renderer. An empty style detects the terminal
// background; tests pass "notty" for plain output.
func NewRenderer(style string) *Renderer {
	return &Renderer{
		conv: htmltomarkdown.NewConverter(
			htmltomarkdown.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		style: style,
	}
}

// Markdown converts a fragment to Markdown without styling it.
func (r *Renderer) Markdown(markup string) (string, error) {
	md, err := r.conv.ConvertString(fragment.Sanitize(markup))
	if err != nil {
		return "", fmt.Errorf("converting fragment: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Render converts and styles markup for a pane width columns wide.
func (r *Renderer) Render(markup string, width int) (string, error) {
	md, err := r.Markdown(markup)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	term, err := r.termFor(width)
	if err != nil {
		return "", err
	}
	out, err := term.Render(md)
	if err != nil {
		return "", fmt.Errorf("rendering fragment: %w", err)
	}
	return out, nil
}

// termFor rebuilds the glamour renderer when the wrap width changes.
func (r *Renderer) termFor(width int) (*glamour.TermRenderer, error) {
	if width < 20 {
		width = 20
	}
	if r.term != nil && r.width == width {
		return r.term, nil
	}
	styleOpt := glamour.WithAutoStyle()
	if r.style != "" {
		styleOpt = glamour.WithStandardStyle(r.style)
	}
	term, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	r.term, r.width = term, width
	return term, nil
}

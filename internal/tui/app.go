package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// App is the top-level Bubble Tea model that routes between pages.
// Messages that are not key presses reach every page, so background work
// (fragment loads, countdown ticks) lands even while another page is shown.
type App struct {
	pages      map[string]Page
	order      []string
	activePage string
	keys       KeyMap
	width      int
	height     int
}

// NewApp creates a new App with the given pages. The first page is the default.
func NewApp(pages ...Page) *App {
	a := &App{
		pages: make(map[string]Page, len(pages)),
		keys:  DefaultKeyMap(),
	}
	for i, p := range pages {
		a.pages[p.ID()] = p
		a.order = append(a.order, p.ID())
		if i == 0 {
			a.activePage = p.ID()
		}
	}
	return a
}

// ActivePage returns the id of the page being shown.
func (a *App) ActivePage() string { return a.activePage }

func (a *App) Init() tea.Cmd {
	if p, ok := a.pages[a.activePage]; ok {
		return p.Init()
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		return a.updateActive(msg)
	}

	var cmds []tea.Cmd
	var nav *PageNav
	for _, id := range a.order {
		cmd, n := a.pages[id].Update(msg)
		cmds = append(cmds, cmd)
		if id == a.activePage && n != nil {
			nav = n
		}
	}
	cmds = append(cmds, a.navigate(nav))
	return a, tea.Batch(cmds...)
}

func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	p, ok := a.pages[a.activePage]
	if !ok {
		return a, nil
	}
	cmd, nav := p.Update(msg)
	return a, tea.Batch(cmd, a.navigate(nav))
}

func (a *App) navigate(nav *PageNav) tea.Cmd {
	if nav == nil {
		return nil
	}
	p, exists := a.pages[nav.PageID]
	if !exists {
		return nil
	}
	a.activePage = nav.PageID
	return p.Init()
}

func (a *App) View() string {
	if p, ok := a.pages[a.activePage]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}

package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/i18n"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// AdminService returns the dashboard totals for a password.
type AdminService interface {
	AdminSummary(ctx context.Context, password string) (admin.Summary, error)
}

// AdminFunc adapts a function to AdminService.
type AdminFunc func(ctx context.Context, password string) (admin.Summary, error)

func (f AdminFunc) AdminSummary(ctx context.Context, password string) (admin.Summary, error) {
	return f(ctx, password)
}

type adminState int

const (
	adminPrompt adminState = iota
	adminLoading
	adminReady
)

type adminSummaryMsg struct {
	summary admin.Summary
	err     error
}

// AdminPage is the hidden RSVP dashboard: a password prompt, then the
// totals, a chart and the list of confirmations.
type AdminPage struct {
	svc  AdminService
	tr   *i18n.Translator
	keys KeyMap

	state    adminState
	input    textinput.Model
	password string
	errText  string
	summary  admin.Summary
	table    viewport.Model
}

// NewAdminPage creates the dashboard page. A nil svc leaves the prompt
// unable to log in.
func NewAdminPage(svc AdminService, tr *i18n.Translator) *AdminPage {
	in := textinput.New()
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.CharLimit = 64
	return &AdminPage{
		svc:   svc,
		tr:    tr,
		keys:  DefaultKeyMap(),
		input: in,
		table: viewport.New(80, 10),
	}
}

func (p *AdminPage) ID() string { return PageAdmin }

// Init shows the prompt again each time the page is opened.
func (p *AdminPage) Init() tea.Cmd {
	p.state = adminPrompt
	p.errText = ""
	p.password = ""
	p.input.Reset()
	p.input.Placeholder = p.tr.T(i18n.AdminPrompt)
	return p.input.Focus()
}

func (p *AdminPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case adminSummaryMsg:
		if p.state != adminLoading {
			return nil, nil
		}
		if msg.err != nil {
			p.state = adminPrompt
			p.password = ""
			if errors.Is(msg.err, admin.ErrUnauthorized) {
				p.errText = p.tr.T(i18n.AdminWrongPassword)
			} else {
				p.errText = msg.err.Error()
			}
			p.input.Reset()
			return p.input.Focus(), nil
		}
		p.summary = msg.summary
		p.state = adminReady
		p.table.SetContent(p.renderTable(p.table.Width))
		p.table.GotoTop()
		return nil, nil

	case tea.KeyMsg:
		if key.Matches(msg, p.keys.Escape) {
			p.input.Blur()
			return nil, &PageNav{PageID: PageSite}
		}
		switch p.state {
		case adminPrompt:
			if msg.Type == tea.KeyEnter {
				return p.login(p.input.Value()), nil
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return cmd, nil
		case adminReady:
			if key.Matches(msg, p.keys.Refresh) {
				return p.login(p.password), nil
			}
			var cmd tea.Cmd
			p.table, cmd = p.table.Update(msg)
			return cmd, nil
		}
	}
	return nil, nil
}

func (p *AdminPage) login(password string) tea.Cmd {
	if p.svc == nil || password == "" {
		return nil
	}
	p.password = password
	p.state = adminLoading
	p.errText = ""
	svc := p.svc
	return func() tea.Msg {
		s, err := svc.AdminSummary(context.Background(), password)
		return adminSummaryMsg{summary: s, err: err}
	}
}

func (p *AdminPage) View(width, height int) string {
	if width == 0 {
		width, height = 80, 24
	}
	title := lipgloss.NewStyle().Foreground(ColorGold).Bold(true).Render("Panel de confirmaciones")

	var body string
	switch p.state {
	case adminPrompt:
		body = p.input.View()
		if p.errText != "" {
			body += "\n\n" + errorStyle.Render(p.errText)
		}
		body = lipgloss.Place(width-4, height-6, lipgloss.Center, lipgloss.Center,
			activeSectionStyle.Width(min(width-8, 40)).Render(body))
	case adminLoading:
		body = lipgloss.Place(width-4, height-6, lipgloss.Center, lipgloss.Center,
			helpStyle.Render(p.tr.T(i18n.AdminLoading)))
	case adminReady:
		body = p.renderSummary(width, height)
	}

	help := helpStyle.Render("esc: volver · r: actualizar · ↑/↓: desplazar")
	return lipgloss.JoinVertical(lipgloss.Left, title, body, help)
}

func (p *AdminPage) renderSummary(width, height int) string {
	s := p.summary
	totals := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(p.tr.T(i18n.AdminTotalPasses, map[string]any{"Count": s.TotalPasses})),
		p.tr.Plural(i18n.AdminConfirmed, s.Confirmed),
		p.tr.Plural(i18n.AdminDeclined, s.Declined),
	)
	chart := renderAttendanceChart(s, 30, 6)
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		sectionStyle.Render(totals),
		sectionStyle.Render(chart),
	)

	tableHeight := max(height-lipgloss.Height(top)-6, 3)
	if p.table.Width != width-2 {
		p.table.Width = width - 2
		p.table.SetContent(p.renderTable(p.table.Width))
	}
	p.table.Height = tableHeight
	return lipgloss.JoinVertical(lipgloss.Left, top, p.table.View())
}

// renderAttendanceChart draws passes, confirmations and declines as bars.
func renderAttendanceChart(s admin.Summary, width, height int) string {
	bc := barchart.New(width, height,
		barchart.WithBarGap(2),
		barchart.WithBarWidth(6),
	)
	bar := func(label string, v int, color lipgloss.Color) barchart.BarData {
		return barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{{
				Name:  label,
				Value: float64(v),
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		}
	}
	bc.PushAll([]barchart.BarData{
		bar("Pases", s.TotalPasses, ColorGold),
		bar("Sí", s.Confirmed, ColorGreen),
		bar("No", s.Declined, ColorRed),
	})
	bc.Draw()
	return bc.View()
}

func (p *AdminPage) renderTable(width int) string {
	rows := make([][]string, 0, len(p.summary.Rows))
	for _, r := range p.summary.Rows {
		att := "Sí"
		if !r.Attending() {
			att = "No"
		}
		rows = append(rows, []string{
			r.Name,
			att,
			strconv.Itoa(r.Guests),
			strings.ReplaceAll(r.Notes, "\n", " "),
			r.CreatedAt.Local().Format("02/01 15:04"),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorGray)).
		Headers("NOMBRE", "ASISTE", "PASES", "NOTAS", "FECHA").
		Rows(rows...).
		Width(max(width, 40)).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return st.Foreground(ColorGold).Bold(true)
			case col == 1 && row >= 0 && row < len(p.summary.Rows) && !p.summary.Rows[row].Attending():
				return st.Foreground(ColorRed)
			}
			return st
		})
	return t.Render()
}

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"sales-pacing-console/internal/dashboard"
	"sales-pacing-console/internal/report"
	"sales-pacing-console/internal/sales"
	"sales-pacing-console/internal/source"
)

type screen int

const (
	screenLogin screen = iota
	screenDashboard
)

const allOption = "All"

type snapshotMsg struct {
	snap source.Snapshot
	err  error
}

// refreshMsg asks for a reload; the cron schedule sends it from outside the program.
type refreshMsg struct{}

type exportedMsg struct {
	path string
	err  error
}

type optionItem struct {
	value string
}

func (o optionItem) Title() string { return o.value }
func (o optionItem) Description() string {
	if o.value == allOption {
		return "clear this filter"
	}
	return ""
}
func (o optionItem) FilterValue() string { return o.value }

type settings struct {
	loc          *time.Location
	rankSize     int
	initialDate  string
	exportPath   string
	exportFormat string
	kpi          *sales.KPI
}

// apply sets the starting date and KPI on a freshly loaded dashboard. It
// reports false when the starting date is malformed.
func (s settings) apply(d *dashboard.Dashboard) bool {
	if s.kpi != nil {
		for _, panel := range []dashboard.Panel{dashboard.PanelDaily, dashboard.PanelChannel, dashboard.PanelDistributor} {
			d.SetKPI(panel, *s.kpi)
		}
	}
	if s.initialDate == "" {
		return true
	}
	return d.SetDate(s.initialDate)
}

type model struct {
	screen   screen
	login    loginModel
	dash     *dashboard.Dashboard
	view     report.View
	snap     source.Snapshot
	loader   source.Loader
	log      *zap.Logger
	settings settings
	now      func() time.Time

	focus   int
	picking bool
	picker  list.Model
	status  string
	loading bool
	ready   bool
	width   int
	height  int
}

func newModel(snap source.Snapshot, loader source.Loader, log *zap.Logger, s settings) model {
	picker := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(true)
	picker.SetShowHelp(false)

	if s.loc == nil {
		s.loc = time.Local
	}
	return model{
		screen:   screenLogin,
		login:    newLoginModel(snap),
		snap:     snap,
		loader:   loader,
		log:      log,
		settings: s,
		now:      time.Now,
		picker:   picker,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) loadCmd() tea.Cmd {
	loader, log := m.loader, m.log
	return func() tea.Msg {
		snap, err := loadSnapshot(context.Background(), loader, log)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m model) exportCmd() tea.Cmd {
	view := m.view
	identity := m.dash.Identity()
	filters := m.dash.Filters()
	generatedAt := m.now().In(m.settings.loc)
	path := m.settings.exportPath
	format := m.settings.exportFormat
	if path == "" || path == "-" {
		ext := "txt"
		if f, err := normalizeReportFormat("", format); err == nil && f == "json" {
			ext = "json"
		}
		path = filepath.Join("reports", fmt.Sprintf("evpm-%s.%s", view.EffectiveDate, ext))
	}
	return func() tea.Msg {
		err := writeReport(path, format, view, identity, filters, generatedAt)
		return exportedMsg{path: path, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePicker()
		m.ready = true
		return m, nil
	case refreshMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.status = "Refreshing…"
		return m, m.loadCmd()
	case snapshotMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		m.login = m.login.withSnapshot(msg.snap)
		if m.dash != nil {
			m.dash.Load(msg.snap)
			m.recompute()
			if m.picking {
				m.openPicker()
			}
		}
		m.status = "Data refreshed"
		return m, nil
	case loggedInMsg:
		m.startDashboard(msg)
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.log.Error("export failed", zap.String("path", msg.path), zap.Error(msg.err))
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.log.Info("report exported", zap.String("path", msg.path))
			m.status = "Exported " + msg.path
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.screen == screenLogin {
			var cmd tea.Cmd
			m.login, cmd = m.login.Update(msg)
			return m, cmd
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateDashboard(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) startDashboard(msg loggedInMsg) {
	id := msg.identity
	m.log.Info("login",
		zap.String("session", id.SessionID.String()),
		zap.String("role", string(id.Role)),
		zap.String("identity", id.Name),
	)
	m.dash = dashboard.New(id,
		dashboard.WithClock(m.now),
		dashboard.WithLocation(m.settings.loc),
		dashboard.WithRankSize(m.settings.rankSize),
	)
	m.dash.Load(m.snap)
	if !m.settings.apply(m.dash) {
		m.log.Warn("ignoring malformed start date", zap.String("date", m.settings.initialDate))
	}
	m.screen = screenDashboard
	m.focus = 0
	m.picking = false
	m.status = ""
	m.recompute()
}

func (m *model) recompute() {
	m.view = m.dash.View()
}

func (m model) focusedField() (sales.Field, bool) {
	fields := m.dash.VisibleFields()
	if len(fields) == 0 {
		return "", false
	}
	return fields[m.focus%len(fields)], true
}

func (m model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		m.log.Info("logout", zap.String("session", m.dash.Identity().SessionID.String()))
		m.dash = nil
		m.screen = screenLogin
		m.login = newLoginModel(m.snap)
		return m, nil
	case "tab", "right", "l":
		if n := len(m.dash.VisibleFields()); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case "shift+tab", "left", "h":
		if n := len(m.dash.VisibleFields()); n > 0 {
			m.focus = (m.focus - 1 + n) % n
		}
	case "enter":
		if _, ok := m.focusedField(); ok {
			m.openPicker()
			m.picking = true
		}
		return m, nil
	case "c":
		m.dash.ClearFilters()
	case "[":
		m.dash.StepDate(-1)
	case "]":
		m.dash.StepDate(1)
	case "L":
		if !m.dash.JumpToLatest() {
			m.status = "No dated data loaded"
		}
	case "t":
		m.dash.JumpToToday()
	case "1":
		m.dash.CycleKPI(dashboard.PanelDaily)
	case "2":
		m.dash.CycleKPI(dashboard.PanelChannel)
	case "3":
		m.dash.CycleKPI(dashboard.PanelDistributor)
	case "u":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.status = "Refreshing…"
		return m, m.loadCmd()
	case "e":
		m.status = "Exporting…"
		return m, m.exportCmd()
	default:
		return m, nil
	}
	m.recompute()
	return m, nil
}

func (m *model) openPicker() {
	field, ok := m.focusedField()
	if !ok {
		return
	}
	options := m.dash.Options(field)
	items := make([]list.Item, 0, len(options)+1)
	items = append(items, optionItem{value: allOption})
	selected := 0
	current := m.dash.Filters()[field]
	for i, value := range options {
		items = append(items, optionItem{value: value})
		if value == current {
			selected = i + 1
		}
	}
	m.picker.Title = "Select " + field.Label()
	m.picker.SetItems(items)
	m.picker.ResetFilter()
	m.picker.Select(selected)
	m.resizePicker()
}

func (m *model) resizePicker() {
	w := m.width - 4
	if w < 30 {
		w = 30
	}
	h := m.height - 8
	if h < 8 {
		h = 8
	}
	m.picker.SetSize(w, h)
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "q":
			m.picking = false
			return m, nil
		case "enter":
			field, ok := m.focusedField()
			item, isOption := m.picker.SelectedItem().(optionItem)
			if ok && isOption {
				value := item.value
				if value == allOption {
					value = ""
				}
				m.dash.SetFilter(field, value)
				m.recompute()
			}
			m.picking = false
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "Loading sales pacing console..."
	}
	if m.screen == screenLogin {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.login.View())
	}
	if m.picking {
		return panel.Render(m.picker.View())
	}
	return renderDashboard(m)
}

func renderDashboard(m model) string {
	view := m.view
	identity := m.dash.Identity()

	header := headerStyle.Render("EVPM Sales Pacing Console")
	who := subtle.Render(fmt.Sprintf("%s · %s", identity.Name, identity.JobTitle))
	stamp := subtle.Render(fmt.Sprintf("Updated %s · source %s", m.dash.LastUpdated().In(m.settings.loc).Format("Jan 2 15:04"), m.dash.Origin()))

	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", who),
		stamp,
		renderFilterBar(m),
	}
	if view.FallbackActive {
		sections = append(sections, warnStyle.Render(fmt.Sprintf("No data for %s. Showing %s, the latest earlier day with data.", view.RequestedDate, view.EffectiveDate)))
	}
	if view.MatchedCount == 0 {
		sections = append(sections, warnStyle.Render("No achievement rows match this day and filters."))
	}
	sections = append(sections,
		renderTimeGone(view),
		renderStatCards(view),
	)

	daily := panel.Render(renderSeries(view))
	if view.Restricted {
		sections = append(sections, daily)
	} else {
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
			daily,
			panel.Render(renderChannels(view)),
			panel.Render(renderRanks(view)),
		))
	}

	help := "tab focus · enter pick · c clear · [ ] day · L latest · t today · 1/2/3 KPI · u refresh · e export · o sign out · q quit"
	sections = append(sections, subtle.Render(help))
	if m.status != "" {
		sections = append(sections, accent.Render(m.status))
	}
	return strings.Join(sections, "\n")
}

func renderFilterBar(m model) string {
	parts := []string{fmt.Sprintf("Date: %s", accent.Render(m.view.RequestedDate))}
	filters := m.dash.Filters()
	for i, field := range m.dash.VisibleFields() {
		value := filters[field]
		if value == "" {
			value = allOption
		}
		label := fmt.Sprintf("%s: %s", field.Label(), truncate(value, 24))
		if i == m.focus {
			label = focusStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func renderTimeGone(view report.View) string {
	line := fmt.Sprintf("Time gone %s %s (%s)", bar(view.ReportElapsed.Percent, 20), formatPercent(view.ReportElapsed.Percent), view.ReportElapsed.Label)
	today := subtle.Render(fmt.Sprintf("Today %s (%s)", formatPercent(view.TodayElapsed.Percent), view.TodayElapsed.Label))
	return line + "  " + today
}

func renderStatCards(view report.View) string {
	cards := make([]string, 0, len(sales.KPIs))
	for _, k := range sales.KPIs {
		pct := view.Totals.Pct(k)
		body := strings.Join([]string{
			subtle.Render(k.Label()),
			accent.Render(formatNumber(view.Totals.Actual.Get(k))),
			fmt.Sprintf("of %s", formatNumber(view.Totals.Plan.Get(k))),
			fmt.Sprintf("%s %s", bar(pct, 10), formatPercent(pct)),
			renderPaceLabel(paceLabel(pct, view.ReportElapsed.Percent)),
		}, "\n")
		cards = append(cards, panel.Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

const seriesRows = 10

func renderSeries(view report.View) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("Daily %s vs target [1]", view.Selectors.Daily))}
	points := view.Series
	if len(points) > seriesRows {
		points = points[len(points)-seriesRows:]
	}
	if len(points) == 0 {
		return strings.Join(append(lines, subtle.Render("No daily data.")), "\n")
	}
	var peak float64
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
		if p.Target > peak {
			peak = p.Target
		}
	}
	for _, p := range points {
		pct := 0.0
		if peak > 0 {
			pct = p.Value / peak * 100
		}
		label := p.Date
		if len(label) == len("2006-01-02") {
			label = label[5:]
		}
		value := formatNumber(p.Value)
		if p.Value >= p.Target {
			value = statusAhead.Render(value)
		} else {
			value = statusBehind.Render(value)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s / %s", label, bar(pct, 12), value, formatNumber(p.Target)))
	}
	return strings.Join(lines, "\n")
}

func renderChannels(view report.View) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("Channels %s [2]", view.Selectors.Channel))}
	if len(view.Channels) == 0 {
		return strings.Join(append(lines, subtle.Render("No channels.")), "\n")
	}
	for _, c := range view.Channels {
		lines = append(lines, fmt.Sprintf("%-14s %s %3d%%  %s / %s",
			truncate(c.Name, 14), bar(float64(c.AchPct), 8), c.AchPct, formatNumber(c.Actual), formatNumber(c.Plan)))
	}
	return strings.Join(lines, "\n")
}

func renderRanks(view report.View) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("Distributors %s [3]", view.Selectors.Distributor)), statusAhead.Render("Top")}
	lines = append(lines, rankRows(view.Top)...)
	lines = append(lines, statusBehind.Render("Bottom"))
	lines = append(lines, rankRows(view.Bottom)...)
	return strings.Join(lines, "\n")
}

func rankRows(ranks []report.DistributorRank) []string {
	if len(ranks) == 0 {
		return []string{subtle.Render("  None")}
	}
	rows := make([]string, 0, len(ranks))
	for i, r := range ranks {
		rows = append(rows, fmt.Sprintf("%d. %-20s %s", i+1, truncate(r.Name, 20), formatPercent(r.Value)))
	}
	return rows
}
